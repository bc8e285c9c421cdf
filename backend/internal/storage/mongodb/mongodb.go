// Package mongodb implements the credential store: user and file records
// kept in MongoDB collections.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/itchan-dev/filesmanager/shared/config"
	"github.com/itchan-dev/filesmanager/shared/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection = "users"
	filesCollection = "files"
)

type Storage struct {
	client *mongo.Client
	users  *mongo.Collection
	files  *mongo.Collection
}

// New connects to MongoDB, checks the connection and makes sure the indexes exist.
func New(ctx context.Context, cfg *config.Config) (*Storage, error) {
	opts := options.Client().ApplyURI(cfg.Public.Mongo.URI)
	if cfg.Private.MongoUser != "" {
		opts.SetAuth(options.Credential{
			Username: cfg.Private.MongoUser,
			Password: cfg.Private.MongoPassword,
		})
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Public.Mongo.Database)
	s := &Storage{
		client: client,
		users:  db.Collection(usersCollection),
		files:  db.Collection(filesCollection),
	}
	if err := s.ensureIndexes(connectCtx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	logger.Log.Info("mongodb connected", "database", cfg.Public.Mongo.Database)
	return s, nil
}

func (s *Storage) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	_, err = s.files.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "parentId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create files index: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Storage) Cleanup(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
