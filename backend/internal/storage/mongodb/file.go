package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/itchan-dev/filesmanager/shared/domain"
	"github.com/itchan-dev/filesmanager/shared/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Storage) InsertFile(ctx context.Context, file domain.File) (domain.FileId, error) {
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now().UTC()
	}
	res, err := s.files.InsertOne(ctx, file)
	if err != nil {
		return domain.FileId{}, fmt.Errorf("insert file: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return domain.FileId{}, fmt.Errorf("unexpected file id type %T", res.InsertedID)
	}
	return id, nil
}

func (s *Storage) FileById(ctx context.Context, id domain.FileId) (*domain.File, error) {
	var file domain.File
	err := s.files.FindOne(ctx, bson.M{"_id": id}).Decode(&file)
	if err == mongo.ErrNoDocuments {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find file: %w", err)
	}
	return &file, nil
}

// FilesByParent returns one page (0-based) of the owner's records directly under parentId,
// in insertion order. A nil parentId means the root.
func (s *Storage) FilesByParent(ctx context.Context, owner domain.UserId, parentId *domain.FileId, page, pageSize int) ([]domain.File, error) {
	if page < 0 {
		page = 0
	}
	filter := bson.M{"userId": owner, "parentId": nil}
	if parentId != nil {
		filter["parentId"] = *parentId
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(page * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := s.files.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find files: %w", err)
	}
	files := []domain.File{}
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}
	return files, nil
}

// SetPublic flips the visibility of exactly one record, selected by id.
func (s *Storage) SetPublic(ctx context.Context, id domain.FileId, isPublic bool) (*domain.File, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var file domain.File
	err := s.files.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isPublic": isPublic}},
		opts,
	).Decode(&file)
	if err == mongo.ErrNoDocuments {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update file: %w", err)
	}
	return &file, nil
}

func (s *Storage) CountFiles(ctx context.Context) (int64, error) {
	return s.files.CountDocuments(ctx, bson.D{})
}

// AllFilePaths returns storage paths of every non-folder record.
func (s *Storage) AllFilePaths(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"localPath": 1})
	cursor, err := s.files.Find(ctx, bson.M{"localPath": bson.M{"$exists": true, "$ne": ""}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find file paths: %w", err)
	}
	defer cursor.Close(ctx)

	var paths []string
	for cursor.Next(ctx) {
		var row struct {
			LocalPath string `bson:"localPath"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode file path: %w", err)
		}
		paths = append(paths, row.LocalPath)
	}
	return paths, cursor.Err()
}
