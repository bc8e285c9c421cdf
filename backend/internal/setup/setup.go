package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/itchan-dev/filesmanager/backend/internal/handler"
	"github.com/itchan-dev/filesmanager/backend/internal/queue"
	"github.com/itchan-dev/filesmanager/backend/internal/service"
	"github.com/itchan-dev/filesmanager/backend/internal/storage/fs"
	"github.com/itchan-dev/filesmanager/backend/internal/storage/mongodb"
	"github.com/itchan-dev/filesmanager/backend/internal/storage/redis"
	"github.com/itchan-dev/filesmanager/shared/config"
	mw "github.com/itchan-dev/filesmanager/shared/middleware"
	goredis "github.com/redis/go-redis/v9"
)

// Dependencies struct to hold all initialized dependencies of the api.
type Dependencies struct {
	Config         *config.Config
	Storage        *mongodb.Storage
	Cache          *redis.Cache
	Media          *fs.Storage
	Producer       queue.Producer
	Handler        *handler.Handler
	AuthMiddleware *mw.Auth
	MediaGC        *service.MediaGarbageCollector
}

// SetupDependencies initializes all dependencies required for the api.
// On error everything opened so far is closed.
func SetupDependencies(ctx context.Context, cfg *config.Config) (deps *Dependencies, err error) {
	deps = &Dependencies{Config: cfg}
	defer func() {
		if err != nil {
			deps.Close(context.Background())
			deps = nil
		}
	}()

	if deps.Storage, err = mongodb.New(ctx, cfg); err != nil {
		return deps, fmt.Errorf("mongodb: %w", err)
	}
	client, err := redis.Connect(ctx, cfg)
	if err != nil {
		return deps, fmt.Errorf("redis: %w", err)
	}
	deps.Cache = redis.New(client)
	if deps.Media, err = fs.New(cfg.Public.FolderPath); err != nil {
		return deps, err
	}
	if deps.Producer, err = queue.NewProducer(cfg.Public.Queue, client); err != nil {
		return deps, fmt.Errorf("queue: %w", err)
	}

	auth := service.NewAuth(deps.Storage, deps.Cache, cfg.SessionTTL())
	file := service.NewFile(deps.Storage, deps.Media, deps.Producer, cfg.Public.PageSize)
	app := service.NewApp(deps.Storage, deps.Cache, deps.Storage)

	deps.Handler = handler.New(auth, file, app, cfg)
	deps.AuthMiddleware = mw.NewAuth(auth)
	deps.MediaGC = service.NewMediaGarbageCollector(deps.Storage, deps.Media, cfg.Public.GC.SafetyThreshold)

	return deps, nil
}

// Close releases connections in reverse order of creation.
func (d *Dependencies) Close(ctx context.Context) error {
	var errs []error
	if d.Producer != nil {
		errs = append(errs, d.Producer.Close())
	}
	if d.Cache != nil {
		errs = append(errs, d.Cache.Close())
	}
	if d.Storage != nil {
		errs = append(errs, d.Storage.Cleanup(ctx))
	}
	return errors.Join(errs...)
}

// WorkerDependencies is what the thumbnail worker needs: a job source and a processor.
type WorkerDependencies struct {
	Storage     *mongodb.Storage
	Cache       *redis.Cache
	Consumer    queue.Consumer
	Thumbnailer *service.Thumbnailer
}

func SetupWorker(ctx context.Context, cfg *config.Config) (deps *WorkerDependencies, err error) {
	deps = &WorkerDependencies{}
	defer func() {
		if err != nil {
			deps.Close(context.Background())
			deps = nil
		}
	}()

	if deps.Storage, err = mongodb.New(ctx, cfg); err != nil {
		return deps, fmt.Errorf("mongodb: %w", err)
	}
	// the kafka driver does not touch redis
	var client *goredis.Client
	if cfg.Public.Queue.Driver == queue.DriverRedis {
		if client, err = redis.Connect(ctx, cfg); err != nil {
			return deps, fmt.Errorf("redis: %w", err)
		}
		deps.Cache = redis.New(client)
	}
	media, err := fs.New(cfg.Public.FolderPath)
	if err != nil {
		return deps, err
	}
	if deps.Consumer, err = queue.NewConsumer(cfg.Public.Queue, client); err != nil {
		return deps, fmt.Errorf("queue: %w", err)
	}
	deps.Thumbnailer = service.NewThumbnailer(deps.Storage, media, cfg.Public.MaxDecodedImageSize)

	return deps, nil
}

func (d *WorkerDependencies) Close(ctx context.Context) error {
	var errs []error
	if d.Consumer != nil {
		errs = append(errs, d.Consumer.Close())
	}
	if d.Cache != nil {
		errs = append(errs, d.Cache.Close())
	}
	if d.Storage != nil {
		errs = append(errs, d.Storage.Cleanup(ctx))
	}
	return errors.Join(errs...)
}
