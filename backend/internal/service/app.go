package service

import (
	"context"
	"time"

	"github.com/itchan-dev/filesmanager/shared/domain"
	"github.com/itchan-dev/filesmanager/shared/logger"
	"golang.org/x/sync/errgroup"
)

type AppService interface {
	Status(ctx context.Context) domain.Status
	Stats(ctx context.Context) (domain.Stats, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type StatsStorage interface {
	CountUsers(ctx context.Context) (int64, error)
	CountFiles(ctx context.Context) (int64, error)
}

type App struct {
	db          Pinger
	cache       Pinger
	stats       StatsStorage
	pingTimeout time.Duration
}

func NewApp(db Pinger, cache Pinger, stats StatsStorage) *App {
	return &App{db: db, cache: cache, stats: stats, pingTimeout: 2 * time.Second}
}

// Status pings both stores concurrently. It never fails, a store that
// does not answer in time is reported as down.
func (a *App) Status(ctx context.Context) domain.Status {
	ctx, cancel := context.WithTimeout(ctx, a.pingTimeout)
	defer cancel()

	var status domain.Status
	var g errgroup.Group
	g.Go(func() error {
		if err := a.db.Ping(ctx); err != nil {
			logger.Log.Warn("database ping failed", "error", err)
			return nil
		}
		status.DB = true
		return nil
	})
	g.Go(func() error {
		if err := a.cache.Ping(ctx); err != nil {
			logger.Log.Warn("redis ping failed", "error", err)
			return nil
		}
		status.Redis = true
		return nil
	})
	g.Wait()
	return status
}

func (a *App) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := a.stats.CountUsers(ctx)
		stats.Users = n
		return err
	})
	g.Go(func() error {
		n, err := a.stats.CountFiles(ctx)
		stats.Files = n
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Stats{}, err
	}
	return stats, nil
}
