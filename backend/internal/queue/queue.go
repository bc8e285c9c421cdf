// Package queue carries thumbnail jobs from the API to the worker.
// Delivery is at-least-once and failed jobs are not retried.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/itchan-dev/filesmanager/shared/config"
	"github.com/itchan-dev/filesmanager/shared/domain"
	goredis "github.com/redis/go-redis/v9"
)

const (
	DriverKafka = "kafka"
	DriverRedis = "redis"
)

// retryDelay is the pause after a broker error before polling again.
const retryDelay = time.Second

type Handler func(ctx context.Context, job domain.ThumbnailJob) error

type Producer interface {
	Enqueue(ctx context.Context, job domain.ThumbnailJob) error
	Close() error
}

type Consumer interface {
	// Run blocks, passing every received job to handler, until ctx is cancelled.
	Run(ctx context.Context, handler Handler) error
	Close() error
}

// NewProducer builds the producer of the configured driver. redisClient is
// only used by the redis driver.
func NewProducer(cfg config.Queue, redisClient *goredis.Client) (Producer, error) {
	switch cfg.Driver {
	case DriverKafka:
		return NewKafkaProducer(cfg.Brokers, cfg.Topic), nil
	case DriverRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis queue driver needs a redis client")
		}
		return NewRedisProducer(redisClient, cfg.RedisKey), nil
	}
	return nil, fmt.Errorf("unknown queue driver %q", cfg.Driver)
}

func NewConsumer(cfg config.Queue, redisClient *goredis.Client) (Consumer, error) {
	switch cfg.Driver {
	case DriverKafka:
		return NewKafkaConsumer(cfg.Brokers, cfg.Topic, cfg.GroupId), nil
	case DriverRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis queue driver needs a redis client")
		}
		return NewRedisConsumer(redisClient, cfg.RedisKey), nil
	}
	return nil, fmt.Errorf("unknown queue driver %q", cfg.Driver)
}

func encode(job domain.ThumbnailJob) ([]byte, error) {
	return json.Marshal(job)
}

func decode(payload []byte) (domain.ThumbnailJob, error) {
	var job domain.ThumbnailJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return domain.ThumbnailJob{}, err
	}
	if job.FileId.IsZero() || job.UserId.IsZero() {
		return domain.ThumbnailJob{}, fmt.Errorf("job misses fileId or userId")
	}
	return job, nil
}

// handle runs handler for one raw message. Undecodable payloads are dropped.
// Errors are returned so consumers can log them with their transport position,
// the message is considered consumed either way.
func handle(ctx context.Context, log *slog.Logger, payload []byte, handler Handler) error {
	job, err := decode(payload)
	if err != nil {
		log.Error("dropping invalid job payload", "payload", string(payload), "error", err)
		return err
	}
	return handler(ctx, job)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
