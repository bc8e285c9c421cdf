package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itchan-dev/filesmanager/shared/domain"
	"github.com/itchan-dev/filesmanager/shared/logger"
	goredis "github.com/redis/go-redis/v9"
)

// Jobs are pushed on the left and popped from the right of a redis list.
type RedisProducer struct {
	client *goredis.Client
	key    string
}

func NewRedisProducer(client *goredis.Client, key string) *RedisProducer {
	return &RedisProducer{client: client, key: key}
}

func (p *RedisProducer) Enqueue(ctx context.Context, job domain.ThumbnailJob) error {
	payload, err := encode(job)
	if err != nil {
		return err
	}
	if err := p.client.LPush(ctx, p.key, payload).Err(); err != nil {
		return fmt.Errorf("redis lpush: %w", err)
	}
	return nil
}

func (p *RedisProducer) Close() error {
	return nil
}

// RedisConsumer removes a job from the list before handling it.
type RedisConsumer struct {
	client      *goredis.Client
	key         string
	pollTimeout time.Duration
}

func NewRedisConsumer(client *goredis.Client, key string) *RedisConsumer {
	return &RedisConsumer{client: client, key: key, pollTimeout: 5 * time.Second}
}

func (c *RedisConsumer) Run(ctx context.Context, handler Handler) error {
	log := logger.For("redis_consumer")
	for {
		res, err := c.client.BRPop(ctx, c.pollTimeout, c.key).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, goredis.Nil) {
				continue
			}
			log.Error("redis brpop", "error", err)
			sleep(ctx, retryDelay)
			continue
		}
		// res holds the key followed by the value
		if len(res) != 2 {
			continue
		}
		if err := handle(ctx, log, []byte(res[1]), handler); err != nil {
			log.Warn("job not completed, already popped", "key", c.key, "error", err)
		}
	}
}

// Close is a no-op, the client is owned by whoever created it.
func (c *RedisConsumer) Close() error {
	return nil
}
