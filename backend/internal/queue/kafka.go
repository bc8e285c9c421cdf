package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itchan-dev/filesmanager/shared/domain"
	"github.com/itchan-dev/filesmanager/shared/logger"
	kafkago "github.com/segmentio/kafka-go"
)

type KafkaProducer struct {
	writer *kafkago.Writer
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &KafkaProducer{writer: w}
}

func (p *KafkaProducer) Enqueue(ctx context.Context, job domain.ThumbnailJob) error {
	payload, err := encode(job)
	if err != nil {
		return err
	}
	msg := kafkago.Message{
		Key:   []byte(job.FileId.Hex()),
		Value: payload,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// KafkaConsumer commits a message only after its job was handled, so a
// crash mid-job leads to redelivery.
type KafkaConsumer struct {
	reader *kafkago.Reader
}

func NewKafkaConsumer(brokers []string, topic, groupId string) *KafkaConsumer {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupId,
	})
	return &KafkaConsumer{reader: r}
}

func (c *KafkaConsumer) Run(ctx context.Context, handler Handler) error {
	log := logger.For("kafka_consumer")
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			log.Error("kafka fetch", "error", err)
			sleep(ctx, retryDelay)
			continue
		}

		if err := handle(ctx, log, m.Value, handler); err != nil {
			log.Warn("job not completed, committing anyway",
				"partition", m.Partition, "offset", m.Offset, "error", err)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error("kafka commit", "offset", m.Offset, "error", err)
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
