package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/synaptica-ai/warehouse/pkg/common/logger"
	"github.com/synaptica-ai/warehouse/pkg/common/models"
)

const (
	handlerAttempts = 5
	retryBackoff    = time.Second
)

type Consumer struct {
	reader   *kafka.Reader
	attempts int
	backoff  time.Duration
}

type EventHandler func(ctx context.Context, event models.Event) error

func NewConsumer(brokers []string, topic string, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	return &Consumer{reader: reader, attempts: handlerAttempts, backoff: retryBackoff}
}

// DecodeEvent parses a message body into an Event.
func DecodeEvent(message kafka.Message) (models.Event, error) {
	var event models.Event
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return models.Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return event, nil
}

// Consume blocks until ctx is cancelled or the reader is closed. Commits are
// offset based, so a failing message is retried in place; once the attempts
// run out it is committed and skipped.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return err
			}
			logger.Log.WithError(err).Error("Failed to fetch message")
			if err := wait(ctx, c.backoff); err != nil {
				return err
			}
			continue
		}

		event, err := DecodeEvent(message)
		if err != nil {
			logger.Log.WithError(err).Error("Dropping undecodable event")
			_ = c.reader.CommitMessages(ctx, message)
			continue
		}

		if err := c.handle(ctx, handler, event); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Log.WithError(err).WithFields(map[string]interface{}{
				"event_id":   event.ID,
				"event_type": event.Type,
				"offset":     message.Offset,
			}).Error("Giving up on event")
		}

		if err := c.reader.CommitMessages(ctx, message); err != nil {
			logger.Log.WithError(err).Error("Failed to commit message")
		}
	}
}

// handle runs handler until it succeeds, the attempts are used up or ctx
// ends. The wait grows linearly with each attempt.
func (c *Consumer) handle(ctx context.Context, handler EventHandler, event models.Event) error {
	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err = handler(ctx, event); err == nil {
			return nil
		}
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"event_id": event.ID,
			"attempt":  attempt,
		}).Warn("Failed to process event")

		if attempt < c.attempts {
			if werr := wait(ctx, c.backoff*time.Duration(attempt)); werr != nil {
				return werr
			}
		}
	}
	return err
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
