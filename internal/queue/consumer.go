package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

type MessageHandler func(ctx context.Context, msg jetstream.Msg) error

type Consumer struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewConsumer(natsURL string) (*Consumer, error) {
	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Consumer{nc: nc, js: js}, nil
}

// consume runs a fetch loop over one stream, handing each message to
// handler and acking on success. New messages only; stale backlog is
// irrelevant to live broadcast.
func (c *Consumer) consume(ctx context.Context, streamName, subjectBase, consumerName string, handler MessageHandler) error {
	stream, err := c.js.Stream(ctx, streamName)
	if err != nil {
		return fmt.Errorf("get stream %s: %w", streamName, err)
	}

	cons, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          consumerName,
		Durable:       consumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       10 * time.Second,
		MaxDeliver:    3,
		FilterSubject: subjectBase + ".>",
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", consumerName, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			batch, err := cons.Fetch(10, jetstream.FetchMaxWait(5*time.Second))
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				time.Sleep(time.Second)
				continue
			}

			for msg := range batch.Messages() {
				if err := handler(ctx, msg); err != nil {
					slog.Error("process message error", "stream", streamName, "error", err)
					_ = msg.Nak()
				} else {
					_ = msg.Ack()
				}
			}
		}
	}()

	slog.Info("consumer started", "stream", streamName, "consumer", consumerName)
	return nil
}

// ConsumeAlerts delivers watchdog alerts (the API broadcasts them over WebSocket).
func (c *Consumer) ConsumeAlerts(ctx context.Context, consumerName string, handler MessageHandler) error {
	return c.consume(ctx, AlertsStreamName, AlertsSubjectBase, consumerName, handler)
}

// ConsumeImports delivers completed-import notices.
func (c *Consumer) ConsumeImports(ctx context.Context, consumerName string, handler MessageHandler) error {
	return c.consume(ctx, ImportsStreamName, ImportsSubjectBase, consumerName, handler)
}

func (c *Consumer) Close() {
	c.nc.Close()
}
