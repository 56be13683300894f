// Package worker holds the background jobs run by cmd/worker: the activity forwarder from Kafka to
// Loki and the scheduled reaper of expired credentials.
package worker

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"employee-management/backend/internal/logs"
)

// pushTimeout bounds one Loki push.
const pushTimeout = 10 * time.Second

// MessageReader is implemented by *kafka.Reader.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Pusher is implemented by *loki.Client.
type Pusher interface {
	PushEventJSON(ctx context.Context, rawJSON []byte) error
}

// Forwarder copies activity events from a Kafka topic to Loki. A message is committed once its
// push has been attempted; a failed push is logged and dropped.
type Forwarder struct {
	reader MessageReader
	pusher Pusher
}

// NewForwarder returns a Forwarder.
func NewForwarder(reader MessageReader, pusher Pusher) *Forwarder {
	return &Forwarder{reader: reader, pusher: pusher}
}

// Run forwards messages until ctx is done. It returns nil on cancellation.
func (f *Forwarder) Run(ctx context.Context) error {
	log := logs.With("worker")
	for {
		msg, err := f.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.WithError(err).Warn("kafka read")
			continue
		}
		f.forward(ctx, msg)
		if err := f.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			log.WithError(err).WithField("offset", msg.Offset).Warn("kafka commit")
		}
	}
}

func (f *Forwarder) forward(ctx context.Context, msg kafka.Message) {
	pushCtx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()
	if err := f.pusher.PushEventJSON(pushCtx, msg.Value); err != nil {
		logs.With("worker").WithError(err).WithField("offset", msg.Offset).Warn("loki push failed")
	}
}
