package natsadapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeStudyUpdates calls handler once per study-updated event. Failed
// handlers nak the message for redelivery, up to three deliveries. The
// subscription drains when ctx is cancelled.
func (s *Subscriber) SubscribeStudyUpdates(ctx context.Context, handler func(ctx context.Context, studyID string) error) error {
	sub, err := s.js.Subscribe(StudyUpdatedSubjects, func(msg *nats.Msg) {
		studyID := studyIDFromMsg(msg)
		if studyID == "" {
			slog.Warn("study update without id", "subject", msg.Subject)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, studyID); err != nil {
			slog.Warn("study update handler failed", "study_id", studyID, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("study-estimator"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", StudyUpdatedSubjects, err)
	}
	s.subs = append(s.subs, sub)

	go func() {
		<-ctx.Done()
		_ = sub.Drain()
	}()
	return nil
}

// studyIDFromMsg reads the study ID from the payload, falling back to the
// last subject token.
func studyIDFromMsg(msg *nats.Msg) string {
	if id := strings.TrimSpace(string(msg.Data)); id != "" {
		return id
	}
	return strings.TrimPrefix(msg.Subject, "demand.study.updated.")
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
