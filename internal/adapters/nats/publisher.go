package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/gymdemand/internal/core/domain"
)

// Subjects carried by the demand streams.
const (
	EstimateSubjects     = "demand.estimate.>"
	StudyUpdatedSubjects = "demand.study.updated.>"
)

// EstimateSubject is the subject an estimate of studyID is published on.
func EstimateSubject(studyID string) string {
	return "demand.estimate." + studyID
}

// StudyUpdatedSubject is the subject announcing a change to studyID.
func StudyUpdatedSubject(studyID string) string {
	return "demand.study.updated." + studyID
}

// Streams returns the JetStream streams the publisher ensures at start-up.
func Streams() []nats.StreamConfig {
	return []nats.StreamConfig{
		{
			Name:      "DEMAND_ESTIMATES",
			Subjects:  []string{EstimateSubjects},
			Retention: nats.LimitsPolicy,
			MaxAge:    7 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "DEMAND_STUDIES",
			Subjects:  []string{StudyUpdatedSubjects},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	for _, cfg := range Streams() {
		if _, err := js.AddStream(&cfg); err != nil {
			// already exists: update in place
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishEstimate publishes a stored estimate as JSON.
func (p *Publisher) PublishEstimate(ctx context.Context, est *domain.DemandEstimate) error {
	data, err := json.Marshal(est)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(EstimateSubject(est.StudyID), data, nats.Context(ctx))
	return err
}

// PublishStudyUpdated announces that the sites of a study changed. The
// payload is the study ID.
func (p *Publisher) PublishStudyUpdated(ctx context.Context, studyID string) error {
	_, err := p.js.Publish(StudyUpdatedSubject(studyID), []byte(studyID), nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection for readiness checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
