// internal/event/nats.go
// Package event provides NATS JetStream publishing for gallery activity.
// Events are a convenience audit trail; they never gate or fail a request.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Publisher defines the event publishing operations used by the gallery service.
type Publisher interface {
	// PublishSessionOpened reports a successful login.
	PublishSessionOpened(ctx context.Context, correlationID string) error
	// PublishVideoRenamed reports a display-name change.
	PublishVideoRenamed(ctx context.Context, videoKey, displayName string) error
	// Close closes the publisher connection.
	Close() error
}

// noop is used when NATS is not configured or unreachable; the service
// runs fine without event streaming.
type noop struct{}

func (n *noop) Close() error                                              { return nil }
func (n *noop) PublishSessionOpened(ctx context.Context, _ string) error  { return nil }
func (n *noop) PublishVideoRenamed(ctx context.Context, _, _ string) error { return nil }

// NewNoop returns a publisher that discards everything. Exported for tests.
func NewNoop() Publisher { return &noop{} }

// natsPub is the NATS JetStream implementation of Publisher.
type natsPub struct {
	nc *nats.Conn
	js nats.JetStreamContext

	// Rename events for the same key are deduped within a short window
	// so a burst of edits does not flood the stream.
	renameDedup map[string]time.Time
	mutex       sync.Mutex
}

const (
	streamName  = "FV_GALLERY"
	dedupWindow = 2 * time.Minute
)

// NewPublisher connects to NATS at the given URL and prepares the gallery
// stream. An empty URL, a failed connection or a failed stream bootstrap
// all degrade to the no-op publisher with a warning.
func NewPublisher(url string) Publisher {
	if url == "" {
		return &noop{}
	}

	nc, err := nats.Connect(url)
	if err != nil {
		slog.Warn("NATS connect failed, using noop publisher", "error", err)
		return &noop{}
	}

	js, err := nc.JetStream()
	if err != nil {
		slog.Warn("NATS JetStream context creation failed, using noop publisher", "error", err)
		nc.Close()
		return &noop{}
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:      streamName,
		Subjects:  []string{"gallery.>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Discard:   nats.DiscardOld,
		Storage:   nats.FileStorage,
	})
	if err != nil {
		slog.Warn("NATS stream initialization failed, using noop publisher", "error", err)
		nc.Close()
		return &noop{}
	}

	return &natsPub{
		nc:          nc,
		js:          js,
		renameDedup: make(map[string]time.Time),
	}
}

// Envelope wraps every published event.
type Envelope struct {
	Type          string      `json:"type"`
	Version       string      `json:"version"`
	OccurredAt    time.Time   `json:"occurredAt"`
	CorrelationID string      `json:"correlationId"`
	Payload       interface{} `json:"payload"`
}

// Close closes the NATS connection.
func (p *natsPub) Close() error {
	if p.nc != nil {
		p.nc.Close()
	}
	return nil
}

// publish marshals and publishes one enveloped event.
func (p *natsPub) publish(subject string, envelope Envelope) error {
	b, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	if _, err := p.js.Publish(subject, b); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}

// PublishSessionOpened publishes a login event.
func (p *natsPub) PublishSessionOpened(ctx context.Context, correlationID string) error {
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	return p.publish("gallery.sessions.opened", Envelope{
		Type:          "gallery.sessions.opened",
		Version:       "1.0.0",
		OccurredAt:    time.Now().UTC(),
		CorrelationID: correlationID,
	})
}

// shouldDedupRename reports and records whether a rename for this key was
// published within the dedup window. Old entries are pruned on the way.
func (p *natsPub) shouldDedupRename(key string) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	now := time.Now()
	for k, t := range p.renameDedup {
		if now.Sub(t) > dedupWindow {
			delete(p.renameDedup, k)
		}
	}
	if t, exists := p.renameDedup[key]; exists && now.Sub(t) < dedupWindow {
		return true
	}
	p.renameDedup[key] = now
	return false
}

// PublishVideoRenamed publishes a rename event, deduped per video key.
func (p *natsPub) PublishVideoRenamed(ctx context.Context, videoKey, displayName string) error {
	if p.shouldDedupRename(videoKey) {
		return nil
	}
	return p.publish("gallery.videos.renamed", Envelope{
		Type:          "gallery.videos.renamed",
		Version:       "1.0.0",
		OccurredAt:    time.Now().UTC(),
		CorrelationID: uuid.New().String(),
		Payload: map[string]string{
			"videoKey":    videoKey,
			"displayName": displayName,
		},
	})
}
