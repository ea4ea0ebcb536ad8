// Package analytics sends product usage events to PostHog.
package analytics

import (
	"log/slog"

	"github.com/posthog/posthog-go"
)

// Tracker records a usage event for a user.
type Tracker interface {
	Track(userID, event string, properties map[string]any)
}

// Nop discards events.
type Nop struct{}

func (Nop) Track(string, string, map[string]any) {}

// PosthogTracker wraps a posthog.Client and tolerates running without an API key.
type PosthogTracker struct {
	client posthog.Client
	logger *slog.Logger
}

var _ Tracker = (*PosthogTracker)(nil)

// NewPosthogTracker returns a tracker that drops events when apiKey is empty.
func NewPosthogTracker(apiKey, endpoint string, logger *slog.Logger) (*PosthogTracker, error) {
	if apiKey == "" {
		logger.Warn("Posthog API key is empty, usage events are disabled.")
		return &PosthogTracker{logger: logger}, nil
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		return nil, err
	}
	logger.Info("Posthog client initialized", slog.String("endpoint", endpoint))
	return &PosthogTracker{client: client, logger: logger}, nil
}

// Enabled reports whether events are sent anywhere.
func (t *PosthogTracker) Enabled() bool {
	return t != nil && t.client != nil
}

// Track enqueues an event; delivery happens in the client's background batcher.
func (t *PosthogTracker) Track(userID, event string, properties map[string]any) {
	if !t.Enabled() {
		return
	}
	err := t.client.Enqueue(posthog.Capture{
		DistinctId: userID,
		Event:      event,
		Properties: posthog.Properties(properties),
	})
	if err != nil && t.logger != nil {
		t.logger.Warn("Failed to enqueue usage event", slog.String("event", event), slog.String("error", err.Error()))
	}
}

// Close flushes pending events.
func (t *PosthogTracker) Close() error {
	if !t.Enabled() {
		return nil
	}
	return t.client.Close()
}
