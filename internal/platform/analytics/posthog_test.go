package analytics

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosthogTracker_DisabledWithoutKey(t *testing.T) {
	tracker, err := NewPosthogTracker("", "https://example.invalid", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	assert.False(t, tracker.Enabled())
	assert.NotPanics(t, func() { tracker.Track("user-1", "gst_report_generated", nil) })
	assert.NoError(t, tracker.Close())

	var nilTracker *PosthogTracker
	assert.False(t, nilTracker.Enabled())
}
