package ledgerbook

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	logger.Debug("hidden", "k", 1)
	logger.Info("Session loaded", "username", "asha")
	logger.Warn("Failed to save session", "error", "disk full")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, `msg="Session loaded" username=asha`)
	assert.Contains(t, out, `error="disk full"`)

	assert.NotNil(t, NewSlogLogger(nil))
}
