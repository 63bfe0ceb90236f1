package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipcam/shipcam/internal/config"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{name: "debug", level: "debug", wantDebug: true, wantInfo: true},
		{name: "info", level: "info", wantDebug: false, wantInfo: true},
		{name: "error", level: "error", wantDebug: false, wantInfo: false},
		{name: "unknown falls back to info", level: "loud", wantDebug: false, wantInfo: true},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(config.EnvLocal, tt.level)
			require.NotNil(t, l)
			assert.Equal(t, tt.wantDebug, l.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.wantInfo, l.Enabled(ctx, slog.LevelInfo))
		})
	}
}

func TestProdLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.EnvProd, "info")
	l.Info("record saved", "id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "record saved", entry["msg"])
	assert.EqualValues(t, 7, entry["id"])
}
