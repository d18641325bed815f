package logger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestForEnvironment(t *testing.T) {
	dev := ForEnvironment("development")
	assert.Equal(t, "console", dev.Format)
	assert.Equal(t, "info", dev.Level)
	assert.Equal(t, "stdout", dev.Output)

	prod := ForEnvironment("production")
	assert.Equal(t, "json", prod.Format)
	assert.NotEmpty(t, prod.TimeFormat)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"development", ForEnvironment("development")},
		{"production", ForEnvironment("production")},
		{"stderr debug", &Config{Level: "debug", Format: "console", Output: "stderr"}},
		{"empty time format", &Config{Level: "warn", Format: "json", Output: "stdout"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.log")

	logger, err := New(&Config{Level: "info", Format: "json", Output: path, Service: "storefront-cart"})
	require.NoError(t, err)
	logger.Info("cart saved", zap.String("cart_key", "cart"))
	require.NoError(t, Sync(logger))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "cart saved", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "storefront-cart", entry["service"])
	assert.Equal(t, "cart", entry["cart_key"])
}

func TestNew_UnwritableOutput(t *testing.T) {
	_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "cart.log")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open log output")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}

func TestComponent(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	Component(base, "store", zap.String("cart_key", "cart")).Info("hello")

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "store", logs[0].LoggerName)
	assert.Equal(t, "cart", logs[0].ContextMap()["cart_key"])
}

// ============================================
// Context helpers
// ============================================

func TestFromContext(t *testing.T) {
	t.Run("returns stored logger", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		ctx := WithContext(context.Background(), zap.New(core))

		FromContext(ctx, nil).Info("stored")
		assert.Equal(t, 1, recorded.Len())
	})

	t.Run("falls back when nothing stored", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		FromContext(context.Background(), zap.New(core)).Info("fallback")
		assert.Equal(t, 1, recorded.Len())
	})

	t.Run("nil fallback is a no-op logger", func(t *testing.T) {
		l := FromContext(context.Background(), nil)
		require.NotNil(t, l)
		assert.NotPanics(t, func() { l.Info("dropped") })
	})
}

func TestWithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithRequestID(context.Background(), zap.New(core), "req-42")

	assert.Equal(t, "req-42", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))

	FromContext(ctx, nil).Info("tagged")
	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "req-42", recorded.All()[0].ContextMap()["request_id"])
}
