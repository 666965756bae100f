package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rollcall/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.SetDefault(original)
		zerolog.SetGlobalLevel(originalLevel)
	})

	buf := &bytes.Buffer{}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logging.SetDefault(zerolog.New(buf).Level(zerolog.DebugLevel))

	logging.Info().Msg("info message")
	logging.Warn().Msg("warning message")

	output := buf.String()
	if !strings.Contains(output, "info message") {
		t.Errorf("Expected info message in output, got: %s", output)
	}
	if !strings.Contains(output, "warning message") {
		t.Errorf("Expected warning message in output, got: %s", output)
	}
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithOperation(ctx, "build")
	ctx = logging.WithField(ctx, "entity", "Hana")

	logging.FromContext(ctx).Info().Msg("alias recorded")

	testLogger.AssertContains(t, `"operation":"build"`)
	testLogger.AssertContains(t, `"entity":"Hana"`)
	testLogger.AssertContains(t, "alias recorded")
	assert.Equal(t, 1, testLogger.Count())
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	//nolint:staticcheck // nil context is handled explicitly
	assert.Equal(t, logging.Default(), logging.FromContext(nil))
	assert.Equal(t, logging.Default(), logging.Ctx(context.Background()))
}

func TestWithFields(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithFields(ctx, map[string]any{
		"aliases": []string{"はな", "ハナ"},
		"count":   2,
	})

	logging.Ctx(ctx).Warn().Msg("merged")

	testLogger.AssertContains(t, `"aliases":["はな","ハナ"]`)
	testLogger.AssertContains(t, `"count":2`)
}

func TestNewLoggerFromConfig(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	tests := []struct {
		name    string
		config  *logging.Config
		emit    func(l zerolog.Logger)
		want    []string
		notWant []string
	}{
		{
			name:   "json at warn drops info",
			config: &logging.Config{Level: "warn", Format: "json"},
			emit: func(l zerolog.Logger) {
				l.Info().Msg("hidden")
				l.Warn().Msg("shown")
			},
			want:    []string{`"message":"shown"`},
			notWant: []string{"hidden"},
		},
		{
			name:   "default fields",
			config: &logging.Config{Level: "info", Format: "json", Fields: map[string]any{"app": "rollcall"}},
			emit:   func(l zerolog.Logger) { l.Info().Msg("hello") },
			want:   []string{`"app":"rollcall"`},
		},
		{
			name:   "console format",
			config: &logging.Config{Level: "info", Format: "console", NoColor: true},
			emit:   func(l zerolog.Logger) { l.Info().Str("key", "value").Msg("console test") },
			want:   []string{"console test", "key=value"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "log.txt")
			tt.config.Output = path

			tt.emit(logging.NewLoggerFromConfig(tt.config))

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, string(content), w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, string(content), nw)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddCaller)
}

func TestCaptureLoggingForTest(t *testing.T) {
	captured := logging.CaptureLoggingForTest(t)
	logging.Warn().Str("entity", "Rin").Msg("placeholder")
	logging.Warn().Msg("other")

	assert.Equal(t, 1, captured.CountContaining("Rin"))
	captured.AssertNotContains(t, "Mori")
}
