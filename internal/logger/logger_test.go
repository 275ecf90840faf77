package logger

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batemapf/site-differ/internal/config"
)

func TestNew_DefaultConfig(t *testing.T) {
	cfg := config.NewDefaultLogConfig()
	log, err := New(cfg)
	require.NoError(t, err)
	log.Info().Msg("smoke")
}

func TestLogLevelParser_ParseLevel(t *testing.T) {
	parser := NewLogLevelParser()

	tests := []struct {
		input     string
		expected  zerolog.Level
		expectErr bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"Warn", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"bogus", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := parser.ParseLevel(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLogFormatParser_ParseFormat(t *testing.T) {
	parser := NewLogFormatParser()

	assert.Equal(t, FormatJSON, parser.ParseFormat("json"))
	assert.Equal(t, FormatConsole, parser.ParseFormat("console"))
	assert.Equal(t, FormatText, parser.ParseFormat("text"))
	assert.Equal(t, FormatConsole, parser.ParseFormat("unknown"))
	assert.Equal(t, FormatConsole, parser.ParseFormat(""))
}

func TestConfigConverter_ConvertConfig_Defaults(t *testing.T) {
	converter := NewConfigConverter()

	loggerConfig, err := converter.ConvertConfig(config.LogConfig{
		LogLevel:  "not-a-level",
		LogFormat: "json",
	})
	require.NoError(t, err)

	assert.Equal(t, zerolog.InfoLevel, loggerConfig.Level)
	assert.Equal(t, FormatJSON, loggerConfig.Format)
	assert.True(t, loggerConfig.EnableConsole)
	assert.False(t, loggerConfig.EnableFile)
	assert.Equal(t, 100, loggerConfig.MaxSizeMB)
	assert.Equal(t, 3, loggerConfig.MaxBackups)
}

func TestLoggerBuilder_Build_WithFileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "site-differ.log")

	log, err := New(config.LogConfig{
		LogFile:      logPath,
		LogFormat:    "json",
		LogLevel:     "debug",
		MaxLogSizeMB: 10,
	})
	require.NoError(t, err)

	log.Debug().Str("component", "test").Msg("file output smoke")
	assert.FileExists(t, logPath)
}

func TestLoggerBuilder_Build_RejectsInvalidMaxSize(t *testing.T) {
	builder := NewLoggerBuilder()
	builder.config.MaxSizeMB = 0

	_, err := builder.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_size_mb")
}
