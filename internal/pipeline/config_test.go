package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "vorbis", cfg.Format)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.True(t, cfg.CacheEnabled)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown format", func(c *Config) { c.Format = "opus" }},
		{"quality above range", func(c *Config) { c.Quality = 1.5 }},
		{"quality below range", func(c *Config) { c.Quality = -0.1 }},
		{"speed too slow", func(c *Config) { c.VoiceSpeed = 0.1 }},
		{"pitch too high", func(c *Config) { c.VoicePitch = 3.0 }},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("VOXBOOK_FORMAT", "mp3")
	t.Setenv("VOXBOOK_QUALITY", "0.4")
	t.Setenv("VOXBOOK_WORKERS", "2")
	t.Setenv("VOXBOOK_CACHE_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "mp3", cfg.Format)
	assert.Equal(t, 0.4, cfg.Quality)
	assert.Equal(t, 2, cfg.Workers)
	assert.False(t, cfg.CacheEnabled)
}

func TestLoadConfigRejectsInvalidEnv(t *testing.T) {
	t.Setenv("VOXBOOK_FORMAT", "aac")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestVoiceParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VoiceSpeed = 1.5
	cfg.VoicePitch = 0.8
	cfg.SampleRate = 44100

	params := cfg.VoiceParams()
	assert.Equal(t, 1.5, params.Speed)
	assert.Equal(t, 0.8, params.Pitch)
	assert.Equal(t, 44100, params.SampleRate)
}
