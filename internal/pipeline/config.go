package pipeline

import (
	"fmt"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/voxbook/voxbook/internal/speech"
)

// Config holds every knob for one conversion run. It is resolved by the
// caller (CLI flags, config file, environment) and immutable afterwards.
type Config struct {
	// Format is the target audio container: vorbis, flac, mp3, or wav.
	Format string `yaml:"format" json:"format" env:"VOXBOOK_FORMAT" envDefault:"vorbis" validate:"oneof=vorbis flac mp3 wav"`

	// Quality is the normalized encoder quality, 0.0-1.0.
	Quality float64 `yaml:"quality" json:"quality" env:"VOXBOOK_QUALITY" envDefault:"0.7" validate:"gte=0,lte=1"`

	// VoiceSpeed multiplies the engine's baseline speaking rate.
	VoiceSpeed float64 `yaml:"voice_speed" json:"voice_speed" env:"VOXBOOK_VOICE_SPEED" envDefault:"1.0" validate:"gte=0.5,lte=2"`

	// VoicePitch multiplies the engine's baseline pitch.
	VoicePitch float64 `yaml:"voice_pitch" json:"voice_pitch" env:"VOXBOOK_VOICE_PITCH" envDefault:"1.0" validate:"gte=0.5,lte=2"`

	// SampleRate is the requested output sample rate in Hz.
	SampleRate int `yaml:"sample_rate" json:"sample_rate" env:"VOXBOOK_SAMPLE_RATE" envDefault:"22050" validate:"gt=0"`

	// Workers is the chapter worker pool size.
	Workers int `yaml:"workers" json:"workers" env:"VOXBOOK_WORKERS" validate:"gte=1"`

	// ChunkSize is the soft segment size limit in bytes.
	ChunkSize int `yaml:"chunk_size" json:"chunk_size" env:"VOXBOOK_CHUNK_SIZE" envDefault:"1000" validate:"gte=1"`

	// CacheEnabled toggles the content-addressed waveform cache.
	CacheEnabled bool `yaml:"cache_enabled" json:"cache_enabled" env:"VOXBOOK_CACHE_ENABLED" envDefault:"true"`

	// CacheDir is where cached waveforms live.
	CacheDir string `yaml:"cache_dir" json:"cache_dir" env:"VOXBOOK_CACHE_DIR" envDefault:"./tts_cache"`

	// AggressiveCleanup enables the semantic text rewrites (abbreviation
	// expansion, hyphenation repair).
	AggressiveCleanup bool `yaml:"aggressive_cleanup" json:"aggressive_cleanup" env:"VOXBOOK_AGGRESSIVE_CLEANUP" envDefault:"true"`
}

// DefaultConfig returns the defaults used when no configuration is given.
func DefaultConfig() Config {
	return Config{
		Format:            "vorbis",
		Quality:           0.7,
		VoiceSpeed:        1.0,
		VoicePitch:        1.0,
		SampleRate:        22050,
		Workers:           runtime.NumCPU(),
		ChunkSize:         1000,
		CacheEnabled:      true,
		CacheDir:          "./tts_cache",
		AggressiveCleanup: true,
	}
}

// LoadConfig builds a Config from defaults overridden by VOXBOOK_*
// environment variables, then validates it.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges and cross-field consistency.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// VoiceParams returns the speech parameters encoded in the config.
func (c Config) VoiceParams() speech.VoiceParameters {
	return speech.VoiceParameters{
		Speed:      c.VoiceSpeed,
		Pitch:      c.VoicePitch,
		SampleRate: c.SampleRate,
	}
}
