// Package config holds the render settings read from focusbox.yml, the
// environment and command line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/dgnsrekt/focusbox/internal/cache"
	"github.com/dgnsrekt/focusbox/internal/export"
	"github.com/dgnsrekt/focusbox/internal/speech"
	"github.com/dgnsrekt/focusbox/internal/synth"
	"github.com/dgnsrekt/focusbox/internal/timeline"
)

// Config contains every render option.
type Config struct {
	Background BackgroundConfig `mapstructure:"background" yaml:"background"`
	Cue        CueConfig        `mapstructure:"cue" yaml:"cue"`
	Reminders  RemindersConfig  `mapstructure:"reminders" yaml:"reminders"`
	Speech     SpeechConfig     `mapstructure:"speech" yaml:"speech"`
	Cache      CacheConfig      `mapstructure:"cache" yaml:"cache"`
	Spelling   SpellingConfig   `mapstructure:"spelling" yaml:"spelling"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
}

// BackgroundConfig selects the bed under every task.
type BackgroundConfig struct {
	// Type is binaural, noise or silence.
	Type   string  `mapstructure:"type" yaml:"type"`
	BaseHz float64 `mapstructure:"base_hz" yaml:"base_hz"`
	BeatHz float64 `mapstructure:"beat_hz" yaml:"beat_hz"`
	GainDB float64 `mapstructure:"gain_db" yaml:"gain_db"`

	Noise NoiseConfig `mapstructure:"noise" yaml:"noise"`
}

// NoiseConfig shapes the colored noise background.
type NoiseConfig struct {
	Layers      int     `mapstructure:"layers" yaml:"layers"`
	LayerGainDB float64 `mapstructure:"layer_gain_db" yaml:"layer_gain_db"`
	LowPassHz   float64 `mapstructure:"lowpass_hz" yaml:"lowpass_hz"`
	// Seed makes the noise reproducible. Zero picks a random seed.
	Seed uint64 `mapstructure:"seed" yaml:"seed"`
}

// CueConfig selects the end-of-task cue.
type CueConfig struct {
	// Type is tone or arpeggio.
	Type        string        `mapstructure:"type" yaml:"type"`
	FrequencyHz float64       `mapstructure:"frequency_hz" yaml:"frequency_hz"`
	Duration    time.Duration `mapstructure:"duration" yaml:"duration"`
	GainDB      float64       `mapstructure:"gain_db" yaml:"gain_db"`
	Gap         time.Duration `mapstructure:"gap" yaml:"gap"`
}

// RemindersConfig controls spoken reminders and the countdown.
type RemindersConfig struct {
	Policy         string        `mapstructure:"policy" yaml:"policy"`
	Offset         time.Duration `mapstructure:"offset" yaml:"offset"`
	CountdownStart time.Duration `mapstructure:"countdown_start" yaml:"countdown_start"`
}

// SpeechConfig configures the gTTS engine.
type SpeechConfig struct {
	Command           string        `mapstructure:"command" yaml:"command"`
	Language          string        `mapstructure:"language" yaml:"language"`
	TLD               string        `mapstructure:"tld" yaml:"tld"`
	Slow              bool          `mapstructure:"slow" yaml:"slow"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	Retries           int           `mapstructure:"retries" yaml:"retries"`
	Concurrency       int           `mapstructure:"concurrency" yaml:"concurrency"`
}

// CacheConfig sizes the speech clip cache.
type CacheConfig struct {
	Enabled          bool          `mapstructure:"enabled" yaml:"enabled"`
	Dir              string        `mapstructure:"dir" yaml:"dir"`
	MemoryMB         int           `mapstructure:"memory_mb" yaml:"memory_mb"`
	DiskMB           int           `mapstructure:"disk_mb" yaml:"disk_mb"`
	TTL              time.Duration `mapstructure:"ttl" yaml:"ttl"`
	CompressionLevel int           `mapstructure:"compression_level" yaml:"compression_level"`
}

// SpellingConfig enables dictionary spelling correction.
type SpellingConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Dictionary string `mapstructure:"dictionary" yaml:"dictionary"`
	MaxExtra   int    `mapstructure:"max_extra" yaml:"max_extra"`
}

// OutputConfig says where and how the track is written.
type OutputConfig struct {
	Dir     string `mapstructure:"dir" yaml:"dir"`
	Format  string `mapstructure:"format" yaml:"format"`
	Bitrate int    `mapstructure:"bitrate" yaml:"bitrate"`
	FFmpeg  string `mapstructure:"ffmpeg" yaml:"ffmpeg"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	bg := timeline.DefaultBackground()
	outro := timeline.DefaultOutro()
	timing := timeline.DefaultTiming()
	noise := synth.DefaultNoise()
	cc := cache.DefaultConfig()

	return Config{
		Background: BackgroundConfig{
			Type:   bg.Kind,
			BaseHz: bg.BaseHz,
			BeatHz: bg.BeatHz,
			GainDB: bg.GainDB,
			Noise: NoiseConfig{
				Layers:      noise.Layers,
				LayerGainDB: noise.LayerGainDB,
				LowPassHz:   noise.LowPassHz,
			},
		},
		Cue: CueConfig{
			Type:        outro.Kind,
			FrequencyHz: outro.FrequencyHz,
			Duration:    outro.Duration,
			GainDB:      outro.GainDB,
			Gap:         timing.OutroGap,
		},
		Reminders: RemindersConfig{
			Policy:         timeline.DefaultReminderPolicy.String(),
			Offset:         timing.ReminderOffset,
			CountdownStart: timing.CountdownStart,
		},
		Speech: SpeechConfig{
			Command:           "gtts-cli",
			Language:          speech.DefaultVoice.Language,
			TLD:               "com",
			Timeout:           30 * time.Second,
			RequestsPerMinute: 50,
			Retries:           0,
			Concurrency:       timeline.DefaultConcurrency,
		},
		Cache: CacheConfig{
			Enabled:          true,
			MemoryMB:         int(cc.MemoryCapacity >> 20),
			DiskMB:           int(cc.DiskCapacity >> 20),
			TTL:              cc.TTL,
			CompressionLevel: cc.CompressionLevel,
		},
		Spelling: SpellingConfig{
			MaxExtra: 2,
		},
		Output: OutputConfig{
			Dir:    ".",
			Format: string(export.DefaultFormat),
			FFmpeg: "ffmpeg",
		},
	}
}

// Validate checks the configuration and normalizes enum values.
func (c *Config) Validate() error {
	c.Background.Type = strings.ToLower(c.Background.Type)
	switch c.Background.Type {
	case timeline.BackgroundBinaural:
		if c.Background.BaseHz <= 0 {
			return fmt.Errorf("background base_hz must be positive, got %g", c.Background.BaseHz)
		}
	case timeline.BackgroundNoise:
		if c.Background.Noise.Layers < 0 || c.Background.Noise.Layers > 16 {
			return fmt.Errorf("background noise layers must be between 0 and 16, got %d", c.Background.Noise.Layers)
		}
		if c.Background.Noise.LowPassHz <= 0 || c.Background.Noise.LowPassHz >= synth.Nyquist {
			return fmt.Errorf("background noise lowpass_hz must be between 0 and %d Hz exclusive, got %g",
				synth.Nyquist, c.Background.Noise.LowPassHz)
		}
	case timeline.BackgroundSilence:
	default:
		return fmt.Errorf("invalid background type '%s': must be one of %v", c.Background.Type,
			[]string{timeline.BackgroundBinaural, timeline.BackgroundNoise, timeline.BackgroundSilence})
	}

	c.Cue.Type = strings.ToLower(c.Cue.Type)
	switch c.Cue.Type {
	case timeline.OutroTone:
		if c.Cue.FrequencyHz <= 0 {
			return fmt.Errorf("cue frequency_hz must be positive, got %g", c.Cue.FrequencyHz)
		}
		if c.Cue.Duration <= 0 {
			return fmt.Errorf("cue duration must be positive, got %s", c.Cue.Duration)
		}
	case timeline.OutroArpeggio:
	default:
		return fmt.Errorf("invalid cue type '%s': must be one of %v", c.Cue.Type,
			[]string{timeline.OutroTone, timeline.OutroArpeggio})
	}
	if c.Cue.Gap < 0 {
		return fmt.Errorf("cue gap must not be negative, got %s", c.Cue.Gap)
	}

	policy, err := timeline.ParseReminderPolicy(c.Reminders.Policy)
	if err != nil {
		return err
	}
	c.Reminders.Policy = policy.String()
	if c.Reminders.Offset < 0 || c.Reminders.Offset >= time.Minute {
		return fmt.Errorf("reminder offset must be within a minute, got %s", c.Reminders.Offset)
	}
	if c.Reminders.CountdownStart < 0 || c.Reminders.CountdownStart+10*time.Second > time.Minute {
		return fmt.Errorf("countdown_start must leave ten seconds in the minute, got %s", c.Reminders.CountdownStart)
	}

	if len(c.Speech.Language) < 2 || len(c.Speech.Language) > 5 {
		return fmt.Errorf("speech language code must be 2-5 characters, got %q", c.Speech.Language)
	}
	if c.Speech.Concurrency < 1 || c.Speech.Concurrency > 32 {
		return fmt.Errorf("speech concurrency must be between 1 and 32, got %d", c.Speech.Concurrency)
	}
	if c.Speech.Retries < 0 {
		return fmt.Errorf("speech retries must not be negative, got %d", c.Speech.Retries)
	}

	if c.Cache.MemoryMB < 0 || c.Cache.DiskMB < 0 {
		return fmt.Errorf("cache sizes must not be negative")
	}
	if c.Cache.CompressionLevel < 1 || c.Cache.CompressionLevel > 22 {
		return fmt.Errorf("cache compression_level must be between 1 and 22, got %d", c.Cache.CompressionLevel)
	}

	if c.Spelling.Enabled && c.Spelling.Dictionary == "" {
		return fmt.Errorf("spelling is enabled but no dictionary is set")
	}

	f, err := export.ParseFormat(c.Output.Format)
	if err != nil {
		return err
	}
	c.Output.Format = string(f)
	if c.Output.Bitrate < 0 {
		return fmt.Errorf("output bitrate must not be negative, got %d", c.Output.Bitrate)
	}
	return nil
}

// BackgroundSource converts the background section.
func (c Config) BackgroundSource() timeline.Background {
	return timeline.Background{
		Kind:   c.Background.Type,
		BaseHz: c.Background.BaseHz,
		BeatHz: c.Background.BeatHz,
		GainDB: c.Background.GainDB,
		Noise: synth.Noise{
			Layers:      c.Background.Noise.Layers,
			LayerGainDB: c.Background.Noise.LayerGainDB,
			LowPassHz:   c.Background.Noise.LowPassHz,
		},
	}
}

// Synthesizer returns the noise source, seeded when a seed is configured.
func (c Config) Synthesizer() *synth.Synthesizer {
	if c.Background.Noise.Seed != 0 {
		return synth.NewSeeded(c.Background.Noise.Seed)
	}
	return synth.NewRandom()
}

// OutroSource converts the cue section.
func (c Config) OutroSource() timeline.Outro {
	return timeline.Outro{
		Kind:        c.Cue.Type,
		FrequencyHz: c.Cue.FrequencyHz,
		Duration:    c.Cue.Duration,
		GainDB:      c.Cue.GainDB,
		Cue:         synth.DefaultArpeggio(),
	}
}

// Timing converts the reminder and cue sections.
func (c Config) Timing() timeline.Timing {
	t := timeline.DefaultTiming()
	t.ReminderOffset = c.Reminders.Offset
	t.CountdownStart = c.Reminders.CountdownStart
	t.OutroGap = c.Cue.Gap
	return t
}

// Policy returns the parsed reminder policy.
func (c Config) Policy() timeline.ReminderPolicy {
	p, err := timeline.ParseReminderPolicy(c.Reminders.Policy)
	if err != nil {
		return timeline.DefaultReminderPolicy
	}
	return p
}

// Voice returns the speech voice.
func (c Config) Voice() speech.Voice {
	return speech.Voice{Language: c.Speech.Language, TLD: c.Speech.TLD, Slow: c.Speech.Slow}
}

// GTTS returns the engine settings.
func (c Config) GTTS() speech.GTTSConfig {
	return speech.GTTSConfig{
		Command:           c.Speech.Command,
		Timeout:           c.Speech.Timeout,
		RequestsPerMinute: c.Speech.RequestsPerMinute,
	}
}

// CacheSettings converts the cache section.
func (c Config) CacheSettings() cache.Config {
	return cache.Config{
		MemoryCapacity:   int64(c.Cache.MemoryMB) << 20,
		DiskCapacity:     int64(c.Cache.DiskMB) << 20,
		Dir:              ExpandPath(c.Cache.Dir),
		CompressionLevel: c.Cache.CompressionLevel,
		TTL:              c.Cache.TTL,
	}
}

// ExportSettings converts the output section.
func (c Config) ExportSettings() export.Config {
	return export.Config{FFmpeg: c.Output.FFmpeg, Bitrate: c.Output.Bitrate}
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}
