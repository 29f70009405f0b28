package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadFromViper reads the configuration from v, or the global viper when v
// is nil, and validates it.
func LoadFromViper(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.GetViper()
	}
	cfg := DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// SetDefaults registers every default with v so environment variables and
// flags can override keys that are absent from the config file.
func SetDefaults(v *viper.Viper) {
	if v == nil {
		v = viper.GetViper()
	}
	d := DefaultConfig()

	v.SetDefault("background.type", d.Background.Type)
	v.SetDefault("background.base_hz", d.Background.BaseHz)
	v.SetDefault("background.beat_hz", d.Background.BeatHz)
	v.SetDefault("background.gain_db", d.Background.GainDB)
	v.SetDefault("background.noise.layers", d.Background.Noise.Layers)
	v.SetDefault("background.noise.layer_gain_db", d.Background.Noise.LayerGainDB)
	v.SetDefault("background.noise.lowpass_hz", d.Background.Noise.LowPassHz)
	v.SetDefault("background.noise.seed", d.Background.Noise.Seed)

	v.SetDefault("cue.type", d.Cue.Type)
	v.SetDefault("cue.frequency_hz", d.Cue.FrequencyHz)
	v.SetDefault("cue.duration", d.Cue.Duration.String())
	v.SetDefault("cue.gain_db", d.Cue.GainDB)
	v.SetDefault("cue.gap", d.Cue.Gap.String())

	v.SetDefault("reminders.policy", d.Reminders.Policy)
	v.SetDefault("reminders.offset", d.Reminders.Offset.String())
	v.SetDefault("reminders.countdown_start", d.Reminders.CountdownStart.String())

	v.SetDefault("speech.command", d.Speech.Command)
	v.SetDefault("speech.language", d.Speech.Language)
	v.SetDefault("speech.tld", d.Speech.TLD)
	v.SetDefault("speech.slow", d.Speech.Slow)
	v.SetDefault("speech.timeout", d.Speech.Timeout.String())
	v.SetDefault("speech.requests_per_minute", d.Speech.RequestsPerMinute)
	v.SetDefault("speech.retries", d.Speech.Retries)
	v.SetDefault("speech.concurrency", d.Speech.Concurrency)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.memory_mb", d.Cache.MemoryMB)
	v.SetDefault("cache.disk_mb", d.Cache.DiskMB)
	v.SetDefault("cache.ttl", d.Cache.TTL.String())
	v.SetDefault("cache.compression_level", d.Cache.CompressionLevel)

	v.SetDefault("spelling.enabled", d.Spelling.Enabled)
	v.SetDefault("spelling.dictionary", d.Spelling.Dictionary)
	v.SetDefault("spelling.max_extra", d.Spelling.MaxExtra)

	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.bitrate", d.Output.Bitrate)
	v.SetDefault("output.ffmpeg", d.Output.FFmpeg)
}
