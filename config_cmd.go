package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# Background under every task: binaural, noise or silence
background:
  type: "binaural"
  # left ear base_hz, right ear base_hz - beat_hz
  base_hz: 220
  beat_hz: 40
  gain_db: -10
  noise:
    layers: 3
    layer_gain_db: -12
    lowpass_hz: 800
    # 0 picks a new seed every run
    seed: 0

# Cue at the end of every task: tone or arpeggio
cue:
  type: "tone"
  frequency_hz: 440
  duration: "1s"
  gain_db: -15
  # silence after the cue
  gap: "5s"

# Spoken "N minutes left" reminders: every-minute, skip-final, every-other or none
reminders:
  policy: "every-minute"
  offset: "3s"
  countdown_start: "50s"

# gTTS settings (pip install gtts)
speech:
  command: "gtts-cli"
  language: "en"
  tld: "com"
  slow: false
  timeout: "30s"
  requests_per_minute: 50
  retries: 0
  concurrency: 4

# Speech clip cache
cache:
  enabled: true
  # dir: "~/.cache/focusbox/clips"
  memory_mb: 64
  disk_mb: 512
  ttl: "720h"
  compression_level: 3

# Spelling correction of task names against a word list, one word per line
spelling:
  enabled: false
  # dictionary: "/usr/share/dict/words"
  max_extra: 2

output:
  dir: "."
  # mp3, wav, flac or ogg; wav needs no ffmpeg
  format: "mp3"
  bitrate: 0
  ffmpeg: "ffmpeg"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the focusbox config file",
	Long:    paragraph(fmt.Sprintf("\n%s the focusbox config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("focusbox config\nfocusbox config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("focusbox", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
