package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dgnsrekt/focusbox/internal/cache"
	"github.com/dgnsrekt/focusbox/internal/config"
	"github.com/dgnsrekt/focusbox/internal/export"
	"github.com/dgnsrekt/focusbox/internal/speech"
	"github.com/dgnsrekt/focusbox/internal/tasks"
	"github.com/dgnsrekt/focusbox/internal/text"
	"github.com/dgnsrekt/focusbox/internal/timeline"
)

// retryBackoff is the first wait between speech retries.
const retryBackoff = 500 * time.Millisecond

// summary describes a finished render.
type summary struct {
	Path          string
	Format        export.Format
	Tasks         int
	Minutes       int
	Length        time.Duration
	Size          int64
	Announcements int
	Cache         *cache.ManagerStats
	Took          time.Duration
}

// session holds the collaborators of one render.
type session struct {
	assembler *timeline.Assembler
	exporter  *export.Exporter
	cache     *cache.Manager
}

func (s *session) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}

// newSession wires the speech stack, background and cue from cfg.
func newSession(cfg config.Config, logger *log.Logger) (*session, error) {
	s := &session{exporter: export.NewExporter(withLogger(cfg.ExportSettings(), logger))}

	gttsCfg := cfg.GTTS()
	gttsCfg.Logger = logger
	engine := speech.NewGTTSEngine(gttsCfg)
	if err := engine.Validate(); err != nil {
		return nil, err
	}
	var provider speech.Provider = engine
	if cfg.Speech.Retries > 0 {
		provider = speech.NewRetrying(provider, cfg.Speech.Retries+1, retryBackoff, logger)
	}
	if cfg.Cache.Enabled {
		mgr, err := cache.NewManager(cfg.CacheSettings(), logger)
		if err != nil {
			logger.Warn("speech cache unavailable, continuing without it", "err", err)
		} else {
			s.cache = mgr
			provider = speech.NewCached(provider, mgr, logger)
		}
	}

	normalizer, err := newNormalizer(cfg, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	background, err := cfg.BackgroundSource().Build(cfg.Synthesizer())
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("unable to build background: %w", err)
	}
	outro, err := cfg.OutroSource().Build()
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("unable to build cue: %w", err)
	}

	s.assembler, err = timeline.NewAssembler(provider, background, outro,
		timeline.WithNormalizer(normalizer),
		timeline.WithVoice(cfg.Voice()),
		timeline.WithPolicy(cfg.Policy()),
		timeline.WithTiming(cfg.Timing()),
		timeline.WithConcurrency(cfg.Speech.Concurrency),
		timeline.WithLogger(logger),
	)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func withLogger(c export.Config, logger *log.Logger) export.Config {
	c.Logger = logger
	return c
}

func newNormalizer(cfg config.Config, logger *log.Logger) (*text.Normalizer, error) {
	opts := []text.Option{text.WithLogger(logger)}
	if cfg.Spelling.Enabled {
		dict, err := text.LoadDictionaryFile(config.ExpandPath(cfg.Spelling.Dictionary))
		if err != nil {
			return nil, fmt.Errorf("unable to load spelling dictionary: %w", err)
		}
		dict.MaxExtra = cfg.Spelling.MaxExtra
		logger.Debug("spelling correction enabled", "words", dict.Len())
		opts = append(opts, text.WithCorrector(dict))
	}
	return text.NewNormalizer(opts...), nil
}

// outputFor resolves the destination path and format. An explicit path
// wins; otherwise the file is named after the current time.
func outputFor(cfg config.Config, path string, now time.Time) (string, export.Format, error) {
	if path != "" {
		f, err := export.FormatFor(path)
		if err != nil {
			return "", "", err
		}
		return config.ExpandPath(path), f, nil
	}
	f, err := export.ParseFormat(cfg.Output.Format)
	if err != nil {
		return "", "", err
	}
	return filepath.Join(config.ExpandPath(cfg.Output.Dir), export.DefaultFilename(now, f)), f, nil
}

// render loads the task list, composes the track and writes it. No file is
// written unless every announcement was synthesized.
func render(ctx context.Context, cfg config.Config, tasksPath, out string) (*summary, error) {
	start := time.Now()
	logger := log.With("run", uuid.NewString()[:8])

	list, err := tasks.Load(tasksPath)
	if err != nil {
		return nil, err
	}
	path, format, err := outputFor(cfg, out, start)
	if err != nil {
		return nil, err
	}

	s, err := newSession(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer s.Close() //nolint:errcheck

	if err := s.exporter.Validate(format); err != nil {
		return nil, err
	}

	logger.Info("rendering", "tasks", len(list), "minutes", tasks.TotalMinutes(list), "output", path)
	res, err := s.assembler.Compose(ctx, list)
	if err != nil {
		return nil, err
	}
	if err := s.exporter.Export(ctx, res.Track, path, format); err != nil {
		return nil, err
	}

	sum := &summary{
		Path:          path,
		Format:        format,
		Tasks:         len(list),
		Minutes:       tasks.TotalMinutes(list),
		Length:        res.Track.Duration(),
		Announcements: len(res.Placements),
		Took:          time.Since(start),
	}
	if info, err := os.Stat(path); err == nil {
		sum.Size = info.Size()
	}
	if s.cache != nil {
		stats := s.cache.Stats()
		sum.Cache = &stats
	}
	return sum, nil
}
