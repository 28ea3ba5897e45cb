package main

import (
	"time"

	"bookrec/internal/config"
	"bookrec/internal/covers"
	"bookrec/internal/logging"
	"bookrec/internal/presenter"
)

// coverRenderer returns nil when covers are disabled so callers skip cover art entirely.
func coverRenderer(cfg *config.AppConfig, disabled bool) presenter.CoverRenderer {
	if !cfg.Covers.Enabled || disabled {
		return nil
	}
	f, err := covers.NewFetcher(covers.Options{
		Timeout:   time.Duration(cfg.Covers.TimeoutSecs) * time.Second,
		MaxBytes:  cfg.Covers.MaxBytes,
		CacheSize: cfg.Covers.CacheSize,
	})
	if err != nil {
		logging.Warn().Err(err).Msg("cover art disabled")
		return nil
	}
	return f
}
