package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"digestcast/internal/config"
	"digestcast/internal/logging"
	"digestcast/internal/media/audio"
	"digestcast/internal/notifications"
	"digestcast/internal/objectstore"
	"digestcast/internal/pipeline"
	"digestcast/internal/runlog"
	"digestcast/internal/source"
)

// openDependencies wires the production collaborators for a run. The
// returned cleanup closes the store and the ledger.
func openDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pipeline.Dependencies, func(), error) {
	store, closeStore, err := objectstore.Open(ctx, cfg)
	if err != nil {
		return pipeline.Dependencies{}, nil, fmt.Errorf("open object store: %w", err)
	}

	src, err := source.New(cfg.Source, time.Now)
	if err != nil {
		_ = closeStore()
		return pipeline.Dependencies{}, nil, err
	}

	deps := pipeline.Dependencies{
		Source: src,
		Codec: audio.FFmpeg{
			FFmpegBinary:  cfg.Audio.FFmpegBinary,
			FFprobeBinary: cfg.Audio.FFprobeBinary,
			Format:        audio.Format{SampleRate: cfg.Audio.SampleRate, Channels: cfg.Audio.Channels},
			Bitrate:       cfg.Audio.Bitrate,
		},
		Store:    store,
		Notifier: notifications.NewService(cfg),
	}

	ledger, err := runlog.Open(cfg.LedgerPath())
	if err != nil {
		// Runs proceed without a ledger.
		logging.WarnWithContext(logger, "run ledger unavailable", "ledger_open_failed",
			logging.Error(err),
			logging.String("path", cfg.LedgerPath()),
			logging.String(logging.FieldErrorHint, "remove the ledger file to recreate it"),
			logging.String(logging.FieldImpact, "this run will not appear in 'digestcast runs'"),
		)
	} else {
		deps.Ledger = ledger
	}

	cleanup := func() {
		if deps.Ledger != nil {
			if err := deps.Ledger.Close(); err != nil {
				logger.Warn("failed to close run ledger", logging.Error(err))
			}
		}
		if err := closeStore(); err != nil {
			logger.Warn("failed to close object store", logging.Error(err))
		}
	}
	return deps, cleanup, nil
}
