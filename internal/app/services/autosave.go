package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Autosaver periodically flushes a dirty transcript on a cron schedule
type Autosaver struct {
	cron    *cron.Cron
	service TranscriptService
	timeout time.Duration
	logger  zerolog.Logger
}

// NewAutosaver registers the save job for schedule (standard cron spec or
// descriptors such as "@every 5m")
func NewAutosaver(service TranscriptService, schedule string, logger zerolog.Logger) (*Autosaver, error) {
	cl := cronLogger{logger: logger}
	a := &Autosaver{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
		service: service,
		timeout: 30 * time.Second,
		logger:  logger,
	}

	if _, err := a.cron.AddFunc(schedule, a.run); err != nil {
		return nil, fmt.Errorf("invalid autosave schedule %q: %w", schedule, err)
	}
	return a, nil
}

// Start begins running the schedule in the background
func (a *Autosaver) Start() {
	a.cron.Start()
	a.logger.Info().Msg("Autosave scheduler started")
}

// Stop halts the scheduler and waits for a running save to finish
func (a *Autosaver) Stop() {
	<-a.cron.Stop().Done()
	a.logger.Info().Msg("Autosave scheduler stopped")
}

func (a *Autosaver) run() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	saved, err := a.service.SaveIfDirty(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("Autosave failed")
		return
	}
	if saved {
		a.logger.Debug().Msg("Autosave wrote pending changes")
	}
}

// cronLogger routes scheduler messages through zerolog
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
