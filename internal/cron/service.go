package cron

import (
	"context"
	"log/slog"
	"time"

	"foodbridge/internal/errors"
)

const defaultInterval = time.Hour

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *slog.Logger
	Registry *Registry
	Lock     Lock
	Interval time.Duration
}

// Service executes registered cron jobs on a fixed cadence. Each cycle is
// guarded by the lock, so overlapping deployments skip rather than double-run.
type Service struct {
	logger   *slog.Logger
	registry *Registry
	lock     Lock
	interval time.Duration
}

// NewService builds a cron service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.Lock == nil {
		return nil, errors.New("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Service{
		logger:   params.Logger,
		registry: registry,
		lock:     params.Lock,
		interval: interval,
	}, nil
}

// Run starts the cron loop until the context is canceled. The first cycle
// runs immediately so a fresh deployment does not wait a full interval
// before sweeping.
func (s *Service) Run(ctx context.Context) error {
	if err := s.runCycle(ctx); err != nil {
		s.logger.Error("scheduled run failed", slog.Any("error", err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("cron service context canceled")

			return ctx.Err()
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				s.logger.Error("scheduled run failed", slog.Any("error", err))
			}
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return errors.Wrap(err, "lock acquire")
	}
	if !locked {
		s.logger.Info("another cron instance is running, skipping this cycle")

		return nil
	}
	defer func() {
		if relErr := s.lock.Release(ctx); relErr != nil {
			s.logger.Error("failed to release cron lock", slog.Any("error", relErr))
		}
	}()

	s.logger.Info("scheduled run starting")
	for _, job := range s.registry.Jobs() {
		s.runJob(ctx, job)
	}
	s.logger.Info("scheduled run complete")

	return nil
}

func (s *Service) runJob(ctx context.Context, job Job) {
	logger := s.logger.With(slog.String("job", job.Name()))
	logger.Info("job start")

	start := time.Now()
	err := job.Run(ctx)
	duration := time.Since(start)

	logger = logger.With(slog.Duration("duration", duration))
	if err != nil {
		logger.Error("job failed", slog.Any("error", err))

		return
	}
	logger.Info("job completed")
}
