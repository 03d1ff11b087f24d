package cron

import (
	"context"
	"log/slog"

	"foodbridge/internal/errors"
	"foodbridge/internal/usecase"
)

// ExpiryJob runs the donation expiry sweep.
type ExpiryJob struct {
	sweep  usecase.SweepUsecase
	logger *slog.Logger
}

// NewExpiryJob builds the expiry sweep job.
func NewExpiryJob(sweep usecase.SweepUsecase, logger *slog.Logger) (*ExpiryJob, error) {
	if sweep == nil {
		return nil, errors.New("sweep usecase required")
	}

	return &ExpiryJob{sweep: sweep, logger: logger}, nil
}

// Name identifies the job in logs.
func (j *ExpiryJob) Name() string {
	return "donation-expiry-sweep"
}

// Run expires overdue donations.
func (j *ExpiryJob) Run(ctx context.Context) error {
	expired, err := j.sweep.ExpireOverdueDonations(ctx)
	if err != nil {
		return errors.Wrap(err, "expiry sweep failed")
	}

	if expired > 0 {
		j.logger.Info("expiry sweep expired donations", slog.Int("count", expired))
	}

	return nil
}
