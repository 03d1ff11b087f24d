package impl

import (
	"context"
	"log/slog"
	"time"

	"foodbridge/internal/domain/entity"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type sweepService struct {
	txManager    repository.TransactionManager
	donationRepo repository.DonationRepository
	notifier     usecase.NotifierUsecase
	logger       *slog.Logger
}

// NewSweepService creates the expiry sweep instance
func NewSweepService(
	txManager repository.TransactionManager,
	donationRepo repository.DonationRepository,
	notifier usecase.NotifierUsecase,
	logger *slog.Logger,
) usecase.SweepUsecase {
	return &sweepService{
		txManager:    txManager,
		donationRepo: donationRepo,
		notifier:     notifier,
		logger:       logger,
	}
}

// ExpireOverdueDonations expires open donations past their expiry time.
// The batched status flip and the counter deltas commit in one transaction.
// Every overdue listing sits in the active pool (pending and active share
// it), so the deltas reduce to active -= n, expired += n for the n rows the
// UPDATE actually flipped — rows reserved or cancelled between the read and
// the write are skipped by the UPDATE's own status predicate.
func (s *sweepService) ExpireOverdueDonations(ctx context.Context) (int, error) {
	now := time.Now()

	candidates, err := s.donationRepo.FindOpenDonationsExpiredBefore(ctx, now)
	if err != nil {
		return 0, errors.Wrap(err, "failed to find overdue donations")
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, donation := range candidates {
		ids = append(ids, donation.ID)
	}

	var flipped int64
	err = s.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		var txErr error
		flipped, txErr = factory.NewDonationRepository().BatchExpireDonations(ctx, ids, now)
		if txErr != nil {
			return txErr
		}
		if flipped == 0 {
			return nil
		}

		return factory.NewAggregateRepository().ApplyDeltas(ctx, []entity.CounterDelta{
			{Key: entity.CounterActiveDonations, Delta: -float64(flipped)},
			{Key: entity.CounterExpiredDonations, Delta: float64(flipped)},
		})
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to expire donations")
	}

	s.logger.Info("expiry sweep flipped donations",
		slog.Int("candidates", len(candidates)),
		slog.Int64("expired", flipped),
	)

	if flipped > 0 {
		if notifyErr := s.notifyDonors(ctx, candidates, int(flipped) < len(candidates)); notifyErr != nil {
			s.logger.Error("expiry notifications finished with failures", slog.Any("error", notifyErr))
		}
	}

	return int(flipped), nil
}

// notifyDonors tells each donor their listing expired. When the UPDATE
// skipped some candidates (a concurrent reservation or cancellation), each
// donation is re-read so only genuinely expired ones produce a notification.
func (s *sweepService) notifyDonors(ctx context.Context, candidates []*entity.Donation, recheck bool) error {
	var errs error

	for _, donation := range candidates {
		if recheck {
			current, err := s.donationRepo.FindDonationByID(ctx, donation.ID)
			if err != nil {
				errs = multierr.Append(errs, errors.Wrapf(err, "recheck donation %s", donation.ID))

				continue
			}
			if current.Status != entity.DonationExpired {
				continue
			}
		}

		if _, err := s.notifier.Notify(ctx, donation.DonorID, expiredMessage(donation)); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "notify donor %s", donation.DonorID))
		}
	}

	return errs
}
