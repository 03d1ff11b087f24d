package impl

import (
	"context"

	"foodbridge/internal/domain/repository"
	"foodbridge/internal/usecase"

	"github.com/pkg/errors"
)

type statsService struct {
	aggregateRepo repository.AggregateRepository
}

// NewStatsService creates the stats service instance
func NewStatsService(aggregateRepo repository.AggregateRepository) usecase.StatsUsecase {
	return &statsService{
		aggregateRepo: aggregateRepo,
	}
}

// GetStats returns the current value of every counter, keyed by name.
func (s *statsService) GetStats(ctx context.Context) (map[string]float64, error) {
	snapshot, err := s.aggregateRepo.Snapshot(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load stats snapshot")
	}

	return snapshot, nil
}
