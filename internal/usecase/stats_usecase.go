package usecase

import "context"

// StatsUsecase exposes the aggregated marketplace counters.
type StatsUsecase interface {
	// GetStats returns the current value of every counter, keyed by name.
	GetStats(ctx context.Context) (map[string]float64, error)
}
