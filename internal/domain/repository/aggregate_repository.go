// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"foodbridge/internal/domain/entity"
)

// AggregateRepository is the single logical counter store behind the
// marketplace analytics summary. The store is shared mutable state with no
// single owner, so every mutation goes through ApplyDeltas, which the
// implementation must express as atomic increments — never as a local
// read-modify-write, which would lose updates under concurrent handlers.
type AggregateRepository interface {
	// ApplyDeltas atomically applies a set of counter increments. Counters
	// are clamped at zero; a failed application leaves every counter
	// unchanged.
	ApplyDeltas(ctx context.Context, deltas []entity.CounterDelta) error

	// Snapshot returns the current value of every counter.
	Snapshot(ctx context.Context) (map[string]float64, error)
}
