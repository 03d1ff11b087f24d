// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"foodbridge/internal/domain/entity"
	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// aggregateRepository implements the repository.AggregateRepository interface.
// Counters live in the aggregate_counters table, one row per name, and are
// only ever mutated with upsert-increments so the read-modify-write happens
// inside PostgreSQL rather than in application memory.
type aggregateRepository struct {
	db *gorm.DB
}

// NewAggregateRepository is the constructor for aggregateRepository.
func NewAggregateRepository(db *gorm.DB) repository.AggregateRepository {
	return &aggregateRepository{
		db: db,
	}
}

// ApplyDeltas atomically applies a set of counter increments. Each delta is
// an INSERT ... ON CONFLICT upsert whose update expression adds the delta to
// the stored value and clamps the result at zero, so a decrement arriving
// before its matching increment cannot drive a counter negative.
func (repo *aggregateRepository) ApplyDeltas(ctx context.Context, deltas []entity.CounterDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	now := time.Now().UTC()

	for _, delta := range deltas {
		if delta.Delta == 0 {
			continue
		}

		row := model.AggregateCounterModel{
			Key:       delta.Key,
			Value:     clampAtZero(delta.Delta),
			UpdatedAt: now,
		}

		err := repo.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "key"}},
				DoUpdates: clause.Assignments(map[string]any{
					"value":      gorm.Expr("GREATEST(aggregate_counters.value + ?, 0)", delta.Delta),
					"updated_at": now,
				}),
			}).
			Create(&row).Error
		if err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to apply counter delta "+delta.Key)
		}
	}

	return nil
}

// Snapshot returns the current value of every counter.
func (repo *aggregateRepository) Snapshot(ctx context.Context) (map[string]float64, error) {
	var rows []model.AggregateCounterModel

	if err := repo.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load counter snapshot")
	}

	snapshot := make(map[string]float64, len(rows))
	for _, row := range rows {
		snapshot[row.Key] = row.Value
	}

	return snapshot, nil
}

// clampAtZero keeps a freshly inserted counter non-negative when the first
// delta a counter ever sees is a decrement.
func clampAtZero(v float64) float64 {
	if v < 0 {
		return 0
	}

	return v
}
