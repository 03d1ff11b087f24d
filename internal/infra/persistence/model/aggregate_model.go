package model

import "time"

// AggregateCounterModel is the GORM-specific struct for the 'aggregate_counters' table.
// Each row is one named counter of the platform statistics document. Counters are
// mutated only through atomic upsert-increments so concurrent triggers never lose
// updates.
type AggregateCounterModel struct {
	Key       string  `gorm:"type:varchar(100);primary_key"`
	Value     float64 `gorm:"type:decimal(20,4);not null;default:0"`
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (AggregateCounterModel) TableName() string {
	return "aggregate_counters"
}
