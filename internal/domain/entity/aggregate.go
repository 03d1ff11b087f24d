// Package entity contains the core business objects of the project.
package entity

import (
	"time"
)

// Counter keys of the aggregate summary. The summary is a single logical
// counter store; every key is mutated only through atomic increments.
const (
	CounterTotalDonations     = "donations:total"
	CounterActiveDonations    = "donations:active"
	CounterReservedDonations  = "donations:reserved"
	CounterCompletedDonations = "donations:completed"
	CounterExpiredDonations   = "donations:expired"
	CounterCancelledDonations = "donations:cancelled"

	CounterDonors     = "users:donors"
	CounterRecipients = "users:recipients"

	CounterImpactMeals   = "impact:meals"
	CounterImpactWasteKg = "impact:waste_kg"
	CounterImpactCarbon  = "impact:carbon_kg"
)

// CategoryCounterKey returns the per-category bucket key for a donation category.
func CategoryCounterKey(category string) string {
	return "category:" + category
}

// MonthCounterKey returns the per-month trend bucket key for a timestamp.
func MonthCounterKey(t time.Time) string {
	return "month:" + t.UTC().Format("2006-01")
}

// CounterDelta is one atomic increment (or decrement) of a named counter.
type CounterDelta struct {
	Key   string
	Delta float64
}

// statusCounterKeys maps each donation status to its pool counter.
// Pending and active listings share the active pool.
var statusCounterKeys = map[DonationStatus]string{
	DonationPending:   CounterActiveDonations,
	DonationActive:    CounterActiveDonations,
	DonationReserved:  CounterReservedDonations,
	DonationCompleted: CounterCompletedDonations,
	DonationExpired:   CounterExpiredDonations,
	DonationCancelled: CounterCancelledDonations,
}

// DeltasForCreate builds the counter deltas for a newly created donation:
// the totals, the active pool, the category and month buckets, and the
// cumulative impact metrics.
func DeltasForCreate(donation *Donation) []CounterDelta {
	impact := ComputeImpact(donation.Quantity, donation.Category)

	return []CounterDelta{
		{Key: CounterTotalDonations, Delta: 1},
		{Key: CounterActiveDonations, Delta: 1},
		{Key: CategoryCounterKey(donation.Category), Delta: 1},
		{Key: MonthCounterKey(donation.CreatedAt), Delta: 1},
		{Key: CounterImpactMeals, Delta: impact.Meals},
		{Key: CounterImpactWasteKg, Delta: impact.WasteSavedKg},
		{Key: CounterImpactCarbon, Delta: impact.CarbonSaved},
	}
}

// DeltasForTransition builds the counter deltas for a status transition:
// the donation leaves the pool of its old status and joins the pool of the
// new one. Same-status updates and unmapped statuses produce no deltas.
func DeltasForTransition(from, to DonationStatus) []CounterDelta {
	if from == to {
		return nil
	}

	fromKey, okFrom := statusCounterKeys[from]
	toKey, okTo := statusCounterKeys[to]
	if !okFrom || !okTo {
		return nil
	}
	// pending -> active stays inside the active pool
	if fromKey == toKey {
		return nil
	}

	return []CounterDelta{
		{Key: fromKey, Delta: -1},
		{Key: toKey, Delta: 1},
	}
}

// DeltasForUserCreate builds the counter delta for a newly registered user.
func DeltasForUserCreate(role Role) []CounterDelta {
	switch role {
	case RoleDonor:
		return []CounterDelta{{Key: CounterDonors, Delta: 1}}
	case RoleRecipient:
		return []CounterDelta{{Key: CounterRecipients, Delta: 1}}
	default:
		return nil
	}
}
