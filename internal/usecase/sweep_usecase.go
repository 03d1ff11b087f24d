package usecase

import "context"

// SweepUsecase expires overdue donations in bulk. It backs the scheduled
// sweep job and may also be invoked manually.
type SweepUsecase interface {
	// ExpireOverdueDonations finds open donations past their expiry time,
	// transitions them to expired together with the matching counter deltas
	// in one transaction, and notifies the affected donors afterwards. It
	// returns the number of donations expired.
	ExpireOverdueDonations(ctx context.Context) (int, error)
}
