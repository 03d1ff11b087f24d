package impl

import (
	"context"
	"testing"
	"time"

	"foodbridge/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sweepFixture struct {
	donationRepo  *fakeDonationRepo
	aggregateRepo *fakeAggregateRepo
	notifier      *fakeNotifier
	svc           *sweepService
}

func newSweepFixture() *sweepFixture {
	donationRepo := newFakeDonationRepo()
	aggregateRepo := newFakeAggregateRepo()
	notifier := &fakeNotifier{}
	txManager := &fakeTxManager{factory: &fakeTxFactory{
		donationRepo:  donationRepo,
		aggregateRepo: aggregateRepo,
	}}

	svc := NewSweepService(txManager, donationRepo, notifier, discardLogger())

	return &sweepFixture{
		donationRepo:  donationRepo,
		aggregateRepo: aggregateRepo,
		notifier:      notifier,
		svc:           svc.(*sweepService),
	}
}

func newOverdueDonation(status entity.DonationStatus) *entity.Donation {
	donation := newTestDonation(status)
	donation.ExpiresAt = time.Now().Add(-time.Hour)

	return donation
}

func TestSweepService_NoCandidates(t *testing.T) {
	f := newSweepFixture()

	expired, err := f.svc.ExpireOverdueDonations(context.Background())

	require.NoError(t, err)
	assert.Zero(t, expired)
	assert.Empty(t, f.aggregateRepo.applied)
	assert.Empty(t, f.notifier.calls)
}

func TestSweepService_ExpiresOverdueAndNotifiesDonors(t *testing.T) {
	f := newSweepFixture()

	a := newOverdueDonation(entity.DonationPending)
	b := newOverdueDonation(entity.DonationActive)
	f.donationRepo.put(a)
	f.donationRepo.put(b)
	f.donationRepo.overdue = []*entity.Donation{a, b}

	expired, err := f.svc.ExpireOverdueDonations(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, expired)

	// pending and active share the open pool, so the deltas are uniform
	require.Len(t, f.aggregateRepo.applied, 1)
	assert.ElementsMatch(t, []entity.CounterDelta{
		{Key: entity.CounterActiveDonations, Delta: -2},
		{Key: entity.CounterExpiredDonations, Delta: 2},
	}, f.aggregateRepo.applied[0])

	require.Len(t, f.notifier.calls, 2)
	for _, call := range f.notifier.calls {
		assert.Equal(t, entity.NotificationDonationExpired, call.msg.Type)
	}

	stored, err := f.donationRepo.FindDonationByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DonationExpired, stored.Status)
}

func TestSweepService_SkipsConcurrentlyReservedDonations(t *testing.T) {
	f := newSweepFixture()

	expiring := newOverdueDonation(entity.DonationActive)
	raced := newOverdueDonation(entity.DonationReserved) // reserved between the read and the write
	f.donationRepo.put(expiring)
	f.donationRepo.put(raced)
	f.donationRepo.overdue = []*entity.Donation{expiring, raced}

	expired, err := f.svc.ExpireOverdueDonations(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	require.Len(t, f.aggregateRepo.applied, 1)
	assert.ElementsMatch(t, []entity.CounterDelta{
		{Key: entity.CounterActiveDonations, Delta: -1},
		{Key: entity.CounterExpiredDonations, Delta: 1},
	}, f.aggregateRepo.applied[0])

	// only the genuinely expired donor hears about it
	require.Len(t, f.notifier.calls, 1)
	assert.Equal(t, expiring.DonorID, f.notifier.calls[0].userID)
}

func TestSweepService_TransactionFailureReturnsError(t *testing.T) {
	f := newSweepFixture()

	donation := newOverdueDonation(entity.DonationActive)
	f.donationRepo.put(donation)
	f.donationRepo.overdue = []*entity.Donation{donation}
	f.donationRepo.batchErr = assert.AnError

	_, err := f.svc.ExpireOverdueDonations(context.Background())

	require.Error(t, err)
	assert.Empty(t, f.notifier.calls)
}

func TestSweepService_NotificationFailureDoesNotFailSweep(t *testing.T) {
	f := newSweepFixture()

	donation := newOverdueDonation(entity.DonationActive)
	f.donationRepo.put(donation)
	f.donationRepo.overdue = []*entity.Donation{donation}
	f.notifier.notifyErr = assert.AnError

	expired, err := f.svc.ExpireOverdueDonations(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, expired)
}
