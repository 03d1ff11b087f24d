package impl

import (
	"context"
	"testing"
	"time"

	"foodbridge/internal/domain/entity"
	"foodbridge/internal/domain/service"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type triggerFixture struct {
	donationRepo     *fakeDonationRepo
	userRepo         *fakeUserRepo
	notificationRepo *fakeNotificationRepo
	aggregateRepo    *fakeAggregateRepo
	deduper          *fakeDeduper
	notifier         *fakeNotifier
	svc              usecase.TriggerUsecase
}

func newTriggerFixture() *triggerFixture {
	donationRepo := newFakeDonationRepo()
	userRepo := newFakeUserRepo()
	notificationRepo := newFakeNotificationRepo()
	aggregateRepo := newFakeAggregateRepo()
	deduper := newFakeDeduper()
	notifier := &fakeNotifier{}

	txManager := &fakeTxManager{factory: &fakeTxFactory{
		donationRepo:  donationRepo,
		aggregateRepo: aggregateRepo,
	}}

	return &triggerFixture{
		donationRepo:     donationRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		aggregateRepo:    aggregateRepo,
		deduper:          deduper,
		notifier:         notifier,
		svc: NewTriggerService(
			txManager, donationRepo, userRepo, notificationRepo,
			deduper, notifier, discardLogger(),
		),
	}
}

func mustEvent(t *testing.T, eventType service.EventType, payload any) *service.Event {
	t.Helper()
	event, err := service.NewEvent(uuid.NewString(), eventType, "", payload)
	require.NoError(t, err)

	return event
}

func newTestDonation(status entity.DonationStatus) *entity.Donation {
	return &entity.Donation{
		ID:        uuid.New(),
		DonorID:   uuid.New(),
		Title:     "Bread",
		Category:  "bakery",
		Quantity:  4,
		Unit:      "kg",
		Status:    status,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedAt: time.Now(),
	}
}

func TestTriggerService_DuplicateEventIsAcknowledged(t *testing.T) {
	f := newTriggerFixture()
	donation := newTestDonation(entity.DonationPending)
	f.donationRepo.put(donation)

	event := mustEvent(t, service.EventDonationCreated, &service.DonationCreatedEvent{
		DonationID: donation.ID.String(),
	})

	require.NoError(t, f.svc.HandleEvent(context.Background(), event))
	require.NoError(t, f.svc.HandleEvent(context.Background(), event))

	// second delivery must not re-apply the deltas
	assert.Len(t, f.aggregateRepo.applied, 1)
}

func TestTriggerService_DonationCreatedAppliesDeltasAndFansOut(t *testing.T) {
	f := newTriggerFixture()
	donation := newTestDonation(entity.DonationPending)
	f.donationRepo.put(donation)

	recipientA := &entity.User{ID: uuid.New(), Role: entity.RoleRecipient}
	recipientB := &entity.User{ID: uuid.New(), Role: entity.RoleRecipient}
	f.userRepo.put(recipientA)
	f.userRepo.put(recipientB)
	f.userRepo.put(&entity.User{ID: donation.DonorID, Role: entity.RoleDonor})

	event := mustEvent(t, service.EventDonationCreated, &service.DonationCreatedEvent{
		DonationID: donation.ID.String(),
	})
	require.NoError(t, f.svc.HandleEvent(context.Background(), event))

	counters, err := f.aggregateRepo.Snapshot(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1, counters[entity.CounterTotalDonations], 0.001)
	assert.InDelta(t, 1, counters[entity.CounterActiveDonations], 0.001)
	assert.InDelta(t, 1, counters[entity.CategoryCounterKey("bakery")], 0.001)
	assert.InDelta(t, 1, counters[entity.MonthCounterKey(donation.CreatedAt)], 0.001)
	assert.Positive(t, counters[entity.CounterImpactMeals])
	assert.Positive(t, counters[entity.CounterImpactWasteKg])

	// only the recipients receive the new-donation fan-out
	assert.Len(t, f.notifier.calls, 2)
	for _, call := range f.notifier.calls {
		assert.Equal(t, entity.NotificationNewDonation, call.msg.Type)
		assert.NotEqual(t, donation.DonorID, call.userID)
	}
}

func TestTriggerService_DonationCreatedMissingDonationIsAcknowledged(t *testing.T) {
	f := newTriggerFixture()

	event := mustEvent(t, service.EventDonationCreated, &service.DonationCreatedEvent{
		DonationID: uuid.NewString(),
	})
	require.NoError(t, f.svc.HandleEvent(context.Background(), event))

	assert.Empty(t, f.aggregateRepo.applied)
	assert.Empty(t, f.deduper.forgotten)
}

func TestTriggerService_RetryableFailureReleasesMarker(t *testing.T) {
	f := newTriggerFixture()
	donation := newTestDonation(entity.DonationPending)
	f.donationRepo.put(donation)
	f.aggregateRepo.applyErr = assert.AnError

	event := mustEvent(t, service.EventDonationCreated, &service.DonationCreatedEvent{
		DonationID: donation.ID.String(),
	})
	err := f.svc.HandleEvent(context.Background(), event)

	require.Error(t, err)
	assert.True(t, usecase.IsRetryableError(err))
	assert.Len(t, f.deduper.forgotten, 1)

	// after the marker is released a redelivery processes the event
	f.aggregateRepo.applyErr = nil
	require.NoError(t, f.svc.HandleEvent(context.Background(), event))
	assert.Len(t, f.aggregateRepo.applied, 1)
}

func TestTriggerService_DonationUpdatedMovesPoolCounters(t *testing.T) {
	f := newTriggerFixture()
	donation := newTestDonation(entity.DonationReserved)
	recipientID := uuid.New()
	donation.RecipientID = &recipientID
	f.donationRepo.put(donation)

	event := mustEvent(t, service.EventDonationUpdated, &service.DonationUpdatedEvent{
		DonationID: donation.ID.String(),
		OldStatus:  string(entity.DonationActive),
		NewStatus:  string(entity.DonationReserved),
	})
	require.NoError(t, f.svc.HandleEvent(context.Background(), event))

	counters, err := f.aggregateRepo.Snapshot(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0, counters[entity.CounterActiveDonations], 0.001) // clamped at zero
	assert.InDelta(t, 1, counters[entity.CounterReservedDonations], 0.001)

	// the donor is told their listing was reserved
	require.Len(t, f.notifier.calls, 1)
	assert.Equal(t, donation.DonorID, f.notifier.calls[0].userID)
	assert.Equal(t, entity.NotificationDonationReserved, f.notifier.calls[0].msg.Type)
}

func TestTriggerService_DonationUpdatedSameStatusIsNoOp(t *testing.T) {
	f := newTriggerFixture()

	event := mustEvent(t, service.EventDonationUpdated, &service.DonationUpdatedEvent{
		DonationID: uuid.NewString(),
		OldStatus:  string(entity.DonationActive),
		NewStatus:  string(entity.DonationActive),
	})
	require.NoError(t, f.svc.HandleEvent(context.Background(), event))

	assert.Empty(t, f.aggregateRepo.applied)
	assert.Empty(t, f.notifier.calls)
}

func TestTriggerService_DonationCompletedNotifiesBothParties(t *testing.T) {
	f := newTriggerFixture()
	donation := newTestDonation(entity.DonationCompleted)
	recipientID := uuid.New()
	donation.RecipientID = &recipientID
	f.donationRepo.put(donation)

	event := mustEvent(t, service.EventDonationUpdated, &service.DonationUpdatedEvent{
		DonationID: donation.ID.String(),
		OldStatus:  string(entity.DonationReserved),
		NewStatus:  string(entity.DonationCompleted),
	})
	require.NoError(t, f.svc.HandleEvent(context.Background(), event))

	require.Len(t, f.notifier.calls, 2)
	notifiedUsers := []uuid.UUID{f.notifier.calls[0].userID, f.notifier.calls[1].userID}
	assert.Contains(t, notifiedUsers, donation.DonorID)
	assert.Contains(t, notifiedUsers, recipientID)
}

func TestTriggerService_UserCreatedBumpsRoleCounterAndWelcomes(t *testing.T) {
	f := newTriggerFixture()
	userID := uuid.New()

	event := mustEvent(t, service.EventUserCreated, &service.UserCreatedEvent{
		UserID: userID.String(),
		Role:   string(entity.RoleDonor),
	})
	require.NoError(t, f.svc.HandleEvent(context.Background(), event))

	counters, err := f.aggregateRepo.Snapshot(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1, counters[entity.CounterDonors], 0.001)

	require.Len(t, f.notifier.calls, 1)
	assert.Equal(t, userID, f.notifier.calls[0].userID)
	assert.Equal(t, entity.NotificationWelcome, f.notifier.calls[0].msg.Type)
}

func TestTriggerService_NotificationCreatedSkipsSystemGenerated(t *testing.T) {
	f := newTriggerFixture()
	record := &entity.NotificationRecord{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		Type:            entity.NotificationWelcome,
		SystemGenerated: true,
	}
	require.NoError(t, f.notificationRepo.CreateNotification(context.Background(), record))

	event := mustEvent(t, service.EventNotificationCreated, &service.NotificationCreatedEvent{
		NotificationID: record.ID.String(),
	})
	require.NoError(t, f.svc.HandleEvent(context.Background(), event))

	assert.Empty(t, f.notifier.pushed)
}

func TestTriggerService_NotificationCreatedPushesClientRecords(t *testing.T) {
	f := newTriggerFixture()
	record := &entity.NotificationRecord{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Type:   entity.NotificationMessage,
	}
	require.NoError(t, f.notificationRepo.CreateNotification(context.Background(), record))

	event := mustEvent(t, service.EventNotificationCreated, &service.NotificationCreatedEvent{
		NotificationID: record.ID.String(),
	})
	require.NoError(t, f.svc.HandleEvent(context.Background(), event))

	require.Len(t, f.notifier.pushed, 1)
	assert.Equal(t, record.ID, f.notifier.pushed[0].ID)
}

func TestTriggerService_UnknownEventTypeIsAcknowledged(t *testing.T) {
	f := newTriggerFixture()

	event := mustEvent(t, service.EventType("donation.archived"), map[string]string{})
	require.NoError(t, f.svc.HandleEvent(context.Background(), event))
}

func TestTriggerService_MalformedPayloadIsDropped(t *testing.T) {
	f := newTriggerFixture()

	event := mustEvent(t, service.EventDonationCreated, "not an object")
	require.NoError(t, f.svc.HandleEvent(context.Background(), event))
	assert.Empty(t, f.aggregateRepo.applied)
}
