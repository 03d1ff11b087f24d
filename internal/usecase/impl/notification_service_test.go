package impl

import (
	"context"
	"testing"

	"foodbridge/internal/domain/entity"
	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/domain/service"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_CreateNotificationPublishesEvent(t *testing.T) {
	notificationRepo := newFakeNotificationRepo()
	publisher := &fakePublisher{}
	svc := NewNotificationService(notificationRepo, publisher, discardLogger())

	userID := uuid.New()
	record, err := svc.CreateNotification(context.Background(), &usecase.NotificationInput{
		UserID: userID,
		Type:   string(entity.NotificationMessage),
		Title:  "Hi",
		Body:   "A message for you",
	})
	require.NoError(t, err)

	// client-created records are pushed by the trigger, not inline
	assert.False(t, record.SystemGenerated)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, service.EventNotificationCreated, publisher.events[0].Type)
}

func TestNotificationService_MarkReadUnknownNotification(t *testing.T) {
	svc := NewNotificationService(newFakeNotificationRepo(), &fakePublisher{}, discardLogger())

	err := svc.MarkNotificationRead(context.Background(), uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotificationNotFound)
}

func TestNotificationService_MarkReadAndDelete(t *testing.T) {
	notificationRepo := newFakeNotificationRepo()
	svc := NewNotificationService(notificationRepo, &fakePublisher{}, discardLogger())

	record := &entity.NotificationRecord{ID: uuid.New(), UserID: uuid.New(), Type: entity.NotificationMessage}
	require.NoError(t, notificationRepo.CreateNotification(context.Background(), record))

	require.NoError(t, svc.MarkNotificationRead(context.Background(), record.ID))
	assert.True(t, record.Read)

	require.NoError(t, svc.DeleteNotification(context.Background(), record.ID))
	err := svc.DeleteNotification(context.Background(), record.ID)
	require.ErrorIs(t, err, domainerrors.ErrNotificationNotFound)
}

func TestStatsService_SnapshotPassthrough(t *testing.T) {
	aggregateRepo := newFakeAggregateRepo()
	require.NoError(t, aggregateRepo.ApplyDeltas(context.Background(), []entity.CounterDelta{
		{Key: entity.CounterTotalDonations, Delta: 5},
		{Key: entity.CounterImpactMeals, Delta: 12.5},
	}))

	svc := NewStatsService(aggregateRepo)
	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 5, stats[entity.CounterTotalDonations], 0.001)
	assert.InDelta(t, 12.5, stats[entity.CounterImpactMeals], 0.001)
}
