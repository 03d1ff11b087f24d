package impl

import (
	"context"
	"testing"

	"foodbridge/internal/domain/entity"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDevice(userID uuid.UUID, token string, active bool) *entity.UserDevice {
	return &entity.UserDevice{
		ID:       uuid.New(),
		UserID:   userID,
		FCMToken: token,
		DeviceID: "device-" + token,
		Platform: "android",
		IsActive: active,
	}
}

func TestNotifierService_NotifyPersistsRecordAndPushes(t *testing.T) {
	notificationRepo := newFakeNotificationRepo()
	deviceRepo := newFakeDeviceRepo()
	pushSvc := &fakePushService{}
	svc := NewNotifierService(notificationRepo, deviceRepo, pushSvc, discardLogger(), 4)

	userID := uuid.New()
	deviceRepo.put(newTestDevice(userID, "token-1", true))
	deviceRepo.put(newTestDevice(userID, "token-2", true))
	deviceRepo.put(newTestDevice(userID, "token-stale", false))

	record, err := svc.Notify(context.Background(), userID, &usecase.Message{
		Type:  entity.NotificationNewDonation,
		Title: "New donation available",
		Body:  "Bread (4.0 kg of bakery) was just listed",
	})
	require.NoError(t, err)

	assert.True(t, record.SystemGenerated)
	assert.Equal(t, userID, record.UserID)
	require.Len(t, notificationRepo.byUser(userID), 1)

	// only active tokens receive the push
	require.Len(t, pushSvc.batches, 1)
	assert.ElementsMatch(t, []string{"token-1", "token-2"}, pushSvc.batches[0])
}

func TestNotifierService_NotifySurvivesPushFailure(t *testing.T) {
	notificationRepo := newFakeNotificationRepo()
	deviceRepo := newFakeDeviceRepo()
	pushSvc := &fakePushService{sendErr: assert.AnError}
	svc := NewNotifierService(notificationRepo, deviceRepo, pushSvc, discardLogger(), 4)

	userID := uuid.New()
	deviceRepo.put(newTestDevice(userID, "token-1", true))

	record, err := svc.Notify(context.Background(), userID, &usecase.Message{
		Type:  entity.NotificationWelcome,
		Title: "Welcome",
		Body:  "Hello",
	})

	// the in-app record is the source of truth; push failure is swallowed
	require.NoError(t, err)
	assert.NotNil(t, record)
	require.Len(t, notificationRepo.byUser(userID), 1)
}

func TestNotifierService_InvalidTokensDeactivateDevices(t *testing.T) {
	notificationRepo := newFakeNotificationRepo()
	deviceRepo := newFakeDeviceRepo()
	pushSvc := &fakePushService{invalidTokens: []string{"token-bad"}}
	svc := NewNotifierService(notificationRepo, deviceRepo, pushSvc, discardLogger(), 4)

	userID := uuid.New()
	good := newTestDevice(userID, "token-good", true)
	bad := newTestDevice(userID, "token-bad", true)
	deviceRepo.put(good)
	deviceRepo.put(bad)

	_, err := svc.Notify(context.Background(), userID, &usecase.Message{
		Type:  entity.NotificationWelcome,
		Title: "Welcome",
		Body:  "Hello",
	})
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{bad.ID}, deviceRepo.deactivated)
	assert.False(t, bad.IsActive)
	assert.True(t, good.IsActive)
}

func TestNotifierService_NotifyManyCountsSuccesses(t *testing.T) {
	notificationRepo := newFakeNotificationRepo()
	deviceRepo := newFakeDeviceRepo()
	pushSvc := &fakePushService{}
	svc := NewNotifierService(notificationRepo, deviceRepo, pushSvc, discardLogger(), 3)

	userIDs := make([]uuid.UUID, 0, 20)
	for range 20 {
		userIDs = append(userIDs, uuid.New())
	}
	failing := userIDs[7]
	notificationRepo.createErrFor[failing] = assert.AnError

	notified, err := svc.NotifyMany(context.Background(), userIDs, &usecase.Message{
		Type:  entity.NotificationNewDonation,
		Title: "New donation available",
		Body:  "Apples",
	})

	require.Error(t, err)
	assert.Equal(t, 19, notified)
	assert.Empty(t, notificationRepo.byUser(failing))
}

func TestNotifierService_NotifyManyEmptyAudience(t *testing.T) {
	svc := NewNotifierService(newFakeNotificationRepo(), newFakeDeviceRepo(), &fakePushService{}, discardLogger(), 0)

	notified, err := svc.NotifyMany(context.Background(), nil, &usecase.Message{Type: entity.NotificationWelcome})

	require.NoError(t, err)
	assert.Zero(t, notified)
}

func TestNotifierService_PushExistingDoesNotCreateRecord(t *testing.T) {
	notificationRepo := newFakeNotificationRepo()
	deviceRepo := newFakeDeviceRepo()
	pushSvc := &fakePushService{}
	svc := NewNotifierService(notificationRepo, deviceRepo, pushSvc, discardLogger(), 4)

	userID := uuid.New()
	deviceRepo.put(newTestDevice(userID, "token-1", true))

	record := &entity.NotificationRecord{
		ID:     uuid.New(),
		UserID: userID,
		Type:   entity.NotificationMessage,
		Title:  "Hi",
		Body:   "Message body",
	}
	require.NoError(t, svc.PushExisting(context.Background(), record))

	assert.Empty(t, notificationRepo.byUser(userID))
	require.Len(t, pushSvc.batches, 1)
	assert.Equal(t, []string{"token-1"}, pushSvc.batches[0])
}
