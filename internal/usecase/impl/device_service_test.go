package impl

import (
	"context"
	"testing"

	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceService_RegisterNewDevice(t *testing.T) {
	deviceRepo := newFakeDeviceRepo()
	svc := NewDeviceService(deviceRepo)
	userID := uuid.New()

	device, err := svc.RegisterDevice(context.Background(), userID, &usecase.DeviceInfo{
		FCMToken: "token-1",
		DeviceID: "phone-1",
		Platform: "ios",
	})
	require.NoError(t, err)

	assert.Equal(t, userID, device.UserID)
	assert.True(t, device.IsActive)
	assert.Equal(t, "token-1", device.FCMToken)
}

func TestDeviceService_ReRegisterRotatesToken(t *testing.T) {
	deviceRepo := newFakeDeviceRepo()
	svc := NewDeviceService(deviceRepo)
	userID := uuid.New()

	first, err := svc.RegisterDevice(context.Background(), userID, &usecase.DeviceInfo{
		FCMToken: "token-old",
		DeviceID: "phone-1",
		Platform: "ios",
	})
	require.NoError(t, err)

	second, err := svc.RegisterDevice(context.Background(), userID, &usecase.DeviceInfo{
		FCMToken: "token-new",
		DeviceID: "phone-1",
		Platform: "ios",
	})
	require.NoError(t, err)

	// same row, rotated token
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "token-new", second.FCMToken)

	devices, err := deviceRepo.FindDevicesByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, devices, 1)
}

func TestDeviceService_UpdateTokenRequiresOwnership(t *testing.T) {
	deviceRepo := newFakeDeviceRepo()
	svc := NewDeviceService(deviceRepo)
	owner := uuid.New()

	device := newTestDevice(owner, "token-1", true)
	deviceRepo.put(device)

	err := svc.UpdateFCMToken(context.Background(), uuid.New(), device.ID, "token-2")
	require.ErrorIs(t, err, domainerrors.ErrForbidden)

	require.NoError(t, svc.UpdateFCMToken(context.Background(), owner, device.ID, "token-2"))
	assert.Equal(t, "token-2", device.FCMToken)
}

func TestDeviceService_DeactivateUnknownDevice(t *testing.T) {
	svc := NewDeviceService(newFakeDeviceRepo())

	err := svc.DeactivateDevice(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrDeviceNotFound)
}

func TestDeviceService_DeactivateDevice(t *testing.T) {
	deviceRepo := newFakeDeviceRepo()
	svc := NewDeviceService(deviceRepo)
	owner := uuid.New()

	device := newTestDevice(owner, "token-1", true)
	deviceRepo.put(device)

	require.NoError(t, svc.DeactivateDevice(context.Background(), owner, device.ID))
	assert.False(t, device.IsActive)

	active, err := svc.GetUserDevices(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, active)
}
