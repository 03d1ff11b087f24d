package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"foodbridge/internal/domain/entity"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/domain/service"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const (
	// Firebase batch size limit
	firebaseBatchSize = 500

	defaultFanOutWorkers = 8
)

type notifierService struct {
	notificationRepo repository.NotificationRepository
	deviceRepo       repository.DeviceRepository
	pushSvc          service.PushService
	logger           *slog.Logger
	workers          int
}

// NewNotifierService creates the notification dispatcher instance
func NewNotifierService(
	notificationRepo repository.NotificationRepository,
	deviceRepo repository.DeviceRepository,
	pushSvc service.PushService,
	logger *slog.Logger,
	workers int,
) usecase.NotifierUsecase {
	if workers <= 0 {
		workers = defaultFanOutWorkers
	}

	return &notifierService{
		notificationRepo: notificationRepo,
		deviceRepo:       deviceRepo,
		pushSvc:          pushSvc,
		logger:           logger,
		workers:          workers,
	}
}

// Notify delivers a message to one user. The in-app record is written first
// and is the only step that can fail the call; push delivery afterwards is
// best-effort.
func (s *notifierService) Notify(ctx context.Context, userID uuid.UUID, msg *usecase.Message) (*entity.NotificationRecord, error) {
	record := &entity.NotificationRecord{
		ID:              uuid.New(),
		UserID:          userID,
		Type:            msg.Type,
		Title:           msg.Title,
		Body:            msg.Body,
		DeepLink:        msg.DeepLink,
		SystemGenerated: true,
		CreatedAt:       time.Now(),
	}

	if err := s.notificationRepo.CreateNotification(ctx, record); err != nil {
		return nil, errors.Wrap(err, "failed to persist notification record")
	}

	s.pushToUser(ctx, userID, record, msg.Data)

	return record, nil
}

// NotifyMany fans a message out to many users with bounded concurrency.
func (s *notifierService) NotifyMany(ctx context.Context, userIDs []uuid.UUID, msg *usecase.Message) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	jobs := make(chan uuid.UUID)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		notified int
		errs     error
	)

	workers := min(s.workers, len(userIDs))
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for userID := range jobs {
				if _, err := s.Notify(ctx, userID, msg); err != nil {
					mu.Lock()
					errs = multierr.Append(errs, errors.Wrapf(err, "notify user %s", userID))
					mu.Unlock()

					continue
				}
				mu.Lock()
				notified++
				mu.Unlock()
			}
		}()
	}

	for _, userID := range userIDs {
		jobs <- userID
	}
	close(jobs)
	wg.Wait()

	return notified, errs
}

// PushExisting sends the push for an already persisted record.
func (s *notifierService) PushExisting(ctx context.Context, record *entity.NotificationRecord) error {
	s.pushToUser(ctx, record.UserID, record, nil)

	return nil
}

// pushToUser resolves the user's active device tokens, sends the multicast,
// and deactivates devices whose tokens the provider rejected.
func (s *notifierService) pushToUser(ctx context.Context, userID uuid.UUID, record *entity.NotificationRecord, extraData map[string]string) {
	devices, err := s.deviceRepo.FindActiveDevicesByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load devices for push",
			slog.String("user_id", userID.String()),
			slog.Any("error", err),
		)

		return
	}
	if len(devices) == 0 {
		return
	}

	tokens := make([]string, 0, len(devices))
	deviceMap := make(map[string]*entity.UserDevice, len(devices))
	for _, device := range devices {
		tokens = append(tokens, device.FCMToken)
		deviceMap[device.FCMToken] = device
	}

	data := map[string]string{
		"notification_id": record.ID.String(),
		"type":            string(record.Type),
	}
	if record.DeepLink != "" {
		data["deep_link"] = record.DeepLink
	}
	for k, v := range extraData {
		data[k] = v
	}

	var invalidTokens []string
	for i := 0; i < len(tokens); i += firebaseBatchSize {
		end := min(i+firebaseBatchSize, len(tokens))
		batch := tokens[i:end]

		_, _, batchInvalid, sendErr := s.pushSvc.SendBatch(ctx, batch, record.Title, record.Body, data)
		if sendErr != nil {
			s.logger.Warn("push batch failed",
				slog.String("notification_id", record.ID.String()),
				slog.Int("batch_size", len(batch)),
				slog.Any("error", sendErr),
			)

			continue
		}
		invalidTokens = append(invalidTokens, batchInvalid...)
	}

	for _, token := range invalidTokens {
		device, ok := deviceMap[token]
		if !ok {
			continue
		}
		if err := s.deviceRepo.DeactivateDevice(ctx, device.ID); err != nil {
			s.logger.Warn("failed to deactivate invalid device",
				slog.String("device_id", device.ID.String()),
				slog.Any("error", err),
			)
		}
	}
}
