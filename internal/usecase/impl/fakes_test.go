package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"foodbridge/internal/domain/entity"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/domain/service"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- repositories ---

type fakeDonationRepo struct {
	mu        sync.Mutex
	donations map[uuid.UUID]*entity.Donation

	findErr   error
	createErr error
	updateErr error

	overdue      []*entity.Donation
	batchErr     error
	batchFlipped *int64 // overrides the flipped count when set
	expiredIDs   []uuid.UUID
}

func newFakeDonationRepo() *fakeDonationRepo {
	return &fakeDonationRepo{donations: make(map[uuid.UUID]*entity.Donation)}
}

func (r *fakeDonationRepo) put(d *entity.Donation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.donations[d.ID] = d
}

func (r *fakeDonationRepo) CreateDonation(_ context.Context, donation *entity.Donation) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.put(donation)

	return nil
}

func (r *fakeDonationRepo) FindDonationByID(_ context.Context, id uuid.UUID) (*entity.Donation, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	donation, ok := r.donations[id]
	if !ok {
		return nil, repository.ErrDonationNotFound
	}
	copied := *donation

	return &copied, nil
}

func (r *fakeDonationRepo) UpdateDonationStatus(_ context.Context, id uuid.UUID, status entity.DonationStatus, recipientID *uuid.UUID, at time.Time) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	donation, ok := r.donations[id]
	if !ok {
		return repository.ErrDonationNotFound
	}
	donation.Status = status
	donation.UpdatedAt = at
	switch status {
	case entity.DonationReserved:
		donation.RecipientID = recipientID
		donation.ReservedAt = &at
	case entity.DonationCompleted:
		donation.CompletedAt = &at
	}

	return nil
}

func (r *fakeDonationRepo) FindOpenDonationsExpiredBefore(_ context.Context, _ time.Time) ([]*entity.Donation, error) {
	return r.overdue, nil
}

func (r *fakeDonationRepo) BatchExpireDonations(_ context.Context, ids []uuid.UUID, at time.Time) (int64, error) {
	if r.batchErr != nil {
		return 0, r.batchErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expiredIDs = ids

	var flipped int64
	for _, id := range ids {
		donation, ok := r.donations[id]
		if !ok || !donation.Status.IsOpen() {
			continue
		}
		donation.Status = entity.DonationExpired
		donation.UpdatedAt = at
		flipped++
	}
	if r.batchFlipped != nil {
		return *r.batchFlipped, nil
	}

	return flipped, nil
}

type fakeUserRepo struct {
	users     map[uuid.UUID]*entity.User
	roleIDs   map[entity.Role][]uuid.UUID
	createErr error
	findErr   error
	roleErr   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   make(map[uuid.UUID]*entity.User),
		roleIDs: make(map[entity.Role][]uuid.UUID),
	}
}

func (r *fakeUserRepo) put(u *entity.User) {
	r.users[u.ID] = u
	r.roleIDs[u.Role] = append(r.roleIDs[u.Role], u.ID)
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *entity.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.put(user)

	return nil
}

func (r *fakeUserRepo) FindUserByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return user, nil
}

func (r *fakeUserRepo) FindUserIDsByRole(_ context.Context, role entity.Role) ([]uuid.UUID, error) {
	if r.roleErr != nil {
		return nil, r.roleErr
	}

	return r.roleIDs[role], nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	records []*entity.NotificationRecord

	createErr error
	// createErrFor fails creation only for the given user
	createErrFor map[uuid.UUID]error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{createErrFor: make(map[uuid.UUID]error)}
}

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, record *entity.NotificationRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	if err, ok := r.createErrFor[record.UserID]; ok {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)

	return nil
}

func (r *fakeNotificationRepo) FindNotificationByID(_ context.Context, id uuid.UUID) (*entity.NotificationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.ID == id {
			return record, nil
		}
	}

	return nil, repository.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) FindNotificationsByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.NotificationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.NotificationRecord
	for _, record := range r.records {
		if record.UserID == userID {
			out = append(out, record)
		}
	}

	return out, nil
}

func (r *fakeNotificationRepo) MarkNotificationRead(_ context.Context, id uuid.UUID) error {
	record, err := r.FindNotificationByID(context.Background(), id)
	if err != nil {
		return err
	}
	record.Read = true

	return nil
}

func (r *fakeNotificationRepo) DeleteNotification(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, record := range r.records {
		if record.ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)

			return nil
		}
	}

	return repository.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) byUser(userID uuid.UUID) []*entity.NotificationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.NotificationRecord
	for _, record := range r.records {
		if record.UserID == userID {
			out = append(out, record)
		}
	}

	return out
}

type fakeDeviceRepo struct {
	mu          sync.Mutex
	devices     map[uuid.UUID][]*entity.UserDevice
	deactivated []uuid.UUID
	findErr     error
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{devices: make(map[uuid.UUID][]*entity.UserDevice)}
}

func (r *fakeDeviceRepo) put(d *entity.UserDevice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[d.UserID] = append(r.devices[d.UserID], d)
}

func (r *fakeDeviceRepo) CreateDevice(_ context.Context, device *entity.UserDevice) error {
	r.put(device)

	return nil
}

func (r *fakeDeviceRepo) FindDeviceByID(_ context.Context, id uuid.UUID) (*entity.UserDevice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, devices := range r.devices {
		for _, device := range devices {
			if device.ID == id {
				return device, nil
			}
		}
	}

	return nil, repository.ErrDeviceNotFound
}

func (r *fakeDeviceRepo) FindDevicesByUser(_ context.Context, userID uuid.UUID) ([]*entity.UserDevice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.devices[userID], nil
}

func (r *fakeDeviceRepo) FindActiveDevicesByUser(_ context.Context, userID uuid.UUID) ([]*entity.UserDevice, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.UserDevice
	for _, device := range r.devices[userID] {
		if device.IsActive {
			out = append(out, device)
		}
	}

	return out, nil
}

func (r *fakeDeviceRepo) FindActiveDevicesForUsers(ctx context.Context, userIDs []uuid.UUID) ([]*entity.UserDevice, error) {
	var out []*entity.UserDevice
	for _, userID := range userIDs {
		devices, err := r.FindActiveDevicesByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, devices...)
	}

	return out, nil
}

func (r *fakeDeviceRepo) UpdateFCMToken(_ context.Context, deviceID uuid.UUID, fcmToken string) error {
	device, err := r.FindDeviceByID(context.Background(), deviceID)
	if err != nil {
		return err
	}
	device.FCMToken = fcmToken

	return nil
}

func (r *fakeDeviceRepo) DeactivateDevice(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deactivated = append(r.deactivated, id)
	for _, devices := range r.devices {
		for _, device := range devices {
			if device.ID == id {
				device.IsActive = false

				return nil
			}
		}
	}

	return repository.ErrDeviceNotFound
}

type fakeAggregateRepo struct {
	mu       sync.Mutex
	counters map[string]float64
	applied  [][]entity.CounterDelta
	applyErr error
}

func newFakeAggregateRepo() *fakeAggregateRepo {
	return &fakeAggregateRepo{counters: make(map[string]float64)}
}

func (r *fakeAggregateRepo) ApplyDeltas(_ context.Context, deltas []entity.CounterDelta) error {
	if r.applyErr != nil {
		return r.applyErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, deltas)
	for _, delta := range deltas {
		value := r.counters[delta.Key] + delta.Delta
		if value < 0 {
			value = 0
		}
		r.counters[delta.Key] = value
	}

	return nil
}

func (r *fakeAggregateRepo) Snapshot(_ context.Context) (map[string]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]float64, len(r.counters))
	for k, v := range r.counters {
		out[k] = v
	}

	return out, nil
}

// --- transaction manager ---

type fakeTxFactory struct {
	donationRepo  repository.DonationRepository
	aggregateRepo repository.AggregateRepository
}

func (f *fakeTxFactory) NewDonationRepository() repository.DonationRepository {
	return f.donationRepo
}

func (f *fakeTxFactory) NewAggregateRepository() repository.AggregateRepository {
	return f.aggregateRepo
}

type fakeTxManager struct {
	factory    *fakeTxFactory
	executeErr error
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	if m.executeErr != nil {
		return m.executeErr
	}

	return fn(m.factory)
}

// --- services ---

type fakeDeduper struct {
	mu        sync.Mutex
	processed map[string]bool
	forgotten []string
	checkErr  error
}

func newFakeDeduper() *fakeDeduper {
	return &fakeDeduper{processed: make(map[string]bool)}
}

func (d *fakeDeduper) CheckAndMarkProcessed(_ context.Context, consumer, eventID string) (bool, error) {
	if d.checkErr != nil {
		return false, d.checkErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	key := consumer + ":" + eventID
	if d.processed[key] {
		return true, nil
	}
	d.processed[key] = true

	return false, nil
}

func (d *fakeDeduper) Forget(_ context.Context, consumer, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := consumer + ":" + eventID
	delete(d.processed, key)
	d.forgotten = append(d.forgotten, key)

	return nil
}

type fakePushService struct {
	mu            sync.Mutex
	batches       [][]string
	invalidTokens []string
	sendErr       error
}

func (s *fakePushService) SendBatch(_ context.Context, tokens []string, _, _ string, _ map[string]string) (int, int, []string, error) {
	if s.sendErr != nil {
		return 0, len(tokens), nil, s.sendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := make([]string, len(tokens))
	copy(batch, tokens)
	s.batches = append(s.batches, batch)

	var invalid []string
	for _, token := range tokens {
		for _, bad := range s.invalidTokens {
			if token == bad {
				invalid = append(invalid, token)
			}
		}
	}

	return len(tokens) - len(invalid), len(invalid), invalid, nil
}

func (s *fakePushService) SendSingle(ctx context.Context, token, title, body string, data map[string]string) error {
	_, _, _, err := s.SendBatch(ctx, []string{token}, title, body, data)

	return err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*service.Event
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, event *service.Event) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)

	return nil
}

func (p *fakePublisher) Close() error { return nil }

type notifyCall struct {
	userID uuid.UUID
	msg    *usecase.Message
}

type fakeNotifier struct {
	mu        sync.Mutex
	calls     []notifyCall
	pushed    []*entity.NotificationRecord
	notifyErr error
}

func (n *fakeNotifier) Notify(_ context.Context, userID uuid.UUID, msg *usecase.Message) (*entity.NotificationRecord, error) {
	if n.notifyErr != nil {
		return nil, n.notifyErr
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{userID: userID, msg: msg})

	return &entity.NotificationRecord{ID: uuid.New(), UserID: userID, Type: msg.Type}, nil
}

func (n *fakeNotifier) NotifyMany(ctx context.Context, userIDs []uuid.UUID, msg *usecase.Message) (int, error) {
	notified := 0
	for _, userID := range userIDs {
		if _, err := n.Notify(ctx, userID, msg); err == nil {
			notified++
		}
	}

	return notified, nil
}

func (n *fakeNotifier) PushExisting(_ context.Context, record *entity.NotificationRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pushed = append(n.pushed, record)

	return nil
}
