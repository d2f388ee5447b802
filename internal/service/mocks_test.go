package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/resultshub/chat-server-go/internal/model"
)

type mockBanRepo struct {
	mock.Mock
}

func (m *mockBanRepo) Upsert(ctx context.Context, params model.CreateBanParams) (*model.BanRecord, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BanRecord), args.Error(1)
}

func (m *mockBanRepo) FindByDeviceID(ctx context.Context, deviceID string) (*model.BanRecord, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BanRecord), args.Error(1)
}

func (m *mockBanRepo) Exists(ctx context.Context, deviceID string) (bool, error) {
	args := m.Called(ctx, deviceID)
	return args.Bool(0), args.Error(1)
}

func (m *mockBanRepo) List(ctx context.Context) ([]model.BanRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.BanRecord), args.Error(1)
}

func (m *mockBanRepo) Delete(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}

type mockReportRepo struct {
	mock.Mock
}

func (m *mockReportRepo) Create(ctx context.Context, params model.CreateReportParams) (*model.MessageReport, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MessageReport), args.Error(1)
}

func (m *mockReportRepo) FindByID(ctx context.Context, id string) (*model.MessageReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MessageReport), args.Error(1)
}

func (m *mockReportRepo) ListNewest(ctx context.Context, limit int) ([]model.MessageReport, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]model.MessageReport), args.Error(1)
}

func (m *mockReportRepo) UpdateStatus(ctx context.Context, id string, status model.ReportStatus, reviewedAt time.Time) (int64, error) {
	args := m.Called(ctx, id, status, reviewedAt)
	return args.Get(0).(int64), args.Error(1)
}

type mockPresenceRepo struct {
	mock.Mock
}

func (m *mockPresenceRepo) Upsert(ctx context.Context, params model.HeartbeatParams) (*model.SessionPresence, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SessionPresence), args.Error(1)
}

func (m *mockPresenceRepo) FindByID(ctx context.Context, sessionID string) (*model.SessionPresence, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SessionPresence), args.Error(1)
}

func (m *mockPresenceRepo) ListActive(ctx context.Context) ([]model.SessionPresence, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.SessionPresence), args.Error(1)
}

func (m *mockPresenceRepo) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *mockPresenceRepo) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPresenceRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockDeliveryLogRepo struct {
	mock.Mock
}

func (m *mockDeliveryLogRepo) Append(ctx context.Context, params model.CreateDeliveryLogParams) (*model.DeliveryLogEntry, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeliveryLogEntry), args.Error(1)
}

func (m *mockDeliveryLogRepo) List(ctx context.Context, limit, offset int) ([]model.DeliveryLogEntry, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]model.DeliveryLogEntry), args.Error(1)
}

func (m *mockDeliveryLogRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockPushSubRepo struct {
	mock.Mock
}

func (m *mockPushSubRepo) Upsert(ctx context.Context, params model.UpsertSubscriptionParams) (*model.PushSubscription, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PushSubscription), args.Error(1)
}

func (m *mockPushSubRepo) FindByID(ctx context.Context, id string) (*model.PushSubscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PushSubscription), args.Error(1)
}

func (m *mockPushSubRepo) ListAll(ctx context.Context) ([]model.PushSubscription, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.PushSubscription), args.Error(1)
}

func (m *mockPushSubRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockPushSubRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockAdminRepo struct {
	mock.Mock
}

func (m *mockAdminRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.AdminAccount, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminAccount), args.Error(1)
}

func (m *mockAdminRepo) Create(ctx context.Context, name, tokenHash string) (*model.AdminAccount, error) {
	args := m.Called(ctx, name, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminAccount), args.Error(1)
}

// fakeDelivery is a hand-rolled push provider: the fan-out test runs it from
// multiple workers at once, so it has to be safe under concurrent Send calls.
type fakeDelivery struct {
	mu         sync.Mutex
	sent       []string
	errByID    map[string]error
	publicKey  string
	privateKey string
	configured bool
}

func newFakeDelivery() *fakeDelivery {
	return &fakeDelivery{
		errByID:    map[string]error{},
		publicKey:  "test-public-key",
		privateKey: "test-private-key",
		configured: true,
	}
}

func (f *fakeDelivery) Send(_ context.Context, sub model.PushSubscription, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sub.ID)
	return f.errByID[sub.ID]
}

func (f *fakeDelivery) sentIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func (f *fakeDelivery) PublicKey() string  { return f.publicKey }
func (f *fakeDelivery) PrivateKey() string { return f.privateKey }
func (f *fakeDelivery) Configured() bool   { return f.configured }

// fakeBroadcastRepo is an in-memory store so the retention test can observe
// which notifications survive a long publish sequence.
type fakeBroadcastRepo struct {
	mu            sync.Mutex
	notifications []model.BroadcastNotification
	nextID        int
}

func (f *fakeBroadcastRepo) CreateAndPrune(_ context.Context, params model.CreateBroadcastParams, keep, batchSize int) (*model.BroadcastNotification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n := model.BroadcastNotification{
		ID:              fmt.Sprintf("bn-%d", f.nextID),
		Title:           params.Title,
		Message:         params.Message,
		URL:             params.URL,
		Type:            params.Type,
		DurationSeconds: params.DurationSeconds,
		CreatedAt:       time.Now().Add(time.Duration(f.nextID) * time.Millisecond),
		SentBy:          params.SentBy,
	}
	f.notifications = append(f.notifications, n)

	var pruned int64
	if len(f.notifications) > keep {
		sort.Slice(f.notifications, func(i, j int) bool {
			return f.notifications[i].CreatedAt.After(f.notifications[j].CreatedAt)
		})
		pruned = int64(len(f.notifications) - keep)
		f.notifications = f.notifications[:keep]
	}
	return &n, pruned, nil
}

func (f *fakeBroadcastRepo) ListRecent(_ context.Context, limit int) ([]model.BroadcastNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.BroadcastNotification, len(f.notifications))
	copy(out, f.notifications)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeBroadcastRepo) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notifications), nil
}
