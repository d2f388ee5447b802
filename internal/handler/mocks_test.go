package handler

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/resultshub/chat-server-go/internal/middleware"
	"github.com/resultshub/chat-server-go/internal/model"
)

// In-memory repositories so handler tests exercise the real services end to
// end over httptest without a database.

type memBanRepo struct {
	records map[string]model.BanRecord
}

func newMemBanRepo() *memBanRepo {
	return &memBanRepo{records: map[string]model.BanRecord{}}
}

func (r *memBanRepo) Upsert(_ context.Context, params model.CreateBanParams) (*model.BanRecord, error) {
	record := model.BanRecord{
		DeviceID: params.DeviceID,
		Reason:   params.Reason,
		BannedAt: time.Now(),
		BannedBy: params.BannedBy,
	}
	r.records[params.DeviceID] = record
	return &record, nil
}

func (r *memBanRepo) FindByDeviceID(_ context.Context, deviceID string) (*model.BanRecord, error) {
	if record, ok := r.records[deviceID]; ok {
		return &record, nil
	}
	return nil, nil
}

func (r *memBanRepo) Exists(_ context.Context, deviceID string) (bool, error) {
	_, ok := r.records[deviceID]
	return ok, nil
}

func (r *memBanRepo) List(_ context.Context) ([]model.BanRecord, error) {
	out := make([]model.BanRecord, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BannedAt.After(out[j].BannedAt) })
	return out, nil
}

func (r *memBanRepo) Delete(_ context.Context, deviceID string) error {
	delete(r.records, deviceID)
	return nil
}

type memReportRepo struct {
	reports []model.MessageReport
	nextID  int
}

func (r *memReportRepo) Create(_ context.Context, params model.CreateReportParams) (*model.MessageReport, error) {
	r.nextID++
	report := model.MessageReport{
		ID:               fmt.Sprintf("report-%d", r.nextID),
		MessageID:        params.MessageID,
		MessageText:      params.MessageText,
		ReportedUsername: params.ReportedUsername,
		ReportedDeviceID: params.ReportedDeviceID,
		ReporterDeviceID: params.ReporterDeviceID,
		Reason:           params.Reason,
		Status:           model.ReportStatusPending,
		Timestamp:        time.Now(),
	}
	r.reports = append(r.reports, report)
	return &report, nil
}

func (r *memReportRepo) FindByID(_ context.Context, id string) (*model.MessageReport, error) {
	for i := range r.reports {
		if r.reports[i].ID == id {
			report := r.reports[i]
			return &report, nil
		}
	}
	return nil, nil
}

func (r *memReportRepo) ListNewest(_ context.Context, limit int) ([]model.MessageReport, error) {
	out := make([]model.MessageReport, len(r.reports))
	copy(out, r.reports)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memReportRepo) UpdateStatus(_ context.Context, id string, status model.ReportStatus, reviewedAt time.Time) (int64, error) {
	for i := range r.reports {
		if r.reports[i].ID == id {
			r.reports[i].Status = status
			r.reports[i].ReviewedAt = &reviewedAt
			return 1, nil
		}
	}
	return 0, nil
}

type memPresenceRepo struct {
	sessions map[string]model.SessionPresence
}

func newMemPresenceRepo() *memPresenceRepo {
	return &memPresenceRepo{sessions: map[string]model.SessionPresence{}}
}

func (r *memPresenceRepo) Upsert(_ context.Context, params model.HeartbeatParams) (*model.SessionPresence, error) {
	presence := model.SessionPresence{
		SessionID: params.SessionID,
		Username:  params.Username,
		DeviceID:  params.DeviceID,
		LastSeen:  time.Now(),
	}
	r.sessions[params.SessionID] = presence
	return &presence, nil
}

func (r *memPresenceRepo) FindByID(_ context.Context, sessionID string) (*model.SessionPresence, error) {
	if presence, ok := r.sessions[sessionID]; ok {
		return &presence, nil
	}
	return nil, nil
}

func (r *memPresenceRepo) ListActive(_ context.Context) ([]model.SessionPresence, error) {
	out := make([]model.SessionPresence, 0, len(r.sessions))
	for _, presence := range r.sessions {
		out = append(out, presence)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeen.After(out[j].LastSeen) })
	return out, nil
}

func (r *memPresenceRepo) Delete(_ context.Context, sessionID string) error {
	delete(r.sessions, sessionID)
	return nil
}

func (r *memPresenceRepo) DeleteStale(_ context.Context, olderThan time.Time) (int64, error) {
	var deleted int64
	for id, presence := range r.sessions {
		if presence.LastSeen.Before(olderThan) {
			delete(r.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memPresenceRepo) Count(_ context.Context) (int, error) {
	return len(r.sessions), nil
}

type memBroadcastRepo struct {
	notifications []model.BroadcastNotification
	nextID        int
}

func (r *memBroadcastRepo) CreateAndPrune(_ context.Context, params model.CreateBroadcastParams, keep, batchSize int) (*model.BroadcastNotification, int64, error) {
	r.nextID++
	n := model.BroadcastNotification{
		ID:              fmt.Sprintf("bn-%d", r.nextID),
		Title:           params.Title,
		Message:         params.Message,
		URL:             params.URL,
		Type:            params.Type,
		DurationSeconds: params.DurationSeconds,
		CreatedAt:       time.Now().Add(time.Duration(r.nextID) * time.Millisecond),
		SentBy:          params.SentBy,
	}
	r.notifications = append(r.notifications, n)

	var pruned int64
	if len(r.notifications) > keep {
		sort.Slice(r.notifications, func(i, j int) bool {
			return r.notifications[i].CreatedAt.After(r.notifications[j].CreatedAt)
		})
		pruned = int64(len(r.notifications) - keep)
		r.notifications = r.notifications[:keep]
	}
	return &n, pruned, nil
}

func (r *memBroadcastRepo) ListRecent(_ context.Context, limit int) ([]model.BroadcastNotification, error) {
	out := make([]model.BroadcastNotification, len(r.notifications))
	copy(out, r.notifications)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memBroadcastRepo) Count(_ context.Context) (int, error) {
	return len(r.notifications), nil
}

type memPushSubRepo struct {
	subs map[string]model.PushSubscription
}

func newMemPushSubRepo() *memPushSubRepo {
	return &memPushSubRepo{subs: map[string]model.PushSubscription{}}
}

func (r *memPushSubRepo) Upsert(_ context.Context, params model.UpsertSubscriptionParams) (*model.PushSubscription, error) {
	sub, ok := r.subs[params.ID]
	if !ok {
		sub = model.PushSubscription{ID: params.ID, CreatedAt: time.Now()}
	}
	sub.AnonID = params.AnonID
	if params.RollNumber != nil {
		sub.RollNumber = params.RollNumber
	}
	sub.Endpoint = params.Endpoint
	sub.P256dh = params.P256dh
	sub.Auth = params.Auth
	sub.UpdatedAt = time.Now()
	r.subs[params.ID] = sub
	return &sub, nil
}

func (r *memPushSubRepo) FindByID(_ context.Context, id string) (*model.PushSubscription, error) {
	if sub, ok := r.subs[id]; ok {
		return &sub, nil
	}
	return nil, nil
}

func (r *memPushSubRepo) ListAll(_ context.Context) ([]model.PushSubscription, error) {
	out := make([]model.PushSubscription, 0, len(r.subs))
	for _, sub := range r.subs {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memPushSubRepo) Delete(_ context.Context, id string) error {
	delete(r.subs, id)
	return nil
}

func (r *memPushSubRepo) Count(_ context.Context) (int, error) {
	return len(r.subs), nil
}

type memDeliveryLogRepo struct {
	entries []model.DeliveryLogEntry
	nextID  int
}

func (r *memDeliveryLogRepo) Append(_ context.Context, params model.CreateDeliveryLogParams) (*model.DeliveryLogEntry, error) {
	r.nextID++
	entry := model.DeliveryLogEntry{
		ID:                 fmt.Sprintf("log-%d", r.nextID),
		Title:              params.Title,
		Body:               params.Body,
		URL:                params.URL,
		TotalSubscriptions: params.TotalSubscriptions,
		Successful:         params.Successful,
		Failed:             params.Failed,
		SentAt:             time.Now(),
	}
	r.entries = append(r.entries, entry)
	return &entry, nil
}

func (r *memDeliveryLogRepo) List(_ context.Context, limit, offset int) ([]model.DeliveryLogEntry, error) {
	out := make([]model.DeliveryLogEntry, len(r.entries))
	copy(out, r.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	if offset >= len(out) {
		return []model.DeliveryLogEntry{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memDeliveryLogRepo) Count(_ context.Context) (int, error) {
	return len(r.entries), nil
}

type stubDelivery struct {
	errByID    map[string]error
	publicKey  string
	privateKey string
	configured bool
}

func newStubDelivery() *stubDelivery {
	return &stubDelivery{
		errByID:    map[string]error{},
		publicKey:  "vapid-public",
		privateKey: "vapid-private",
		configured: true,
	}
}

func (d *stubDelivery) Send(_ context.Context, sub model.PushSubscription, _ []byte) error {
	return d.errByID[sub.ID]
}

func (d *stubDelivery) PublicKey() string  { return d.publicKey }
func (d *stubDelivery) PrivateKey() string { return d.privateKey }
func (d *stubDelivery) Configured() bool   { return d.configured }

func bannedRecord(deviceID string) model.BanRecord {
	return model.BanRecord{
		DeviceID: deviceID,
		Reason:   "spam",
		BannedAt: time.Now(),
		BannedBy: "root",
	}
}

func reportParams(messageID string) model.CreateReportParams {
	return model.CreateReportParams{
		MessageID:        messageID,
		MessageText:      "rude message",
		ReportedUsername: "troll",
		ReportedDeviceID: "dev_bad",
		ReporterDeviceID: "dev_good",
		Reason:           "harassment",
	}
}

func heartbeat(sessionID, username, deviceID string) model.HeartbeatParams {
	return model.HeartbeatParams{
		SessionID: sessionID,
		Username:  username,
		DeviceID:  deviceID,
	}
}

func publishParams(title string) model.CreateBroadcastParams {
	return model.CreateBroadcastParams{
		Title:   title,
		Message: "body",
		SentBy:  "root",
	}
}

// asAdmin injects an authenticated admin the way the auth middleware does.
type memAdminRepo struct {
	accounts map[string]model.AdminAccount // keyed by token hash
	nextID   int
}

func (m *memAdminRepo) FindByTokenHash(_ context.Context, tokenHash string) (*model.AdminAccount, error) {
	account, ok := m.accounts[tokenHash]
	if !ok {
		return nil, nil
	}
	return &account, nil
}

func (m *memAdminRepo) Create(_ context.Context, name, tokenHash string) (*model.AdminAccount, error) {
	if m.accounts == nil {
		m.accounts = make(map[string]model.AdminAccount)
	}
	if existing, ok := m.accounts[tokenHash]; ok {
		existing.Name = name
		m.accounts[tokenHash] = existing
		return &existing, nil
	}
	m.nextID++
	account := model.AdminAccount{
		ID:        fmt.Sprintf("admin-%d", m.nextID),
		Name:      name,
		TokenHash: tokenHash,
		CreatedAt: time.Now(),
	}
	m.accounts[tokenHash] = account
	return &account, nil
}

func asAdmin(r *http.Request) *http.Request {
	admin := &model.AdminAccount{ID: "root", Name: "root"}
	return r.WithContext(context.WithValue(r.Context(), middleware.AdminContextKey, admin))
}
