package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/resultshub/chat-server-go/internal/errors"
	"github.com/resultshub/chat-server-go/internal/model"
	"github.com/resultshub/chat-server-go/internal/repository"
)

// PresenceService tracks active chat sessions. Heartbeats upsert the session
// record; it never expires sessions itself, the staleness sweep in
// internal/jobs does that.
type PresenceService struct {
	presenceRepo repository.PresenceRepository
	banRepo      repository.BanRepository
}

func NewPresenceService(
	presenceRepo repository.PresenceRepository,
	banRepo repository.BanRepository,
) *PresenceService {
	return &PresenceService{
		presenceRepo: presenceRepo,
		banRepo:      banRepo,
	}
}

// Heartbeat upserts the session with a refreshed last_seen. A missing
// session id means a new session: one is generated server-side and returned.
// Banned devices are rejected before any write.
func (s *PresenceService) Heartbeat(ctx context.Context, params model.HeartbeatParams) (*model.SessionPresence, error) {
	if strings.TrimSpace(params.Username) == "" {
		return nil, apperrors.MissingRequired("username")
	}
	if strings.TrimSpace(params.DeviceID) == "" {
		return nil, apperrors.MissingRequired("deviceId")
	}

	ban, err := s.banRepo.FindByDeviceID(ctx, params.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("check ban: %w", err)
	}
	if ban != nil {
		return nil, apperrors.DeviceBanned(ban.Reason)
	}

	isNew := false
	if strings.TrimSpace(params.SessionID) == "" {
		params.SessionID = uuid.NewString()
		isNew = true
	}

	presence, err := s.presenceRepo.Upsert(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("upsert presence: %w", err)
	}

	if isNew {
		log.Info().
			Str("sessionId", presence.SessionID).
			Str("username", presence.Username).
			Msg("session joined chat")
	}

	return presence, nil
}

// ListActive returns every tracked session. Order is irrelevant to callers;
// the repository returns most-recently-seen first. Entries are only as fresh
// as the staleness sweep allows.
func (s *PresenceService) ListActive(ctx context.Context) ([]model.SessionPresence, error) {
	return s.presenceRepo.ListActive(ctx)
}

// Disconnect removes the session record on explicit chat exit. Unknown
// session ids are a no-op.
func (s *PresenceService) Disconnect(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return apperrors.MissingRequired("sessionId")
	}

	if err := s.presenceRepo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete presence: %w", err)
	}

	log.Info().Str("sessionId", sessionID).Msg("session left chat")
	return nil
}
