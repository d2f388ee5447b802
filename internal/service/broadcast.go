package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/resultshub/chat-server-go/internal/config"
	apperrors "github.com/resultshub/chat-server-go/internal/errors"
	"github.com/resultshub/chat-server-go/internal/metrics"
	"github.com/resultshub/chat-server-go/internal/model"
	"github.com/resultshub/chat-server-go/internal/repository"
)

// BroadcastService manages admin announcements with bounded retention:
// every publish is followed by pruning the collection down to the newest
// entries.
type BroadcastService struct {
	broadcastRepo repository.BroadcastRepository
}

func NewBroadcastService(broadcastRepo repository.BroadcastRepository) *BroadcastService {
	return &BroadcastService{broadcastRepo: broadcastRepo}
}

// Publish validates and stores a broadcast; the insert and the retention
// prune commit in one transaction. Duration is clamped silently: values
// outside [5,300] fall back to the default so malformed input never blocks
// an announcement. Pruning cost is O(collection size) in the worst case,
// acceptable because the collection is capped.
func (s *BroadcastService) Publish(ctx context.Context, params model.CreateBroadcastParams) (*model.BroadcastNotification, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, apperrors.MissingRequired("title")
	}
	if strings.TrimSpace(params.Message) == "" {
		return nil, apperrors.MissingRequired("message")
	}
	if utf8.RuneCountInString(params.Title) > config.BroadcastTitleMax {
		return nil, apperrors.InvalidInput("title", fmt.Sprintf("must be at most %d characters", config.BroadcastTitleMax))
	}
	if utf8.RuneCountInString(params.Message) > config.BroadcastMessageMax {
		return nil, apperrors.InvalidInput("message", fmt.Sprintf("must be at most %d characters", config.BroadcastMessageMax))
	}

	if params.Type == "" {
		params.Type = model.NotificationTypeInfo
	}
	if params.DurationSeconds < config.BroadcastDurationMin || params.DurationSeconds > config.BroadcastDurationMax {
		params.DurationSeconds = config.BroadcastDurationDefault
	}

	notification, pruned, err := s.broadcastRepo.CreateAndPrune(
		ctx, params, config.BroadcastRetention, config.DeleteBatchSize,
	)
	if err != nil {
		return nil, fmt.Errorf("create broadcast: %w", err)
	}
	if pruned > 0 {
		log.Info().Int64("pruned", pruned).Msg("broadcast retention pruned old notifications")
	}

	metrics.BroadcastsTotal.Inc()
	log.Info().
		Str("notificationId", notification.ID).
		Str("title", notification.Title).
		Str("sentBy", notification.SentBy).
		Int("durationSeconds", notification.DurationSeconds).
		Msg("broadcast published")

	return notification, nil
}

// ListRecent returns the newest notifications for client polling.
func (s *BroadcastService) ListRecent(ctx context.Context, limit int) ([]model.BroadcastNotification, error) {
	if limit <= 0 {
		limit = config.BroadcastRetention
	}
	return s.broadcastRepo.ListRecent(ctx, limit)
}
