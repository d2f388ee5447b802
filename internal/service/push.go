package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	apperrors "github.com/resultshub/chat-server-go/internal/errors"
	"github.com/resultshub/chat-server-go/internal/metrics"
	"github.com/resultshub/chat-server-go/internal/model"
	"github.com/resultshub/chat-server-go/internal/push"
	"github.com/resultshub/chat-server-go/internal/repository"
)

const (
	subscriptionIDMaxLen = 64
	endpointIDPrefix     = "ep_"
)

// PushService owns the subscription registry and the fan-out dispatcher.
type PushService struct {
	subRepo     repository.PushSubscriptionRepository
	logRepo     repository.DeliveryLogRepository
	delivery    push.Delivery
	concurrency int
}

func NewPushService(
	subRepo repository.PushSubscriptionRepository,
	logRepo repository.DeliveryLogRepository,
	delivery push.Delivery,
	concurrency int,
) *PushService {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &PushService{
		subRepo:     subRepo,
		logRepo:     logRepo,
		delivery:    delivery,
		concurrency: concurrency,
	}
}

// Register stores or merges a subscription under a deterministic id so that
// repeated subscribe calls from the same browser overwrite the previous
// record instead of duplicating it.
func (s *PushService) Register(ctx context.Context, anonID string, rollNumber *string, sub model.WebPushSubscription) (*model.PushSubscription, error) {
	if strings.TrimSpace(anonID) == "" {
		return nil, apperrors.MissingRequired("anon_id")
	}
	if strings.TrimSpace(sub.Endpoint) == "" {
		return nil, apperrors.MissingRequired("subscription.endpoint")
	}

	id := DeriveSubscriptionID(anonID, sub)

	stored, err := s.subRepo.Upsert(ctx, model.UpsertSubscriptionParams{
		ID:         id,
		AnonID:     anonID,
		RollNumber: rollNumber,
		Endpoint:   sub.Endpoint,
		P256dh:     sub.Keys.P256dh,
		Auth:       sub.Keys.Auth,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert subscription: %w", err)
	}

	log.Info().
		Str("subscriptionId", stored.ID).
		Str("anonId", anonID).
		Msg("push subscription registered")

	return stored, nil
}

// DeriveSubscriptionID picks the most collision-resistant natural identity
// available: the p256dh key (stable per browser installation), then a hash
// of the endpoint URL, then the caller-supplied anon id as last resort.
func DeriveSubscriptionID(anonID string, sub model.WebPushSubscription) string {
	if key := sanitizeID(sub.Keys.P256dh); key != "" {
		return key
	}
	if sub.Endpoint != "" {
		sum := sha256.Sum256([]byte(sub.Endpoint))
		return endpointIDPrefix + hex.EncodeToString(sum[:])[:subscriptionIDMaxLen-len(endpointIDPrefix)]
	}
	return sanitizeID(anonID)
}

// sanitizeID keeps URL-safe characters only and truncates, so arbitrary
// client input stays a usable document key.
func sanitizeID(raw string) string {
	var b strings.Builder
	for _, c := range raw {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteRune(c)
		}
		if b.Len() >= subscriptionIDMaxLen {
			break
		}
	}
	return b.String()
}

// PublicKey returns the VAPID public key for client-side subscription. This
// is safe for unauthenticated callers.
func (s *PushService) PublicKey() string {
	return s.delivery.PublicKey()
}

// Keys returns both VAPID keys for admin configuration display.
func (s *PushService) Keys() (publicKey, privateKey string) {
	return s.delivery.PublicKey(), s.delivery.PrivateKey()
}

type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// Broadcast fans a notification out to every registered subscription over a
// bounded worker pool. A failed delivery is counted and skipped, never
// aborting the batch; endpoints that report the subscription gone are
// deleted. The outcome summary is appended to the delivery log before it is
// returned.
func (s *PushService) Broadcast(ctx context.Context, title, body string, url *string) (*model.BroadcastSummary, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperrors.MissingRequired("title")
	}
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.MissingRequired("body")
	}
	if !s.delivery.Configured() {
		return nil, apperrors.External("push provider", push.ErrNotConfigured)
	}

	subs, err := s.subRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	payload := pushPayload{Title: title, Body: body}
	if url != nil {
		payload.URL = *url
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	var successful, failed atomic.Int64
	var mu sync.Mutex
	var gone []string

	jobs := make(chan model.PushSubscription)
	var wg sync.WaitGroup

	workers := s.concurrency
	if workers > len(subs) {
		workers = len(subs)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range jobs {
				err := s.delivery.Send(ctx, sub, data)
				switch {
				case err == nil:
					successful.Add(1)
					metrics.PushDeliveriesTotal.WithLabelValues("success").Inc()
				case errors.Is(err, push.ErrSubscriptionGone):
					failed.Add(1)
					metrics.PushDeliveriesTotal.WithLabelValues("pruned").Inc()
					mu.Lock()
					gone = append(gone, sub.ID)
					mu.Unlock()
				default:
					failed.Add(1)
					metrics.PushDeliveriesTotal.WithLabelValues("failed").Inc()
					log.Warn().
						Err(err).
						Str("subscriptionId", sub.ID).
						Msg("push delivery failed")
				}
			}
		}()
	}

	for _, sub := range subs {
		jobs <- sub
	}
	close(jobs)
	wg.Wait()

	for _, id := range gone {
		if err := s.subRepo.Delete(ctx, id); err != nil {
			log.Error().Err(err).Str("subscriptionId", id).Msg("failed to delete stale subscription")
		}
	}

	summary := &model.BroadcastSummary{
		TotalSubscriptions: len(subs),
		Successful:         int(successful.Load()),
		Failed:             int(failed.Load()),
	}

	if _, err := s.logRepo.Append(ctx, model.CreateDeliveryLogParams{
		Title:              title,
		Body:               body,
		URL:                url,
		TotalSubscriptions: summary.TotalSubscriptions,
		Successful:         summary.Successful,
		Failed:             summary.Failed,
	}); err != nil {
		// The fan-out already happened; losing one audit row is not worth
		// failing the request over.
		log.Error().Err(err).Msg("failed to append push delivery log")
	}

	log.Info().
		Str("title", title).
		Int("total", summary.TotalSubscriptions).
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Msg("push broadcast dispatched")

	return summary, nil
}

// History returns the paginated delivery log, newest first, with the total
// row count for paging.
func (s *PushService) History(ctx context.Context, limit, offset int) ([]model.DeliveryLogEntry, int, error) {
	entries, err := s.logRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list delivery log: %w", err)
	}

	total, err := s.logRepo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count delivery log: %w", err)
	}

	return entries, total, nil
}
