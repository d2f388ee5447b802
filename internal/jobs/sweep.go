package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/resultshub/chat-server-go/internal/metrics"
	"github.com/resultshub/chat-server-go/internal/repository"
)

// PresenceSweep periodically removes sessions whose last heartbeat is older
// than the staleness threshold. The presence tracker itself never expires
// anything; without this sweep the active list only grows.
type PresenceSweep struct {
	presenceRepo repository.PresenceRepository
	banRepo      repository.BanRepository
	staleAfter   time.Duration
	interval     time.Duration
	done         chan struct{}
}

func NewPresenceSweep(
	presenceRepo repository.PresenceRepository,
	banRepo repository.BanRepository,
	staleAfter time.Duration,
	interval time.Duration,
) *PresenceSweep {
	return &PresenceSweep{
		presenceRepo: presenceRepo,
		banRepo:      banRepo,
		staleAfter:   staleAfter,
		interval:     interval,
		done:         make(chan struct{}),
	}
}

func (j *PresenceSweep) Start() {
	go j.run()
	log.Info().
		Dur("interval", j.interval).
		Dur("staleAfter", j.staleAfter).
		Msg("presence sweep started")
}

func (j *PresenceSweep) Stop() {
	close(j.done)
	log.Info().Msg("presence sweep stopped")
}

func (j *PresenceSweep) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *PresenceSweep) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := j.presenceRepo.DeleteStale(ctx, time.Now().Add(-j.staleAfter))
	if err != nil {
		log.Error().Err(err).Msg("failed to sweep stale sessions")
	} else if count > 0 {
		log.Info().Int64("count", count).Msg("swept stale sessions")
	}

	j.updateGauges(ctx)
}

func (j *PresenceSweep) updateGauges(ctx context.Context) {
	if active, err := j.presenceRepo.Count(ctx); err == nil {
		metrics.ActiveSessions.Set(float64(active))
	}
	if banned, err := j.banRepo.List(ctx); err == nil {
		metrics.BannedDevices.Set(float64(len(banned)))
	}
}
