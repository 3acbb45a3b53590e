package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/edulink/linking-server-go/internal/model"
	"github.com/edulink/linking-server-go/internal/repository"
)

// StatsJob periodically reports gauge counts over the linking tables. Codes
// and requests are never deleted, so there is nothing to clean up; the job
// only observes.
type StatsJob struct {
	codeRepo    repository.LinkingCodeRepository
	requestRepo repository.LinkRequestRepository
	interval    time.Duration
	done        chan struct{}
}

func NewStatsJob(
	codeRepo repository.LinkingCodeRepository,
	requestRepo repository.LinkRequestRepository,
	interval time.Duration,
) *StatsJob {
	return &StatsJob{
		codeRepo:    codeRepo,
		requestRepo: requestRepo,
		interval:    interval,
		done:        make(chan struct{}),
	}
}

func (j *StatsJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("stats job started")
}

func (j *StatsJob) Stop() {
	close(j.done)
	log.Info().Msg("stats job stopped")
}

func (j *StatsJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.report()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.report()
		}
	}
}

func (j *StatsJob) report() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	j.reportGauge(ctx, "pending link requests", func(ctx context.Context) (int, error) {
		return j.requestRepo.CountByStatus(ctx, model.LinkRequestStatusPending)
	})
	j.reportGauge(ctx, "approved links", func(ctx context.Context) (int, error) {
		return j.requestRepo.CountByStatus(ctx, model.LinkRequestStatusApproved)
	})
	j.reportGauge(ctx, "active linking codes", func(ctx context.Context) (int, error) {
		return j.codeRepo.CountActive(ctx, time.Now())
	})
}

func (j *StatsJob) reportGauge(ctx context.Context, name string, fn func(context.Context) (int, error)) {
	count, err := fn(ctx)
	if err != nil {
		log.Error().Err(err).Msgf("failed to count %s", name)
		return
	}
	log.Info().Int("count", count).Msgf("linking stats: %s", name)
}
