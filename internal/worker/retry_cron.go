package worker

// retry_cron.go
// Background goroutine that periodically re-enqueues comprobantes stuck in
// estado='error' with a next_retry_at in the past. Retries go through the
// SAME facturacion queue as first attempts so the single consumer keeps
// serializing every submission.

import (
	"context"
	"time"

	"facturador/internal/infra"
	"facturador/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	ComprobanteRepo repository.ComprobanteRepository
	Dispatcher      *Dispatcher
	CB              *infra.CircuitBreaker
}

// StartRetryCron launches a background goroutine that ticks every 30s and
// re-enqueues due comprobantes. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If the CB is open the authority is down — re-enqueueing now would only
	// burn retry budget.
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	now := time.Now()
	comprobantes, err := cfg.ComprobanteRepo.ListPendingRetries(ctx, now, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}

	if len(comprobantes) == 0 {
		return
	}

	log.Info().Int("count", len(comprobantes)).Msg("retry_cron: re-enqueueing stalled comprobantes")

	for i := range comprobantes {
		comp := &comprobantes[i]

		// Clear next_retry_at BEFORE enqueueing so a slow worker cannot race
		// the next tick into a duplicate job.
		comp.NextRetryAt = nil
		if err := cfg.ComprobanteRepo.Update(ctx, comp); err != nil {
			log.Error().Err(err).Str("comprobante_id", comp.ID.String()).Msg("retry_cron: failed to claim comprobante")
			continue
		}

		payload := FacturacionJobPayload{ComprobanteID: comp.ID.String()}
		if err := cfg.Dispatcher.EnqueueFacturacion(ctx, payload); err != nil {
			log.Error().Err(err).Str("comprobante_id", comp.ID.String()).Msg("retry_cron: failed to enqueue retry")
			// Restore the schedule so the next tick picks it up again.
			next := time.Now().Add(retryTickInterval)
			comp.NextRetryAt = &next
			_ = cfg.ComprobanteRepo.Update(ctx, comp)
			continue
		}

		log.Info().
			Str("comprobante_id", comp.ID.String()).
			Int("retry_count", comp.RetryCount).
			Msg("retry_cron: retry enqueued")
	}
}
