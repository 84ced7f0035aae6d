package worker

// retencao_cron.go
// Background goroutine that purges audit rows older than the retention window.

import (
	"context"
	"time"

	"barcontrol/internal/repository"

	"github.com/rs/zerolog/log"
)

const retencaoTickInterval = 6 * time.Hour

// StartRetencaoLogs runs one purge right away and then every tick until ctx is done.
func StartRetencaoLogs(ctx context.Context, logs repository.LogRepository, retentionDays int) {
	if retentionDays <= 0 {
		log.Info().Msg("retencao_logs: disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(retencaoTickInterval)
		defer ticker.Stop()

		log.Info().Int("dias", retentionDays).Msg("retencao_logs: started")
		purgarLogs(ctx, logs, retentionDays, time.Now())

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retencao_logs: shutting down")
				return
			case now := <-ticker.C:
				purgarLogs(ctx, logs, retentionDays, now)
			}
		}
	}()
}

func purgarLogs(ctx context.Context, logs repository.LogRepository, retentionDays int, now time.Time) int64 {
	cutoff := now.AddDate(0, 0, -retentionDays)
	n, err := logs.DeleteBefore(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("retencao_logs: purge failed")
		return 0
	}
	if n > 0 {
		log.Info().Int64("removidos", n).Time("antes_de", cutoff).Msg("retencao_logs: purged")
	}
	return n
}
