package worker

// auditoria_worker.go
// Persists audit jobs from QueueAuditoria as rows of the logs table.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"barcontrol/internal/dto"
	"barcontrol/internal/repository"
)

// AuditoriaWorker writes one LogAcao per job.
type AuditoriaWorker struct {
	logs repository.LogRepository
}

func NewAuditoriaWorker(logs repository.LogRepository) *AuditoriaWorker {
	return &AuditoriaWorker{logs: logs}
}

// Process returns an error for DB failures so the job is retried; a malformed payload is
// also an error and ends in the DLQ after the last attempt.
func (w *AuditoriaWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var job dto.AuditoriaJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return fmt.Errorf("payload de auditoria inválido: %w", err)
	}
	if job.Acao == "" {
		return fmt.Errorf("auditoria sem ação")
	}
	if job.DataHora.IsZero() {
		job.DataHora = time.Now()
	}
	return gravarAuditoria(ctx, w.logs, job)
}
