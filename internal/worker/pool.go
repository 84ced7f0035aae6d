package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"barcontrol/internal/dto"
	"barcontrol/internal/infra"
	"barcontrol/internal/model"
	"barcontrol/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAuditoria = "jobs:auditoria"
	QueueAlertas   = "jobs:alertas"

	JobAuditoria     = "auditoria"
	JobAlertaEstoque = "alerta_estoque"

	maxJobAttempts = 3
)

var errNoRedis = errors.New("redis indisponível")

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Dispatcher enqueues async jobs into Redis lists; the worker pool dequeues them via BRPOP.
// Enqueue never fails the caller: with Redis down (or the breaker open) audit rows are written
// inline and alerts are only logged.
type Dispatcher struct {
	rdb     *redis.Client
	breaker *infra.Breaker
	logs    repository.LogRepository
}

func NewDispatcher(rdb *redis.Client, breaker *infra.Breaker, logs repository.LogRepository) *Dispatcher {
	return &Dispatcher{rdb: rdb, breaker: breaker, logs: logs}
}

// Auditar records a user action.
func (d *Dispatcher) Auditar(ctx context.Context, job dto.AuditoriaJob) {
	if job.DataHora.IsZero() {
		job.DataHora = time.Now()
	}
	if err := d.enqueue(ctx, QueueAuditoria, JobAuditoria, job); err != nil {
		log.Warn().Err(err).Str("acao", job.Acao).Msg("dispatcher: auditoria gravada sem fila")
		if d == nil || d.logs == nil {
			return
		}
		if err := gravarAuditoria(ctx, d.logs, job); err != nil {
			log.Error().Err(err).Str("acao", job.Acao).Msg("dispatcher: falha gravando auditoria")
		}
	}
}

// PublicarAlertaEstoque queues a low-stock notification.
func (d *Dispatcher) PublicarAlertaEstoque(ctx context.Context, alerta dto.AlertaEstoque) {
	if err := d.enqueue(ctx, QueueAlertas, JobAlertaEstoque, alerta); err != nil {
		logAlerta(alerta)
	}
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	if d == nil || d.rdb == nil {
		return errNoRedis
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	if d.breaker != nil && !d.breaker.Allow() {
		return infra.ErrBreakerOpen
	}
	err = d.rdb.LPush(ctx, queue, encoded).Err()
	if d.breaker != nil {
		d.breaker.Report(err)
	}
	return err
}

// JobHandler processes one job payload. A returned error schedules a retry.
type JobHandler func(ctx context.Context, payload json.RawMessage) error

// StartWorkerPool launches numWorkers goroutines consuming every queue.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers map[string]JobHandler) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, handlers)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, handlers map[string]JobHandler) {
	queues := []string{QueueAuditoria, QueueAlertas}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop; waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				if !esperarAposErro(ctx, id, err) {
					return
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

// popErrorBackoff is the pause after a failed BRPOP, so a lost connection does not spin.
var popErrorBackoff = 2 * time.Second

// esperarAposErro pauses after a BRPOP error other than an empty timeout.
// It returns false when ctx ends first.
func esperarAposErro(ctx context.Context, id int, err error) bool {
	if errors.Is(err, redis.Nil) {
		return true
	}
	if ctx.Err() != nil {
		return false
	}
	log.Warn().Err(err).Int("worker", id).Msg("BRPOP failed, backing off")
	t := time.NewTimer(popErrorBackoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers map[string]JobHandler, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, queue, "unknown", json.RawMessage(raw), "payload inválido: "+err.Error(), 0)
		return
	}
	handler, ok := handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "tipo de job desconhecido", job.Attempts)
		return
	}

	err := handler(ctx, job.Payload)
	if err == nil {
		return
	}
	job.Attempts++
	if job.Attempts >= maxJobAttempts {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("attempts", job.Attempts).Msg("job failed, requeueing")
	encoded, mErr := json.Marshal(job)
	if mErr != nil {
		return
	}
	if pErr := rdb.LPush(ctx, queue, encoded).Err(); pErr != nil {
		log.Error().Err(pErr).Str("queue", queue).Msg("failed to requeue job")
	}
}

// NewHandlers wires the job types to their processors.
func NewHandlers(logs repository.LogRepository) map[string]JobHandler {
	return map[string]JobHandler{
		JobAuditoria:     NewAuditoriaWorker(logs).Process,
		JobAlertaEstoque: ProcessAlertaEstoque,
	}
}

func gravarAuditoria(ctx context.Context, logs repository.LogRepository, job dto.AuditoriaJob) error {
	return logs.Create(ctx, &model.LogAcao{
		ID:       uuid.New(),
		Usuario:  job.Usuario,
		Acao:     job.Acao,
		Detalhe:  job.Detalhe,
		IP:       job.IP,
		DataHora: job.DataHora,
	})
}
