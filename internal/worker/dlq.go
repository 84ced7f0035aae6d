package worker

// dlq.go
// Jobs that keep failing are parked in a per-queue Redis list, dlq:{queue}, for manual
// inspection. Nothing consumes these lists automatically.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed job with what is needed to replay it by hand.
type DLQEntry struct {
	Queue    string          `json:"queue"`
	JobType  string          `json:"job_type"`
	Payload  json.RawMessage `json:"payload"`
	Motivo   string          `json:"motivo"`
	FalhouEm string          `json:"falhou_em"` // RFC 3339, UTC
	Attempts int             `json:"attempts"`
}

// SendToDLQ pushes a failed job to dlq:{queue}. Errors are logged, never returned.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue, jobType string, payload json.RawMessage, motivo string, attempts int) {
	data, err := json.Marshal(DLQEntry{
		Queue:    queue,
		JobType:  jobType,
		Payload:  payload,
		Motivo:   motivo,
		FalhouEm: time.Now().UTC().Format(time.RFC3339),
		Attempts: attempts,
	})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal failed")
		return
	}
	key := DLQPrefix + queue
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: push failed")
		return
	}
	log.Warn().Str("queue", queue).Str("job_type", jobType).Str("motivo", motivo).Int("attempts", attempts).
		Msg("dlq: job parked")
}

// DLQLengths reports the size of every dead-letter list, for the health endpoint.
func DLQLengths(ctx context.Context, rdb *redis.Client) map[string]int64 {
	out := make(map[string]int64, 2)
	for _, q := range []string{QueueAuditoria, QueueAlertas} {
		n, err := rdb.LLen(ctx, DLQPrefix+q).Result()
		if err != nil {
			continue
		}
		out[q] = n
	}
	return out
}
