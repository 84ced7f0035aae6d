package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"barcontrol/internal/dto"
	"barcontrol/internal/infra"
	"barcontrol/internal/model"
	"barcontrol/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLogRepo struct {
	mu      sync.Mutex
	rows    []model.LogAcao
	cutoffs []time.Time
	err     error
}

func (r *stubLogRepo) Create(_ context.Context, l *model.LogAcao) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, *l)
	return nil
}

func (r *stubLogRepo) List(context.Context, repository.LogFilter) ([]model.LogAcao, error) {
	return r.rows, nil
}

func (r *stubLogRepo) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cutoffs = append(r.cutoffs, cutoff)
	if r.err != nil {
		return 0, r.err
	}
	kept := r.rows[:0]
	var n int64
	for _, row := range r.rows {
		if row.DataHora.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return n, nil
}

func TestAuditoriaWorkerGravaLog(t *testing.T) {
	logs := &stubLogRepo{}
	w := NewAuditoriaWorker(logs)
	detalhe := "#12"
	raw, err := json.Marshal(dto.AuditoriaJob{Usuario: "joao", Acao: "abrir_comanda", Detalhe: &detalhe})
	require.NoError(t, err)

	require.NoError(t, w.Process(context.Background(), raw))
	require.Len(t, logs.rows, 1)
	assert.Equal(t, "joao", logs.rows[0].Usuario)
	assert.Equal(t, "abrir_comanda", logs.rows[0].Acao)
	assert.Equal(t, "#12", *logs.rows[0].Detalhe)
	assert.False(t, logs.rows[0].DataHora.IsZero())
}

func TestAuditoriaWorkerPayloadInvalido(t *testing.T) {
	w := NewAuditoriaWorker(&stubLogRepo{})
	assert.Error(t, w.Process(context.Background(), json.RawMessage(`{"acao":`)))
	assert.Error(t, w.Process(context.Background(), json.RawMessage(`{"usuario":"x"}`)))
}

func TestAuditoriaWorkerPropagaErroDoBanco(t *testing.T) {
	w := NewAuditoriaWorker(&stubLogRepo{err: errors.New("db down")})
	err := w.Process(context.Background(), json.RawMessage(`{"usuario":"x","acao":"login"}`))
	assert.EqualError(t, err, "db down")
}

func TestProcessAlertaEstoque(t *testing.T) {
	raw, err := json.Marshal(dto.AlertaEstoque{ProdutoID: "p1", Nome: "Limão", Saldo: decimal.NewFromInt(2), EstoqueMinimo: decimal.NewFromInt(5)})
	require.NoError(t, err)
	assert.NoError(t, ProcessAlertaEstoque(context.Background(), raw))
	assert.Error(t, ProcessAlertaEstoque(context.Background(), json.RawMessage(`[]`)))
}

func TestNewHandlersCobreTodosOsJobs(t *testing.T) {
	h := NewHandlers(&stubLogRepo{})
	assert.Contains(t, h, JobAuditoria)
	assert.Contains(t, h, JobAlertaEstoque)
}

func TestDispatcherSemRedisGravaAuditoriaDireto(t *testing.T) {
	logs := &stubLogRepo{}
	d := NewDispatcher(nil, nil, logs)

	d.Auditar(context.Background(), dto.AuditoriaJob{Usuario: "admin", Acao: "abrir_caixa"})
	require.Len(t, logs.rows, 1)
	assert.Equal(t, "abrir_caixa", logs.rows[0].Acao)

	// Alerts without a queue are only logged.
	d.PublicarAlertaEstoque(context.Background(), dto.AlertaEstoque{Nome: "Gelo"})
}

func TestDispatcherComBreakerAbertoNaoTocaRedis(t *testing.T) {
	logs := &stubLogRepo{}
	breaker := infra.NewBreaker(1, time.Hour)
	breaker.Report(errors.New("boom"))
	require.Equal(t, infra.BreakerOpen, breaker.State())

	// The address is never dialled while the breaker is open.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()
	d := NewDispatcher(rdb, breaker, logs)

	err := d.enqueue(context.Background(), QueueAuditoria, JobAuditoria, dto.AuditoriaJob{Acao: "x"})
	assert.ErrorIs(t, err, infra.ErrBreakerOpen)

	d.Auditar(context.Background(), dto.AuditoriaJob{Usuario: "admin", Acao: "fechar_caixa"})
	assert.Len(t, logs.rows, 1)
}

func TestDispatcherNilNaoEntraEmPanico(t *testing.T) {
	var d *Dispatcher
	assert.NotPanics(t, func() {
		d.Auditar(context.Background(), dto.AuditoriaJob{Acao: "x"})
		d.PublicarAlertaEstoque(context.Background(), dto.AlertaEstoque{})
	})
}

func TestPurgarLogs(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	logs := &stubLogRepo{rows: []model.LogAcao{
		{Acao: "velho", DataHora: now.AddDate(0, 0, -200)},
		{Acao: "recente", DataHora: now.AddDate(0, 0, -10)},
	}}

	n := purgarLogs(context.Background(), logs, 180, now)
	assert.Equal(t, int64(1), n)
	require.Len(t, logs.rows, 1)
	assert.Equal(t, "recente", logs.rows[0].Acao)
	assert.Equal(t, now.AddDate(0, 0, -180), logs.cutoffs[0])

	logs.err = errors.New("db down")
	assert.Equal(t, int64(0), purgarLogs(context.Background(), logs, 180, now))
}

func TestStartRetencaoLogsDesligado(t *testing.T) {
	logs := &stubLogRepo{}
	StartRetencaoLogs(context.Background(), logs, 0)
	assert.Empty(t, logs.cutoffs)
}

func TestEsperarAposErro(t *testing.T) {
	old := popErrorBackoff
	popErrorBackoff = 50 * time.Millisecond
	t.Cleanup(func() { popErrorBackoff = old })

	inicio := time.Now()
	assert.True(t, esperarAposErro(context.Background(), 0, redis.Nil))
	assert.Less(t, time.Since(inicio), popErrorBackoff, "an empty timeout is not backed off")

	inicio = time.Now()
	assert.True(t, esperarAposErro(context.Background(), 0, errors.New("connection refused")))
	assert.GreaterOrEqual(t, time.Since(inicio), popErrorBackoff)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, esperarAposErro(ctx, 0, errors.New("connection refused")))
}

func TestRunWorkerSemRedisNaoGiraEmVazio(t *testing.T) {
	old := popErrorBackoff
	popErrorBackoff = time.Hour
	t.Cleanup(func() { popErrorBackoff = old })

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runWorker(ctx, rdb, 0, NewHandlers(&stubLogRepo{}))
		close(done)
	}()

	// The first failed pop parks the worker in its backoff until ctx ends.
	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
