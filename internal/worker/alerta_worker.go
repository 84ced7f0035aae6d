package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"barcontrol/internal/dto"

	"github.com/rs/zerolog/log"
)

// ProcessAlertaEstoque surfaces a low-stock alert in the service log.
func ProcessAlertaEstoque(_ context.Context, raw json.RawMessage) error {
	var alerta dto.AlertaEstoque
	if err := json.Unmarshal(raw, &alerta); err != nil {
		return fmt.Errorf("payload de alerta inválido: %w", err)
	}
	logAlerta(alerta)
	return nil
}

func logAlerta(a dto.AlertaEstoque) {
	log.Warn().
		Str("produto_id", a.ProdutoID).
		Str("produto", a.Nome).
		Str("saldo", a.Saldo.String()).
		Str("estoque_minimo", a.EstoqueMinimo.String()).
		Msg("estoque no mínimo")
}
