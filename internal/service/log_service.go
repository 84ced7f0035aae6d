package service

import (
	"context"
	"fmt"

	"barcontrol/internal/dto"
	"barcontrol/internal/repository"
)

// LogService exposes the audit trail. Rows are written by the audit worker.
type LogService interface {
	Listar(ctx context.Context, filter repository.LogFilter) ([]dto.LogResponse, error)
}

type logService struct {
	repo repository.LogRepository
}

func NewLogService(repo repository.LogRepository) LogService {
	return &logService{repo: repo}
}

func (s *logService) Listar(ctx context.Context, filter repository.LogFilter) ([]dto.LogResponse, error) {
	logs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listando logs: %w", err)
	}
	out := make([]dto.LogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.LogResponse{
			ID:       l.ID.String(),
			Usuario:  l.Usuario,
			Acao:     l.Acao,
			Detalhe:  l.Detalhe,
			IP:       l.IP,
			DataHora: l.DataHora,
		})
	}
	return out, nil
}
