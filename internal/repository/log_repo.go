package repository

import (
	"context"
	"time"

	"barcontrol/internal/model"

	"gorm.io/gorm"
)

type LogFilter struct {
	Usuario string
	Acao    string
	Limit   int
}

type LogRepository interface {
	Create(ctx context.Context, l *model.LogAcao) error
	List(ctx context.Context, filter LogFilter) ([]model.LogAcao, error)
	// DeleteBefore purges audit rows older than cutoff and reports how many were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type logRepo struct{ db *gorm.DB }

func NewLogRepository(db *gorm.DB) LogRepository { return &logRepo{db: db} }

func (r *logRepo) Create(ctx context.Context, l *model.LogAcao) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *logRepo) List(ctx context.Context, filter LogFilter) ([]model.LogAcao, error) {
	q := r.db.WithContext(ctx).Model(&model.LogAcao{})
	if filter.Usuario != "" {
		q = q.Where("usuario = ?", filter.Usuario)
	}
	if filter.Acao != "" {
		q = q.Where("acao = ?", filter.Acao)
	}
	limit := filter.Limit
	if limit < 1 || limit > 1000 {
		limit = 200
	}
	var logs []model.LogAcao
	err := q.Order("data_hora DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

func (r *logRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("data_hora < ?", cutoff).Delete(&model.LogAcao{})
	return res.RowsAffected, res.Error
}
