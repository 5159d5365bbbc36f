package repository

import (
	"context"
	"time"

	"facturador/internal/dto"
	"facturador/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ComprobanteRepository interface {
	Create(ctx context.Context, c *model.Comprobante) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Comprobante, error)
	List(ctx context.Context, filter dto.ComprobanteFilter) ([]model.Comprobante, int64, error)
	Update(ctx context.Context, c *model.Comprobante) error

	// ListPendingRetries returns comprobantes in estado "error" whose
	// next_retry_at has elapsed. Used by the retry cron.
	ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Comprobante, error)
}

type comprobanteRepo struct{ db *gorm.DB }

func NewComprobanteRepository(db *gorm.DB) ComprobanteRepository {
	return &comprobanteRepo{db: db}
}

func (r *comprobanteRepo) Create(ctx context.Context, c *model.Comprobante) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *comprobanteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Comprobante, error) {
	var c model.Comprobante
	err := r.db.WithContext(ctx).Preload("Cliente").Preload("Items").First(&c, id).Error
	return &c, err
}

func (r *comprobanteRepo) List(ctx context.Context, filter dto.ComprobanteFilter) ([]model.Comprobante, int64, error) {
	var comprobantes []model.Comprobante
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Comprobante{})

	if filter.ClienteID != "" {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Desde != "" {
		q = q.Where("fecha >= ?", filter.Desde)
	}
	if filter.Hasta != "" {
		q = q.Where("fecha <= ?", filter.Hasta)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Cliente").Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&comprobantes).Error
	return comprobantes, total, err
}

func (r *comprobanteRepo) Update(ctx context.Context, c *model.Comprobante) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *comprobanteRepo) ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Comprobante, error) {
	var comprobantes []model.Comprobante
	err := r.db.WithContext(ctx).
		Where("estado = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", "error", now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&comprobantes).Error
	return comprobantes, err
}
