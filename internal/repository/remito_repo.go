package repository

import (
	"context"

	"facturador/internal/dto"
	"facturador/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RemitoRepository interface {
	Create(ctx context.Context, rem *model.Remito) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Remito, error)
	List(ctx context.Context, filter dto.RemitoFilter) ([]model.Remito, int64, error)
	Update(ctx context.Context, rem *model.Remito) error

	// NextNumero reserves the next local remito number. Runs in a
	// serializable-enough way for a single back office: MAX+1 inside a tx.
	NextNumero(ctx context.Context) (int64, error)
}

type remitoRepo struct{ db *gorm.DB }

func NewRemitoRepository(db *gorm.DB) RemitoRepository { return &remitoRepo{db: db} }

func (r *remitoRepo) Create(ctx context.Context, rem *model.Remito) error {
	return r.db.WithContext(ctx).Create(rem).Error
}

func (r *remitoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Remito, error) {
	var rem model.Remito
	err := r.db.WithContext(ctx).Preload("Cliente").Preload("Items").First(&rem, id).Error
	return &rem, err
}

func (r *remitoRepo) List(ctx context.Context, filter dto.RemitoFilter) ([]model.Remito, int64, error) {
	var remitos []model.Remito
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Remito{})

	if filter.ClienteID != "" {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Cliente").Order("numero DESC").Limit(filter.Limit).Offset(offset).Find(&remitos).Error
	return remitos, total, err
}

func (r *remitoRepo) Update(ctx context.Context, rem *model.Remito) error {
	return r.db.WithContext(ctx).Save(rem).Error
}

func (r *remitoRepo) NextNumero(ctx context.Context) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var max *int64
		if err := tx.Model(&model.Remito{}).Select("MAX(numero)").Scan(&max).Error; err != nil {
			return err
		}
		if max == nil {
			next = 1
		} else {
			next = *max + 1
		}
		return nil
	})
	return next, err
}
