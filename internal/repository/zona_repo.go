package repository

import (
	"context"

	"facturador/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ZonaRepository interface {
	Create(ctx context.Context, z *model.Zona) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Zona, error)
	List(ctx context.Context) ([]model.Zona, error)
	Update(ctx context.Context, z *model.Zona) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type zonaRepo struct{ db *gorm.DB }

func NewZonaRepository(db *gorm.DB) ZonaRepository { return &zonaRepo{db: db} }

func (r *zonaRepo) Create(ctx context.Context, z *model.Zona) error {
	return r.db.WithContext(ctx).Create(z).Error
}

func (r *zonaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Zona, error) {
	var z model.Zona
	err := r.db.WithContext(ctx).First(&z, id).Error
	return &z, err
}

func (r *zonaRepo) List(ctx context.Context) ([]model.Zona, error) {
	var zonas []model.Zona
	err := r.db.WithContext(ctx).Where("activo = true").Order("nombre ASC").Find(&zonas).Error
	return zonas, err
}

func (r *zonaRepo) Update(ctx context.Context, z *model.Zona) error {
	return r.db.WithContext(ctx).Save(z).Error
}

func (r *zonaRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Zona{}).Where("id = ?", id).Update("activo", false).Error
}
