package repository

import (
	"context"

	"facturador/internal/dto"
	"facturador/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ArticuloRepository interface {
	Create(ctx context.Context, a *model.Articulo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Articulo, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.Articulo, error)
	List(ctx context.Context, filter dto.ArticuloFilter) ([]model.Articulo, int64, error)
	Update(ctx context.Context, a *model.Articulo) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
}

type articuloRepo struct{ db *gorm.DB }

func NewArticuloRepository(db *gorm.DB) ArticuloRepository { return &articuloRepo{db: db} }

func (r *articuloRepo) Create(ctx context.Context, a *model.Articulo) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *articuloRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Articulo, error) {
	var a model.Articulo
	err := r.db.WithContext(ctx).First(&a, id).Error
	return &a, err
}

func (r *articuloRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Articulo, error) {
	var a model.Articulo
	err := r.db.WithContext(ctx).Where("codigo = ? AND activo = true", codigo).First(&a).Error
	return &a, err
}

func (r *articuloRepo) List(ctx context.Context, filter dto.ArticuloFilter) ([]model.Articulo, int64, error) {
	var articulos []model.Articulo
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Articulo{})

	switch filter.Activo {
	case "false":
		q = q.Where("activo = false")
	case "all":
		// no filter
	default:
		q = q.Where("activo = true")
	}

	if filter.Codigo != "" {
		q = q.Where("codigo = ?", filter.Codigo)
	}
	if filter.Descripcion != "" {
		q = q.Where("descripcion ILIKE ?", "%"+filter.Descripcion+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("descripcion ASC").Limit(filter.Limit).Offset(offset).Find(&articulos).Error
	return articulos, total, err
}

func (r *articuloRepo) Update(ctx context.Context, a *model.Articulo) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *articuloRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Articulo{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *articuloRepo) Reactivar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Articulo{}).Where("id = ?", id).Update("activo", true).Error
}
