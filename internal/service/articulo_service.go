package service

import (
	"context"
	"errors"

	"facturador/internal/dto"
	"facturador/internal/model"
	"facturador/internal/repository"

	"github.com/google/uuid"
)

type ArticuloService interface {
	Crear(ctx context.Context, req dto.CrearArticuloRequest) (*dto.ArticuloResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ArticuloResponse, error)
	Listar(ctx context.Context, filter dto.ArticuloFilter) (*dto.ArticuloListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarArticuloRequest) (*dto.ArticuloResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
}

type articuloService struct {
	repo repository.ArticuloRepository
}

func NewArticuloService(repo repository.ArticuloRepository) ArticuloService {
	return &articuloService{repo: repo}
}

func (s *articuloService) Crear(ctx context.Context, req dto.CrearArticuloRequest) (*dto.ArticuloResponse, error) {
	if req.PrecioUnitario.IsNegative() {
		return nil, errors.New("el precio unitario no puede ser negativo")
	}
	a := &model.Articulo{
		Codigo:         req.Codigo,
		Descripcion:    req.Descripcion,
		PrecioUnitario: req.PrecioUnitario,
		Activo:         true,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return articuloToResponse(a), nil
}

func (s *articuloService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ArticuloResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("articulo no encontrado")
	}
	return articuloToResponse(a), nil
}

func (s *articuloService) Listar(ctx context.Context, filter dto.ArticuloFilter) (*dto.ArticuloListResponse, error) {
	articulos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ArticuloResponse, len(articulos))
	for i := range articulos {
		data[i] = *articuloToResponse(&articulos[i])
	}
	return &dto.ArticuloListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *articuloService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarArticuloRequest) (*dto.ArticuloResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("articulo no encontrado")
	}
	if req.Descripcion != nil {
		a.Descripcion = *req.Descripcion
	}
	if req.PrecioUnitario != nil {
		if req.PrecioUnitario.IsNegative() {
			return nil, errors.New("el precio unitario no puede ser negativo")
		}
		a.PrecioUnitario = *req.PrecioUnitario
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return articuloToResponse(a), nil
}

func (s *articuloService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *articuloService) Reactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Reactivar(ctx, id)
}

func articuloToResponse(a *model.Articulo) *dto.ArticuloResponse {
	return &dto.ArticuloResponse{
		ID:             a.ID.String(),
		Codigo:         a.Codigo,
		Descripcion:    a.Descripcion,
		PrecioUnitario: a.PrecioUnitario,
		Activo:         a.Activo,
	}
}
