package service

import (
	"context"
	"errors"

	"facturador/internal/dto"
	"facturador/internal/model"
	"facturador/internal/repository"

	"github.com/google/uuid"
)

type ZonaService interface {
	Crear(ctx context.Context, req dto.CrearZonaRequest) (*dto.ZonaResponse, error)
	Listar(ctx context.Context) ([]dto.ZonaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarZonaRequest) (*dto.ZonaResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type zonaService struct {
	repo repository.ZonaRepository
}

func NewZonaService(repo repository.ZonaRepository) ZonaService {
	return &zonaService{repo: repo}
}

func (s *zonaService) Crear(ctx context.Context, req dto.CrearZonaRequest) (*dto.ZonaResponse, error) {
	z := &model.Zona{Nombre: req.Nombre, Activo: true}
	if err := s.repo.Create(ctx, z); err != nil {
		return nil, err
	}
	return zonaToResponse(z), nil
}

func (s *zonaService) Listar(ctx context.Context) ([]dto.ZonaResponse, error) {
	zonas, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ZonaResponse, len(zonas))
	for i, z := range zonas {
		resp[i] = *zonaToResponse(&z)
	}
	return resp, nil
}

func (s *zonaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarZonaRequest) (*dto.ZonaResponse, error) {
	z, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("zona no encontrada")
	}
	if req.Nombre != nil {
		z.Nombre = *req.Nombre
	}
	if err := s.repo.Update(ctx, z); err != nil {
		return nil, err
	}
	return zonaToResponse(z), nil
}

func (s *zonaService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func zonaToResponse(z *model.Zona) *dto.ZonaResponse {
	return &dto.ZonaResponse{ID: z.ID.String(), Nombre: z.Nombre, Activo: z.Activo}
}
