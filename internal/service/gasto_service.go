package service

import (
	"context"
	"errors"
	"time"

	"facturador/internal/dto"
	"facturador/internal/model"
	"facturador/internal/repository"

	"github.com/google/uuid"
)

type GastoService interface {
	Crear(ctx context.Context, req dto.CrearGastoRequest) (*dto.GastoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.GastoResponse, error)
	Listar(ctx context.Context, filter dto.GastoFilter) (*dto.GastoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarGastoRequest) (*dto.GastoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type gastoService struct {
	repo repository.GastoRepository
}

func NewGastoService(repo repository.GastoRepository) GastoService {
	return &gastoService{repo: repo}
}

func (s *gastoService) Crear(ctx context.Context, req dto.CrearGastoRequest) (*dto.GastoResponse, error) {
	if !req.Monto.IsPositive() {
		return nil, errors.New("el monto debe ser mayor a cero")
	}
	fecha := time.Now()
	if req.Fecha != "" {
		f, err := time.Parse("2006-01-02", req.Fecha)
		if err != nil {
			return nil, errors.New("fecha invalida")
		}
		fecha = f
	}
	g := &model.Gasto{
		Fecha:     fecha,
		Concepto:  req.Concepto,
		Categoria: req.Categoria,
		Monto:     req.Monto,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	return gastoToResponse(g), nil
}

func (s *gastoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.GastoResponse, error) {
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("gasto no encontrado")
	}
	return gastoToResponse(g), nil
}

func (s *gastoService) Listar(ctx context.Context, filter dto.GastoFilter) (*dto.GastoListResponse, error) {
	gastos, total, suma, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.GastoResponse, len(gastos))
	for i := range gastos {
		data[i] = *gastoToResponse(&gastos[i])
	}
	return &dto.GastoListResponse{
		Data:       data,
		Total:      total,
		TotalMonto: suma,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *gastoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarGastoRequest) (*dto.GastoResponse, error) {
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("gasto no encontrado")
	}
	if req.Fecha != nil {
		f, err := time.Parse("2006-01-02", *req.Fecha)
		if err != nil {
			return nil, errors.New("fecha invalida")
		}
		g.Fecha = f
	}
	if req.Concepto != nil {
		g.Concepto = *req.Concepto
	}
	if req.Categoria != nil {
		g.Categoria = *req.Categoria
	}
	if req.Monto != nil {
		if !req.Monto.IsPositive() {
			return nil, errors.New("el monto debe ser mayor a cero")
		}
		g.Monto = *req.Monto
	}
	if err := s.repo.Update(ctx, g); err != nil {
		return nil, err
	}
	return gastoToResponse(g), nil
}

func (s *gastoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func gastoToResponse(g *model.Gasto) *dto.GastoResponse {
	return &dto.GastoResponse{
		ID:        g.ID.String(),
		Fecha:     g.Fecha.Format("2006-01-02"),
		Concepto:  g.Concepto,
		Categoria: g.Categoria,
		Monto:     g.Monto,
	}
}
