package service

import (
	"context"
	"errors"
	"math"

	"facturador/internal/dto"
	"facturador/internal/model"
	"facturador/internal/repository"

	"github.com/google/uuid"
)

type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	// A registered client with CUIT/CUIL/DNI must carry the number;
	// consumidor_final may omit both.
	if req.CondicionIVA != "consumidor_final" && (req.TipoDocumento == "" || req.NroDocumento == "") {
		return nil, errors.New("tipo y número de documento son obligatorios salvo consumidor final")
	}

	c := &model.Cliente{
		RazonSocial:   req.RazonSocial,
		CondicionIVA:  req.CondicionIVA,
		TipoDocumento: req.TipoDocumento,
		NroDocumento:  req.NroDocumento,
		Domicilio:     req.Domicilio,
		Email:         req.Email,
		Telefono:      req.Telefono,
		Activo:        true,
	}
	if req.ZonaID != nil {
		zid, err := uuid.Parse(*req.ZonaID)
		if err != nil {
			return nil, errors.New("zona_id invalido")
		}
		c.ZonaID = &zid
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error) {
	clientes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ClienteResponse, len(clientes))
	for i := range clientes {
		data[i] = *clienteToResponse(&clientes[i])
	}
	return &dto.ClienteListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	if req.RazonSocial != nil {
		c.RazonSocial = *req.RazonSocial
	}
	if req.CondicionIVA != nil {
		c.CondicionIVA = *req.CondicionIVA
	}
	if req.TipoDocumento != nil {
		c.TipoDocumento = *req.TipoDocumento
	}
	if req.NroDocumento != nil {
		c.NroDocumento = *req.NroDocumento
	}
	if req.Domicilio != nil {
		c.Domicilio = *req.Domicilio
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Telefono != nil {
		c.Telefono = req.Telefono
	}
	if req.ZonaID != nil {
		zid, err := uuid.Parse(*req.ZonaID)
		if err != nil {
			return nil, errors.New("zona_id invalido")
		}
		c.ZonaID = &zid
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *clienteService) Reactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Reactivar(ctx, id)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	resp := &dto.ClienteResponse{
		ID:            c.ID.String(),
		RazonSocial:   c.RazonSocial,
		CondicionIVA:  c.CondicionIVA,
		TipoDocumento: c.TipoDocumento,
		NroDocumento:  c.NroDocumento,
		Domicilio:     c.Domicilio,
		Email:         c.Email,
		Telefono:      c.Telefono,
		Activo:        c.Activo,
	}
	if c.ZonaID != nil {
		zid := c.ZonaID.String()
		resp.ZonaID = &zid
	}
	if c.Zona != nil {
		resp.ZonaNombre = &c.Zona.Nombre
	}
	return resp
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
