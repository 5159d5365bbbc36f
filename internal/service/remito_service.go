package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"facturador/internal/dto"
	"facturador/internal/model"
	"facturador/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RemitoRenderer writes the printable remito to disk.
type RemitoRenderer interface {
	GenerateRemitoPDF(rem *model.Remito, cliente *model.Cliente) (string, error)
}

type RemitoService interface {
	Crear(ctx context.Context, req dto.CrearRemitoRequest) (*dto.RemitoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.RemitoResponse, error)
	Listar(ctx context.Context, filter dto.RemitoFilter) (*dto.RemitoListResponse, error)
	CambiarEstado(ctx context.Context, id uuid.UUID, estado string) (*dto.RemitoResponse, error)
	ObtenerPDFPath(ctx context.Context, id uuid.UUID) (string, error)
}

type remitoService struct {
	repo         repository.RemitoRepository
	clienteRepo  repository.ClienteRepository
	articuloRepo repository.ArticuloRepository
	pdf          RemitoRenderer
}

func NewRemitoService(
	repo repository.RemitoRepository,
	clienteRepo repository.ClienteRepository,
	articuloRepo repository.ArticuloRepository,
	pdf RemitoRenderer,
) RemitoService {
	return &remitoService{repo: repo, clienteRepo: clienteRepo, articuloRepo: articuloRepo, pdf: pdf}
}

func (s *remitoService) Crear(ctx context.Context, req dto.CrearRemitoRequest) (*dto.RemitoResponse, error) {
	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, errors.New("cliente_id invalido")
	}
	cliente, err := s.clienteRepo.FindByID(ctx, clienteID)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	if !cliente.Activo {
		return nil, errors.New("el cliente está inactivo")
	}

	fecha := time.Now()
	if req.Fecha != "" {
		f, err := time.Parse("2006-01-02", req.Fecha)
		if err != nil {
			return nil, errors.New("fecha invalida")
		}
		fecha = f
	}

	items := make([]model.RemitoItem, len(req.Items))
	for i, ri := range req.Items {
		if !ri.Cantidad.IsPositive() {
			return nil, errors.New("la cantidad debe ser mayor a cero")
		}
		item := model.RemitoItem{
			Cantidad:    ri.Cantidad,
			Descripcion: ri.Descripcion,
		}
		if ri.ArticuloID != nil {
			aid, err := uuid.Parse(*ri.ArticuloID)
			if err != nil {
				return nil, errors.New("articulo_id invalido")
			}
			art, err := s.articuloRepo.FindByID(ctx, aid)
			if err != nil {
				return nil, fmt.Errorf("articulo %s no encontrado", aid)
			}
			item.ArticuloID = &art.ID
			if item.Descripcion == "" {
				item.Descripcion = art.Descripcion
			}
		}
		if item.Descripcion == "" {
			return nil, errors.New("cada item necesita un articulo o una descripción")
		}
		items[i] = item
	}

	numero, err := s.repo.NextNumero(ctx)
	if err != nil {
		return nil, err
	}

	rem := &model.Remito{
		Numero:    numero,
		ClienteID: clienteID,
		Fecha:     fecha,
		Estado:    "emitido",
		Items:     items,
	}
	if err := s.repo.Create(ctx, rem); err != nil {
		return nil, err
	}

	// PDF is best-effort: the remito exists either way.
	if path, err := s.pdf.GenerateRemitoPDF(rem, cliente); err != nil {
		log.Warn().Err(err).Int64("numero", rem.Numero).Msg("remito PDF generation failed")
	} else {
		rem.PDFPath = &path
		_ = s.repo.Update(ctx, rem)
	}

	rem.Cliente = cliente
	return remitoToResponse(rem, true), nil
}

func (s *remitoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.RemitoResponse, error) {
	rem, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("remito no encontrado")
	}
	return remitoToResponse(rem, true), nil
}

func (s *remitoService) Listar(ctx context.Context, filter dto.RemitoFilter) (*dto.RemitoListResponse, error) {
	remitos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.RemitoResponse, len(remitos))
	for i := range remitos {
		data[i] = *remitoToResponse(&remitos[i], false)
	}
	return &dto.RemitoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *remitoService) CambiarEstado(ctx context.Context, id uuid.UUID, estado string) (*dto.RemitoResponse, error) {
	rem, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("remito no encontrado")
	}
	// An anulado remito is terminal.
	if rem.Estado == "anulado" {
		return nil, errors.New("el remito está anulado")
	}
	rem.Estado = estado
	if err := s.repo.Update(ctx, rem); err != nil {
		return nil, err
	}
	return remitoToResponse(rem, true), nil
}

func (s *remitoService) ObtenerPDFPath(ctx context.Context, id uuid.UUID) (string, error) {
	rem, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", errors.New("remito no encontrado")
	}
	if rem.PDFPath == nil || *rem.PDFPath == "" {
		return "", errors.New("PDF no disponible")
	}
	return *rem.PDFPath, nil
}

func remitoToResponse(r *model.Remito, withItems bool) *dto.RemitoResponse {
	resp := &dto.RemitoResponse{
		ID:        r.ID.String(),
		Numero:    r.Numero,
		ClienteID: r.ClienteID.String(),
		Fecha:     r.Fecha.Format("2006-01-02"),
		Estado:    r.Estado,
	}
	if r.Cliente != nil {
		resp.RazonSocial = r.Cliente.RazonSocial
	}
	if withItems {
		resp.Items = make([]dto.ItemRemitoResponse, len(r.Items))
		for i, item := range r.Items {
			resp.Items[i] = dto.ItemRemitoResponse{
				Descripcion: item.Descripcion,
				Cantidad:    item.Cantidad,
			}
		}
	}
	return resp
}
