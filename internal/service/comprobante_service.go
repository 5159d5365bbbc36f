package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"facturador/internal/dto"
	"facturador/internal/model"
	"facturador/internal/repository"
	"facturador/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type ComprobanteService interface {
	// Crear persists the comprobante in estado "pendiente" and enqueues the
	// issuance job. Authorization is asynchronous: the response only
	// acknowledges the queue write.
	Crear(ctx context.Context, req dto.CrearComprobanteRequest) (*dto.EncolarResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ComprobanteResponse, error)
	Listar(ctx context.Context, filter dto.ComprobanteFilter) (*dto.ComprobanteListResponse, error)
	ObtenerPDFPath(ctx context.Context, id uuid.UUID) (string, error)
	// Reintentar re-enqueues a comprobante that ended in "rechazado" or
	// "error" after an operator reviewed it.
	Reintentar(ctx context.Context, id uuid.UUID) (*dto.EncolarResponse, error)
}

// FacturacionEncolador is the queue write the service needs from the
// dispatcher; *worker.Dispatcher implements it.
type FacturacionEncolador interface {
	EnqueueFacturacion(ctx context.Context, payload interface{}) error
}

type comprobanteService struct {
	repo         repository.ComprobanteRepository
	clienteRepo  repository.ClienteRepository
	articuloRepo repository.ArticuloRepository
	dispatcher   FacturacionEncolador
	puntoVenta   int
}

func NewComprobanteService(
	repo repository.ComprobanteRepository,
	clienteRepo repository.ClienteRepository,
	articuloRepo repository.ArticuloRepository,
	dispatcher FacturacionEncolador,
	puntoVenta int,
) ComprobanteService {
	return &comprobanteService{
		repo:         repo,
		clienteRepo:  clienteRepo,
		articuloRepo: articuloRepo,
		dispatcher:   dispatcher,
		puntoVenta:   puntoVenta,
	}
}

func (s *comprobanteService) Crear(ctx context.Context, req dto.CrearComprobanteRequest) (*dto.EncolarResponse, error) {
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

	items, neto, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	comp := &model.Comprobante{
		ClienteID:    clienteID,
		PuntoVenta:   s.puntoVenta,
		Fecha:        fecha,
		ImporteNeto:  neto,
		ImporteTotal: neto, // provisional — the worker overwrites with the authorized amounts
		Estado:       "pendiente",
		Items:        items,
	}
	if err := s.repo.Create(ctx, comp); err != nil {
		return nil, err
	}

	if err := s.enqueue(ctx, comp.ID); err != nil {
		return nil, err
	}
	return &dto.EncolarResponse{ComprobanteID: comp.ID.String(), Estado: comp.Estado}, nil
}

func (s *comprobanteService) resolveItems(ctx context.Context, reqItems []dto.ItemComprobanteRequest) ([]model.ComprobanteItem, decimal.Decimal, error) {
	items := make([]model.ComprobanteItem, len(reqItems))
	neto := decimal.Zero

	for i, ri := range reqItems {
		if !ri.Cantidad.IsPositive() {
			return nil, decimal.Zero, errors.New("la cantidad debe ser mayor a cero")
		}

		item := model.ComprobanteItem{
			Cantidad:    ri.Cantidad,
			Descripcion: ri.Descripcion,
		}

		if ri.ArticuloID != nil {
			aid, err := uuid.Parse(*ri.ArticuloID)
			if err != nil {
				return nil, decimal.Zero, errors.New("articulo_id invalido")
			}
			art, err := s.articuloRepo.FindByID(ctx, aid)
			if err != nil {
				return nil, decimal.Zero, fmt.Errorf("articulo %s no encontrado", aid)
			}
			item.ArticuloID = &art.ID
			if item.Descripcion == "" {
				item.Descripcion = art.Descripcion
			}
			item.PrecioUnitario = art.PrecioUnitario
		}
		// An explicit price overrides the article's list price.
		if ri.PrecioUnitario != nil {
			item.PrecioUnitario = *ri.PrecioUnitario
		}

		if item.Descripcion == "" {
			return nil, decimal.Zero, errors.New("cada item necesita un articulo o una descripción")
		}
		if ri.ArticuloID == nil && ri.PrecioUnitario == nil {
			return nil, decimal.Zero, errors.New("cada item necesita un precio unitario")
		}
		if item.PrecioUnitario.IsNegative() {
			return nil, decimal.Zero, errors.New("el precio unitario no puede ser negativo")
		}

		item.Subtotal = item.Cantidad.Mul(item.PrecioUnitario).Round(2)
		neto = neto.Add(item.Subtotal)
		items[i] = item
	}

	return items, neto, nil
}

func (s *comprobanteService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ComprobanteResponse, error) {
	comp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("comprobante no encontrado")
	}
	return comprobanteToResponse(comp, true), nil
}

func (s *comprobanteService) Listar(ctx context.Context, filter dto.ComprobanteFilter) (*dto.ComprobanteListResponse, error) {
	comprobantes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ComprobanteResponse, len(comprobantes))
	for i := range comprobantes {
		data[i] = *comprobanteToResponse(&comprobantes[i], false)
	}
	return &dto.ComprobanteListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *comprobanteService) ObtenerPDFPath(ctx context.Context, id uuid.UUID) (string, error) {
	comp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", errors.New("comprobante no encontrado")
	}
	if comp.PDFPath == nil || *comp.PDFPath == "" {
		return "", fmt.Errorf("PDF no disponible — el comprobante está en estado '%s'", comp.Estado)
	}
	return *comp.PDFPath, nil
}

func (s *comprobanteService) Reintentar(ctx context.Context, id uuid.UUID) (*dto.EncolarResponse, error) {
	comp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("comprobante no encontrado")
	}
	if comp.Estado != "rechazado" && comp.Estado != "error" {
		return nil, fmt.Errorf("solo se reintentan comprobantes rechazados o con error (estado actual: '%s')", comp.Estado)
	}

	comp.Estado = "pendiente"
	comp.NextRetryAt = nil
	comp.LastError = nil
	if err := s.repo.Update(ctx, comp); err != nil {
		return nil, err
	}

	if err := s.enqueue(ctx, comp.ID); err != nil {
		return nil, err
	}
	log.Info().Str("comprobante_id", comp.ID.String()).Msg("comprobante re-enqueued manually")
	return &dto.EncolarResponse{ComprobanteID: comp.ID.String(), Estado: comp.Estado}, nil
}

func (s *comprobanteService) enqueue(ctx context.Context, id uuid.UUID) error {
	payload := worker.FacturacionJobPayload{ComprobanteID: id.String()}
	if err := s.dispatcher.EnqueueFacturacion(ctx, payload); err != nil {
		return fmt.Errorf("no se pudo encolar la facturación: %w", err)
	}
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func comprobanteToResponse(c *model.Comprobante, withItems bool) *dto.ComprobanteResponse {
	resp := &dto.ComprobanteResponse{
		ID:            c.ID.String(),
		ClienteID:     c.ClienteID.String(),
		CbteTipo:      c.CbteTipo,
		PuntoVenta:    c.PuntoVenta,
		NumeroOficial: c.NumeroOficial,
		Fecha:         c.Fecha.Format("2006-01-02"),
		CAE:           c.CAE,
		ImporteNeto:   c.ImporteNeto,
		ImporteIVA:    c.ImporteIVA,
		ImporteTotal:  c.ImporteTotal,
		Estado:        c.Estado,
		Observaciones: c.Observaciones,
		UltimoError:   c.LastError,
	}
	if c.Cliente != nil {
		resp.RazonSocial = c.Cliente.RazonSocial
	}
	if c.CAEVencimiento != nil {
		s := c.CAEVencimiento.Format("2006-01-02")
		resp.CAEVencimiento = &s
	}
	if withItems {
		resp.Items = make([]dto.ItemComprobanteResponse, len(c.Items))
		for i, item := range c.Items {
			resp.Items[i] = dto.ItemComprobanteResponse{
				Descripcion:    item.Descripcion,
				Cantidad:       item.Cantidad,
				PrecioUnitario: item.PrecioUnitario,
				Subtotal:       item.Subtotal,
			}
		}
	}
	return resp
}
