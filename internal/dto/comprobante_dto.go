package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemComprobanteRequest struct {
	ArticuloID     *string          `json:"articulo_id"     validate:"omitempty,uuid"`
	Descripcion    string           `json:"descripcion"     validate:"omitempty,max=200"`
	Cantidad       decimal.Decimal  `json:"cantidad"        validate:"required"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"`
}

type CrearComprobanteRequest struct {
	ClienteID string                   `json:"cliente_id" validate:"required,uuid"`
	Fecha     string                   `json:"fecha"      validate:"omitempty,datetime=2006-01-02"`
	Items     []ItemComprobanteRequest `json:"items"      validate:"required,min=1,dive"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ComprobanteFilter struct {
	ClienteID string `form:"cliente_id"`
	Estado    string `form:"estado"`
	Desde     string `form:"desde"`
	Hasta     string `form:"hasta"`
	Page      int    `form:"page,default=1"  validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemComprobanteResponse struct {
	Descripcion    string          `json:"descripcion"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type ComprobanteResponse struct {
	ID             string                    `json:"id"`
	ClienteID      string                    `json:"cliente_id"`
	RazonSocial    string                    `json:"razon_social,omitempty"`
	CbteTipo       int                       `json:"cbte_tipo"`
	PuntoVenta     int                       `json:"punto_venta"`
	NumeroOficial  *string                   `json:"numero_oficial"`
	Fecha          string                    `json:"fecha"`
	CAE            *string                   `json:"cae"`
	CAEVencimiento *string                   `json:"cae_vencimiento"`
	ImporteNeto    decimal.Decimal           `json:"importe_neto"`
	ImporteIVA     decimal.Decimal           `json:"importe_iva"`
	ImporteTotal   decimal.Decimal           `json:"importe_total"`
	Estado         string                    `json:"estado"`
	Observaciones  *string                   `json:"observaciones"`
	UltimoError    *string                   `json:"ultimo_error,omitempty"`
	Items          []ItemComprobanteResponse `json:"items,omitempty"`
}

type ComprobanteListResponse struct {
	Data       []ComprobanteResponse `json:"data"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
}

// EncolarResponse acknowledges that issuance was queued, not completed.
type EncolarResponse struct {
	ComprobanteID string `json:"comprobante_id"`
	Estado        string `json:"estado"`
}
