package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemRemitoRequest struct {
	ArticuloID  *string         `json:"articulo_id" validate:"omitempty,uuid"`
	Descripcion string          `json:"descripcion" validate:"omitempty,max=200"`
	Cantidad    decimal.Decimal `json:"cantidad"    validate:"required"`
}

type CrearRemitoRequest struct {
	ClienteID string              `json:"cliente_id" validate:"required,uuid"`
	Fecha     string              `json:"fecha"      validate:"omitempty,datetime=2006-01-02"`
	Items     []ItemRemitoRequest `json:"items"      validate:"required,min=1,dive"`
}

type CambiarEstadoRemitoRequest struct {
	Estado string `json:"estado" validate:"required,oneof=emitido entregado anulado"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type RemitoFilter struct {
	ClienteID string `form:"cliente_id"`
	Estado    string `form:"estado"`
	Page      int    `form:"page,default=1"  validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemRemitoResponse struct {
	Descripcion string          `json:"descripcion"`
	Cantidad    decimal.Decimal `json:"cantidad"`
}

type RemitoResponse struct {
	ID          string               `json:"id"`
	Numero      int64                `json:"numero"`
	ClienteID   string               `json:"cliente_id"`
	RazonSocial string               `json:"razon_social,omitempty"`
	Fecha       string               `json:"fecha"`
	Estado      string               `json:"estado"`
	Items       []ItemRemitoResponse `json:"items,omitempty"`
}

type RemitoListResponse struct {
	Data       []RemitoResponse `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}
