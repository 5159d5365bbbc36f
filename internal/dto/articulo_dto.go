package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearArticuloRequest struct {
	Codigo         string          `json:"codigo"          validate:"required,min=1,max=40"`
	Descripcion    string          `json:"descripcion"     validate:"required,min=2,max=200"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"required"`
}

type ActualizarArticuloRequest struct {
	Descripcion    *string          `json:"descripcion"     validate:"omitempty,min=2,max=200"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ArticuloFilter struct {
	Codigo      string `form:"codigo"`
	Descripcion string `form:"descripcion"`
	Activo      string `form:"activo"`
	Page        int    `form:"page,default=1"  validate:"min=1"`
	Limit       int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ArticuloResponse struct {
	ID             string          `json:"id"`
	Codigo         string          `json:"codigo"`
	Descripcion    string          `json:"descripcion"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Activo         bool            `json:"activo"`
}

type ArticuloListResponse struct {
	Data       []ArticuloResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
