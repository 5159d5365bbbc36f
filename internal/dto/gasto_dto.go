package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearGastoRequest struct {
	Fecha     string          `json:"fecha"     validate:"omitempty,datetime=2006-01-02"`
	Concepto  string          `json:"concepto"  validate:"required,min=2,max=200"`
	Categoria string          `json:"categoria" validate:"omitempty,max=60"`
	Monto     decimal.Decimal `json:"monto"     validate:"required"`
}

type ActualizarGastoRequest struct {
	Fecha     *string          `json:"fecha"     validate:"omitempty,datetime=2006-01-02"`
	Concepto  *string          `json:"concepto"  validate:"omitempty,min=2,max=200"`
	Categoria *string          `json:"categoria" validate:"omitempty,max=60"`
	Monto     *decimal.Decimal `json:"monto"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type GastoFilter struct {
	Categoria string `form:"categoria"`
	Desde     string `form:"desde"`
	Hasta     string `form:"hasta"`
	Page      int    `form:"page,default=1"  validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type GastoResponse struct {
	ID        string          `json:"id"`
	Fecha     string          `json:"fecha"`
	Concepto  string          `json:"concepto"`
	Categoria string          `json:"categoria"`
	Monto     decimal.Decimal `json:"monto"`
}

type GastoListResponse struct {
	Data       []GastoResponse `json:"data"`
	Total      int64           `json:"total"`
	TotalMonto decimal.Decimal `json:"total_monto"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}
