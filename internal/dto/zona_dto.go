package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearZonaRequest struct {
	Nombre string `json:"nombre" validate:"required,min=2,max=80"`
}

type ActualizarZonaRequest struct {
	Nombre *string `json:"nombre" validate:"omitempty,min=2,max=80"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ZonaResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Activo bool   `json:"activo"`
}
