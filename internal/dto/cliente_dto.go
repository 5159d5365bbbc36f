package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	RazonSocial   string  `json:"razon_social"   validate:"required,min=2,max=120"`
	CondicionIVA  string  `json:"condicion_iva"  validate:"required,oneof=responsable_inscripto monotributo exento consumidor_final"`
	TipoDocumento string  `json:"tipo_documento" validate:"omitempty,oneof=CUIT CUIL DNI"`
	NroDocumento  string  `json:"nro_documento"  validate:"omitempty,max=20"`
	Domicilio     string  `json:"domicilio"      validate:"omitempty,max=200"`
	Email         *string `json:"email"          validate:"omitempty,email"`
	Telefono      *string `json:"telefono"       validate:"omitempty,max=30"`
	ZonaID        *string `json:"zona_id"        validate:"omitempty,uuid"`
}

type ActualizarClienteRequest struct {
	RazonSocial   *string `json:"razon_social"   validate:"omitempty,min=2,max=120"`
	CondicionIVA  *string `json:"condicion_iva"  validate:"omitempty,oneof=responsable_inscripto monotributo exento consumidor_final"`
	TipoDocumento *string `json:"tipo_documento" validate:"omitempty,oneof=CUIT CUIL DNI"`
	NroDocumento  *string `json:"nro_documento"  validate:"omitempty,max=20"`
	Domicilio     *string `json:"domicilio"      validate:"omitempty,max=200"`
	Email         *string `json:"email"          validate:"omitempty,email"`
	Telefono      *string `json:"telefono"       validate:"omitempty,max=30"`
	ZonaID        *string `json:"zona_id"        validate:"omitempty,uuid"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ClienteFilter struct {
	RazonSocial string `form:"razon_social"`
	ZonaID      string `form:"zona_id"`
	// Activo: "false" = inactivos, "all" = todos, anything else = activos
	Activo string `form:"activo"`
	Page   int    `form:"page,default=1"  validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID            string  `json:"id"`
	RazonSocial   string  `json:"razon_social"`
	CondicionIVA  string  `json:"condicion_iva"`
	TipoDocumento string  `json:"tipo_documento"`
	NroDocumento  string  `json:"nro_documento"`
	Domicilio     string  `json:"domicilio"`
	Email         *string `json:"email"`
	Telefono      *string `json:"telefono"`
	ZonaID        *string `json:"zona_id"`
	ZonaNombre    *string `json:"zona_nombre"`
	Activo        bool    `json:"activo"`
}

type ClienteListResponse struct {
	Data       []ClienteResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}
