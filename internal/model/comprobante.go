package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Comprobante is an invoice pending or holding fiscal authorization.
// Estado: "pendiente" | "emitido" | "rechazado" | "error"
// The CAE, official number and amounts are written only from the issuing
// worker — a comprobante is never persisted half-authorized.
type Comprobante struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClienteID uuid.UUID `gorm:"type:uuid;index;not null"`
	Cliente   *Cliente
	// CbteTipo is assigned during issuance from the client's tax condition
	CbteTipo      int    `gorm:"column:cbte_tipo"`
	PuntoVenta    int    `gorm:"column:punto_venta"`
	Numero        *int64 // sequential number assigned by the fiscal authority
	NumeroOficial *string `gorm:"type:varchar(16);column:numero_oficial"` // "00001-00000123"
	Fecha         time.Time
	// CAE is the authorization code returned by the fiscal authority
	CAE            *string    `gorm:"type:varchar(20);column:cae"`
	CAEVencimiento *time.Time `gorm:"column:cae_vencimiento"`
	ImporteNeto    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ImporteIVA     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:importe_iva"`
	ImporteTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Estado         string          `gorm:"type:varchar(20);not null;default:'pendiente'"`
	Observaciones  *string
	PDFPath        *string `gorm:"column:pdf_path"`
	// Retry fields — used by retry_cron to re-enqueue stalled issuances
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`
	LastError   *string
	Items       []ComprobanteItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ComprobanteItem is one invoice line.
type ComprobanteItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ComprobanteID  uuid.UUID `gorm:"type:uuid;index;not null"`
	ArticuloID     *uuid.UUID `gorm:"type:uuid"`
	Descripcion    string    `gorm:"type:varchar(200);not null"`
	Cantidad       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
