package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Remito is a shipment note. Numbered locally — remitos carry no CAE.
// Estado: "emitido" | "entregado" | "anulado"
type Remito struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero    int64     `gorm:"uniqueIndex;not null"`
	ClienteID uuid.UUID `gorm:"type:uuid;index;not null"`
	Cliente   *Cliente
	Fecha     time.Time
	Estado    string  `gorm:"type:varchar(20);not null;default:'emitido'"`
	PDFPath   *string `gorm:"column:pdf_path"`
	Items     []RemitoItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RemitoItem is one shipped line; quantities only, no amounts on the
// printed document.
type RemitoItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RemitoID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	ArticuloID  *uuid.UUID `gorm:"type:uuid"`
	Descripcion string     `gorm:"type:varchar(200);not null"`
	Cantidad    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
