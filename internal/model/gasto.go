package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gasto is an expense record.
type Gasto struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Fecha     time.Time       `gorm:"not null"`
	Concepto  string          `gorm:"type:varchar(200);not null"`
	Categoria string          `gorm:"type:varchar(60)"`
	Monto     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
