package model

import (
	"time"

	"github.com/google/uuid"
)

// Cliente is a billable party.
// CondicionIVA: "responsable_inscripto" | "monotributo" | "exento" | "consumidor_final"
// TipoDocumento: "CUIT" | "CUIL" | "DNI" | "" (consumidor final)
type Cliente struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RazonSocial   string    `gorm:"type:varchar(120);not null"`
	CondicionIVA  string    `gorm:"type:varchar(30);column:condicion_iva"`
	TipoDocumento string    `gorm:"type:varchar(10)"`
	NroDocumento  string    `gorm:"type:varchar(20)"`
	Domicilio     string    `gorm:"type:varchar(200)"`
	Email         *string   `gorm:"type:varchar(120)"`
	Telefono      *string   `gorm:"type:varchar(30)"`
	ZonaID        *uuid.UUID `gorm:"type:uuid;index"`
	Zona          *Zona
	Activo        bool `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
