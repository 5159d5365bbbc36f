package model

import (
	"time"

	"github.com/google/uuid"
)

// Zona is a delivery/visit zone clients are grouped under.
type Zona struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"type:varchar(80);uniqueIndex;not null"`
	Activo    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
