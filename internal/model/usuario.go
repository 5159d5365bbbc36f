package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario is a back-office operator.
// Rol: "administrador" | "operador"
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"type:varchar(60);uniqueIndex;not null"`
	Nombre       string    `gorm:"type:varchar(120);not null"`
	PasswordHash string    `gorm:"type:varchar(100);not null"`
	Rol          string    `gorm:"type:varchar(20);not null;default:'operador'"`
	Activo       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
