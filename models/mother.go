package models

import (
	"time"
)

type Mother struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Rut         string     `json:"rut" gorm:"uniqueIndex;not null"`
	FirstNames  string     `json:"nombres" gorm:"not null"`
	LastNames   string     `json:"apellidos" gorm:"not null"`
	BirthDate   *time.Time `json:"fechaNacimiento"`
	Address     string     `json:"direccion"`
	Phone       string     `json:"telefono"`
	Insurance   string     `json:"prevision"`
	CreatedByID *uint      `json:"creadoPorId"`
	Births      []Birth    `json:"partos,omitempty" gorm:"foreignKey:MotherID"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
