package models

import (
	"time"
)

type BirthType string

const (
	BirthVaginal  BirthType = "VAGINAL"
	BirthCesarean BirthType = "CESAREA"
	BirthForceps  BirthType = "FORCEPS"
)

func (t BirthType) Valid() bool {
	switch t {
	case BirthVaginal, BirthCesarean, BirthForceps:
		return true
	}
	return false
}

type Birth struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	MotherID         uint      `json:"madreId" gorm:"index;not null"`
	Mother           *Mother   `json:"madre,omitempty" gorm:"foreignKey:MotherID"`
	OccurredAt       time.Time `json:"fechaHora" gorm:"not null"`
	Type             BirthType `json:"tipo" gorm:"not null"`
	GestationalWeeks int       `json:"semanasGestacion"`
	Notes            string    `json:"observaciones"`
	Attendants       []User    `json:"profesionales,omitempty" gorm:"many2many:parto_profesionales;"`
	Newborns         []Newborn `json:"recienNacidos,omitempty" gorm:"foreignKey:BirthID"`
	CreatedByID      *uint     `json:"creadoPorId"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
