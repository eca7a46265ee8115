package models

import (
	"time"
)

type Sex string

const (
	SexMale          Sex = "M"
	SexFemale        Sex = "F"
	SexIndeterminate Sex = "I"
)

func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale || s == SexIndeterminate
}

type Newborn struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	BirthID     uint      `json:"partoId" gorm:"index;not null"`
	Birth       *Birth    `json:"parto,omitempty" gorm:"foreignKey:BirthID"`
	Sex         Sex       `json:"sexo" gorm:"not null"`
	WeightGrams int       `json:"pesoGramos"`
	LengthCm    float64   `json:"tallaCm"`
	Apgar1      int       `json:"apgar1"`
	Apgar5      int       `json:"apgar5"`
	Notes       string    `json:"observaciones"`
	CreatedByID *uint     `json:"creadoPorId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
