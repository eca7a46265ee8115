package models

import (
	"time"
)

type DischargeType string

const (
	DischargeHome     DischargeType = "DOMICILIO"
	DischargeTransfer DischargeType = "TRASLADO"
	DischargeOther    DischargeType = "OTRO"
)

func (t DischargeType) Valid() bool {
	switch t {
	case DischargeHome, DischargeTransfer, DischargeOther:
		return true
	}
	return false
}

// DischargeReport is the informe de alta issued when an URNI episode closes.
type DischargeReport struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	EpisodeID   uint          `json:"episodioId" gorm:"uniqueIndex;not null"`
	Type        DischargeType `json:"tipoAlta" gorm:"not null"`
	Destination string        `json:"destino"`
	Diagnosis   string        `json:"diagnosticoEgreso"`
	Indications string        `json:"indicaciones"`
	Notes       string        `json:"observaciones"`
	IssuedAt    time.Time     `json:"fechaEmision" gorm:"not null"`
	AuthorID    *uint         `json:"autorId"`
	Author      *User         `json:"autor,omitempty" gorm:"foreignKey:AuthorID"`
	CreatedAt   time.Time     `json:"createdAt"`
}
