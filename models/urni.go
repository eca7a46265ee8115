package models

import (
	"errors"
	"time"
)

type EpisodeState string

const (
	EpisodeAdmitted   EpisodeState = "INGRESADO"
	EpisodeDischarged EpisodeState = "ALTA"
)

var (
	ErrAlreadyDischarged        = errors.New("el episodio ya fue dado de alta")
	ErrDischargeBeforeAdmission = errors.New("la fecha de alta no puede ser anterior a la fecha de ingreso")
)

// URNIEpisode is a stay of a newborn in the neonatal intermediate-care unit.
type URNIEpisode struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	NewbornID       uint             `json:"recienNacidoId" gorm:"index;not null"`
	Newborn         *Newborn         `json:"recienNacido,omitempty" gorm:"foreignKey:NewbornID"`
	State           EpisodeState     `json:"estado" gorm:"index;not null"`
	AdmittedAt      time.Time        `json:"fechaHoraIngreso" gorm:"not null"`
	DischargedAt    *time.Time       `json:"fechaHoraAlta"`
	AdmissionReason string           `json:"motivoIngreso"`
	AdmittedByID    *uint            `json:"ingresadoPorId"`
	DischargedByID  *uint            `json:"altaPorId"`
	Report          *DischargeReport `json:"informeAlta,omitempty" gorm:"foreignKey:EpisodeID"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

func (URNIEpisode) TableName() string {
	return "urni_episodes"
}

// CheckDischarge validates the INGRESADO -> ALTA transition at the given time.
func (e *URNIEpisode) CheckDischarge(at time.Time) error {
	if e.State != EpisodeAdmitted {
		return ErrAlreadyDischarged
	}
	if at.Before(e.AdmittedAt) {
		return ErrDischargeBeforeAdmission
	}
	return nil
}
