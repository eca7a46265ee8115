package models

import (
	"time"
)

// Role names seeded at install time. Professional roles are the ones that can
// be looked up as attending staff.
const (
	RoleAdmin          = "administrador"
	RoleMidwife        = "matrona"
	RoleDoctor         = "medico"
	RoleNurse          = "enfermera"
	RoleAdministrative = "administrativo"
)

var ProfessionalRoles = []string{RoleMidwife, RoleDoctor, RoleNurse}

func IsProfessionalRole(name string) bool {
	for _, r := range ProfessionalRoles {
		if r == name {
			return true
		}
	}
	return false
}

type Role struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Name        string       `json:"nombre" gorm:"uniqueIndex;not null"`
	Description string       `json:"descripcion"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Permissions []Permission `json:"permisos,omitempty" gorm:"many2many:role_permissions;"`
}
