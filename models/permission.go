package models

import (
	"time"
)

// Permission codes have the form "<entity>:<action>". The set is fixed by the
// seed; nothing creates permissions at runtime.
const (
	PermMotherView    = "madre:view"
	PermMotherCreate  = "madre:create"
	PermMotherUpdate  = "madre:update"
	PermBirthView     = "parto:view"
	PermBirthCreate   = "parto:create"
	PermNewbornView   = "recien_nacido:view"
	PermNewbornCreate = "recien_nacido:create"
	PermURNIView      = "urni:view"
	PermURNICreate    = "urni:create"
	PermURNIDischarge = "urni:alta"
	PermReportView    = "informe_alta:view"
	PermAuditView     = "auditoria:view"
	PermRolesManage   = "roles:manage"
	PermUsersManage   = "usuarios:manage"
	PermREMReportView = "reporte_rem:view"
)

type Permission struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Code        string    `json:"codigo" gorm:"uniqueIndex;not null"`
	Description string    `json:"descripcion"`
	CreatedAt   time.Time `json:"createdAt"`
	Roles       []Role    `json:"roles,omitempty" gorm:"many2many:role_permissions;"`
}
