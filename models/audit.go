package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrAuditImmutable is returned by any attempt to change a stored audit row.
var ErrAuditImmutable = errors.New("audit entries are append-only")

type AuditEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    *uint     `json:"usuarioId" gorm:"index"`
	User      *User     `json:"usuario,omitempty" gorm:"foreignKey:UserID"`
	RoleLabel string    `json:"rol"`
	Entity    string    `json:"entidad" gorm:"index;not null"`
	EntityID  string    `json:"entidadId"`
	Action    string    `json:"accion" gorm:"index;not null"`
	Before    JSONMap   `json:"antes" gorm:"type:jsonb"`
	After     JSONMap   `json:"despues" gorm:"type:jsonb"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	CreatedAt time.Time `json:"fechaHora" gorm:"index"`
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}

func (a *AuditEntry) BeforeUpdate(tx *gorm.DB) error {
	return ErrAuditImmutable
}

func (a *AuditEntry) BeforeDelete(tx *gorm.DB) error {
	return ErrAuditImmutable
}
