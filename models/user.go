package models

import (
	"time"
)

type User struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	Email     string       `json:"email" gorm:"uniqueIndex;not null"`
	Name      string       `json:"nombre" gorm:"not null"`
	Rut       string       `json:"rut" gorm:"uniqueIndex;not null"`
	Password  string       `json:"-"`
	Active    bool         `json:"activo" gorm:"not null"`
	Roles     []Role       `json:"roles,omitempty" gorm:"many2many:user_roles;"`
	Grants    []Permission `json:"permisosDirectos,omitempty" gorm:"many2many:user_permissions;"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// RoleNames returns the names of the roles currently loaded on the user.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// HasRole reports whether one of the loaded roles is named name.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
