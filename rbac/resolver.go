package rbac

import (
	"context"

	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/models"
)

// Resolver computes effective permissions. Nothing is cached; every call
// reads the current grants.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// ResolvePermissions returns the union of the permissions granted by the named
// roles and the permissions granted directly to userID (0 for none).
func (r *Resolver) ResolvePermissions(ctx context.Context, roleNames []string, userID uint) (PermissionSet, error) {
	set := NewPermissionSet()

	if len(roleNames) > 0 {
		var roles []models.Role
		if err := r.db.WithContext(ctx).Preload("Permissions").
			Where("name IN ?", roleNames).Find(&roles).Error; err != nil {
			return nil, err
		}
		for _, role := range roles {
			for _, p := range role.Permissions {
				set.Add(p.Code)
			}
		}
	}

	if userID != 0 {
		var grants []models.Permission
		if err := r.db.WithContext(ctx).
			Joins("JOIN user_permissions ON user_permissions.permission_id = permissions.id").
			Where("user_permissions.user_id = ?", userID).
			Find(&grants).Error; err != nil {
			return nil, err
		}
		for _, p := range grants {
			set.Add(p.Code)
		}
	}

	return set, nil
}
