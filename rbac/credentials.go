package rbac

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/session"
)

var (
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrInactiveUser       = errors.New("usuario inactivo")
)

// Authenticate checks an email/password pair against the stored bcrypt hash.
func Authenticate(ctx context.Context, db *gorm.DB, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	res := db.WithContext(ctx).Preload("Roles").Where("email = ?", email).Limit(1).Find(&user)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 || user.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrInactiveUser
	}
	return &user, nil
}

// NewSession builds the cookie content for user. The permission list is a
// display cache; the gate always re-resolves permissions.
func (r *Resolver) NewSession(ctx context.Context, user *models.User) (*session.Session, error) {
	roles := user.RoleNames()
	perms, err := r.ResolvePermissions(ctx, roles, user.ID)
	if err != nil {
		return nil, err
	}
	return &session.Session{
		UserID:      user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Rut:         user.Rut,
		Roles:       roles,
		Permissions: perms.Sorted(),
	}, nil
}
