package db

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/models"
)

// DefaultPermissions is the fixed permission catalogue.
var DefaultPermissions = []models.Permission{
	{Code: models.PermMotherView, Description: "Ver madres"},
	{Code: models.PermMotherCreate, Description: "Registrar madres"},
	{Code: models.PermMotherUpdate, Description: "Editar madres"},
	{Code: models.PermBirthView, Description: "Ver partos"},
	{Code: models.PermBirthCreate, Description: "Registrar partos"},
	{Code: models.PermNewbornView, Description: "Ver recién nacidos"},
	{Code: models.PermNewbornCreate, Description: "Registrar recién nacidos"},
	{Code: models.PermURNIView, Description: "Ver episodios URNI"},
	{Code: models.PermURNICreate, Description: "Ingresar a URNI"},
	{Code: models.PermURNIDischarge, Description: "Procesar altas URNI"},
	{Code: models.PermReportView, Description: "Ver informes de alta"},
	{Code: models.PermAuditView, Description: "Consultar auditoría"},
	{Code: models.PermRolesManage, Description: "Administrar roles y permisos"},
	{Code: models.PermUsersManage, Description: "Administrar usuarios"},
	{Code: models.PermREMReportView, Description: "Ver reportes REM"},
}

// DefaultRoles maps each seeded role to its permission codes. The admin role
// receives every permission and is not listed here.
var DefaultRoles = map[string][]string{
	models.RoleMidwife: {
		models.PermMotherView, models.PermMotherCreate, models.PermMotherUpdate,
		models.PermBirthView, models.PermBirthCreate,
		models.PermNewbornView, models.PermNewbornCreate,
		models.PermURNIView, models.PermReportView,
	},
	models.RoleDoctor: {
		models.PermMotherView, models.PermBirthView, models.PermBirthCreate,
		models.PermNewbornView, models.PermNewbornCreate,
		models.PermURNIView, models.PermURNICreate, models.PermURNIDischarge,
		models.PermReportView, models.PermREMReportView,
	},
	models.RoleNurse: {
		models.PermMotherView, models.PermBirthView, models.PermNewbornView,
		models.PermURNIView, models.PermURNICreate, models.PermReportView,
	},
	models.RoleAdministrative: {
		models.PermMotherView, models.PermMotherCreate, models.PermMotherUpdate,
		models.PermBirthView, models.PermReportView, models.PermREMReportView,
	},
}

var roleDescriptions = map[string]string{
	models.RoleAdmin:          "Administrador del sistema",
	models.RoleMidwife:        "Matrona",
	models.RoleDoctor:         "Médico",
	models.RoleNurse:          "Enfermera",
	models.RoleAdministrative: "Personal administrativo",
}

// Seed creates the permission catalogue and default roles. It is idempotent:
// existing rows are kept and role grants are reset to the defaults.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		all := make([]models.Permission, 0, len(DefaultPermissions))
		byCode := make(map[string]models.Permission, len(DefaultPermissions))
		for _, p := range DefaultPermissions {
			perm := p
			if err := tx.Where("code = ?", perm.Code).Attrs(models.Permission{Description: perm.Description}).
				FirstOrCreate(&perm).Error; err != nil {
				return fmt.Errorf("seed permission %s: %w", p.Code, err)
			}
			all = append(all, perm)
			byCode[perm.Code] = perm
		}

		for name, desc := range roleDescriptions {
			role := models.Role{Name: name}
			if err := tx.Where("name = ?", name).Attrs(models.Role{Description: desc}).
				FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", name, err)
			}

			grants := all
			if name != models.RoleAdmin {
				grants = make([]models.Permission, 0, len(DefaultRoles[name]))
				for _, code := range DefaultRoles[name] {
					grants = append(grants, byCode[code])
				}
			}
			if err := tx.Model(&role).Association("Permissions").Replace(grants); err != nil {
				return fmt.Errorf("seed grants for %s: %w", name, err)
			}
		}
		return nil
	})
}

// EnsureAdmin creates an active administrator with the given credentials when
// no user with that email exists yet.
func EnsureAdmin(db *gorm.DB, email, name, rut, password string) (*models.User, error) {
	var user models.User
	if db.Where("email = ?", email).Limit(1).Find(&user).RowsAffected > 0 {
		return &user, nil
	}

	var admin models.Role
	if err := db.Where("name = ?", models.RoleAdmin).First(&admin).Error; err != nil {
		return nil, fmt.Errorf("admin role not seeded: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user = models.User{
		Email:    email,
		Name:     name,
		Rut:      rut,
		Password: string(hash),
		Active:   true,
		Roles:    []models.Role{admin},
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
