package db

import (
	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/models"
)

// Models lists every table owned by the application, in dependency order.
var Models = []interface{}{
	&models.Permission{},
	&models.Role{},
	&models.User{},
	&models.Mother{},
	&models.Birth{},
	&models.Newborn{},
	&models.URNIEpisode{},
	&models.DischargeReport{},
	&models.AuditEntry{},
}

// Migrate runs AutoMigrate. It is only invoked explicitly (main -migrate and
// tests), never on a normal start.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models...)
}
