// Package testutil provides an in-memory database with the seeded role and
// permission catalogue, plus small fixtures shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/meinhoongagan/maternity-app/db"
	"github.com/meinhoongagan/maternity-app/models"
)

var dbSeq atomic.Int64

// NewDB opens a private in-memory sqlite database, migrates and seeds it.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_loc=UTC", dbSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive and serialises
	// access the way sqlite expects.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	require.NoError(t, db.Seed(gdb))
	return gdb
}

// NewLogger returns a silent logger and a hook capturing its entries.
func NewLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

var userSeq atomic.Int64

// CreateUser inserts an active user holding the named roles.
func CreateUser(t *testing.T, gdb *gorm.DB, name string, roles ...string) *models.User {
	t.Helper()

	n := userSeq.Add(1)
	user := models.User{
		Email:  fmt.Sprintf("%s%d@hospital.test", strings.ToLower(strings.ReplaceAll(name, " ", ".")), n),
		Name:   name,
		Rut:    fmt.Sprintf("%d-%d", 10000000+n, n%10),
		Active: true,
	}
	if len(roles) > 0 {
		require.NoError(t, gdb.Where("name IN ?", roles).Find(&user.Roles).Error)
		require.Len(t, user.Roles, len(roles), "unknown role in %v", roles)
	}
	require.NoError(t, gdb.Create(&user).Error)
	return &user
}

// Deactivate flips a user's active flag off.
func Deactivate(t *testing.T, gdb *gorm.DB, user *models.User) {
	t.Helper()
	require.NoError(t, gdb.Model(&models.User{}).Where("id = ?", user.ID).Update("active", false).Error)
}

// Grant gives a user a direct permission outside its roles.
func Grant(t *testing.T, gdb *gorm.DB, user *models.User, code string) {
	t.Helper()
	var perm models.Permission
	require.NoError(t, gdb.Where("code = ?", code).First(&perm).Error)
	require.NoError(t, gdb.Model(user).Association("Grants").Append(&perm))
}

var motherSeq atomic.Int64

func CreateMother(t *testing.T, gdb *gorm.DB) *models.Mother {
	t.Helper()
	n := motherSeq.Add(1)
	mother := models.Mother{
		Rut:        fmt.Sprintf("%d-K", 20000000+n),
		FirstNames: fmt.Sprintf("Madre %d", n),
		LastNames:  "Pérez Soto",
	}
	require.NoError(t, gdb.Create(&mother).Error)
	return &mother
}

func CreateBirth(t *testing.T, gdb *gorm.DB, mother *models.Mother, at time.Time) *models.Birth {
	t.Helper()
	birth := models.Birth{
		MotherID:         mother.ID,
		OccurredAt:       at.UTC(),
		Type:             models.BirthVaginal,
		GestationalWeeks: 38,
	}
	require.NoError(t, gdb.Create(&birth).Error)
	return &birth
}

func CreateNewborn(t *testing.T, gdb *gorm.DB, birth *models.Birth) *models.Newborn {
	t.Helper()
	nb := models.Newborn{BirthID: birth.ID, Sex: models.SexFemale, WeightGrams: 3200, LengthCm: 49.5, Apgar1: 8, Apgar5: 9}
	require.NoError(t, gdb.Create(&nb).Error)
	return &nb
}

// AdmitNewborn opens an URNI episode for a fresh mother/birth/newborn chain.
func AdmitNewborn(t *testing.T, gdb *gorm.DB, admittedAt time.Time) *models.URNIEpisode {
	t.Helper()
	mother := CreateMother(t, gdb)
	birth := CreateBirth(t, gdb, mother, admittedAt.Add(-2*time.Hour))
	nb := CreateNewborn(t, gdb, birth)
	ep := models.URNIEpisode{
		NewbornID:       nb.ID,
		State:           models.EpisodeAdmitted,
		AdmittedAt:      admittedAt.UTC(),
		AdmissionReason: "Prematurez",
	}
	require.NoError(t, gdb.Create(&ep).Error)
	return &ep
}

// CountAudit returns the number of audit rows with the given action.
func CountAudit(t *testing.T, gdb *gorm.DB, action string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&models.AuditEntry{}).Where("action = ?", action).Count(&n).Error)
	return n
}
