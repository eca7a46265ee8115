package audit

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/testutil"
)

func TestRecordWritesRow(t *testing.T) {
	gdb := testutil.NewDB(t)
	log, _ := testutil.NewLogger()
	r := NewRecorder(log)
	actor := testutil.CreateUser(t, gdb, "Matrona", models.RoleMidwife)
	mother := testutil.CreateMother(t, gdb)

	r.Record(gdb, Entry{
		ActorID:   &actor.ID,
		RoleLabel: models.RoleMidwife,
		Entity:    "Madre",
		EntityID:  "1",
		Action:    ActionCreate,
		After:     mother,
		IP:        "10.1.2.3",
		UserAgent: "test-agent",
	})

	var rows []models.AuditEntry
	require.NoError(t, gdb.Find(&rows).Error)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, actor.ID, *row.UserID)
	assert.Equal(t, "Madre", row.Entity)
	assert.Equal(t, ActionCreate, row.Action)
	assert.Nil(t, row.Before)
	assert.Equal(t, mother.Rut, row.After["rut"])
	assert.Equal(t, "10.1.2.3", row.IP)
	assert.Equal(t, "test-agent", row.UserAgent)
	assert.False(t, row.CreatedAt.IsZero())
}

func TestRecordSwallowsFailures(t *testing.T) {
	gdb := testutil.NewDB(t)
	log, hook := testutil.NewLogger()
	r := NewRecorder(log)
	require.NoError(t, gdb.Migrator().DropTable(&models.AuditEntry{}))

	assert.NotPanics(t, func() {
		r.Record(gdb, Entry{Entity: "Madre", EntityID: "1", Action: ActionUpdate})
	})
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "Madre", hook.LastEntry().Data["entity"])

	r.Record(gdb, Entry{Action: ActionUpdate})
	assert.Len(t, hook.AllEntries(), 2, "invalid entries are logged, not raised")
}

func TestRecordTxAbortsTransaction(t *testing.T) {
	gdb := testutil.NewDB(t)
	log, _ := testutil.NewLogger()
	r := NewRecorder(log)

	err := gdb.Transaction(func(tx *gorm.DB) error {
		mother := models.Mother{Rut: "1-9", FirstNames: "Rosa", LastNames: "Díaz"}
		if err := tx.Create(&mother).Error; err != nil {
			return err
		}
		// Missing action makes the audit write fail.
		return r.RecordTx(tx, Entry{Entity: "Madre", After: mother})
	})
	require.Error(t, err)

	var n int64
	require.NoError(t, gdb.Model(&models.Mother{}).Where("rut = ?", "1-9").Count(&n).Error)
	assert.Zero(t, n, "mutation rolled back with its audit row")

	err = gdb.Transaction(func(tx *gorm.DB) error {
		mother := models.Mother{Rut: "2-7", FirstNames: "Rosa", LastNames: "Díaz"}
		if err := tx.Create(&mother).Error; err != nil {
			return err
		}
		return r.RecordTx(tx, Entry{Entity: "Madre", Action: ActionCreate, After: mother})
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), testutil.CountAudit(t, gdb, ActionCreate))
}

func TestAuditRowsAreImmutable(t *testing.T) {
	gdb := testutil.NewDB(t)
	log, _ := testutil.NewLogger()
	NewRecorder(log).Record(gdb, Entry{Entity: "Madre", EntityID: "5", Action: ActionCreate})

	var row models.AuditEntry
	require.NoError(t, gdb.First(&row).Error)

	err := gdb.Model(&row).Update("action", ActionUpdate).Error
	assert.True(t, errors.Is(err, models.ErrAuditImmutable))

	row.Entity = "Parto"
	err = gdb.Save(&row).Error
	assert.True(t, errors.Is(err, models.ErrAuditImmutable))

	err = gdb.Delete(&row).Error
	assert.True(t, errors.Is(err, models.ErrAuditImmutable))

	var stored models.AuditEntry
	require.NoError(t, gdb.First(&stored, row.ID).Error)
	assert.Equal(t, ActionCreate, stored.Action)
	assert.Equal(t, "Madre", stored.Entity)
}

func TestSnapshotRoundTrip(t *testing.T) {
	born := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	mother := models.Mother{
		ID:         42,
		Rut:        "15111222-3",
		FirstNames: "Camila",
		LastNames:  "Muñoz",
		BirthDate:  &born,
		Phone:      "+56911112222",
		CreatedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	snap, err := Snapshot(mother)
	require.NoError(t, err)
	assert.Equal(t, "Camila", snap["nombres"])
	assert.Equal(t, float64(42), snap["id"])

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	var back models.Mother
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, mother.Rut, back.Rut)
	assert.Equal(t, mother.FirstNames, back.FirstNames)
	assert.True(t, mother.BirthDate.Equal(*back.BirthDate))
	assert.True(t, mother.CreatedAt.Equal(back.CreatedAt))

	snap, err = Snapshot(nil)
	require.NoError(t, err)
	assert.Nil(t, snap)

	_, err = Snapshot([]int{1, 2})
	assert.Error(t, err)

	snap, err = Snapshot(map[string]interface{}{"motivo": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", snap["motivo"])
}

func TestFilterApply(t *testing.T) {
	gdb := testutil.NewDB(t)
	log, _ := testutil.NewLogger()
	r := NewRecorder(log)
	a := testutil.CreateUser(t, gdb, "A", models.RoleMidwife)
	b := testutil.CreateUser(t, gdb, "B", models.RoleDoctor)

	r.Record(gdb, Entry{ActorID: &a.ID, Entity: "Madre", Action: ActionCreate})
	r.Record(gdb, Entry{ActorID: &a.ID, Entity: "Parto", Action: ActionCreate})
	r.Record(gdb, Entry{ActorID: &b.ID, Entity: "EpisodioURNI", Action: ActionDischarge})

	count := func(f Filter) int64 {
		var n int64
		require.NoError(t, f.Apply(gdb.Model(&models.AuditEntry{})).Count(&n).Error)
		return n
	}

	assert.Equal(t, int64(3), count(Filter{}))
	assert.Equal(t, int64(2), count(Filter{UserID: &a.ID}))
	assert.Equal(t, int64(1), count(Filter{Entity: "Parto"}))
	assert.Equal(t, int64(1), count(Filter{Action: ActionDischarge}))

	future := time.Now().UTC().Add(time.Hour)
	past := time.Now().UTC().Add(-time.Hour)
	assert.Zero(t, count(Filter{From: &future}))
	assert.Equal(t, int64(3), count(Filter{From: &past, To: &future}))
}
