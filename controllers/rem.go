package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/utils"
)

// REMSummary is the monthly statistics block of the REM report.
type REMSummary struct {
	Births         map[models.BirthType]int64 `json:"partos"`
	Newborns       int64                      `json:"recienNacidos"`
	LowBirthWeight int64                      `json:"bajoPeso"`
	URNIAdmissions int64                      `json:"ingresosUrni"`
	URNIDischarges int64                      `json:"altasUrni"`
}

// REMReport computes counts for a date range. The official REM layout is not
// produced yet; the dashboard shows these counts as a placeholder.
func (h *Handler) REMReport(c *fiber.Ctx) error {
	from, to, err := utils.DateRange(c.Query("fechaInicio"), c.Query("fechaFin"))
	if err != nil {
		return err
	}
	summary, err := BuildREMSummary(h.db(c), from, to)
	if err != nil {
		return err
	}
	return ok(c, summary)
}

// BuildREMSummary counts births, newborns and URNI movements in [from, to].
// Nil bounds are open.
func BuildREMSummary(db *gorm.DB, from, to *time.Time) (*REMSummary, error) {
	if from != nil {
		utc := from.UTC()
		from = &utc
	}
	if to != nil {
		utc := to.UTC()
		to = &utc
	}

	between := func(column string) func(*gorm.DB) *gorm.DB {
		return func(tx *gorm.DB) *gorm.DB {
			if from != nil {
				tx = tx.Where(column+" >= ?", *from)
			}
			if to != nil {
				tx = tx.Where(column+" <= ?", *to)
			}
			return tx
		}
	}

	summary := &REMSummary{Births: make(map[models.BirthType]int64)}

	var rows []struct {
		Type  models.BirthType
		Total int64
	}
	err := db.Model(&models.Birth{}).Scopes(between("occurred_at")).
		Select("type, COUNT(*) AS total").Group("type").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		summary.Births[r.Type] = r.Total
	}

	newborns := db.Model(&models.Newborn{}).
		Joins("JOIN births ON births.id = newborns.birth_id").
		Scopes(between("births.occurred_at"))
	if err := newborns.Session(&gorm.Session{}).Count(&summary.Newborns).Error; err != nil {
		return nil, err
	}
	if err := newborns.Session(&gorm.Session{}).Where("newborns.weight_grams < ?", 2500).Count(&summary.LowBirthWeight).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.URNIEpisode{}).Scopes(between("admitted_at")).Count(&summary.URNIAdmissions).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.URNIEpisode{}).Scopes(between("discharged_at")).
		Where("state = ?", models.EpisodeDischarged).Count(&summary.URNIDischarges).Error; err != nil {
		return nil, err
	}
	return summary, nil
}
