package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/utils"
)

// ListDischargeModule lists URNI episodes with their discharge report for the
// discharge module. The date range applies to the discharge time.
func (h *Handler) ListDischargeModule(c *fiber.Ctx) error {
	state, err := parseEpisodeState(c.Query("estado"))
	if err != nil {
		return err
	}
	from, to, err := utils.DateRange(c.Query("fechaInicio"), c.Query("fechaFin"))
	if err != nil {
		return err
	}

	page, err := utils.Paginate[models.URNIEpisode](c.UserContext(), h.DB, utils.ParsePagination(c), utils.ListQuery{
		Filter: func(tx *gorm.DB) *gorm.DB {
			if state != "" {
				tx = tx.Where("state = ?", state)
			}
			if from != nil {
				tx = tx.Where("discharged_at >= ?", *from)
			}
			if to != nil {
				tx = tx.Where("discharged_at <= ?", *to)
			}
			return tx
		},
		Preload: []string{"Report", "Newborn.Birth.Mother"},
		Order:   "admitted_at DESC, id DESC",
	})
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// GetDischargeReport returns the report issued for an episode.
func (h *Handler) GetDischargeReport(c *fiber.Ctx) error {
	episodeID, err := utils.ParamID(c, "episodioId")
	if err != nil {
		return err
	}

	var report models.DischargeReport
	err = h.db(c).Preload("Author").Where("episode_id = ?", episodeID).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFound("Informe de alta no encontrado")
	}
	if err != nil {
		return err
	}
	return ok(c, report)
}
