package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/audit"
	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/utils"
)

// ListNewborns returns a page of newborns, optionally for a single birth.
func (h *Handler) ListNewborns(c *fiber.Ctx) error {
	birthID, byBirth, err := utils.QueryID(c, "partoId")
	if err != nil {
		return err
	}

	page, err := utils.Paginate[models.Newborn](c.UserContext(), h.DB, utils.ParsePagination(c), utils.ListQuery{
		Filter: func(tx *gorm.DB) *gorm.DB {
			if byBirth {
				tx = tx.Where("birth_id = ?", birthID)
			}
			return tx
		},
		Preload: []string{"Birth.Mother"},
		Order:   "created_at DESC, id DESC",
	})
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handler) GetNewborn(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}

	var nb models.Newborn
	err = h.db(c).Preload("Birth.Mother").First(&nb, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFound("Recién nacido no encontrado")
	}
	if err != nil {
		return err
	}
	return ok(c, nb)
}

func (h *Handler) CreateNewborn(c *fiber.Ctx) error {
	var input struct {
		PartoID       uint    `json:"partoId"`
		Sexo          string  `json:"sexo"`
		PesoGramos    int     `json:"pesoGramos"`
		TallaCm       float64 `json:"tallaCm"`
		Apgar1        int     `json:"apgar1"`
		Apgar5        int     `json:"apgar5"`
		Observaciones string  `json:"observaciones"`
	}
	if err := parseBody(c, &input); err != nil {
		return err
	}

	if input.PartoID == 0 {
		return utils.Validation("partoId es requerido")
	}
	sex := models.Sex(strings.ToUpper(strings.TrimSpace(input.Sexo)))
	if !sex.Valid() {
		return utils.Validation("sexo inválido")
	}
	if input.Apgar1 < 0 || input.Apgar1 > 10 || input.Apgar5 < 0 || input.Apgar5 > 10 {
		return utils.Validation("Apgar debe estar entre 0 y 10")
	}
	if input.PesoGramos <= 0 {
		return utils.Validation("pesoGramos debe ser positivo")
	}
	if input.TallaCm < 0 {
		return utils.Validation("tallaCm no puede ser negativa")
	}

	var birth models.Birth
	if err := h.db(c).First(&birth, input.PartoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("Parto no encontrado")
		}
		return err
	}

	nb := models.Newborn{
		BirthID:     birth.ID,
		Sex:         sex,
		WeightGrams: input.PesoGramos,
		LengthCm:    input.TallaCm,
		Apgar1:      input.Apgar1,
		Apgar5:      input.Apgar5,
		Notes:       strings.TrimSpace(input.Observaciones),
		CreatedByID: actorID(c),
	}
	if err := h.db(c).Create(&nb).Error; err != nil {
		return err
	}

	entry := h.auditEntry(c, EntityNewborn, nb.ID, audit.ActionCreate)
	entry.After = nb
	h.Audit.Record(h.db(c), entry)

	return created(c, nb, "Recién nacido registrado")
}
