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

// ListBirths returns a page of births, filterable by mother and date range.
func (h *Handler) ListBirths(c *fiber.Ctx) error {
	motherID, byMother, err := utils.QueryID(c, "madreId")
	if err != nil {
		return err
	}
	from, to, err := utils.DateRange(c.Query("fechaInicio"), c.Query("fechaFin"))
	if err != nil {
		return err
	}

	page, err := utils.Paginate[models.Birth](c.UserContext(), h.DB, utils.ParsePagination(c), utils.ListQuery{
		Filter: func(tx *gorm.DB) *gorm.DB {
			if byMother {
				tx = tx.Where("mother_id = ?", motherID)
			}
			if from != nil {
				tx = tx.Where("occurred_at >= ?", *from)
			}
			if to != nil {
				tx = tx.Where("occurred_at <= ?", *to)
			}
			return tx
		},
		Preload: []string{"Mother"},
		Order:   "occurred_at DESC, id DESC",
	})
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// GetBirth returns a birth with its mother, attending staff and newborns.
func (h *Handler) GetBirth(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}

	var birth models.Birth
	err = h.db(c).Preload("Mother").Preload("Attendants").Preload("Newborns").First(&birth, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFound("Parto no encontrado")
	}
	if err != nil {
		return err
	}
	return ok(c, birth)
}

// CreateBirth registers a birth for an existing mother. Attending staff must be
// active users holding a professional role.
func (h *Handler) CreateBirth(c *fiber.Ctx) error {
	var input struct {
		MadreID          uint   `json:"madreId"`
		FechaHora        string `json:"fechaHora"`
		Tipo             string `json:"tipo"`
		SemanasGestacion int    `json:"semanasGestacion"`
		Observaciones    string `json:"observaciones"`
		Profesionales    []uint `json:"profesionales"`
	}
	if err := parseBody(c, &input); err != nil {
		return err
	}

	if input.MadreID == 0 {
		return utils.Validation("madreId es requerido")
	}
	birthType := models.BirthType(strings.ToUpper(strings.TrimSpace(input.Tipo)))
	if !birthType.Valid() {
		return utils.Validation("tipo de parto inválido")
	}
	occurredAt, err := utils.ParseTime(input.FechaHora, false)
	if err != nil {
		return utils.Validation("fechaHora inválida")
	}
	if input.SemanasGestacion < 20 || input.SemanasGestacion > 45 {
		return utils.Validation("semanasGestacion debe estar entre 20 y 45")
	}

	var mother models.Mother
	if err := h.db(c).First(&mother, input.MadreID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("Madre no encontrada")
		}
		return err
	}

	attendants, err := h.loadProfessionals(c, input.Profesionales)
	if err != nil {
		return err
	}

	birth := models.Birth{
		MotherID:         mother.ID,
		OccurredAt:       occurredAt,
		Type:             birthType,
		GestationalWeeks: input.SemanasGestacion,
		Notes:            strings.TrimSpace(input.Observaciones),
		Attendants:       attendants,
		CreatedByID:      actorID(c),
	}
	if err := h.db(c).Omit("Attendants.*").Create(&birth).Error; err != nil {
		return err
	}

	entry := h.auditEntry(c, EntityBirth, birth.ID, audit.ActionCreate)
	entry.After = birth
	h.Audit.Record(h.db(c), entry)

	return created(c, birth, "Parto registrado")
}

// loadProfessionals resolves staff ids to active users with a professional
// role. Any id that does not qualify is a validation error.
func (h *Handler) loadProfessionals(c *fiber.Ctx, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	unique := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	var users []models.User
	err := h.db(c).Preload("Roles").
		Where("id IN ? AND active = ?", ids, true).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	valid := users[:0]
	for _, u := range users {
		for _, name := range u.RoleNames() {
			if models.IsProfessionalRole(name) {
				valid = append(valid, u)
				break
			}
		}
	}
	if len(valid) != len(unique) {
		return nil, utils.Validation("Profesionales inválidos: deben ser matronas, médicos o enfermeras activos")
	}
	for i := range valid {
		valid[i].Roles = nil
	}
	return valid, nil
}
