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

// MotherInput is the body of mother create and update requests. Nil fields
// are left unchanged on update.
type MotherInput struct {
	Rut             *string `json:"rut" form:"rut"`
	Nombres         *string `json:"nombres" form:"nombres"`
	Apellidos       *string `json:"apellidos" form:"apellidos"`
	FechaNacimiento *string `json:"fechaNacimiento" form:"fechaNacimiento"`
	Direccion       *string `json:"direccion" form:"direccion"`
	Telefono        *string `json:"telefono" form:"telefono"`
	Prevision       *string `json:"prevision" form:"prevision"`
}

// apply copies the provided fields onto m, validating each one.
func (in *MotherInput) apply(m *models.Mother) error {
	if in.Rut != nil {
		rut := utils.NormalizeRut(*in.Rut)
		if !utils.ValidRut(rut) {
			return utils.Validation("RUT inválido")
		}
		m.Rut = rut
	}
	if in.Nombres != nil {
		m.FirstNames = strings.TrimSpace(*in.Nombres)
	}
	if in.Apellidos != nil {
		m.LastNames = strings.TrimSpace(*in.Apellidos)
	}
	if in.FechaNacimiento != nil {
		if *in.FechaNacimiento == "" {
			m.BirthDate = nil
		} else {
			t, err := utils.ParseTime(*in.FechaNacimiento, false)
			if err != nil {
				return utils.Validation("fechaNacimiento inválida")
			}
			m.BirthDate = &t
		}
	}
	if in.Direccion != nil {
		m.Address = strings.TrimSpace(*in.Direccion)
	}
	if in.Telefono != nil {
		m.Phone = strings.TrimSpace(*in.Telefono)
	}
	if in.Prevision != nil {
		m.Insurance = strings.TrimSpace(*in.Prevision)
	}

	if m.Rut == "" || m.FirstNames == "" || m.LastNames == "" {
		return utils.Validation("rut, nombres y apellidos son requeridos")
	}
	return nil
}

func (h *Handler) rutTaken(c *fiber.Ctx, rut string, exceptID uint) (bool, error) {
	var n int64
	err := h.db(c).Model(&models.Mother{}).Where("rut = ? AND id <> ?", rut, exceptID).Count(&n).Error
	return n > 0, err
}

// ListMothers returns a page of mothers, optionally filtered by rut or a name
// search.
func (h *Handler) ListMothers(c *fiber.Ctx) error {
	rut := c.Query("rut")
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))

	page, err := utils.Paginate[models.Mother](c.UserContext(), h.DB, utils.ParsePagination(c), utils.ListQuery{
		Filter: func(tx *gorm.DB) *gorm.DB {
			if rut != "" {
				tx = tx.Where("rut = ?", utils.NormalizeRut(rut))
			}
			if q != "" {
				like := utils.ContainsPattern(q)
				tx = tx.Where(`LOWER(first_names) LIKE ? ESCAPE '\' OR LOWER(last_names) LIKE ? ESCAPE '\'`, like, like)
			}
			return tx
		},
		Order: "created_at DESC, id DESC",
	})
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// GetMother returns one mother with her births.
func (h *Handler) GetMother(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}

	var mother models.Mother
	if err := h.db(c).Preload("Births", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("occurred_at DESC")
	}).First(&mother, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("Madre no encontrada")
		}
		return err
	}
	return ok(c, mother)
}

// CreateMother registers a mother.
func (h *Handler) CreateMother(c *fiber.Ctx) error {
	input := new(MotherInput)
	if err := parseBody(c, input); err != nil {
		return err
	}
	mother, err := h.RegisterMother(c, input)
	if err != nil {
		return err
	}
	return created(c, mother, "Madre registrada")
}

// RegisterMother validates input, enforces RUT uniqueness and stores the
// mother. It is shared with the dashboard form.
func (h *Handler) RegisterMother(c *fiber.Ctx, input *MotherInput) (*models.Mother, error) {
	mother := models.Mother{CreatedByID: actorID(c)}
	if err := input.apply(&mother); err != nil {
		return nil, err
	}

	taken, err := h.rutTaken(c, mother.Rut, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, utils.Validation("Ya existe una madre registrada con ese RUT")
	}

	if err := h.db(c).Create(&mother).Error; err != nil {
		return nil, err
	}

	entry := h.auditEntry(c, EntityMother, mother.ID, audit.ActionCreate)
	entry.After = mother
	h.Audit.Record(h.db(c), entry)

	return &mother, nil
}

// UpdateMother applies a partial update and records the before/after diff.
func (h *Handler) UpdateMother(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	input := new(MotherInput)
	if err := parseBody(c, input); err != nil {
		return err
	}

	var mother models.Mother
	if err := h.db(c).First(&mother, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("Madre no encontrada")
		}
		return err
	}
	before := mother

	if err := input.apply(&mother); err != nil {
		return err
	}
	if mother.Rut != before.Rut {
		taken, err := h.rutTaken(c, mother.Rut, mother.ID)
		if err != nil {
			return err
		}
		if taken {
			return utils.Validation("Ya existe una madre registrada con ese RUT")
		}
	}

	if err := h.db(c).Save(&mother).Error; err != nil {
		return err
	}

	entry := h.auditEntry(c, EntityMother, mother.ID, audit.ActionUpdate)
	entry.Before = before
	entry.After = mother
	h.Audit.Record(h.db(c), entry)

	return okMessage(c, mother, "Madre actualizada")
}
