package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/audit"
	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/utils"
)

func parseEpisodeState(value string) (models.EpisodeState, error) {
	state := models.EpisodeState(strings.ToUpper(strings.TrimSpace(value)))
	switch state {
	case "", models.EpisodeAdmitted, models.EpisodeDischarged:
		return state, nil
	}
	return "", utils.Validation("estado inválido")
}

// ListEpisodes returns a page of URNI episodes, optionally filtered by state.
func (h *Handler) ListEpisodes(c *fiber.Ctx) error {
	state, err := parseEpisodeState(c.Query("estado"))
	if err != nil {
		return err
	}

	page, err := utils.Paginate[models.URNIEpisode](c.UserContext(), h.DB, utils.ParsePagination(c), utils.ListQuery{
		Filter: func(tx *gorm.DB) *gorm.DB {
			if state != "" {
				tx = tx.Where("state = ?", state)
			}
			return tx
		},
		Preload: []string{"Newborn.Birth.Mother"},
		Order:   "admitted_at DESC, id DESC",
	})
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handler) findEpisode(tx *gorm.DB, id uint) (*models.URNIEpisode, error) {
	var ep models.URNIEpisode
	err := tx.Preload("Newborn.Birth.Mother").Preload("Report").First(&ep, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("Episodio URNI no encontrado")
	}
	if err != nil {
		return nil, err
	}
	return &ep, nil
}

func (h *Handler) GetEpisode(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	ep, err := h.findEpisode(h.db(c), id)
	if err != nil {
		return err
	}
	return ok(c, ep)
}

// AdmitEpisode opens an URNI episode for a newborn that has none open.
func (h *Handler) AdmitEpisode(c *fiber.Ctx) error {
	var input struct {
		RecienNacidoID   uint   `json:"recienNacidoId"`
		FechaHoraIngreso string `json:"fechaHoraIngreso"`
		MotivoIngreso    string `json:"motivoIngreso"`
	}
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if input.RecienNacidoID == 0 {
		return utils.Validation("recienNacidoId es requerido")
	}

	admittedAt := time.Now().UTC()
	if input.FechaHoraIngreso != "" {
		t, err := utils.ParseTime(input.FechaHoraIngreso, false)
		if err != nil {
			return utils.Validation("fechaHoraIngreso inválida")
		}
		admittedAt = t
	}

	var nb models.Newborn
	if err := h.db(c).Preload("Birth").First(&nb, input.RecienNacidoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("Recién nacido no encontrado")
		}
		return err
	}
	if nb.Birth != nil && admittedAt.Before(nb.Birth.OccurredAt) {
		return utils.Validation("La fecha de ingreso no puede ser anterior al parto")
	}

	var open int64
	err := h.db(c).Model(&models.URNIEpisode{}).
		Where("newborn_id = ? AND state = ?", nb.ID, models.EpisodeAdmitted).
		Count(&open).Error
	if err != nil {
		return err
	}
	if open > 0 {
		return utils.Validation("El recién nacido ya tiene un episodio URNI abierto")
	}

	ep := models.URNIEpisode{
		NewbornID:       nb.ID,
		State:           models.EpisodeAdmitted,
		AdmittedAt:      admittedAt,
		AdmissionReason: strings.TrimSpace(input.MotivoIngreso),
		AdmittedByID:    actorID(c),
	}
	if err := h.db(c).Create(&ep).Error; err != nil {
		return err
	}

	entry := h.auditEntry(c, EntityEpisode, ep.ID, audit.ActionCreate)
	entry.After = ep
	h.Audit.Record(h.db(c), entry)

	return created(c, ep, "Ingreso a URNI registrado")
}

// DischargeInput is the optional body of a discharge request.
type DischargeInput struct {
	FechaHoraAlta     string `json:"fechaHoraAlta" form:"fechaHoraAlta"`
	TipoAlta          string `json:"tipoAlta" form:"tipoAlta"`
	Destino           string `json:"destino" form:"destino"`
	DiagnosticoEgreso string `json:"diagnosticoEgreso" form:"diagnosticoEgreso"`
	Indicaciones      string `json:"indicaciones" form:"indicaciones"`
	Observaciones     string `json:"observaciones" form:"observaciones"`
}

// DischargeEpisode moves an episode from INGRESADO to ALTA.
func (h *Handler) DischargeEpisode(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	var input DischargeInput
	if len(c.Body()) > 0 {
		if err := parseBody(c, &input); err != nil {
			return err
		}
	}

	ep, err := h.Discharge(c, id, input)
	if err != nil {
		return err
	}
	return okMessage(c, ep, "Alta registrada")
}

// Discharge runs the discharge transaction: state change, report and ALTA
// audit row commit together or not at all. It is shared with the dashboard
// discharge form.
func (h *Handler) Discharge(c *fiber.Ctx, id uint, input DischargeInput) (*models.URNIEpisode, error) {
	at := time.Now().UTC()
	if input.FechaHoraAlta != "" {
		t, err := utils.ParseTime(input.FechaHoraAlta, false)
		if err != nil {
			return nil, utils.Validation("fechaHoraAlta inválida")
		}
		at = t
	}
	kind := models.DischargeHome
	if input.TipoAlta != "" {
		kind = models.DischargeType(strings.ToUpper(strings.TrimSpace(input.TipoAlta)))
		if !kind.Valid() {
			return nil, utils.Validation("tipoAlta inválido")
		}
	}

	actor := actorID(c)
	var result *models.URNIEpisode
	err := h.db(c).Transaction(func(tx *gorm.DB) error {
		ep, err := h.findEpisode(tx, id)
		if err != nil {
			return err
		}
		if err := ep.CheckDischarge(at); err != nil {
			return utils.Validation(err.Error())
		}
		before := *ep

		res := tx.Model(&models.URNIEpisode{}).
			Where("id = ? AND state = ?", ep.ID, models.EpisodeAdmitted).
			Updates(map[string]interface{}{
				"state":            models.EpisodeDischarged,
				"discharged_at":    at,
				"discharged_by_id": actor,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.Validation(models.ErrAlreadyDischarged.Error())
		}

		report := models.DischargeReport{
			EpisodeID:   ep.ID,
			Type:        kind,
			Destination: strings.TrimSpace(input.Destino),
			Diagnosis:   strings.TrimSpace(input.DiagnosticoEgreso),
			Indications: strings.TrimSpace(input.Indicaciones),
			Notes:       strings.TrimSpace(input.Observaciones),
			IssuedAt:    at,
			AuthorID:    actor,
		}
		if err := tx.Create(&report).Error; err != nil {
			return err
		}

		after, err := h.findEpisode(tx, ep.ID)
		if err != nil {
			return err
		}

		entry := h.auditEntry(c, EntityEpisode, ep.ID, audit.ActionDischarge)
		before.Newborn = nil
		entry.Before = before
		entry.After = after
		if err := h.Audit.RecordTx(tx, entry); err != nil {
			return err
		}

		result = after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
