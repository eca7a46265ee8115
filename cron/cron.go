package cron

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/meinhoongagan/maternity-app/metrics"
	"github.com/meinhoongagan/maternity-app/models"
	"github.com/meinhoongagan/maternity-app/utils"
)

// CensusReport is the result of one URNI census run.
type CensusReport struct {
	Open     int64
	LongStay []models.URNIEpisode
	At       time.Time
}

// Census counts open URNI episodes and flags stays longer than the alert
// threshold. Alerts are mailed only when a mailer and recipient are set.
type Census struct {
	db        *gorm.DB
	log       logrus.FieldLogger
	mailer    utils.Mailer
	recipient string
	alertDays int
	now       func() time.Time
}

func NewCensus(db *gorm.DB, log logrus.FieldLogger, alertDays int, mailer utils.Mailer, recipient string) *Census {
	return &Census{
		db:        db,
		log:       log,
		mailer:    mailer,
		recipient: recipient,
		alertDays: alertDays,
		now:       time.Now,
	}
}

// Run performs one census.
func (c *Census) Run(ctx context.Context) (*CensusReport, error) {
	now := c.now().UTC()
	report := &CensusReport{At: now}
	db := c.db.WithContext(ctx)

	err := db.Model(&models.URNIEpisode{}).Where("state = ?", models.EpisodeAdmitted).Count(&report.Open).Error
	if err != nil {
		return nil, err
	}
	metrics.OpenURNIEpisodes.Set(float64(report.Open))

	threshold := now.AddDate(0, 0, -c.alertDays)
	err = db.Preload("Newborn.Birth.Mother").
		Where("state = ? AND admitted_at <= ?", models.EpisodeAdmitted, threshold).
		Order("admitted_at").
		Find(&report.LongStay).Error
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"open":       report.Open,
		"long_stay":  len(report.LongStay),
		"alert_days": c.alertDays,
	}).Info("URNI census")

	if len(report.LongStay) > 0 && c.mailer != nil && c.recipient != "" {
		if err := c.sendAlert(report); err != nil {
			c.log.WithError(err).Error("Failed to send long-stay alert")
		}
	}
	return report, nil
}

var alertTemplate = template.Must(template.New("alert").Funcs(template.FuncMap{
	"fecha": func(t time.Time) string { return utils.ToLocal(t).Format("02-01-2006 15:04") },
	"dias":  func(from, to time.Time) int { return int(to.Sub(from).Hours() / 24) },
}).Parse(`
<p>Censo URNI del {{fecha .At}}: {{.Open}} episodios abiertos.</p>
<p>Los siguientes episodios superan la estadía de alerta:</p>
<ul>
{{range .LongStay}}<li>Episodio #{{.ID}} · ingreso {{fecha .AdmittedAt}} · {{dias .AdmittedAt $.At}} días{{with .Newborn}}{{with .Birth}}{{with .Mother}} · madre {{.FirstNames}} {{.LastNames}}{{end}}{{end}}{{end}}</li>
{{end}}
</ul>
`))

func (c *Census) sendAlert(report *CensusReport) error {
	var body bytes.Buffer
	if err := alertTemplate.Execute(&body, report); err != nil {
		return err
	}
	subject := fmt.Sprintf("Alerta URNI: %d episodios con estadía prolongada", len(report.LongStay))
	return c.mailer.Send(c.recipient, subject, body.String())
}

// Start schedules the census and starts the scheduler. The caller
// stops it on shutdown.
func Start(schedule string, census *Census, log logrus.FieldLogger) (*cron.Cron, error) {
	log.Info("Starting cron job scheduler...")
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := census.Run(context.Background()); err != nil {
			log.WithError(err).Error("URNI census failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule census %q: %w", schedule, err)
	}
	c.Start()
	log.WithField("schedule", schedule).Info("Cron job scheduler started for URNI census")
	return c, nil
}
