package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tu "github.com/meinhoongagan/maternity-app/testutil"
)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to, subject, body})
	return m.err
}

func TestCensusCountsAndAlerts(t *testing.T) {
	db := tu.NewDB(t)
	log, _ := tu.NewLogger()
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

	long := tu.AdmitNewborn(t, db, now.AddDate(0, 0, -20))
	tu.AdmitNewborn(t, db, now.AddDate(0, 0, -2))

	mailer := &fakeMailer{}
	census := NewCensus(db, log, 14, mailer, "jefatura@hospital.test")
	census.now = func() time.Time { return now }

	report, err := census.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.Open)
	require.Len(t, report.LongStay, 1)
	assert.Equal(t, long.ID, report.LongStay[0].ID)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "jefatura@hospital.test", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].subject, "1 episodios")
	assert.Contains(t, mailer.sent[0].body, "20 días")
}

func TestCensusWithoutRecipientSendsNothing(t *testing.T) {
	db := tu.NewDB(t)
	log, _ := tu.NewLogger()
	tu.AdmitNewborn(t, db, time.Now().AddDate(0, 0, -30))

	mailer := &fakeMailer{}
	report, err := NewCensus(db, log, 14, mailer, "").Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.LongStay, 1)
	assert.Empty(t, mailer.sent)
}

func TestCensusMailFailureIsLogged(t *testing.T) {
	db := tu.NewDB(t)
	log, hook := tu.NewLogger()
	tu.AdmitNewborn(t, db, time.Now().AddDate(0, 0, -30))

	mailer := &fakeMailer{err: errors.New("smtp down")}
	_, err := NewCensus(db, log, 14, mailer, "jefatura@hospital.test").Run(context.Background())
	require.NoError(t, err)

	var logged bool
	for _, e := range hook.AllEntries() {
		if e.Message == "Failed to send long-stay alert" {
			logged = true
		}
	}
	assert.True(t, logged)
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	db := tu.NewDB(t)
	log, _ := tu.NewLogger()

	_, err := Start("not a schedule", NewCensus(db, log, 14, nil, ""), log)
	assert.Error(t, err)

	c, err := Start("@hourly", NewCensus(db, log, 14, nil, ""), log)
	require.NoError(t, err)
	c.Stop()
}
