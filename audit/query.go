package audit

import (
	"time"

	"gorm.io/gorm"
)

// Filter selects audit rows for the audit query endpoint.
type Filter struct {
	UserID *uint
	Entity string
	Action string
	From   *time.Time
	To     *time.Time
}

func (f Filter) Apply(tx *gorm.DB) *gorm.DB {
	if f.UserID != nil {
		tx = tx.Where("user_id = ?", *f.UserID)
	}
	if f.Entity != "" {
		tx = tx.Where("entity = ?", f.Entity)
	}
	if f.Action != "" {
		tx = tx.Where("action = ?", f.Action)
	}
	if f.From != nil {
		tx = tx.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		tx = tx.Where("created_at <= ?", *f.To)
	}
	return tx
}
