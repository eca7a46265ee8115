package utils

import (
	"context"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Offset returns the number of rows before the page, or -1 when the page lies
// beyond any representable offset.
func (p Pagination) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return -1
	}
	return (p.Page - 1) * p.Limit
}

// Page is the paginated list envelope.
type Page[T any] struct {
	Data  []T   `json:"data"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// ParsePagination reads page and limit from the query string. Missing or
// malformed values fall back to defaults and limit is capped at MaxLimit.
func ParsePagination(c *fiber.Ctx) Pagination {
	p := Pagination{Page: DefaultPage, Limit: DefaultLimit}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// ListQuery describes a paginated listing. Filter is applied to both the
// count and the page query; Preload and Order only to the page query.
type ListQuery struct {
	Filter  func(*gorm.DB) *gorm.DB
	Preload []string
	Order   string
}

// Paginate runs the count and the page query concurrently and waits for both.
// A page past the largest representable offset is empty.
func Paginate[T any](ctx context.Context, db *gorm.DB, p Pagination, q ListQuery) (*Page[T], error) {
	filter := q.Filter
	if filter == nil {
		filter = func(tx *gorm.DB) *gorm.DB { return tx }
	}
	order := q.Order
	if order == "" {
		order = "id DESC"
	}

	rows := make([]T, 0)
	var total int64
	offset := p.Offset()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return filter(db.WithContext(gctx).Model(new(T))).Count(&total).Error
	})
	if offset >= 0 {
		g.Go(func() error {
			tx := filter(db.WithContext(gctx).Model(new(T)))
			for _, rel := range q.Preload {
				tx = tx.Preload(rel)
			}
			return tx.Order(order).Offset(offset).Limit(p.Limit).Find(&rows).Error
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Page[T]{Data: rows, Page: p.Page, Limit: p.Limit, Total: total}, nil
}
