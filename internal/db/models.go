package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// supermarkets
type Supermarket struct {
	ID        string `gorm:"primaryKey;size:191"`
	Name      string `gorm:"size:256;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Supermarket) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// products: one row per (name, supermarket); price/validity columns hold
// the current promotional week only and get overwritten on update.
type Product struct {
	ID            string   `gorm:"primaryKey;size:191"`
	Name          string   `gorm:"size:256;not null;uniqueIndex:uniq_product_name_market"`
	Quantity      string   `gorm:"size:256"`
	Price         float64  `gorm:"not null"`
	OldPrice      *float64 `gorm:"column:old_price"`
	Category      string   `gorm:"size:256"`
	PicURL        string   `gorm:"column:pic_url;type:text"`
	ValidFrom     string   `gorm:"size:32"` // ISO date, e.g. 2024-03-04
	ValidUntil    string   `gorm:"size:32"`
	SupermarketID string   `gorm:"size:191;not null;uniqueIndex:uniq_product_name_market"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// price_histories: append-only; at most one row per product per
// promotional week, enforced by uniq_history_product_week.
type PriceHistory struct {
	ID           string   `gorm:"primaryKey;size:191"`
	ProductID    string   `gorm:"size:191;not null;index;uniqueIndex:uniq_history_product_week"`
	Price        float64  `gorm:"not null"`
	OldPrice     *float64 `gorm:"column:old_price"`
	WeekDayStart string   `gorm:"size:32;uniqueIndex:uniq_history_product_week"`
	WeekDayEnd   string   `gorm:"size:32;uniqueIndex:uniq_history_product_week"`
	CreatedAt    time.Time
}

func (h *PriceHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// feed_runs: one ledger row per pipeline run
type FeedRun struct {
	RunID      uint   `gorm:"primaryKey;column:run_id"`
	Source     string `gorm:"size:32;index"` // schedule / http
	Status     int    `gorm:"index"`         // 0=pending, 1=done, 2=error
	Fetched    int
	Dropped    int
	Inserted   int
	Variants   int
	Updated    int
	Skipped    int
	Failed     int
	LastError  string    `gorm:"type:text"`
	StartedAt  time.Time `gorm:"autoCreateTime"`
	FinishedAt *time.Time
}

const (
	RunPending = 0
	RunDone    = 1
	RunError   = 2
)
