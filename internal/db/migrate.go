package db

import (
	"fmt"
)

// Migrate creates/updates the schema.
func (h *Handle) Migrate() error {
	gdb := h.DB

	if err := gdb.AutoMigrate(
		&Supermarket{},
		&Product{},
		&PriceHistory{},
		&FeedRun{},
	); err != nil {
		return fmt.Errorf("AutoMigrate error: %w", err)
	}

	// The composite unique indexes carry the whole idempotency story
	// (conflict-skip inserts, one history row per product per week), so
	// make sure they exist even if the tables predate the tags above.
	if !gdb.Migrator().HasIndex(&Product{}, "uniq_product_name_market") {
		if err := gdb.Exec(`
			CREATE UNIQUE INDEX IF NOT EXISTS uniq_product_name_market
			ON products(name, supermarket_id);
		`).Error; err != nil {
			return fmt.Errorf("create index uniq_product_name_market: %w", err)
		}
	}
	if !gdb.Migrator().HasIndex(&PriceHistory{}, "uniq_history_product_week") {
		if err := gdb.Exec(`
			CREATE UNIQUE INDEX IF NOT EXISTS uniq_history_product_week
			ON price_histories(product_id, week_day_start, week_day_end);
		`).Error; err != nil {
			return fmt.Errorf("create index uniq_history_product_week: %w", err)
		}
	}

	return nil
}
