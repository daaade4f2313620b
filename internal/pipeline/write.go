package pipeline

import (
	"context"

	"pricefeed/internal/db"
)

// apply executes the decisions: inserts and variants go out as one
// conflict-skipping bulk write, updates one at a time so a single bad row
// cannot take down the rest of the run.
func (p *Pipeline) apply(ctx context.Context, decisions []Decision, run *db.FeedRun) {
	inserts := make([]db.Product, 0, len(decisions))

	for _, d := range decisions {
		switch d.Action {
		case ActionSkip:
			run.Skipped++

		case ActionInsert:
			inserts = append(inserts, productRow(d, d.Record.Name))
			run.Inserted++

		case ActionInsertVariant:
			inserts = append(inserts, productRow(d, variantName(d.Record)))
			run.Variants++
			p.log.Info().
				Str("name", d.Record.Name).
				Str("valid_from", d.Record.ValidFrom).
				Str("valid_until", d.Record.ValidUntil).
				Msg("ambiguous validity window, keeping as variant")

		case ActionUpdateWithHistory:
			if p.updateWithHistory(ctx, d) {
				run.Updated++
			} else {
				run.Failed++
			}
		}
	}

	if len(inserts) > 0 {
		written, err := p.store.InsertProducts(ctx, inserts)
		if err != nil {
			// whole bulk write failed; every planned insert counts as failed
			p.log.Error().Err(err).Int("rows", len(inserts)).Msg("bulk insert failed")
			run.Failed += run.Inserted + run.Variants
			run.Inserted = 0
			run.Variants = 0
			return
		}
		// conflict-skipped rows (intra-run duplicates, racing runs) were
		// never written; move them out of the insert counters so the
		// ledger reflects actual writes. RowsAffected cannot say which
		// category a skip came from, so plain inserts absorb them first.
		if skipped := int(int64(len(inserts)) - written); skipped > 0 {
			p.log.Debug().Int("skipped", skipped).Msg("insert conflicts skipped")
			run.Skipped += skipped
			if skipped <= run.Inserted {
				run.Inserted -= skipped
			} else {
				run.Variants -= skipped - run.Inserted
				run.Inserted = 0
			}
		}
	}
}

// updateWithHistory archives the stored product's current week, then
// overwrites the row with the incoming price. The archive must land first;
// if it cannot (typically a duplicate week window from a racing run), the
// update still proceeds: the product row stays the authoritative current
// price either way.
func (p *Pipeline) updateWithHistory(ctx context.Context, d Decision) bool {
	ex := d.Existing
	rec := d.Record

	entry := db.PriceHistory{
		ProductID:    ex.ID,
		Price:        ex.Price,
		OldPrice:     ex.OldPrice,
		WeekDayStart: ex.ValidFrom,
		WeekDayEnd:   ex.ValidUntil,
	}
	if err := p.store.InsertPriceHistory(ctx, entry); err != nil {
		p.log.Warn().Err(err).
			Str("name", ex.Name).
			Str("week_start", ex.ValidFrom).
			Str("week_end", ex.ValidUntil).
			Msg("price history archive failed, updating product anyway")
	}

	prev := ex.Price
	if err := p.store.UpdateProductPrice(ctx, ex.ID, rec.Price, &prev, rec.ValidFrom, rec.ValidUntil); err != nil {
		p.log.Error().Err(err).
			Str("name", ex.Name).
			Float64("price", rec.Price).
			Msg("product price update failed")
		return false
	}
	return true
}

func productRow(d Decision, name string) db.Product {
	rec := d.Record
	return db.Product{
		Name:          name,
		Quantity:      rec.Quantity,
		Price:         rec.Price,
		OldPrice:      rec.OldPrice,
		Category:      rec.Category,
		PicURL:        rec.PicURL,
		ValidFrom:     rec.ValidFrom,
		ValidUntil:    rec.ValidUntil,
		SupermarketID: rec.SupermarketID,
	}
}
