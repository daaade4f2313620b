package pipeline

import (
	"fmt"

	"pricefeed/internal/db"
	"pricefeed/internal/feed"
)

// Action classifies what one incoming record does to the store.
type Action int

const (
	// no stored counterpart, plain insert
	ActionInsert Action = iota
	// stored counterpart exists but the validity windows don't line up;
	// insert under a disambiguated name instead of guessing
	ActionInsertVariant
	// incoming week strictly follows the stored one: archive the stored
	// price, then overwrite
	ActionUpdateWithHistory
	// same week redelivered, a duplicate rather than an error
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionInsertVariant:
		return "insert-variant"
	case ActionUpdateWithHistory:
		return "update-with-history"
	case ActionSkip:
		return "skip"
	}
	return "unknown"
}

type Decision struct {
	Action   Action
	Record   feed.CanonicalProduct
	Existing *db.Product // nil for ActionInsert
}

// Decide classifies one canonical record against its matched stored
// product (nil when the matcher found none). "Strictly later week" means
// the incoming validFrom sorts past the stored validUntil; ISO dates make
// that a plain string comparison.
func Decide(rec feed.CanonicalProduct, existing *db.Product) Decision {
	if existing == nil {
		return Decision{Action: ActionInsert, Record: rec}
	}
	if rec.ValidFrom == existing.ValidFrom {
		return Decision{Action: ActionSkip, Record: rec, Existing: existing}
	}
	if rec.ValidFrom != "" && existing.ValidUntil != "" && rec.ValidFrom > existing.ValidUntil {
		return Decision{Action: ActionUpdateWithHistory, Record: rec, Existing: existing}
	}
	// Ambiguous or non-monotonic window. Keep both rows rather than merge;
	// see DESIGN.md for why no stricter merge logic is attempted here.
	return Decision{Action: ActionInsertVariant, Record: rec, Existing: existing}
}

// variantName disambiguates a record kept alongside its stored counterpart
// by appending the incoming validity window.
func variantName(rec feed.CanonicalProduct) string {
	return fmt.Sprintf("%s (%s–%s)", rec.Name, rec.ValidFrom, rec.ValidUntil)
}
