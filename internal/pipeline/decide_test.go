package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pricefeed/internal/db"
	"pricefeed/internal/feed"
)

func TestDecideInsertWhenNoMatch(t *testing.T) {
	d := Decide(feed.CanonicalProduct{Name: "Milk 1L", Price: 2.1}, nil)
	assert.Equal(t, ActionInsert, d.Action)
	assert.Nil(t, d.Existing)
}

func TestDecideSkipOnSameWeekRedelivery(t *testing.T) {
	existing := &db.Product{
		Name:       "Milk 1L",
		Price:      2.1,
		ValidFrom:  "2024-03-04",
		ValidUntil: "2024-03-10",
	}
	d := Decide(feed.CanonicalProduct{
		Name:       "Milk 1L",
		Price:      2.1,
		ValidFrom:  "2024-03-04",
		ValidUntil: "2024-03-10",
	}, existing)
	assert.Equal(t, ActionSkip, d.Action)
}

func TestDecideUpdateWithHistoryOnNewerWeek(t *testing.T) {
	// the example feed week: stored week ends 03-03, incoming starts 03-04
	existing := &db.Product{
		Name:       "Milk 1L",
		Price:      2.5,
		ValidFrom:  "2024-02-26",
		ValidUntil: "2024-03-03",
	}
	d := Decide(feed.CanonicalProduct{
		Name:       "Milk 1L",
		Price:      2.1,
		ValidFrom:  "2024-03-04",
		ValidUntil: "2024-03-10",
	}, existing)
	assert.Equal(t, ActionUpdateWithHistory, d.Action)
	assert.Same(t, existing, d.Existing)
}

func TestDecideVariantOnOverlappingWeek(t *testing.T) {
	// incoming starts inside the stored window: non-monotonic, keep both
	existing := &db.Product{
		Name:       "Milk 1L",
		ValidFrom:  "2024-03-04",
		ValidUntil: "2024-03-10",
	}
	d := Decide(feed.CanonicalProduct{
		Name:       "Milk 1L",
		ValidFrom:  "2024-03-07",
		ValidUntil: "2024-03-13",
	}, existing)
	assert.Equal(t, ActionInsertVariant, d.Action)
}

func TestDecideVariantOnOlderWeek(t *testing.T) {
	existing := &db.Product{
		Name:       "Milk 1L",
		ValidFrom:  "2024-03-04",
		ValidUntil: "2024-03-10",
	}
	d := Decide(feed.CanonicalProduct{
		Name:       "Milk 1L",
		ValidFrom:  "2024-02-05",
		ValidUntil: "2024-02-11",
	}, existing)
	assert.Equal(t, ActionInsertVariant, d.Action)
}

func TestDecideVariantWhenStoredValidityMissing(t *testing.T) {
	// stored row has no window at all; relationship is unknowable
	existing := &db.Product{Name: "Milk 1L"}
	d := Decide(feed.CanonicalProduct{
		Name:       "Milk 1L",
		ValidFrom:  "2024-03-04",
		ValidUntil: "2024-03-10",
	}, existing)
	assert.Equal(t, ActionInsertVariant, d.Action)
}

func TestDecideSkipWhenBothValiditiesMissing(t *testing.T) {
	// undated promo redelivered: same empty window counts as the same week
	existing := &db.Product{Name: "Milk 1L", Price: 2.1}
	d := Decide(feed.CanonicalProduct{Name: "Milk 1L", Price: 2.1}, existing)
	assert.Equal(t, ActionSkip, d.Action)
}

func TestVariantNameCarriesIncomingWindow(t *testing.T) {
	got := variantName(feed.CanonicalProduct{
		Name:       "Milk 1L",
		ValidFrom:  "2024-03-07",
		ValidUntil: "2024-03-13",
	})
	assert.Equal(t, "Milk 1L (2024-03-07–2024-03-13)", got)
}
