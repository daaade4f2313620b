package feed

import (
	"strconv"
	"strings"
)

const (
	// names longer than this get truncated; matches the products.name column
	maxNameLen = 256
	// how many leading words survive truncation
	nameWordLimit = 10
)

// ParsePrice turns a locale-formatted price ("2,10") into a float. The feed
// uses the comma as decimal separator; only the first one is replaced.
// Missing or unparseable values come back as 0 and are dropped by the caller.
func ParsePrice(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// NormalizeName truncates over-long feed names to their first words. Feed
// names past the display limit are verbose boilerplate; the cut is lossy on
// purpose.
func NormalizeName(name string) string {
	if len(name) <= maxNameLen {
		return name
	}
	words := strings.Fields(name)
	if len(words) > nameWordLimit {
		words = words[:nameWordLimit]
	}
	return strings.Join(words, " ")
}

// Canonicalize normalizes one raw record. ok is false when the record has
// no usable price and must not reach the decision engine.
func Canonicalize(in IncomingProduct, supermarketID string) (CanonicalProduct, bool) {
	price := ParsePrice(string(in.Price))
	if price <= 0 {
		return CanonicalProduct{}, false
	}

	out := CanonicalProduct{
		Name:          NormalizeName(in.Name),
		Price:         price,
		Quantity:      in.Quantity,
		Category:      in.Category,
		PicURL:        in.PicURL,
		ValidFrom:     in.ValidFrom,
		ValidUntil:    in.ValidUntil,
		SupermarketID: supermarketID,
	}

	// absent oldPrice stays absent, it is not coerced to 0
	if strings.TrimSpace(string(in.OldPrice)) != "" {
		if v := ParsePrice(string(in.OldPrice)); v != 0 {
			out.OldPrice = &v
		}
	}

	return out, true
}
