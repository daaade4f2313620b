package pipeline

import (
	"context"

	"pricefeed/internal/db"
	"pricefeed/internal/feed"
)

type matchKey struct {
	Name          string
	SupermarketID string
}

// matchExisting resolves the whole batch against the store in one bulk
// lookup and returns the hits keyed by (name, supermarketID).
func (p *Pipeline) matchExisting(ctx context.Context, recs []feed.CanonicalProduct) (map[matchKey]*db.Product, error) {
	seen := make(map[matchKey]struct{}, len(recs))
	pairs := make([]db.NameMarketPair, 0, len(recs))
	for _, r := range recs {
		k := matchKey{Name: r.Name, SupermarketID: r.SupermarketID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		pairs = append(pairs, db.NameMarketPair{Name: r.Name, SupermarketID: r.SupermarketID})
	}

	found, err := p.store.FindProductsByNameAndSupermarket(ctx, pairs)
	if err != nil {
		return nil, err
	}

	matches := make(map[matchKey]*db.Product, len(found))
	for i := range found {
		prod := &found[i]
		matches[matchKey{Name: prod.Name, SupermarketID: prod.SupermarketID}] = prod
	}
	return matches, nil
}
