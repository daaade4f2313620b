package feed

import "strings"

// Resolver maps free-text supermarket labels to stable ids. Labels that
// match nothing resolve to the fallback id, never to an error, so one
// malformed feed entry must not abort the batch.
type Resolver struct {
	byName     map[string]string
	fallbackID string
}

// KnownSupermarket is one {id, name} pair from the catalog store.
type KnownSupermarket struct {
	ID   string
	Name string
}

func NewResolver(known []KnownSupermarket, fallbackID string) *Resolver {
	byName := make(map[string]string, len(known))
	for _, m := range known {
		byName[strings.ToLower(m.Name)] = m.ID
	}
	return &Resolver{byName: byName, fallbackID: fallbackID}
}

// Resolve does a case-insensitive exact match on the label.
func (r *Resolver) Resolve(label string) string {
	if id, ok := r.byName[strings.ToLower(label)]; ok {
		return id
	}
	return r.fallbackID
}
