package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolverMatchesCaseInsensitive(t *testing.T) {
	r := NewResolver([]KnownSupermarket{
		{ID: "m1", Name: "Lidl"},
		{ID: "m2", Name: "Kaufland"},
	}, "fallback")

	assert.Equal(t, "m1", r.Resolve("Lidl"))
	assert.Equal(t, "m1", r.Resolve("lidl"))
	assert.Equal(t, "m1", r.Resolve("LIDL"))
	assert.Equal(t, "m2", r.Resolve("kaufland"))
}

func TestResolverFallsBackOnUnknownLabel(t *testing.T) {
	r := NewResolver([]KnownSupermarket{{ID: "m1", Name: "Lidl"}}, "fallback")

	// unknown labels must still yield an insertable record
	assert.Equal(t, "fallback", r.Resolve("Biedronka"))
	assert.Equal(t, "fallback", r.Resolve(""))
}

func TestResolverNoKnownSupermarkets(t *testing.T) {
	r := NewResolver(nil, "fallback")
	assert.Equal(t, "fallback", r.Resolve("Lidl"))
}
