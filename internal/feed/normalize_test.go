package feed

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	assert.Equal(t, 2.1, ParsePrice("2,10"))
	assert.Equal(t, 2.5, ParsePrice("2.50"))
	assert.Equal(t, 19.99, ParsePrice(" 19,99 "))
	assert.Equal(t, float64(3), ParsePrice("3"))

	// missing or junk prices come back as zero and get dropped upstream
	assert.Zero(t, ParsePrice(""))
	assert.Zero(t, ParsePrice("gratis"))
	assert.Zero(t, ParsePrice("–"))
}

func TestParsePriceReplacesOnlyFirstComma(t *testing.T) {
	// a second comma makes the value unparseable, not silently mangled
	assert.Zero(t, ParsePrice("1,234,56"))
}

func TestNormalizeNameShortNamesUntouched(t *testing.T) {
	assert.Equal(t, "Milk 1L", NormalizeName("Milk 1L"))

	// exactly at the limit is still untouched
	name := strings.Repeat("a", 256)
	assert.Equal(t, name, NormalizeName(name))
}

func TestNormalizeNameTruncatesLongNames(t *testing.T) {
	// a 300-char name with 15 words must come back as exactly the first
	// 10 words joined by single spaces
	words := make([]string, 15)
	for i := range words {
		words[i] = strings.Repeat("x", 19)
	}
	words[0] = strings.Repeat("x", 20)
	long := strings.Join(words, " ")
	require.Len(t, long, 300)

	got := NormalizeName(long)
	assert.Equal(t, strings.Join(words[:10], " "), got)
}

func TestNormalizeNameCollapsesWhitespace(t *testing.T) {
	long := strings.Repeat("word  \t ", 40) // runs of whitespace between tokens
	got := NormalizeName(long)
	assert.Equal(t, strings.Join([]string{
		"word", "word", "word", "word", "word",
		"word", "word", "word", "word", "word",
	}, " "), got)
}

func TestCanonicalizeDropsUnusablePrice(t *testing.T) {
	_, ok := Canonicalize(IncomingProduct{Name: "Milk 1L", Price: ""}, "m1")
	assert.False(t, ok)

	_, ok = Canonicalize(IncomingProduct{Name: "Milk 1L", Price: "0"}, "m1")
	assert.False(t, ok)

	_, ok = Canonicalize(IncomingProduct{Name: "Milk 1L", Price: "n/a"}, "m1")
	assert.False(t, ok)
}

func TestCanonicalize(t *testing.T) {
	rec, ok := Canonicalize(IncomingProduct{
		Name:       "Milk 1L",
		Price:      "2,10",
		OldPrice:   "2,50",
		Quantity:   "1 l",
		Category:   "dairy",
		ValidFrom:  "2024-03-04",
		ValidUntil: "2024-03-10",
	}, "m1")
	require.True(t, ok)

	assert.Equal(t, "Milk 1L", rec.Name)
	assert.Equal(t, 2.1, rec.Price)
	require.NotNil(t, rec.OldPrice)
	assert.Equal(t, 2.5, *rec.OldPrice)
	assert.Equal(t, "m1", rec.SupermarketID)
	assert.Equal(t, "2024-03-04", rec.ValidFrom)
}

func TestCanonicalizeAbsentOldPriceStaysAbsent(t *testing.T) {
	rec, ok := Canonicalize(IncomingProduct{Name: "Milk 1L", Price: "2,10"}, "m1")
	require.True(t, ok)
	assert.Nil(t, rec.OldPrice)
}

func TestPriceTextAcceptsStringsAndNumbers(t *testing.T) {
	var b Batch
	data := `{"supermarket":"Lidl","products":[
		{"name":"A","price":"2,10"},
		{"name":"B","price":2.5},
		{"name":"C","price":null}
	]}`
	require.NoError(t, json.Unmarshal([]byte(data), &b))
	assert.Equal(t, PriceText("2,10"), b.Products[0].Price)
	assert.Equal(t, PriceText("2.5"), b.Products[1].Price)
	assert.Equal(t, PriceText(""), b.Products[2].Price)
}
