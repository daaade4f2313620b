package feed

import "encoding/json"

// Batch is one supermarket's slice of the scraped promotions feed.
type Batch struct {
	Supermarket string            `json:"supermarket"`
	UpdatedAt   string            `json:"updatedAt"`
	Products    []IncomingProduct `json:"products"`
}

// IncomingProduct is a raw feed line item, consumed once per run.
type IncomingProduct struct {
	Name       string    `json:"name"`
	Price      PriceText `json:"price"`
	OldPrice   PriceText `json:"oldPrice"`
	Quantity   string    `json:"quantity"`
	Category   string    `json:"category"`
	PicURL     string    `json:"picUrl"`
	ValidFrom  string    `json:"validFrom"`
	ValidUntil string    `json:"validUntil"`
}

// CanonicalProduct is a line item after normalization: price parsed and
// positive, name within display limits, supermarket label resolved.
type CanonicalProduct struct {
	Name          string
	Price         float64
	OldPrice      *float64
	Quantity      string
	Category      string
	PicURL        string
	ValidFrom     string
	ValidUntil    string
	SupermarketID string
}

// PriceText tolerates the feed sending prices as either JSON strings
// ("2,10") or bare numbers (2.1).
type PriceText string

func (p *PriceText) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = PriceText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*p = PriceText(n.String())
	return nil
}
