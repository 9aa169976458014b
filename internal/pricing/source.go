package pricing

import "context"

// RawPrice is the unparsed output of a price source: the scraped or
// estimated price text plus the unit the listing was quoted in, when known.
type RawPrice struct {
	Text string `json:"text"`
	Unit string `json:"unit,omitempty"`
}

// PriceSource produces raw market price text for an ingredient. A (nil, nil)
// return means the source has no listing for the ingredient — an expected
// miss. An error means the source itself failed (network, timeout) and a
// later source in the chain should still be tried.
type PriceSource interface {
	Name() string
	FetchRaw(ctx context.Context, name, unit string) (*RawPrice, error)
}
