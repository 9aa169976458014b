package pricing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// NormalizedPrice is a canonical per-base-unit price. Unit is always a base
// unit: "g", "ml", or an atomic packaged unit such as "chai" or "gói".
type NormalizedPrice struct {
	PricePerUnit float64 `json:"price_per_unit"`
	Unit         string  `json:"unit"`
	Currency     string  `json:"currency"`
}

const Currency = "VND"

var (
	numberRe = regexp.MustCompile(`[0-9][0-9.,]*`)
	// Embedded quantity+unit suffix, e.g. "/500g", "/kg", "/1,5l".
	// Longer unit names must come before their prefixes (kg before g, lít
	// before l) so the regexp picks the full unit.
	suffixRe = regexp.MustCompile(`(?i)/\s*([0-9]+(?:[.,][0-9]+)?)?\s*(kg|lít|liter|ml|chai|gói|g|l)`)
)

// Normalize parses free-form scraped price text such as "89.000đ",
// "22.000đ/500g" or "150.000đ/kg" into a canonical per-unit price.
//
// When the text carries its own quantity+unit suffix the parsed price is
// divided down to the base unit (kg→g and l→ml multiply the denominator by
// 1000; chai/gói are atomic and only divide by the quantity). Without a
// suffix the whole price is taken as the cost of exactly one declaredUnit;
// the unit label is still canonicalized but the magnitude is not rescaled.
//
// Returns nil when no positive numeric price can be extracted. A nil result
// is an expected miss, not a fault.
func Normalize(priceText, declaredUnit string) *NormalizedPrice {
	text := strings.TrimSpace(priceText)
	if text == "" {
		return nil
	}

	loc := numberRe.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	price := parseVND(text[loc[0]:loc[1]])
	if price <= 0 {
		return nil
	}

	if m := suffixRe.FindStringSubmatch(text[loc[1]:]); m != nil {
		qty := 1.0
		if m[1] != "" {
			if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64); err == nil && v > 0 {
				qty = v
			}
		}
		unit, factor := baseUnit(m[2])
		return &NormalizedPrice{
			PricePerUnit: round2(price / (qty * factor)),
			Unit:         unit,
			Currency:     Currency,
		}
	}

	// No embedded suffix: the price is for one declared unit as sold. Only
	// the unit label is canonicalized; the magnitude stays per declared unit.
	unit, _ := baseUnit(declaredUnit)
	return &NormalizedPrice{
		PricePerUnit: round2(price),
		Unit:         unit,
		Currency:     Currency,
	}
}

// parseVND resolves thousands separators in a numeric run. Prices in this
// domain are integral VND, so a run like "89.000" is eighty-nine thousand
// and even a lone "." with one or two trailing digits is grouping noise
// rather than a decimal separator. Every "." and "," is therefore stripped
// before parsing.
func parseVND(run string) float64 {
	cleaned := strings.NewReplacer(".", "", ",", "").Replace(run)
	cleaned = strings.Trim(cleaned, ".")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// baseUnit maps a declared or embedded unit to its base unit and the factor
// by which one declared unit exceeds the base unit. Unrecognized units
// default to grams.
func baseUnit(unit string) (string, float64) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "kg":
		return "g", 1000
	case "g", "gram":
		return "g", 1
	case "l", "lít", "lit", "liter":
		return "ml", 1000
	case "ml":
		return "ml", 1
	case "chai":
		return "chai", 1
	case "gói", "goi":
		return "gói", 1
	default:
		return "g", 1
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
