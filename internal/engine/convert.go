package engine

import (
	"strings"

	"github.com/seenimoa/fundline/pkg/models"
)

// ConvertOptions controls which item types currency conversion applies to.
type ConvertOptions struct {
	// IncludeSnapshots extends conversion to non-statement item types
	// (analyst targets, forecast summaries). Off by default.
	IncludeSnapshots bool
}

// Convert rewrites the currency-denominated fields of a statement payload
// from one currency to another at the given rate and returns a new
// payload; the input is never mutated.
//
// Conversion is a no-op (the input payload is returned unchanged) when the
// currencies match, the rate is non-positive (rate resolution failed — the
// caller falls back to unconverted values), or the item type does not
// carry currency values. Share-count fields are unit counts, not currency,
// and always pass through untouched.
func Convert(payload models.Payload, rateValue float64, from, to string, itemType models.ItemType, opts ConvertOptions) models.Payload {
	if strings.EqualFold(from, to) || rateValue <= 0 {
		return payload
	}
	if !itemType.IsStatement() && !opts.IncludeSnapshots {
		return payload
	}

	out := payload.Clone()
	for name, value := range out {
		if value == nil {
			continue
		}
		if isShareCount(name) {
			continue
		}
		converted := *value * rateValue
		out[name] = &converted
	}
	return out
}

// isShareCount reports whether a payload field holds a number of shares
// rather than a currency amount. The "shares" substring covers the diluted
// and basic average-share fields; the balance sheet discloses its issued
// count under the singular "Share Issued".
func isShareCount(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "shares") || strings.Contains(n, "share issued")
}
