package receipt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// skipMarkers flag lines that are not purchasable items: totals, payment
// details, store headers and footers. Matched case-insensitively as
// substrings.
var skipMarkers = []string{
	"tax", "total", "subtotal", "tip", "change", "balance",
	"thank you", "store", "address", "phone", "website", "copy",
	"debit", "credit", "card", "transaction", "payment",
}

var (
	priceRe         = regexp.MustCompile(`\$?(\d+\.\d{2})`)
	trailingPriceRe = regexp.MustCompile(`\$?\d+\.\d{2}.*$`)
	numericOnlyRe   = regexp.MustCompile(`^\d+$`)
)

// Heuristic text carries less trust than a decoded payload, so its
// acceptance range is tighter than the validator's.
const (
	heuristicMinPrice = 0.01
	heuristicMaxPrice = 100
)

// extractLineItems re-derives a best-effort item list from raw model text
// when the structured decode failed. It scans line by line, discards lines
// carrying a skip marker, and accepts the first monetary match per line as
// the candidate price.
func extractLineItems(rawText string) []rawItem {
	var items []rawItem
	count := 1

	for _, line := range strings.Split(rawText, "\n") {
		lower := strings.ToLower(line)
		if containsAny(lower, skipMarkers) {
			continue
		}

		m := priceRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		price, err := strconv.ParseFloat(m[1], 64)
		if err != nil || price <= heuristicMinPrice || price >= heuristicMaxPrice {
			continue
		}

		name := strings.TrimSpace(trailingPriceRe.ReplaceAllString(line, ""))
		if len(name) <= 2 || numericOnlyRe.MatchString(name) {
			continue
		}

		items = append(items, rawItem{
			ID:    fmt.Sprintf("item-%d", count),
			Name:  name,
			Price: price,
		})
		count++
	}

	return items
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
