package receipt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Plausible price range for a structured-path item. An out-of-range price is
// zeroed, never dropped, so an implausible price never removes an otherwise
// valid line.
const (
	minItemPrice = 0.01
	maxItemPrice = 1000
)

// validateItem repairs one raw candidate into a well-formed Item. It is
// total and pure: any price input yields an Item whose price is either the
// original value or exactly 0, and missing names and ids get positional
// defaults.
func validateItem(raw rawItem, index int) Item {
	price := coercePrice(raw.Price)
	if !(price > minItemPrice && price < maxItemPrice) {
		price = 0
	}

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = fmt.Sprintf("Item %d", index+1)
	}

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = fmt.Sprintf("item-%d", index+1)
	}

	return Item{
		ID:         id,
		Name:       name,
		Price:      price,
		AssignedTo: []string{},
	}
}

// validateItems runs every candidate through validateItem, preserving order
func validateItems(raw []rawItem) []Item {
	items := make([]Item, 0, len(raw))
	for i, r := range raw {
		items = append(items, validateItem(r, i))
	}
	return items
}

// coercePrice parses whatever the model put in the price field as a decimal.
// Unparseable values become 0.
func coercePrice(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "$"))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	case int:
		return float64(t)
	default:
		return 0
	}
}
