package receipt

import "time"

// Method identifies which pathway produced an extraction result. Callers use
// it for diagnostics, not correctness.
type Method string

const (
	// MethodPrimary means the model's structured payload decoded cleanly.
	MethodPrimary Method = "primary"
	// MethodHeuristicFallback means items were re-derived line by line from
	// the raw model text after the structured decode failed.
	MethodHeuristicFallback Method = "heuristic-fallback"
	// MethodSampleFallback means the model call itself failed and a fixed
	// sample dataset was served instead.
	MethodSampleFallback Method = "sample-fallback"
)

// Item represents one purchasable line on a receipt.
//
// Every Item emitted by the pipeline has a unique ID, a non-empty Name and a
// Price that passed validation (or was zeroed). AssignedTo is always
// initialized empty; assignment is a downstream concern.
type Item struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	AssignedTo []string `json:"assignedTo"`
}

// ExtractionResult represents one completed pipeline run. It is created
// fresh per upload and immutable once returned.
type ExtractionResult struct {
	Text   string `json:"text"`
	Items  []Item `json:"items"`
	Method Method `json:"method"`
}

// Person is a participant in the split
type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SplitItem is one item's contribution to a person's share
type SplitItem struct {
	ItemName   string  `json:"itemName"`
	ItemPrice  float64 `json:"itemPrice"`
	SplitPrice float64 `json:"splitPrice"`
}

// SplitResult is the computed share for one person
type SplitResult struct {
	PersonID   string      `json:"personId"`
	PersonName string      `json:"personName"`
	Total      float64     `json:"total"`
	Items      []SplitItem `json:"items"`
}

// Record is a persisted extraction run with its upload metadata
type Record struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Text        string    `json:"text"`
	Items       []Item    `json:"items"`
	Method      Method    `json:"method"`
	CreatedAt   time.Time `json:"created_at"`
}
