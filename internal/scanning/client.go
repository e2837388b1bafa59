package scanning

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model call succeeds at the transport
// level but carries no usable text content.
var ErrEmptyResponse = errors.New("no response from model")

// Elaboration carries the context handed to the model when asking it to
// explain an ambiguous receipt line.
type Elaboration struct {
	ItemName    string
	ItemPrice   float64
	StoreName   string
	ReceiptText string
}

// Client defines the interface for vision-model operations
type Client interface {
	// ExtractReceipt sends a receipt image with the extraction prompt and
	// returns the model's raw text output, untouched. Parsing is the
	// caller's concern.
	ExtractReceipt(ctx context.Context, imageData []byte, contentType string) (string, error)
	// ElaborateItem asks the model to describe an unclear item name
	ElaborateItem(ctx context.Context, e Elaboration) (string, error)
	// Close closes the client and releases resources
	Close() error
}
