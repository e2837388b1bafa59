package receipt

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/KushKG/receipt-splitter/internal/scanning"
)

// Config carries environment-derived settings into the pipeline explicitly,
// keeping the core testable without environment mutation.
type Config struct {
	// MaxUploadBytes is the authoritative upload ceiling. Zero means
	// DefaultMaxUploadBytes.
	MaxUploadBytes int64
}

// Pipeline turns one uploaded receipt image into a validated, priced item
// list. Decoding falls back from the structured payload to line heuristics;
// a failed model call falls back to fixed sample data. Each request is an
// independent, sequential unit of work with no shared mutable state.
type Pipeline struct {
	client scanning.Client
	cfg    Config
}

// NewPipeline creates a Pipeline around the given model client
func NewPipeline(client scanning.Client, cfg Config) *Pipeline {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Pipeline{client: client, cfg: cfg}
}

// Process runs one extraction request end to end. The only errors returned
// are KindInvalidInput, KindMalformedPayload and KindNoItemsFound; upstream
// failures are absorbed into the sample fallback. No retries are attempted.
func (p *Pipeline) Process(ctx context.Context, upload Upload) (*ExtractionResult, error) {
	start := time.Now()

	result, err := p.process(ctx, upload)
	if err != nil {
		extractionFailures.WithLabelValues(KindOf(err).String()).Inc()
		return nil, err
	}

	extractionsTotal.WithLabelValues(string(result.Method)).Inc()
	extractionDuration.Observe(time.Since(start).Seconds())
	return result, nil
}

func (p *Pipeline) process(ctx context.Context, upload Upload) (*ExtractionResult, error) {
	contentType, err := validateUpload(upload, p.cfg.MaxUploadBytes)
	if err != nil {
		return nil, err
	}

	rawText, err := p.client.ExtractReceipt(ctx, upload.Data, contentType)
	if err != nil {
		kind := KindUpstreamUnavailable
		if errors.Is(err, scanning.ErrEmptyResponse) {
			kind = KindEmptyResponse
		}
		slog.Warn("Model call failed, serving sample data",
			"stage", "model-call",
			"kind", kind.String(),
			"filename", upload.Filename,
			"error", err,
		)
		return sampleResult(), nil
	}

	payload, parseErr := parsePayload(normalizeResponse(rawText))
	if parseErr != nil {
		slog.Warn("Structured parse failed, trying line heuristics",
			"stage", "parse",
			"error", parseErr,
			"raw", snippet(rawText),
		)

		candidates := extractLineItems(rawText)
		if len(candidates) == 0 {
			slog.Warn("Heuristic extraction found no items",
				"stage", "heuristic",
				"raw", snippet(rawText),
			)
			return nil, newError(KindMalformedPayload, "Could not read the receipt. Please upload a clearer image.")
		}

		return &ExtractionResult{
			Text:   rawText,
			Items:  validateItems(candidates),
			Method: MethodHeuristicFallback,
		}, nil
	}

	items := validateItems(payload.Items)
	if len(items) == 0 {
		// A decoded payload with zero items is a caller-visible failure,
		// not another fallback attempt.
		return nil, newError(KindNoItemsFound, "No items found in receipt. Please ensure the receipt is clear and contains itemized prices.")
	}

	text := payload.Text
	if text == "" {
		text = "Receipt processed successfully"
	}

	return &ExtractionResult{
		Text:   text,
		Items:  items,
		Method: MethodPrimary,
	}, nil
}

// sampleResult is the last-resort dataset served when the model call fails
// outright, so the caller never sees a hard error from an upstream outage.
func sampleResult() *ExtractionResult {
	return &ExtractionResult{
		Text: "Fallback: extraction service temporarily unavailable. Using sample data.",
		Items: []Item{
			{ID: "item-1", Name: "Coffee", Price: 4.50, AssignedTo: []string{}},
			{ID: "item-2", Name: "Sandwich", Price: 8.99, AssignedTo: []string{}},
			{ID: "item-3", Name: "Cookie", Price: 2.25, AssignedTo: []string{}},
		},
		Method: MethodSampleFallback,
	}
}

// snippet bounds raw model output for log lines
func snippet(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
