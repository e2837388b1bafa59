package scanning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Decoding settings. Extraction runs near-deterministic with a token ceiling
// sized for a long itemized receipt; elaboration allows a little more
// variation but only a short answer.
const (
	extractionTemperature = 0.1
	extractionMaxTokens   = 2000

	elaborationTemperature = 0.3
	elaborationMaxTokens   = 200
)

// Gemini implements the Client interface using Google Gemini
type Gemini struct {
	client         *genai.Client
	extractModel   *genai.GenerativeModel
	elaborateModel *genai.GenerativeModel
	timeout        time.Duration
}

// NewGemini creates a new Gemini Client instance
func NewGemini(apiKey string, modelName string, timeout time.Duration) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	extractModel := client.GenerativeModel(modelName)
	extractModel.SetTemperature(extractionTemperature)
	extractModel.SetMaxOutputTokens(extractionMaxTokens)

	elaborateModel := client.GenerativeModel(modelName)
	elaborateModel.SetTemperature(elaborationTemperature)
	elaborateModel.SetMaxOutputTokens(elaborationMaxTokens)

	return &Gemini{
		client:         client,
		extractModel:   extractModel,
		elaborateModel: elaborateModel,
		timeout:        timeout,
	}, nil
}

// ExtractReceipt sends the receipt image to Gemini and returns the raw text
// response. A single attempt is made; retry policy belongs to the caller.
func (g *Gemini) ExtractReceipt(ctx context.Context, imageData []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	// Convert to PNG if needed so the image part format is always known
	finalImageData, err := prepareImageData(imageData, contentType)
	if err != nil {
		return "", err
	}

	parts := []genai.Part{
		genai.ImageData("png", finalImageData),
		genai.Text(extractionPrompt),
	}

	resp, err := g.extractModel.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

// ElaborateItem asks Gemini to describe an unclear receipt item
func (g *Gemini) ElaborateItem(ctx context.Context, e Elaboration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.elaborateModel.GenerateContent(ctx, genai.Text(elaborationPrompt(e)))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
