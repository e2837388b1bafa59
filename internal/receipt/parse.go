package receipt

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// payloadSchemaJSON mirrors the shape the extraction prompt asks the model
// for. It is deliberately loose about per-item fields: missing ids, names
// and odd price encodings are repaired by the validator, not rejected here.
const payloadSchemaJSON = `{
	"type": "object",
	"properties": {
		"text": {"type": "string"},
		"items": {
			"type": "array",
			"items": {"type": "object"}
		}
	}
}`

var payloadSchema = jsonschema.MustCompileString("payload.json", payloadSchemaJSON)

// rawPayload is the canonical extraction schema as the model emits it
type rawPayload struct {
	Text  string    `json:"text"`
	Items []rawItem `json:"items"`
}

// rawItem is one unvalidated candidate item. Price is untyped because
// models sometimes emit it as a string.
type rawItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price any    `json:"price"`
}

// parsePayload attempts strict decoding of normalized model output into the
// canonical schema. Any decode or schema failure is KindMalformedPayload;
// the orchestrator routes that to the heuristic fallback rather than the
// caller.
func parsePayload(normalized string) (*rawPayload, error) {
	var generic any
	if err := json.Unmarshal([]byte(normalized), &generic); err != nil {
		return nil, wrapError(KindMalformedPayload, "decoding model payload", err)
	}

	if err := payloadSchema.Validate(generic); err != nil {
		return nil, wrapError(KindMalformedPayload, "model payload does not match expected shape", err)
	}

	var payload rawPayload
	if err := json.Unmarshal([]byte(normalized), &payload); err != nil {
		return nil, wrapError(KindMalformedPayload, "decoding model payload", err)
	}

	return &payload, nil
}
