package genai

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// Extractor finds symptom phrases and their stated causes in free text.
type Extractor struct {
	gen   contentGenerator
	model string
}

func NewExtractor(gen contentGenerator, model string) *Extractor {
	return &Extractor{gen: gen, model: model}
}

var extractSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"symptoms": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"symptom": {Type: genai.TypeString},
					"context": {Type: genai.TypeString},
				},
				Required: []string{"symptom"},
			},
		},
	},
	Required: []string{"symptoms"},
}

func (e *Extractor) Extract(ctx context.Context, text string) (map[string]string, error) {
	out, err := generateJSON(ctx, e.gen, e.model, extractPrompt, text, extractSchema)
	if err != nil {
		return nil, err
	}
	return decodeSymptoms(out)
}

// decodeSymptoms accepts three shapes of "symptoms": a list of {"symptom", "context"} objects,
// a {symptom: context} map, and a bare list of strings, which carries no context.
func decodeSymptoms(text string) (map[string]string, error) {
	obj, err := decodeObject(text)
	if err != nil {
		return nil, err
	}
	raw, ok := obj["symptoms"]
	if !ok {
		return nil, fmt.Errorf("missing \"symptoms\": %w", ErrMalformed)
	}

	var withContext map[string]*string
	if err := json.Unmarshal(raw, &withContext); err == nil && withContext != nil {
		out := make(map[string]string, len(withContext))
		for s, c := range withContext {
			if c != nil {
				out[s] = *c
			} else {
				out[s] = ""
			}
		}
		return out, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		return nil, fmt.Errorf("\"symptoms\" is neither an object nor a list: %w", ErrMalformed)
	}
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		var s string
		if err := json.Unmarshal(entry, &s); err == nil {
			out[s] = ""
			continue
		}
		var pair struct {
			Symptom string `json:"symptom"`
			Context string `json:"context"`
		}
		if err := json.Unmarshal(entry, &pair); err != nil || pair.Symptom == "" {
			return nil, fmt.Errorf("symptom entry %s: %w", entry, ErrMalformed)
		}
		out[pair.Symptom] = pair.Context
	}
	return out, nil
}
