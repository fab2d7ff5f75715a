package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Classifier maps disambiguated symptom strings onto catalog condition tags.
type Classifier struct {
	gen   contentGenerator
	model string
}

func NewClassifier(gen contentGenerator, model string) *Classifier {
	return &Classifier{gen: gen, model: model}
}

// classifySchema asks for a list of input/tag pairs; genai.Schema cannot describe a map with
// free-form keys. The tag is constrained to the vocabulary.
var classifySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"outputs": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"input": {Type: genai.TypeString},
					"tag":   {Type: genai.TypeString, Format: "enum", Enum: Vocabulary},
				},
				Required: []string{"input", "tag"},
			},
		},
	},
	Required: []string{"outputs"},
}

var vocabularyIndex = func() map[string]string {
	idx := make(map[string]string, len(Vocabulary))
	for _, tag := range Vocabulary {
		idx[strings.ToLower(tag)] = tag
	}
	return idx
}()

// canonicalTag returns the vocabulary spelling of tag, matched case-insensitively.
func canonicalTag(tag string) (string, bool) {
	canon, ok := vocabularyIndex[strings.ToLower(strings.TrimSpace(tag))]
	return canon, ok
}

func (c *Classifier) Classify(ctx context.Context, inputs []string) (map[string]string, error) {
	payload, err := json.Marshal(struct {
		Inputs []string `json:"inputs"`
	}{Inputs: inputs})
	if err != nil {
		return nil, err
	}
	out, err := generateJSON(ctx, c.gen, c.model, classifyPrompt, string(payload), classifySchema)
	if err != nil {
		return nil, err
	}
	return decodeOutputs(out)
}

// decodeOutputs accepts {"outputs": [{"input", "tag"}, ...]} and the map form
// {"outputs": {input: tag}}. Every tag must belong to the vocabulary.
func decodeOutputs(text string) (map[string]string, error) {
	obj, err := decodeObject(text)
	if err != nil {
		return nil, err
	}
	raw, ok := obj["outputs"]
	if !ok {
		return nil, fmt.Errorf("missing \"outputs\": %w", ErrMalformed)
	}

	var outputs map[string]string
	if err := json.Unmarshal(raw, &outputs); err != nil || outputs == nil {
		var pairs []struct {
			Input string `json:"input"`
			Tag   string `json:"tag"`
		}
		if err := json.Unmarshal(raw, &pairs); err != nil || pairs == nil {
			return nil, fmt.Errorf("\"outputs\" is neither a pair list nor a string map: %w", ErrMalformed)
		}
		outputs = make(map[string]string, len(pairs))
		for _, p := range pairs {
			if p.Input == "" {
				return nil, fmt.Errorf("output pair without input: %w", ErrMalformed)
			}
			outputs[p.Input] = p.Tag
		}
	}

	for input, tag := range outputs {
		canon, ok := canonicalTag(tag)
		if !ok {
			return nil, fmt.Errorf("tag %q for %q is not in the vocabulary: %w", tag, input, ErrMalformed)
		}
		outputs[input] = canon
	}
	return outputs, nil
}
