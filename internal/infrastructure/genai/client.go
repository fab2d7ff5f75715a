// Package genai adapts Gemini models to the extraction, classification and recipe contracts.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/herbal-remedy-api/internal/config"
	"google.golang.org/genai"
)

// ErrMalformed marks a model response that does not match the expected JSON contract.
var ErrMalformed = errors.New("malformed model output")

// contentGenerator is satisfied by (*genai.Client).Models.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewClient builds a Gemini client. A configured project selects Vertex AI; otherwise the
// API key selects the Gemini API.
func NewClient(ctx context.Context, cfg config.GenAI) (*genai.Client, error) {
	cc := &genai.ClientConfig{}
	switch {
	case cfg.Project != "":
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	case cfg.APIKey != "":
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	default:
		return nil, fmt.Errorf("GenAI requires GENAI_PROJECT or GENAI_API_KEY")
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return client, nil
}

// generateJSON sends one user turn under a system instruction and returns the raw JSON text.
func generateJSON(ctx context.Context, gen contentGenerator, model, system, user string, schema *genai.Schema) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(user, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema,
		Temperature:       genai.Ptr[float32](1),
		Seed:              genai.Ptr[int32](0),
	}
	resp, err := gen.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := stripFence(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty response: %w", ErrMalformed)
	}
	return text, nil
}

// stripFence removes a surrounding ```json fence some models add despite the MIME type.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// decodeObject unmarshals text into a map of raw members.
func decodeObject(text string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), ErrMalformed)
	}
	if obj == nil {
		return nil, fmt.Errorf("not a JSON object: %w", ErrMalformed)
	}
	return obj, nil
}
