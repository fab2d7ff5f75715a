package genai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/herbal-remedy-api/internal/domain"
	"google.golang.org/genai"
)

// RecipeGenerator invents a single recipe showcasing a plant.
type RecipeGenerator struct {
	gen   contentGenerator
	model string
}

func NewRecipeGenerator(gen contentGenerator, model string) *RecipeGenerator {
	return &RecipeGenerator{gen: gen, model: model}
}

var recipeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"output": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"recipeName":   {Type: genai.TypeString},
				"ingredients":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"instructions": {Type: genai.TypeString},
			},
			Required: []string{"recipeName", "ingredients", "instructions"},
		},
	},
	Required: []string{"output"},
}

func (g *RecipeGenerator) Generate(ctx context.Context, plant domain.PlantRef) (*domain.Recipe, error) {
	user := fmt.Sprintf("common_name: %s\nscientific_name: %s\nedible_uses: %s",
		plant.PlantName, plant.ScientificName, plant.EdibleUses)
	out, err := generateJSON(ctx, g.gen, g.model, recipePrompt, user, recipeSchema)
	if err != nil {
		return nil, err
	}
	return decodeRecipe(out)
}

// decodeRecipe accepts the recipe either wrapped in "output" or as the top-level object.
func decodeRecipe(text string) (*domain.Recipe, error) {
	obj, err := decodeObject(text)
	if err != nil {
		return nil, err
	}
	body := []byte(text)
	if inner, ok := obj["output"]; ok {
		body = inner
	}
	var r domain.Recipe
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), ErrMalformed)
	}
	if r.Name == "" || len(r.Ingredients) == 0 {
		return nil, fmt.Errorf("recipe missing name or ingredients: %w", ErrMalformed)
	}
	return &r, nil
}
