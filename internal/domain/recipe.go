package domain

import "time"

// Recipe is the structured output of the recipe service.
type Recipe struct {
	Name         string   `json:"recipeName" dynamodbav:"name" validate:"required"`
	Ingredients  []string `json:"ingredients" dynamodbav:"ingredients"`
	Instructions string   `json:"instructions" dynamodbav:"instructions"`
}

// PlantRef identifies the plant a recipe is generated for.
type PlantRef struct {
	PlantName      string `json:"plant_name" validate:"required"`
	ScientificName string `json:"scientific_name" validate:"required"`
	EdibleUses     string `json:"edible_uses"`
}

// SavedRecipe is a recipe a user kept, together with the symptom it was recommended for.
// DeletedAt marks a soft delete; PurgeAt (Unix seconds) is the store TTL attribute and is
// only set while the record is soft-deleted.
type SavedRecipe struct {
	RecipeID  string     `json:"id" dynamodbav:"recipe_id"`
	Owner     string     `json:"-" dynamodbav:"owner"`
	Symptom   string     `json:"symptom" dynamodbav:"symptom"`
	Recipe    Recipe     `json:"recipe" dynamodbav:"recipe"`
	CreatedAt time.Time  `json:"created" dynamodbav:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at,omitempty,unixtime"`
	PurgeAt   int64      `json:"-" dynamodbav:"purge_at,omitempty"`
}

// SaveRecipeRequest is the body of a save call.
type SaveRecipeRequest struct {
	Symptom string `json:"symptom" validate:"required"`
	Recipe  Recipe `json:"recipe"`
}
