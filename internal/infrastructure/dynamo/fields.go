package dynamo

// DynamoDB attribute names used in key, condition and update expressions.
const (
	fieldPlantID   = "plant_id"
	fieldUses      = "uses"
	fieldRecipeID  = "recipe_id"
	fieldOwner     = "owner"
	fieldDeletedAt = "deleted_at"
	fieldPurgeAt   = "purge_at"
	fieldEmail     = "email"
	fieldUsername  = "username"
	fieldToken     = "token"
	fieldExpiresAt = "expires_at"

	indexOwnerCreatedAt = "owner-created_at-index"
	indexUsername       = "username-index"
	indexToken          = "token-index"
	indexEmail          = "email-index"
)
