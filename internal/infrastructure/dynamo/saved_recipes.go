package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/herbal-remedy-api/internal/domain"
)

// SavedRecipeRepo provides typed DynamoDB operations for the saved_recipes table.
// purge_at is the table's TTL attribute and is only present on soft-deleted items.
type SavedRecipeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSavedRecipeRepo(client *dynamodb.Client, tableName string) *SavedRecipeRepo {
	return &SavedRecipeRepo{client: client, tableName: tableName}
}

func (r *SavedRecipeRepo) Put(ctx context.Context, rec *domain.SavedRecipe) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal saved recipe: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListActive returns the owner's non-deleted recipes, newest created first.
func (r *SavedRecipeRepo) ListActive(ctx context.Context, owner string) ([]domain.SavedRecipe, error) {
	return r.queryOwner(ctx, owner, "attribute_not_exists(#del)", nil)
}

// ListDeleted returns the owner's recipes deleted strictly after since.
func (r *SavedRecipeRepo) ListDeleted(ctx context.Context, owner string, since time.Time) ([]domain.SavedRecipe, error) {
	return r.queryOwner(ctx, owner, "#del > :since", map[string]types.AttributeValue{
		":since": numAttr(since.Unix()),
	})
}

// SoftDelete marks an active recipe deleted and arms its TTL in one conditional update.
func (r *SavedRecipeRepo) SoftDelete(ctx context.Context, owner, recipeID string, at, purgeAt time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldDeletedAt: at.Unix(),
		fieldPurgeAt:   purgeAt.Unix(),
	})
	if err != nil {
		return err
	}
	ue = ue.with(
		map[string]string{"#owner": fieldOwner, "#del": fieldDeletedAt},
		map[string]types.AttributeValue{":owner": strAttr(owner)},
	)
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldRecipeID, recipeID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("#owner = :owner AND attribute_not_exists(#del)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("recipe not found: %w", domain.ErrNotFound)
	}
	return err
}

// Recover clears the deletion marker and TTL of a recipe deleted strictly after since.
func (r *SavedRecipeRepo) Recover(ctx context.Context, owner, recipeID string, since time.Time) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldRecipeID, recipeID),
		UpdateExpression:    aws.String("REMOVE #del, #purge"),
		ConditionExpression: aws.String("#owner = :owner AND #del > :since"),
		ExpressionAttributeNames: map[string]string{
			"#owner": fieldOwner,
			"#del":   fieldDeletedAt,
			"#purge": fieldPurgeAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": strAttr(owner),
			":since": numAttr(since.Unix()),
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("recipe not found: %w", domain.ErrNotFound)
	}
	return err
}

func (r *SavedRecipeRepo) queryOwner(ctx context.Context, owner, filter string, extra map[string]types.AttributeValue) ([]domain.SavedRecipe, error) {
	values := map[string]types.AttributeValue{":owner": strAttr(owner)}
	for k, v := range extra {
		values[k] = v
	}
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexOwnerCreatedAt),
		KeyConditionExpression:    aws.String("#owner = :owner"),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeNames:  map[string]string{"#owner": fieldOwner, "#del": fieldDeletedAt},
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(false),
	})
	var out []domain.SavedRecipe
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.SavedRecipe
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}
