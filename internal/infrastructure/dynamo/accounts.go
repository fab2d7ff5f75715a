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

// PendingAccountRepo provides typed DynamoDB operations for the pending_accounts table.
// expires_at is the TTL attribute; items linger after expiry until DynamoDB sweeps them.
type PendingAccountRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPendingAccountRepo(client *dynamodb.Client, tableName string) *PendingAccountRepo {
	return &PendingAccountRepo{client: client, tableName: tableName}
}

// Create inserts p unless a live pending record already holds the email.
func (r *PendingAccountRepo) Create(ctx context.Context, p *domain.PendingAccount, now time.Time) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal pending account: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#email) OR #exp <= :now"),
		ExpressionAttributeNames: map[string]string{
			"#email": fieldEmail,
			"#exp":   fieldExpiresAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": numAttr(now.Unix()),
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("pending registration exists: %w", domain.ErrConflict)
	}
	return err
}

func (r *PendingAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.PendingAccount, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	}
	var p domain.PendingAccount
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PendingAccountRepo) GetByUsername(ctx context.Context, username string) (*domain.PendingAccount, error) {
	return r.queryGSI(ctx, indexUsername, fieldUsername, username)
}

func (r *PendingAccountRepo) GetByToken(ctx context.Context, token string) (*domain.PendingAccount, error) {
	return r.queryGSI(ctx, indexToken, fieldToken, token)
}

// RotateToken atomically replaces the token and expiry of a live pending record.
func (r *PendingAccountRepo) RotateToken(ctx context.Context, email, token string, expiresAt int64, now time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldToken:     token,
		fieldExpiresAt: expiresAt,
	})
	if err != nil {
		return err
	}
	ue = ue.with(
		map[string]string{"#email": fieldEmail, "#exp": fieldExpiresAt},
		map[string]types.AttributeValue{":now": numAttr(now.Unix())},
	)
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldEmail, email),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#email) AND #exp > :now"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	}
	return err
}

func (r *PendingAccountRepo) Delete(ctx context.Context, email string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldEmail, email),
	})
	return err
}

// queryGSI reads every item for the index key and returns the one with the latest expiry.
// Expired items linger until the TTL sweep and may share a username with a live one, so
// the query cannot stop at the first item.
func (r *PendingAccountRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.PendingAccount, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#k = :v"),
		ExpressionAttributeNames:  map[string]string{"#k": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": strAttr(value)},
	})
	var items []domain.PendingAccount
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.PendingAccount
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		items = append(items, batch...)
	}
	latest := latestPending(items)
	if latest == nil {
		return nil, fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	}
	return latest, nil
}

func latestPending(items []domain.PendingAccount) *domain.PendingAccount {
	var best *domain.PendingAccount
	for i := range items {
		if best == nil || items[i].ExpiresAt > best.ExpiresAt {
			best = &items[i]
		}
	}
	return best
}

// AccountRepo provides typed DynamoDB operations for the accounts table.
type AccountRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAccountRepo(client *dynamodb.Client, tableName string) *AccountRepo {
	return &AccountRepo{client: client, tableName: tableName}
}

// Create inserts a only if the username is free.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#u)"),
		ExpressionAttributeNames: map[string]string{"#u": fieldUsername},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("account exists: %w", domain.ErrConflict)
	}
	return err
}

func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldUsername, username),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexEmail),
		KeyConditionExpression:    aws.String("#e = :e"),
		ExpressionAttributeNames:  map[string]string{"#e": fieldEmail},
		ExpressionAttributeValues: map[string]types.AttributeValue{":e": strAttr(email)},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Items[0], &a); err != nil {
		return nil, err
	}
	return &a, nil
}
