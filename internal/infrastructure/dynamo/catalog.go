package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/herbal-remedy-api/internal/domain"
)

// maxBatchWrite is the BatchWriteItem request limit.
const maxBatchWrite = 25

// CatalogRepo reads and loads the plants table. Documents are kept schemaless so that the
// ranking layer can tolerate dirty rating and list fields.
type CatalogRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCatalogRepo(client *dynamodb.Client, tableName string) *CatalogRepo {
	return &CatalogRepo{client: client, tableName: tableName}
}

// FindByUse returns every plant whose uses attribute contains use. contains() matches list
// elements exactly but string attributes by substring, so callers re-check the match.
func (r *CatalogRepo) FindByUse(ctx context.Context, use string) ([]domain.CatalogDocument, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		FilterExpression:         aws.String("contains(#u, :use)"),
		ExpressionAttributeNames: map[string]string{"#u": fieldUses},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":use": strAttr(use),
		},
	})
	var docs []domain.CatalogDocument
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan catalog: %w", err)
		}
		var batch []map[string]any
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal catalog: %w", err)
		}
		for _, m := range batch {
			docs = append(docs, domain.CatalogDocument(m))
		}
	}
	return docs, nil
}

// PutBatch writes documents in BatchWriteItem chunks, resubmitting unprocessed items.
func (r *CatalogRepo) PutBatch(ctx context.Context, docs []domain.CatalogDocument) error {
	for start := 0; start < len(docs); start += maxBatchWrite {
		end := min(start+maxBatchWrite, len(docs))
		reqs := make([]types.WriteRequest, 0, end-start)
		for _, d := range docs[start:end] {
			item, err := attributevalue.MarshalMap(map[string]any(d))
			if err != nil {
				return fmt.Errorf("marshal plant %v: %w", d[domain.CatalogPlantID], err)
			}
			reqs = append(reqs, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
		}
		pending := map[string][]types.WriteRequest{r.tableName: reqs}
		for len(pending) > 0 {
			out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return fmt.Errorf("batch write plants: %w", err)
			}
			pending = out.UnprocessedItems
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
	return nil
}
