package dynamo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"token": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "token"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		fieldPurgeAt:   int64(1700864000),
		fieldDeletedAt: int64(1700000000),
		fieldExpiresAt: int64(1700086400),
	}
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)
	assert.Equal(t, fieldDeletedAt, ue1.Names["#f0"])
	assert.Equal(t, fieldExpiresAt, ue1.Names["#f1"])
	assert.Equal(t, fieldPurgeAt, ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldExpiresAt: int64(42)})
	require.NoError(t, err)
	av, ok := ue.Values[":v0"]
	require.True(t, ok)
	n, isNum := av.(*types.AttributeValueMemberN)
	require.True(t, isNum)
	assert.Equal(t, "42", n.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestUpdateExpr_WithMergesCondition(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldToken: "t"})
	require.NoError(t, err)
	ue = ue.with(map[string]string{"#owner": fieldOwner}, map[string]types.AttributeValue{":owner": strAttr("alice")})

	assert.Equal(t, fieldOwner, ue.Names["#owner"])
	assert.Equal(t, fieldToken, ue.Names["#f0"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "alice"}, ue.Values[":owner"])
}

func TestIsConditionFailed(t *testing.T) {
	wrapped := fmt.Errorf("update: %w", &types.ConditionalCheckFailedException{})
	assert.True(t, isConditionFailed(wrapped))
	assert.False(t, isConditionFailed(errors.New("throttled")))
}
