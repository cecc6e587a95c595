package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// CooldownRepo gates code issuance with a conditional write.
// PK: identity.
type CooldownRepo struct {
	client    API
	tableName string
}

func NewCooldownRepo(client API, tableName string) *CooldownRepo {
	return &CooldownRepo{client: client, tableName: tableName}
}

// TryReserve writes now as last_issued_at only if the stored value is absent or at least cooldown old.
func (r *CooldownRepo) TryReserve(ctx context.Context, identity string, now time.Time, cooldown time.Duration) (bool, error) {
	nowMS := now.UnixMilli()
	threshold := now.Add(-cooldown).UnixMilli()
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			attrIdentity:     &types.AttributeValueMemberS{Value: identity},
			attrLastIssuedAt: &types.AttributeValueMemberN{Value: strconv.FormatInt(nowMS, 10)},
			attrTTL:          &types.AttributeValueMemberN{Value: strconv.FormatInt(ttlSeconds(now.Add(cooldown)), 10)},
		},
		ConditionExpression: aws.String("attribute_not_exists(#id) OR #last <= :threshold"),
		ExpressionAttributeNames: map[string]string{
			"#id":   attrIdentity,
			"#last": attrLastIssuedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":threshold": &types.AttributeValueMemberN{Value: strconv.FormatInt(threshold, 10)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("reserve cooldown: %w", err)
	}
	return true, nil
}
