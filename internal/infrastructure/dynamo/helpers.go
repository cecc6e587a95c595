package dynamo

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// ttlSeconds converts t to the epoch-seconds format DynamoDB TTL expects.
func ttlSeconds(t time.Time) int64 {
	return t.Unix()
}
