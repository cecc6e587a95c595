package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/email-login-otp/internal/domain"
)

const (
	attrIdentity     = "identity"
	attrTTL          = "ttl"
	attrLastIssuedAt = "last_issued_at"
)

// codeItem is the stored shape of a pending login code.
// ExpiresAt is unix millis; TTL is unix seconds and only drives DynamoDB's background cleanup.
type codeItem struct {
	Identity  string `dynamodbav:"identity"`
	Code      string `dynamodbav:"code"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
	TTL       int64  `dynamodbav:"ttl"`
}

// CodeRepo manages pending login codes.
// PK: identity. DeleteItem with ALL_OLD gives an atomic take.
type CodeRepo struct {
	client    API
	tableName string
	retention time.Duration
}

func NewCodeRepo(client API, tableName string, retention time.Duration) *CodeRepo {
	return &CodeRepo{client: client, tableName: tableName, retention: retention}
}

func (r *CodeRepo) Put(ctx context.Context, identity, code string, expiresAt time.Time) error {
	item, err := attributevalue.MarshalMap(codeItem{
		Identity:  identity,
		Code:      code,
		ExpiresAt: expiresAt.UnixMilli(),
		TTL:       ttlSeconds(expiresAt.Add(r.retention)),
	})
	if err != nil {
		return fmt.Errorf("marshal login code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put login code: %w", err)
	}
	return nil
}

func (r *CodeRepo) TakeIfValid(ctx context.Context, identity, candidate string, now time.Time) (domain.Outcome, error) {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.tableName),
		Key:          strKey(attrIdentity, identity),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return domain.OutcomeNoRecord, fmt.Errorf("take login code: %w", err)
	}
	if len(out.Attributes) == 0 {
		return domain.OutcomeNoRecord, nil
	}
	var item codeItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return domain.OutcomeNoRecord, fmt.Errorf("unmarshal login code: %w", err)
	}
	rec := &domain.CodeRecord{Identity: item.Identity, Code: item.Code, ExpiresAt: time.UnixMilli(item.ExpiresAt)}
	return domain.Classify(rec, candidate, now), nil
}
