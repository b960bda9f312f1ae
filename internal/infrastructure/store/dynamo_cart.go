package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/shopfront/internal/cart"
)

// DynamoCartBackend persists carts in a DynamoDB table keyed by cart_id,
// one item per cart. It is the managed alternative to the file backend.
type DynamoCartBackend struct {
	client    *dynamodb.Client
	tableName string
}

// dynamoCart is the DynamoDB item structure.
type dynamoCart struct {
	CartID    string `dynamodbav:"cart_id"`
	Lines     string `dynamodbav:"lines"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

func NewDynamoCartBackend(client *dynamodb.Client, tableName string) *DynamoCartBackend {
	return &DynamoCartBackend{client: client, tableName: tableName}
}

func (b *DynamoCartBackend) Load(ctx context.Context, cartID string) ([]cart.Line, error) {
	out, err := b.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(b.tableName),
		Key: map[string]types.AttributeValue{
			"cart_id": &types.AttributeValueMemberS{Value: cartID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dynamo get cart: %w", err)
	}
	if out.Item == nil {
		return nil, cart.ErrNoCart
	}

	var item dynamoCart
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal cart item: %w", err)
	}

	var lines []cart.Line
	if err := json.Unmarshal([]byte(item.Lines), &lines); err != nil {
		return nil, fmt.Errorf("decode cart lines: %w", err)
	}
	return lines, nil
}

func (b *DynamoCartBackend) Save(ctx context.Context, cartID string, lines []cart.Line) error {
	if lines == nil {
		lines = []cart.Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart lines: %w", err)
	}

	av, err := attributevalue.MarshalMap(dynamoCart{
		CartID:    cartID,
		Lines:     string(data),
		UpdatedAt: time.Now().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal cart item: %w", err)
	}

	_, err = b.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(b.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("dynamo put cart: %w", err)
	}
	return nil
}

func (b *DynamoCartBackend) Delete(ctx context.Context, cartID string) error {
	_, err := b.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(b.tableName),
		Key: map[string]types.AttributeValue{
			"cart_id": &types.AttributeValueMemberS{Value: cartID},
		},
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("dynamo delete cart: %w", err)
	}
	return nil
}
