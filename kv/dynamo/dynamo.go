// Package dynamo adapts a DynamoDB table to the kv.Store contract.
//
// The table needs a single string partition key named "pk". Values live in a
// string attribute "v"; counters live in a number attribute "n" so that ADD
// keeps working on them. Conditional writes supply set-if-absent and
// delete-if-equals; an UpdateItem with ADD supplies the atomic counter.
package dynamo

import (
	"context"
	"errors"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/arbor/kv"
)

// Store wraps a DynamoDB client and a table name.
type Store struct {
	client *dynamodb.Client
	table  string
}

// New returns a Store writing to the named table.
func New(client *dynamodb.Client, table string) *Store {
	return &Store{client: client, table: table}
}

var _ kv.Store = (*Store)(nil)

func (s *Store) pk(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: key},
	}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            s.pk(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", false, err
	}
	if result.Item == nil {
		return "", false, nil
	}
	if v, ok := result.Item["v"].(*types.AttributeValueMemberS); ok {
		return v.Value, true, nil
	}
	// Counter keys carry "n" instead of "v"; expose them as text.
	if n, ok := result.Item["n"].(*types.AttributeValueMemberN); ok {
		return n.Value, true, nil
	}
	return "", false, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: key},
			"v":  &types.AttributeValueMemberS{Value: value},
		},
	})
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.pk(key),
	})
	return err
}

func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(s.table),
		Key:                      s.pk(key),
		UpdateExpression:         aws.String("ADD #n :one"),
		ExpressionAttributeNames: map[string]string{"#n": "n"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, err
	}
	n, ok := result.Attributes["n"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("dynamo: counter attribute missing from update result")
	}
	return strconv.ParseInt(n.Value, 10, 64)
}

func (s *Store) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: key},
			"v":  &types.AttributeValueMemberS{Value: value},
		},
		ConditionExpression: aws.String("attribute_not_exists(pk)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) DeleteIfEquals(ctx context.Context, key, value string) (bool, error) {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(s.table),
		Key:                      s.pk(key),
		ConditionExpression:      aws.String("#v = :v"),
		ExpressionAttributeNames: map[string]string{"#v": "v"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
