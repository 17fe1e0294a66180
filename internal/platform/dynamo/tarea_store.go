// Package dynamo implements the tarea store over a DynamoDB table.
//
// One item per tarea, keyed by tarea_id, with a ttl attribute the
// table's TTL reaper uses to expire old records. All operations are
// single-item with no conditional writes: concurrent writers to the
// same tarea are last-write-wins.
package dynamo

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/phrazzld/tarea-api/internal/domain"
	"github.com/phrazzld/tarea-api/internal/store"
)

const keyAttr = "tarea_id"

// api is the subset of the DynamoDB client the store uses. Narrowed to
// an interface so tests can substitute a fake.
type api interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// TareaStore implements store.TareaStore against one DynamoDB table.
type TareaStore struct {
	client api
	table  string
}

// NewTareaStore creates a TareaStore for the given table.
func NewTareaStore(client api, table string) *TareaStore {
	return &TareaStore{client: client, table: table}
}

// tareaRecord is the persisted item shape. Attribute names are part of
// the deployed table's format and must not change.
type tareaRecord struct {
	ID          string     `dynamodbav:"tarea_id"`
	Title       string     `dynamodbav:"title"`
	Description string     `dynamodbav:"description"`
	Done        bool       `dynamodbav:"todo"`
	DueAt       *time.Time `dynamodbav:"todoDate,omitempty"`
	FileNames   []string   `dynamodbav:"fileNames"`
	ExpiresAt   int64      `dynamodbav:"ttl"`
}

func toRecord(t *domain.Tarea) tareaRecord {
	return tareaRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Done:        t.Done,
		DueAt:       t.DueAt,
		FileNames:   t.FileNames,
		ExpiresAt:   t.ExpiresAt,
	}
}

func (r tareaRecord) toDomain() *domain.Tarea {
	return &domain.Tarea{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Done:        r.Done,
		DueAt:       r.DueAt,
		FileNames:   r.FileNames,
		ExpiresAt:   r.ExpiresAt,
	}
}

func (s *TareaStore) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		keyAttr: &types.AttributeValueMemberS{Value: id},
	}
}

// Put writes the full record, overwriting any previous version.
func (s *TareaStore) Put(ctx context.Context, tarea *domain.Tarea) error {
	if err := tarea.Validate(); err != nil {
		return err
	}

	item, err := attributevalue.MarshalMap(toRecord(tarea))
	if err != nil {
		return store.NewStoreError("tarea", "put", "failed to marshal record", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return store.NewStoreError("tarea", "put", "failed to write item", err)
	}

	return nil
}

// GetByID retrieves a tarea by its unique ID.
// Returns store.ErrTareaNotFound if the item does not exist.
func (s *TareaStore) GetByID(ctx context.Context, id string) (*domain.Tarea, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(id),
	})
	if err != nil {
		return nil, store.NewStoreError("tarea", "get", "failed to read item", err)
	}

	if len(out.Item) == 0 {
		return nil, store.ErrTareaNotFound
	}

	var rec tareaRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, store.NewStoreError("tarea", "get", "failed to unmarshal record", err)
	}

	return rec.toDomain(), nil
}

// Delete removes the record. Deleting an absent ID is indistinguishable
// from success, which makes the operation idempotent.
func (s *TareaStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(id),
	})
	if err != nil {
		return store.NewStoreError("tarea", "delete", "failed to delete item", err)
	}

	return nil
}

// ScanAll returns every tarea in the table, following continuation keys
// until the scan is exhausted.
func (s *TareaStore) ScanAll(ctx context.Context) ([]*domain.Tarea, error) {
	tareas := []*domain.Tarea{}

	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, store.NewStoreError("tarea", "scan", "failed to scan table", err)
		}

		page, err := unmarshalItems(out.Items)
		if err != nil {
			return nil, err
		}
		tareas = append(tareas, page...)

		if len(out.LastEvaluatedKey) == 0 {
			return tareas, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// List returns one page of tareas starting after the given cursor.
func (s *TareaStore) List(ctx context.Context, cursor string, limit int32) ([]*domain.Tarea, string, error) {
	in := &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	}
	if limit > 0 {
		in.Limit = aws.Int32(limit)
	}

	if cursor != "" {
		id, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		in.ExclusiveStartKey = s.key(id)
	}

	out, err := s.client.Scan(ctx, in)
	if err != nil {
		return nil, "", store.NewStoreError("tarea", "scan", "failed to scan table", err)
	}

	tareas, err := unmarshalItems(out.Items)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if lek, ok := out.LastEvaluatedKey[keyAttr]; ok {
		if s, ok := lek.(*types.AttributeValueMemberS); ok {
			next = encodeCursor(s.Value)
		}
	}

	return tareas, next, nil
}

func unmarshalItems(items []map[string]types.AttributeValue) ([]*domain.Tarea, error) {
	tareas := make([]*domain.Tarea, 0, len(items))
	for _, item := range items {
		var rec tareaRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, store.NewStoreError("tarea", "scan", "failed to unmarshal record", err)
		}
		tareas = append(tareas, rec.toDomain())
	}
	return tareas, nil
}

func encodeCursor(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func decodeCursor(cursor string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil || len(raw) == 0 {
		return "", store.ErrInvalidCursor
	}
	return string(raw), nil
}
