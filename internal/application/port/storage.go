package port

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrDocumentNotFound is returned by DocumentStore.Get, Update, Replace and Delete for a missing id
var ErrDocumentNotFound = errors.New("document not found")

// ErrDocumentExists is returned by DocumentStore.Create when the id is taken
var ErrDocumentExists = errors.New("document already exists")

// Filter selects documents of a collection by top-level field equality
type Filter struct {
	Equals map[string]interface{}
	// OrderBy is a top-level field name; prefix with "-" for descending
	OrderBy string
	Limit   int
}

// DocumentStore is collection-level CRUD over JSON documents
type DocumentStore interface {
	Get(ctx context.Context, collection, id string, out interface{}) error
	List(ctx context.Context, collection string, filter Filter) ([]json.RawMessage, error)
	Create(ctx context.Context, collection, id string, doc interface{}) error
	Update(ctx context.Context, collection, id string, partial map[string]interface{}) error
	Replace(ctx context.Context, collection, id string, doc interface{}) error
	Delete(ctx context.Context, collection, id string) error
}
