// Package memory provides a process-local document store used by the memory
// database driver and by repository tests.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"go.uber.org/zap"

	"github.com/garyjia/print-order-tracker/internal/application/port"
)

type record struct {
	body json.RawMessage
	seq  int64
}

// Option configures a DocumentStore
type Option func(*DocumentStore)

// WithUniqueField rejects a second document whose top-level field equals an existing one
func WithUniqueField(collection, field string) Option {
	return func(s *DocumentStore) {
		s.unique[collection] = append(s.unique[collection], field)
	}
}

// DocumentStore keeps JSON documents in maps keyed by collection and id.
// It also implements port.TransactionManager by snapshotting the data.
type DocumentStore struct {
	mu     sync.RWMutex
	data   map[string]map[string]record
	unique map[string][]string
	seq    int64

	// txMu serialises transactions so a rollback never discards another caller's writes
	txMu   sync.Mutex
	logger *zap.Logger
}

// NewDocumentStore creates an empty store
func NewDocumentStore(logger *zap.Logger, opts ...Option) *DocumentStore {
	s := &DocumentStore{
		data:   make(map[string]map[string]record),
		unique: make(map[string][]string),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string, out interface{}) error {
	s.mu.RLock()
	rec, ok := s.data[collection][id]
	s.mu.RUnlock()
	if !ok {
		return port.ErrDocumentNotFound
	}
	if err := json.Unmarshal(rec.body, out); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DocumentStore) List(ctx context.Context, collection string, filter port.Filter) ([]json.RawMessage, error) {
	want := make(map[string]string, len(filter.Equals))
	for field, value := range filter.Equals {
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("invalid filter value for %q: %w", field, err)
		}
		want[field] = string(encoded)
	}

	type match struct {
		id     string
		rec    record
		fields map[string]json.RawMessage
	}

	s.mu.RLock()
	var matches []match
	for id, rec := range s.data[collection] {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(rec.body, &fields); err != nil {
			s.mu.RUnlock()
			return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
		}
		if matchesAll(fields, want) {
			matches = append(matches, match{id: id, rec: rec, fields: fields})
		}
	}
	s.mu.RUnlock()

	field, desc := strings.CutPrefix(filter.OrderBy, "-")
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if field != "" {
			if c := compareJSON(a.fields[field], b.fields[field]); c != 0 {
				if desc {
					return c > 0
				}
				return c < 0
			}
			return a.id < b.id
		}
		if a.rec.seq != b.rec.seq {
			return a.rec.seq < b.rec.seq
		}
		return a.id < b.id
	})

	if filter.Limit > 0 && len(matches) > filter.Limit {
		matches = matches[:filter.Limit]
	}

	docs := make([]json.RawMessage, len(matches))
	for i, m := range matches {
		docs[i] = append(json.RawMessage(nil), m.rec.body...)
	}
	return docs, nil
}

func (s *DocumentStore) Create(ctx context.Context, collection, id string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collection(collection)
	if _, ok := docs[id]; ok {
		return fmt.Errorf("%s/%s: %w", collection, id, port.ErrDocumentExists)
	}
	if err := s.checkUnique(collection, id, body); err != nil {
		return err
	}

	s.seq++
	docs[id] = record{body: body, seq: s.seq}
	return nil
}

// Update applies partial as a JSON merge patch
func (s *DocumentStore) Update(ctx context.Context, collection, id string, partial map[string]interface{}) error {
	patch, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("failed to encode patch for %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[collection][id]
	if !ok {
		return port.ErrDocumentNotFound
	}

	body, err := jsonpatch.MergePatch(rec.body, patch)
	if err != nil {
		return fmt.Errorf("failed to patch %s/%s: %w", collection, id, err)
	}
	return s.put(collection, id, rec, body)
}

func (s *DocumentStore) Replace(ctx context.Context, collection, id string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[collection][id]
	if !ok {
		return port.ErrDocumentNotFound
	}
	return s.put(collection, id, rec, body)
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[collection][id]; !ok {
		return port.ErrDocumentNotFound
	}
	delete(s.data[collection], id)
	return nil
}

// WithTransaction runs fn and restores the pre-call contents when it fails.
// Nested calls join the outer transaction.
func (s *DocumentStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			s.logger.Error("Transaction panicked, rolled back", zap.Any("panic", p))
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type txKey struct{}

// put must be called with mu held
func (s *DocumentStore) put(collection, id string, old record, body json.RawMessage) error {
	if err := s.checkUnique(collection, id, body); err != nil {
		return err
	}
	s.data[collection][id] = record{body: body, seq: old.seq}
	return nil
}

func (s *DocumentStore) collection(name string) map[string]record {
	docs, ok := s.data[name]
	if !ok {
		docs = make(map[string]record)
		s.data[name] = docs
	}
	return docs
}

// checkUnique must be called with mu held
func (s *DocumentStore) checkUnique(collection, id string, body json.RawMessage) error {
	fields := s.unique[collection]
	if len(fields) == 0 {
		return nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return err
	}

	for otherID, other := range s.data[collection] {
		if otherID == id {
			continue
		}
		var existing map[string]json.RawMessage
		if err := json.Unmarshal(other.body, &existing); err != nil {
			return err
		}
		for _, field := range fields {
			v, ok := doc[field]
			if ok && bytes.Equal(v, existing[field]) {
				return fmt.Errorf("%s/%s %s: %w", collection, id, field, port.ErrDocumentExists)
			}
		}
	}
	return nil
}

func (s *DocumentStore) snapshot() map[string]map[string]record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]map[string]record, len(s.data))
	for name, docs := range s.data {
		c := make(map[string]record, len(docs))
		for id, rec := range docs {
			c[id] = rec
		}
		out[name] = c
	}
	return out
}

func (s *DocumentStore) restore(snapshot map[string]map[string]record) {
	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
}

func matchesAll(fields map[string]json.RawMessage, want map[string]string) bool {
	for field, encoded := range want {
		raw, ok := fields[field]
		if !ok {
			return false
		}
		// Re-encode so whitespace and number formatting do not matter
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return false
		}
		got, err := json.Marshal(v)
		if err != nil || string(got) != encoded {
			return false
		}
	}
	return true
}

// compareJSON orders missing values first, then numbers, then strings
func compareJSON(a, b json.RawMessage) int {
	var va, vb interface{}
	if len(a) > 0 {
		_ = json.Unmarshal(a, &va)
	}
	if len(b) > 0 {
		_ = json.Unmarshal(b, &vb)
	}

	switch x := va.(type) {
	case nil:
		if vb == nil {
			return 0
		}
		return -1
	case float64:
		if y, ok := vb.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case string:
		if y, ok := vb.(string); ok {
			return strings.Compare(x, y)
		}
	}
	if vb == nil {
		return 1
	}
	return bytes.Compare(a, b)
}

var (
	_ port.DocumentStore      = (*DocumentStore)(nil)
	_ port.TransactionManager = (*DocumentStore)(nil)
)
