package databases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/linesmerrill/justice-case-api/models"
)

// typedCollection converts between records and T for one collection
type typedCollection[T any] struct {
	store RecordStore
	name  string
	kind  string
	idOf  func(*T) string
}

func (c typedCollection[T]) findOne(ctx context.Context, id string) (*T, error) {
	r, err := c.store.FindByID(ctx, c.name, id)
	if err != nil {
		return nil, c.notFound(err, id)
	}
	return decodeRecord[T](r)
}

func (c typedCollection[T]) find(ctx context.Context, keep func(*T) bool) ([]T, error) {
	records, err := c.store.LoadAll(ctx, c.name)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		v, err := decodeRecord[T](r)
		if err != nil {
			zap.S().Warnw("skipping undecodable record",
				"collection", c.name,
				"id", r.ID(),
				"error", err)
			continue
		}
		if keep == nil || keep(v) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (c typedCollection[T]) insertOne(ctx context.Context, v T) error {
	r, err := encodeRecord(v)
	if err != nil {
		return err
	}
	return c.store.Transact(ctx, c.name, func(tx Tx) error {
		if _, exists := tx.Get(r.ID()); exists {
			return &models.ValidationError{Field: "id", Reason: fmt.Sprintf("%s %q already exists", c.kind, r.ID())}
		}
		tx.Put(r)
		return nil
	})
}

// updateOne applies fn to the stored value under the collection's writer
// lock. When fn fails nothing is written.
func (c typedCollection[T]) updateOne(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	var updated *T
	err := c.store.Transact(ctx, c.name, func(tx Tx) error {
		r, ok := tx.Get(id)
		if !ok {
			return &models.NotFoundError{Kind: c.kind, ID: id}
		}
		v, err := decodeRecord[T](r)
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
		if c.idOf(v) != id {
			return &models.ValidationError{Field: "id", Reason: "id cannot change"}
		}
		out, err := encodeRecord(*v)
		if err != nil {
			return err
		}
		tx.Put(out)
		updated = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (c typedCollection[T]) deleteOne(ctx context.Context, id string) error {
	return c.store.Transact(ctx, c.name, func(tx Tx) error {
		if !tx.Remove(id) {
			return &models.NotFoundError{Kind: c.kind, ID: id}
		}
		return nil
	})
}

func (c typedCollection[T]) notFound(err error, id string) error {
	if _, ok := err.(*models.NotFoundError); ok {
		return &models.NotFoundError{Kind: c.kind, ID: id}
	}
	return err
}

func encodeRecord(v interface{}) (Record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	return r, nil
}

// decodeRecord drops blank top level values first, so "" and null read as
// absent fields
func decodeRecord[T any](r Record) (*T, error) {
	b, err := json.Marshal(withoutBlanks(r))
	if err != nil {
		return nil, err
	}
	v := new(T)
	if err := json.Unmarshal(b, v); err != nil {
		return nil, &models.IOError{Op: "decode", Collection: fmt.Sprintf("%T", *v), Err: err}
	}
	return v, nil
}

func withoutBlanks(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		out[k] = v
	}
	return out
}
