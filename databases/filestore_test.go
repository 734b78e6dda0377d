package databases_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/justice-case-api/databases"
	"github.com/linesmerrill/justice-case-api/models"
)

func TestFileStore_LoadAllEmpty(t *testing.T) {
	s, err := databases.NewFileStore(t.TempDir())
	require.NoError(t, err)

	records, err := s.LoadAll(context.Background(), databases.CasesCollection)
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestFileStore_TransactPersists(t *testing.T) {
	dir := t.TempDir()
	s, err := databases.NewFileStore(dir)
	require.NoError(t, err)

	err = s.Transact(context.Background(), databases.LimitationsCollection, func(tx databases.Tx) error {
		tx.Put(databases.Record{"id": "l1", "label": "Theft", "days": 365})
		tx.Put(databases.Record{"id": "l2", "label": "Fraud", "days": 730})
		return nil
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "limitations.json"))
	assert.NoError(t, err)

	reopened, err := databases.NewFileStore(dir)
	require.NoError(t, err)
	records, err := reopened.LoadAll(context.Background(), databases.LimitationsCollection)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "l1", records[0].ID())
	assert.Equal(t, "Fraud", records[1]["label"])
}

func TestFileStore_TransactErrorWritesNothing(t *testing.T) {
	s, err := databases.NewFileStore(t.TempDir())
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.Transact(context.Background(), databases.CasesCollection, func(tx databases.Tx) error {
		tx.Put(databases.Record{"id": "c1"})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.FindByID(context.Background(), databases.CasesCollection, "c1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFileStore_RemoveAndReplace(t *testing.T) {
	s, err := databases.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Transact(ctx, databases.CasesCollection, func(tx databases.Tx) error {
		tx.Put(databases.Record{"id": "a", "n": 1})
		tx.Put(databases.Record{"id": "b", "n": 1})
		tx.Put(databases.Record{"id": "c", "n": 1})
		return nil
	}))
	require.NoError(t, s.Transact(ctx, databases.CasesCollection, func(tx databases.Tx) error {
		assert.True(t, tx.Remove("b"))
		assert.False(t, tx.Remove("missing"))
		tx.Put(databases.Record{"id": "c", "n": 2})
		return nil
	}))

	records, err := s.LoadAll(ctx, databases.CasesCollection)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].ID())
	assert.Equal(t, "c", records[1].ID())
	assert.EqualValues(t, 2, records[1]["n"])
}

func TestFileStore_ReturnedRecordsAreCopies(t *testing.T) {
	s, err := databases.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Transact(ctx, databases.CasesCollection, func(tx databases.Tx) error {
		tx.Put(databases.Record{"id": "a", "notes": []interface{}{"x"}})
		return nil
	}))

	r, err := s.FindByID(ctx, databases.CasesCollection, "a")
	require.NoError(t, err)
	r["notes"] = []interface{}{}
	r["status"] = "changed"

	again, err := s.FindByID(ctx, databases.CasesCollection, "a")
	require.NoError(t, err)
	assert.Len(t, again["notes"], 1)
	assert.NotContains(t, again, "status")
}

func TestFileStore_ConcurrentWritersDoNotLoseUpdates(t *testing.T) {
	s, err := databases.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Transact(ctx, databases.CasesCollection, func(tx databases.Tx) error {
				tx.Put(databases.Record{"id": fmt.Sprintf("case-%d", i)})
				return nil
			})
			assert.NoError(t, err)
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.LoadAll(ctx, databases.CasesCollection)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	records, err := s.LoadAll(ctx, databases.CasesCollection)
	require.NoError(t, err)
	assert.Len(t, records, 40)
}

func TestFileStore_WriteFailureIsIOErrorAndKeepsSnapshot(t *testing.T) {
	dir := t.TempDir()
	s, err := databases.NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Transact(ctx, databases.CasesCollection, func(tx databases.Tx) error {
		tx.Put(databases.Record{"id": "a"})
		return nil
	}))

	// a non-empty directory in place of the file makes the rename fail
	path := filepath.Join(dir, "cases.json")
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.MkdirAll(filepath.Join(path, "blocker"), 0o755))

	err = s.Transact(ctx, databases.CasesCollection, func(tx databases.Tx) error {
		tx.Put(databases.Record{"id": "b"})
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrIO)
	assert.NotContains(t, err.Error(), dir)

	records, err := s.LoadAll(ctx, databases.CasesCollection)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFileStore_CorruptFileIsIOError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parties.json"), []byte("{not json"), 0o644))
	s, err := databases.NewFileStore(dir)
	require.NoError(t, err)

	_, err = s.LoadAll(context.Background(), databases.PartiesCollection)
	assert.ErrorIs(t, err, models.ErrIO)
}
