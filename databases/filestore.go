package databases

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/linesmerrill/justice-case-api/models"
)

// FileStore keeps each collection as one JSON array in dir/<collection>.json.
// Readers use an immutable in-memory snapshot that is swapped only after a
// write has been renamed into place.
type FileStore struct {
	dir string

	mu          sync.Mutex
	collections map[string]*fileCollection
}

type fileCollection struct {
	path string

	writeMu sync.Mutex
	snap    atomic.Pointer[snapshot]

	loadMu sync.Mutex
}

type snapshot struct {
	records []Record
	index   map[string]int
}

// NewFileStore returns a store rooted at dir, creating it when missing
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &models.IOError{Op: "open", Collection: "store", Err: err}
	}
	return &FileStore{dir: dir, collections: map[string]*fileCollection{}}, nil
}

func (s *FileStore) collection(name string) *fileCollection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &fileCollection{path: filepath.Join(s.dir, name+".json")}
		s.collections[name] = c
	}
	return c
}

// LoadAll returns the current snapshot of collection
func (s *FileStore) LoadAll(ctx context.Context, collection string) ([]Record, error) {
	snap, err := s.collection(collection).current(collection)
	if err != nil {
		return nil, err
	}
	out := make([]Record, len(snap.records))
	for i, r := range snap.records {
		out[i] = cloneRecord(r)
	}
	return out, nil
}

// FindByID looks a record up in the current snapshot
func (s *FileStore) FindByID(ctx context.Context, collection, id string) (Record, error) {
	snap, err := s.collection(collection).current(collection)
	if err != nil {
		return nil, err
	}
	i, ok := snap.index[id]
	if !ok {
		return nil, &models.NotFoundError{Kind: collection, ID: id}
	}
	return cloneRecord(snap.records[i]), nil
}

// Transact serializes writers of collection and rewrites its file when fn
// changed anything
func (s *FileStore) Transact(ctx context.Context, collection string, fn func(tx Tx) error) error {
	c := s.collection(collection)
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snap, err := c.current(collection)
	if err != nil {
		return err
	}
	tx := newStagedTx(snap.records)
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.dirty() {
		return nil
	}
	if err := c.write(tx.records); err != nil {
		zap.S().Errorw("failed to write collection",
			"collection", collection,
			"error", err)
		return &models.IOError{Op: "write", Collection: collection, Err: err}
	}
	c.snap.Store(&snapshot{records: tx.records, index: tx.index})
	return nil
}

// current returns the loaded snapshot, reading the file on first use
func (c *fileCollection) current(name string) (*snapshot, error) {
	if snap := c.snap.Load(); snap != nil {
		return snap, nil
	}
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	if snap := c.snap.Load(); snap != nil {
		return snap, nil
	}
	records, err := c.read()
	if err != nil {
		zap.S().Errorw("failed to read collection",
			"collection", name,
			"error", err)
		return nil, &models.IOError{Op: "read", Collection: name, Err: err}
	}
	snap := &snapshot{records: records, index: make(map[string]int, len(records))}
	for i, r := range records {
		snap.index[r.ID()] = i
	}
	c.snap.Store(snap)
	return snap, nil
}

func (c *fileCollection) read() ([]Record, error) {
	b, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return []Record{}, nil
	}
	var records []Record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// write replaces the collection file through a temp file and rename so a
// concurrent reader of the file never sees a partial array
func (c *fileCollection) write(records []Record) error {
	b, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
