package databases

// go generate: mockery --name RecordStore

import (
	"context"
	"sort"
)

// Collection names
const (
	CasesCollection       = "cases"
	PartiesCollection     = "parties"
	IndictmentsCollection = "indictments"
	AppealsCollection     = "appeals"
	LimitationsCollection = "limitations"
)

// Record is one stored document. Every record carries a string id that is
// unique within its collection.
type Record map[string]interface{}

// ID returns the record's id or "" when it has none
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Tx is a view of one collection held under that collection's writer lock.
// Changes made through Put and Remove become visible to readers only when the
// transaction function returns nil and the write reaches storage.
type Tx interface {
	All() []Record
	Get(id string) (Record, bool)
	Put(r Record)
	Remove(id string) bool
}

// RecordStore persists ordered collections of records
type RecordStore interface {
	// LoadAll returns a consistent snapshot of the collection in stored order
	LoadAll(ctx context.Context, collection string) ([]Record, error)
	// FindByID returns the record or a *models.NotFoundError
	FindByID(ctx context.Context, collection, id string) (Record, error)
	// Transact runs fn as the only writer of collection. Nothing is applied
	// when fn fails, and a failed write surfaces as *models.IOError.
	Transact(ctx context.Context, collection string, fn func(tx Tx) error) error
}

// stagedTx holds pending changes for one collection
type stagedTx struct {
	records []Record
	index   map[string]int
	puts    map[string]bool
	removes map[string]bool
}

func newStagedTx(records []Record) *stagedTx {
	tx := &stagedTx{
		records: append([]Record(nil), records...),
		puts:    map[string]bool{},
		removes: map[string]bool{},
	}
	tx.reindex()
	return tx
}

func (tx *stagedTx) reindex() {
	tx.index = make(map[string]int, len(tx.records))
	for i, r := range tx.records {
		tx.index[r.ID()] = i
	}
}

func (tx *stagedTx) All() []Record {
	out := make([]Record, len(tx.records))
	for i, r := range tx.records {
		out[i] = cloneRecord(r)
	}
	return out
}

func (tx *stagedTx) Get(id string) (Record, bool) {
	i, ok := tx.index[id]
	if !ok {
		return nil, false
	}
	return cloneRecord(tx.records[i]), true
}

// Put replaces the record with the same id in place or appends it
func (tx *stagedTx) Put(r Record) {
	r = cloneRecord(r)
	id := r.ID()
	tx.puts[id] = true
	delete(tx.removes, id)
	if i, ok := tx.index[id]; ok {
		tx.records[i] = r
		return
	}
	tx.index[id] = len(tx.records)
	tx.records = append(tx.records, r)
}

func (tx *stagedTx) Remove(id string) bool {
	i, ok := tx.index[id]
	if !ok {
		return false
	}
	tx.records = append(tx.records[:i:i], tx.records[i+1:]...)
	tx.reindex()
	delete(tx.puts, id)
	tx.removes[id] = true
	return true
}

func (tx *stagedTx) dirty() bool {
	return len(tx.puts) > 0 || len(tx.removes) > 0
}

// changed returns the ids written and removed, sorted for stable ordering
func (tx *stagedTx) changed() (puts, removes []string) {
	for id := range tx.puts {
		puts = append(puts, id)
	}
	for id := range tx.removes {
		removes = append(removes, id)
	}
	sort.Strings(puts)
	sort.Strings(removes)
	return puts, removes
}

func cloneRecord(r Record) Record {
	if r == nil {
		return nil
	}
	return Record(cloneMap(r))
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case Record:
		return cloneMap(t)
	case map[string]interface{}:
		return cloneMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
