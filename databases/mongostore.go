package databases

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/justice-case-api/models"
)

// MongoStore keeps one mongo document per record, keyed by the record's id
// field. Writers of a collection are serialized in process.
type MongoStore struct {
	db DatabaseHelper

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMongoStore wraps an open database
func NewMongoStore(db DatabaseHelper) *MongoStore {
	return &MongoStore{db: db, locks: map[string]*sync.Mutex{}}
}

func (s *MongoStore) lock(collection string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[collection]
	if !ok {
		l = &sync.Mutex{}
		s.locks[collection] = l
	}
	return l
}

// LoadAll returns every document of collection in insertion order
func (s *MongoStore) LoadAll(ctx context.Context, collection string) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, s.ioError("read", collection, err)
	}
	defer cur.Close(ctx)
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, s.ioError("read", collection, err)
	}
	records := make([]Record, 0, len(docs))
	for _, d := range docs {
		r, err := normalize(d)
		if err != nil {
			return nil, s.ioError("read", collection, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// FindByID returns the document whose id field equals id
func (s *MongoStore) FindByID(ctx context.Context, collection, id string) (Record, error) {
	var doc bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &models.NotFoundError{Kind: collection, ID: id}
	}
	if err != nil {
		return nil, s.ioError("read", collection, err)
	}
	r, err := normalize(doc)
	if err != nil {
		return nil, s.ioError("read", collection, err)
	}
	return r, nil
}

// Transact loads the collection under its writer lock, runs fn and then
// upserts or deletes every record fn touched
func (s *MongoStore) Transact(ctx context.Context, collection string, fn func(tx Tx) error) error {
	l := s.lock(collection)
	l.Lock()
	defer l.Unlock()

	records, err := s.LoadAll(ctx, collection)
	if err != nil {
		return err
	}
	tx := newStagedTx(records)
	if err := fn(tx); err != nil {
		return err
	}
	puts, removes := tx.changed()
	coll := s.db.Collection(collection)
	for _, id := range puts {
		r := tx.records[tx.index[id]]
		err := coll.ReplaceOne(ctx, bson.M{"id": id}, bson.M(r), options.Replace().SetUpsert(true))
		if err != nil {
			return s.ioError("write", collection, err)
		}
	}
	for _, id := range removes {
		if err := coll.DeleteOne(ctx, bson.M{"id": id}); err != nil {
			return s.ioError("delete", collection, err)
		}
	}
	return nil
}

func (s *MongoStore) ioError(op, collection string, err error) error {
	zap.S().Errorw("mongo store failure",
		"op", op,
		"collection", collection,
		"error", err)
	return &models.IOError{Op: op, Collection: collection, Err: err}
}

// normalize turns a decoded document into plain maps and slices and drops
// the mongo _id
func normalize(doc bson.M) (Record, error) {
	delete(doc, "_id")
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	return r, nil
}
