package databases

// go generate: mockery --name LimitationDatabase

import (
	"context"

	"github.com/linesmerrill/justice-case-api/models"
)

// LimitationDatabase contains the methods to use with the limitation collection
type LimitationDatabase interface {
	FindOne(ctx context.Context, id string) (*models.Limitation, error)
	Find(ctx context.Context) ([]models.Limitation, error)
	InsertOne(ctx context.Context, l models.Limitation) error
}

type limitationDatabase struct {
	coll typedCollection[models.Limitation]
}

// NewLimitationDatabase initializes a new instance of limitation database with the provided store
func NewLimitationDatabase(store RecordStore) LimitationDatabase {
	return &limitationDatabase{coll: typedCollection[models.Limitation]{
		store: store,
		name:  LimitationsCollection,
		kind:  "limitation",
		idOf:  func(l *models.Limitation) string { return l.ID },
	}}
}

func (d *limitationDatabase) FindOne(ctx context.Context, id string) (*models.Limitation, error) {
	return d.coll.findOne(ctx, id)
}

func (d *limitationDatabase) Find(ctx context.Context) ([]models.Limitation, error) {
	return d.coll.find(ctx, nil)
}

func (d *limitationDatabase) InsertOne(ctx context.Context, l models.Limitation) error {
	return d.coll.insertOne(ctx, l)
}
