package databases

// go generate: mockery --name IndictmentDatabase

import (
	"context"

	"github.com/linesmerrill/justice-case-api/models"
)

// IndictmentDatabase contains the methods to use with the indictment collection
type IndictmentDatabase interface {
	FindOne(ctx context.Context, id string) (*models.Indictment, error)
	FindByCase(ctx context.Context, caseID string) ([]models.Indictment, error)
	InsertOne(ctx context.Context, i models.Indictment) error
	UpdateOne(ctx context.Context, id string, fn func(*models.Indictment) error) (*models.Indictment, error)
	DeleteOne(ctx context.Context, id string) error
}

type indictmentDatabase struct {
	coll typedCollection[models.Indictment]
}

// NewIndictmentDatabase initializes a new instance of indictment database with the provided store
func NewIndictmentDatabase(store RecordStore) IndictmentDatabase {
	return &indictmentDatabase{coll: typedCollection[models.Indictment]{
		store: store,
		name:  IndictmentsCollection,
		kind:  "indictment",
		idOf:  func(i *models.Indictment) string { return i.ID },
	}}
}

func (d *indictmentDatabase) FindOne(ctx context.Context, id string) (*models.Indictment, error) {
	return d.coll.findOne(ctx, id)
}

// FindByCase returns the indictments filed against caseID in filing order
func (d *indictmentDatabase) FindByCase(ctx context.Context, caseID string) ([]models.Indictment, error) {
	return d.coll.find(ctx, func(i *models.Indictment) bool { return i.CaseID == caseID })
}

func (d *indictmentDatabase) InsertOne(ctx context.Context, i models.Indictment) error {
	return d.coll.insertOne(ctx, i)
}

func (d *indictmentDatabase) UpdateOne(ctx context.Context, id string, fn func(*models.Indictment) error) (*models.Indictment, error) {
	return d.coll.updateOne(ctx, id, fn)
}

func (d *indictmentDatabase) DeleteOne(ctx context.Context, id string) error {
	return d.coll.deleteOne(ctx, id)
}
