package databases

// go generate: mockery --name AppealDatabase

import (
	"context"

	"github.com/linesmerrill/justice-case-api/models"
)

// AppealDatabase contains the methods to use with the appeal collection
type AppealDatabase interface {
	FindOne(ctx context.Context, id string) (*models.Appeal, error)
	FindByCase(ctx context.Context, caseID string) ([]models.Appeal, error)
	InsertOne(ctx context.Context, a models.Appeal) error
	UpdateOne(ctx context.Context, id string, fn func(*models.Appeal) error) (*models.Appeal, error)
	DeleteOne(ctx context.Context, id string) error
}

type appealDatabase struct {
	coll typedCollection[models.Appeal]
}

// NewAppealDatabase initializes a new instance of appeal database with the provided store
func NewAppealDatabase(store RecordStore) AppealDatabase {
	return &appealDatabase{coll: typedCollection[models.Appeal]{
		store: store,
		name:  AppealsCollection,
		kind:  "appeal",
		idOf:  func(a *models.Appeal) string { return a.ID },
	}}
}

func (d *appealDatabase) FindOne(ctx context.Context, id string) (*models.Appeal, error) {
	return d.coll.findOne(ctx, id)
}

// FindByCase returns the appeals raised against caseID in filing order
func (d *appealDatabase) FindByCase(ctx context.Context, caseID string) ([]models.Appeal, error) {
	return d.coll.find(ctx, func(a *models.Appeal) bool { return a.CaseID == caseID })
}

func (d *appealDatabase) InsertOne(ctx context.Context, a models.Appeal) error {
	return d.coll.insertOne(ctx, a)
}

func (d *appealDatabase) UpdateOne(ctx context.Context, id string, fn func(*models.Appeal) error) (*models.Appeal, error) {
	return d.coll.updateOne(ctx, id, fn)
}

func (d *appealDatabase) DeleteOne(ctx context.Context, id string) error {
	return d.coll.deleteOne(ctx, id)
}
