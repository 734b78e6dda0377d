package databases

// go generate: mockery --name CaseDatabase

import (
	"context"

	"github.com/linesmerrill/justice-case-api/models"
)

// CaseFilter narrows a case listing. Zero fields match everything.
type CaseFilter struct {
	CaseType    models.CaseType
	Status      models.Status
	DefendantID string
}

func (f CaseFilter) match(c *models.Case) bool {
	if f.CaseType != "" && c.CaseType != f.CaseType {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.DefendantID != "" && c.DefendantID != f.DefendantID {
		return false
	}
	return true
}

// CaseDatabase contains the methods to use with the case collection
type CaseDatabase interface {
	FindOne(ctx context.Context, id string) (*models.Case, error)
	Find(ctx context.Context, filter CaseFilter) ([]models.Case, error)
	InsertOne(ctx context.Context, c models.Case) error
	UpdateOne(ctx context.Context, id string, fn func(*models.Case) error) (*models.Case, error)
	DeleteOne(ctx context.Context, id string) error
}

type caseDatabase struct {
	coll typedCollection[models.Case]
}

// NewCaseDatabase initializes a new instance of case database with the provided store
func NewCaseDatabase(store RecordStore) CaseDatabase {
	return &caseDatabase{coll: typedCollection[models.Case]{
		store: store,
		name:  CasesCollection,
		kind:  "case",
		idOf:  func(c *models.Case) string { return c.ID },
	}}
}

func (c *caseDatabase) FindOne(ctx context.Context, id string) (*models.Case, error) {
	return c.coll.findOne(ctx, id)
}

func (c *caseDatabase) Find(ctx context.Context, filter CaseFilter) ([]models.Case, error) {
	return c.coll.find(ctx, filter.match)
}

func (c *caseDatabase) InsertOne(ctx context.Context, cs models.Case) error {
	return c.coll.insertOne(ctx, cs)
}

func (c *caseDatabase) UpdateOne(ctx context.Context, id string, fn func(*models.Case) error) (*models.Case, error) {
	return c.coll.updateOne(ctx, id, fn)
}

func (c *caseDatabase) DeleteOne(ctx context.Context, id string) error {
	return c.coll.deleteOne(ctx, id)
}
