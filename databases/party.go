package databases

// go generate: mockery --name PartyDatabase

import (
	"context"

	"github.com/linesmerrill/justice-case-api/models"
)

// PartyDatabase contains the methods to use with the party collection
type PartyDatabase interface {
	FindOne(ctx context.Context, id string) (*models.Party, error)
	Find(ctx context.Context) ([]models.Party, error)
	UpdateOne(ctx context.Context, id string, fn func(*models.Party) error) (*models.Party, error)
	// Upsert hands fn every stored party under the collection's writer lock.
	// A non-nil party returned by fn is inserted or replaced by id.
	Upsert(ctx context.Context, fn func(parties []models.Party) (*models.Party, error)) (*models.Party, error)
}

type partyDatabase struct {
	coll typedCollection[models.Party]
}

// NewPartyDatabase initializes a new instance of party database with the provided store
func NewPartyDatabase(store RecordStore) PartyDatabase {
	return &partyDatabase{coll: typedCollection[models.Party]{
		store: store,
		name:  PartiesCollection,
		kind:  "party",
		idOf:  func(p *models.Party) string { return p.ID },
	}}
}

func (d *partyDatabase) FindOne(ctx context.Context, id string) (*models.Party, error) {
	return d.coll.findOne(ctx, id)
}

func (d *partyDatabase) Find(ctx context.Context) ([]models.Party, error) {
	return d.coll.find(ctx, nil)
}

func (d *partyDatabase) UpdateOne(ctx context.Context, id string, fn func(*models.Party) error) (*models.Party, error) {
	return d.coll.updateOne(ctx, id, fn)
}

func (d *partyDatabase) Upsert(ctx context.Context, fn func(parties []models.Party) (*models.Party, error)) (*models.Party, error) {
	var result *models.Party
	err := d.coll.store.Transact(ctx, d.coll.name, func(tx Tx) error {
		records := tx.All()
		parties := make([]models.Party, 0, len(records))
		for _, r := range records {
			p, err := decodeRecord[models.Party](r)
			if err != nil {
				return err
			}
			parties = append(parties, *p)
		}
		p, err := fn(parties)
		if err != nil {
			return err
		}
		if p == nil {
			return nil
		}
		r, err := encodeRecord(*p)
		if err != nil {
			return err
		}
		tx.Put(r)
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
