// Package parties deduplicates defendants and plaintiffs across cases and
// keeps their case history.
package parties

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linesmerrill/justice-case-api/databases"
	"github.com/linesmerrill/justice-case-api/models"
)

// Resolver finds or creates parties by name or identifier.
//
// Matching is relaxed: a party is reused when its trimmed, case folded name
// or identifier matches. Two records for the same person can still exist when
// neither matched at creation time.
type Resolver struct {
	DB  databases.PartyDatabase
	Now func() time.Time
}

// NewResolver returns a Resolver backed by db
func NewResolver(db databases.PartyDatabase) *Resolver {
	return &Resolver{DB: db, Now: time.Now}
}

// Normalize folds a name or identifier for comparison
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ResolveParty returns the id of the party matching name, or identifier when
// no name matches, creating a party when neither does. A matched party
// without an identifier gets the supplied one. Existing identifiers are
// never overwritten.
func (r *Resolver) ResolveParty(ctx context.Context, name, identifier, actorID string) (string, error) {
	name = strings.TrimSpace(name)
	identifier = strings.TrimSpace(identifier)
	if name == "" {
		return "", &models.ValidationError{Field: "name", Reason: "party name is required"}
	}
	wantName, wantID := Normalize(name), Normalize(identifier)

	var partyID string
	_, err := r.DB.Upsert(ctx, func(all []models.Party) (*models.Party, error) {
		match := findMatch(all, wantName, wantID)
		if match == nil {
			p := &models.Party{
				ID:                 uuid.New().String(),
				Name:               name,
				ExternalIdentifier: identifier,
				History:            []models.PartyHistoryEntry{},
				CreatedBy:          actorID,
				CreatedAt:          r.Now().UTC(),
			}
			partyID = p.ID
			zap.S().Debugw("created party", "party", p.ID)
			return p, nil
		}
		partyID = match.ID
		if match.ExternalIdentifier == "" && identifier != "" {
			match.ExternalIdentifier = identifier
			zap.S().Debugw("backfilled party identifier", "party", match.ID)
			return match, nil
		}
		return nil, nil
	})
	if err != nil {
		return "", err
	}
	return partyID, nil
}

// findMatch returns the first party with the name, else the first with the
// identifier
func findMatch(all []models.Party, name, identifier string) *models.Party {
	for i := range all {
		if Normalize(all[i].Name) == name {
			return &all[i]
		}
	}
	if identifier == "" {
		return nil
	}
	for i := range all {
		if Normalize(all[i].ExternalIdentifier) == identifier {
			return &all[i]
		}
	}
	return nil
}

// AppendHistory prepends entry to the party's history. A missing party is
// ignored and storage failures are only logged, so history logging never
// fails the case operation that triggered it.
func (r *Resolver) AppendHistory(ctx context.Context, partyID string, entry models.PartyHistoryEntry) {
	if partyID == "" {
		return
	}
	if entry.Date.IsZero() {
		entry.Date = r.Now().UTC()
	}
	_, err := r.DB.UpdateOne(ctx, partyID, func(p *models.Party) error {
		p.History = append([]models.PartyHistoryEntry{entry}, p.History...)
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, models.ErrNotFound):
		zap.S().Debugw("party not found, skipping history entry", "party", partyID, "case", entry.CaseID)
	default:
		zap.S().Errorw("failed to append party history",
			"party", partyID,
			"case", entry.CaseID,
			"error", err)
	}
}

// Get returns one party
func (r *Resolver) Get(ctx context.Context, partyID string) (*models.Party, error) {
	return r.DB.FindOne(ctx, partyID)
}

// Search returns parties whose name or identifier contains query, sorted by
// name. An empty query returns every party.
func (r *Resolver) Search(ctx context.Context, query string) ([]models.Party, error) {
	all, err := r.DB.Find(ctx)
	if err != nil {
		return nil, err
	}
	q := Normalize(query)
	out := make([]models.Party, 0, len(all))
	for _, p := range all {
		if q == "" || strings.Contains(Normalize(p.Name), q) || strings.Contains(Normalize(p.ExternalIdentifier), q) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return Normalize(out[i].Name) < Normalize(out[j].Name) })
	return out, nil
}
