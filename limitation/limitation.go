// Package limitation computes statute of limitations expiration dates and
// the read time annotation derived from them.
package limitation

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/linesmerrill/justice-case-api/databases"
	"github.com/linesmerrill/justice-case-api/models"
)

// ExpiringSoonDays is the window before expiration in which a case is
// flagged as expiring soon
const ExpiringSoonDays = 7

// ComputeExpiration returns explicit when given. Otherwise it returns the
// incident date plus days calendar days, or nil when either is missing.
func ComputeExpiration(incident, explicit *models.Date, days *int) *models.Date {
	if explicit != nil {
		e := *explicit
		return &e
	}
	if incident == nil || days == nil {
		return nil
	}
	e := incident.AddDays(*days)
	return &e
}

// Annotate derives the expiry annotation of expiration at now. It returns nil
// when no expiration is tracked.
func Annotate(expiration *models.Date, now time.Time) *models.ExpiryAnnotation {
	if expiration == nil {
		return nil
	}
	remaining := int(math.Floor(expiration.Time.Sub(now).Hours() / 24))
	a := &models.ExpiryAnnotation{ExpirationDate: *expiration, DaysRemaining: remaining}
	switch {
	case remaining < 0:
		a.State = models.ExpiryExpired
	case remaining < ExpiringSoonDays:
		a.State = models.ExpiryExpiringSoon
	}
	return a
}

// Calculator resolves limitation rules from storage
type Calculator struct {
	DB databases.LimitationDatabase
}

// Days returns the day count of the rule limitationID. An empty id means no
// rule and yields nil.
func (c Calculator) Days(ctx context.Context, limitationID string) (*int, error) {
	if strings.TrimSpace(limitationID) == "" {
		return nil, nil
	}
	rule, err := c.DB.FindOne(ctx, limitationID)
	if err != nil {
		return nil, err
	}
	days := rule.Days
	return &days, nil
}

// Expiration resolves limitationID and computes the expiration date
func (c Calculator) Expiration(ctx context.Context, incident, explicit *models.Date, limitationID string) (*models.Date, error) {
	if explicit != nil {
		return ComputeExpiration(incident, explicit, nil), nil
	}
	days, err := c.Days(ctx, limitationID)
	if err != nil {
		return nil, err
	}
	return ComputeExpiration(incident, nil, days), nil
}

// ValidateRule checks a limitation rule before it is stored
func ValidateRule(l models.Limitation) error {
	if strings.TrimSpace(l.Label) == "" {
		return &models.ValidationError{Field: "label", Reason: "label is required"}
	}
	if l.Days <= 0 {
		return &models.ValidationError{Field: "days", Reason: "days must be positive"}
	}
	return nil
}
