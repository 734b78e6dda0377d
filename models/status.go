package models

import (
	"encoding/json"
	"strings"
)

// Status is the lifecycle state of a case
type Status string

// Case lifecycle states
const (
	StatusOpen               Status = "open"
	StatusInProgress         Status = "in_progress"
	StatusPending            Status = "pending"
	StatusAccepted           Status = "accepted"
	StatusScheduled          Status = "scheduled"
	StatusCompleted          Status = "completed"
	StatusRejected           Status = "rejected"
	StatusDismissed          Status = "dismissed"
	StatusAppealed           Status = "appealed"
	StatusPleaDealOffered    Status = "plea_deal_offered"
	StatusPleaDealAccepted   Status = "plea_deal_accepted"
	StatusPleaDealRejected   Status = "plea_deal_rejected"
	StatusRevisionRequested  Status = "revision_requested"
	StatusRevisionInProgress Status = "revision_in_progress"
	StatusRevisionCompleted  Status = "revision_completed"
	StatusRevisionRejected   Status = "revision_rejected"
	StatusRevisionVerdict    Status = "revision_verdict"
)

// Statuses lists every valid case state
var Statuses = []Status{
	StatusOpen, StatusInProgress, StatusPending, StatusAccepted, StatusScheduled,
	StatusCompleted, StatusRejected, StatusDismissed, StatusAppealed,
	StatusPleaDealOffered, StatusPleaDealAccepted, StatusPleaDealRejected,
	StatusRevisionRequested, StatusRevisionInProgress, StatusRevisionCompleted,
	StatusRevisionRejected, StatusRevisionVerdict,
}

// legacyStatuses maps the labels found in older records onto the state set.
// Keys are lower cased.
var legacyStatuses = map[string]Status{
	"offen":                    StatusOpen,
	"in bearbeitung":           StatusInProgress,
	"klageschrift eingereicht": StatusPending,
	"ausstehend":               StatusPending,
	"klage angenommen":         StatusAccepted,
	"angenommen":               StatusAccepted,
	"terminiert":               StatusScheduled,
	"abgeschlossen":            StatusCompleted,
	"abgelehnt":                StatusRejected,
	"eingestellt":              StatusDismissed,
	"berufung eingelegt":       StatusAppealed,
	"revision beantragt":       StatusRevisionRequested,
	"revision in bearbeitung":  StatusRevisionInProgress,
	"revision abgeschlossen":   StatusRevisionCompleted,
	"revision abgelehnt":       StatusRevisionRejected,
	"revisionsurteil":          StatusRevisionVerdict,
	"in progress":              StatusInProgress,
	"closed":                   StatusCompleted,
}

// Valid reports whether s is a member of the state set
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends the ordinary lifecycle. Revision requests
// are still accepted from terminal states.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusDismissed, StatusRejected, StatusRevisionCompleted, StatusRevisionRejected:
		return true
	}
	return false
}

// ParseStatus converts a stored or user supplied label into a Status. Canonical
// values pass through, legacy labels are translated and anything else fails.
func ParseStatus(raw string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if s := Status(key); s.Valid() {
		return s, nil
	}
	if s, ok := legacyStatuses[key]; ok {
		return s, nil
	}
	return "", &ValidationError{Field: "status", Reason: "unknown status " + raw}
}

// UnmarshalJSON translates legacy labels in stored records. An empty value is
// left empty.
func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		*s = ""
		return nil
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
