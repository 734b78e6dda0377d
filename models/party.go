package models

import "time"

// Party holds the structure for the parties collection. A party is the
// deduplicated defendant or plaintiff across cases.
type Party struct {
	ID                 string              `json:"id" bson:"id"`
	Name               string              `json:"name" bson:"name"`
	ExternalIdentifier string              `json:"externalIdentifier,omitempty" bson:"externalIdentifier,omitempty"` // tracking number
	History            []PartyHistoryEntry `json:"history" bson:"history"`                                           // newest first
	CreatedBy          string              `json:"createdBy" bson:"createdBy"`
	CreatedAt          time.Time           `json:"createdAt" bson:"createdAt"`
}

// PartyHistoryEntry records a case event against a party
type PartyHistoryEntry struct {
	CaseID string    `json:"caseId" bson:"caseId"`
	Type   string    `json:"type" bson:"type"` // "case_created", "verdict", "revision_verdict"
	Value  string    `json:"value,omitempty" bson:"value,omitempty"`
	Status Status    `json:"status,omitempty" bson:"status,omitempty"`
	Date   time.Time `json:"date" bson:"date"`
}
