package models

import "time"

// SubStatus is the narrower state of an indictment, appeal or plea deal
type SubStatus string

// Satellite record states
const (
	SubStatusPending   SubStatus = "pending"
	SubStatusAccepted  SubStatus = "accepted"
	SubStatusRejected  SubStatus = "rejected"
	SubStatusScheduled SubStatus = "scheduled"
	SubStatusCompleted SubStatus = "completed"
)

// Indictment holds the structure for the indictments collection
type Indictment struct {
	ID              string     `json:"id" bson:"id"`
	CaseID          string     `json:"caseId" bson:"caseId"`
	Content         string     `json:"content" bson:"content"`
	Charges         string     `json:"charges,omitempty" bson:"charges,omitempty"`
	Status          SubStatus  `json:"status" bson:"status"`
	TrialDate       *time.Time `json:"trialDate,omitempty" bson:"trialDate,omitempty"`
	Courtroom       string     `json:"courtroom,omitempty" bson:"courtroom,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	Verdict         string     `json:"verdict,omitempty" bson:"verdict,omitempty"`
	VerdictDate     *Date      `json:"verdictDate,omitempty" bson:"verdictDate,omitempty"`
	ReviewedBy      string     `json:"reviewedBy,omitempty" bson:"reviewedBy,omitempty"`
	CreatedBy       string     `json:"createdBy" bson:"createdBy"`
	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Appeal holds the structure for the appeals collection. Every revision
// request creates one.
type Appeal struct {
	ID              string     `json:"id" bson:"id"`
	CaseID          string     `json:"caseId" bson:"caseId"`
	Content         string     `json:"content" bson:"content"`
	Reason          string     `json:"reason,omitempty" bson:"reason,omitempty"`
	Status          SubStatus  `json:"status" bson:"status"`
	ReviewerID      string     `json:"reviewerId,omitempty" bson:"reviewerId,omitempty"`
	ReviewDate      *time.Time `json:"reviewDate,omitempty" bson:"reviewDate,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	Verdict         string     `json:"verdict,omitempty" bson:"verdict,omitempty"`
	VerdictDate     *Date      `json:"verdictDate,omitempty" bson:"verdictDate,omitempty"`
	CreatedBy       string     `json:"createdBy" bson:"createdBy"`
	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// PleaDeal is embedded in a case while a plea is negotiated
type PleaDeal struct {
	Terms         string     `json:"terms" bson:"terms"`
	ReducedCharge string     `json:"reducedCharge,omitempty" bson:"reducedCharge,omitempty"`
	Status        SubStatus  `json:"status" bson:"status"`
	OfferedBy     string     `json:"offeredBy" bson:"offeredBy"`
	OfferedByName string     `json:"offeredByName,omitempty" bson:"offeredByName,omitempty"`
	DateOffered   time.Time  `json:"dateOffered" bson:"dateOffered"`
	Response      string     `json:"response,omitempty" bson:"response,omitempty"`
	ProcessedBy   string     `json:"processedBy,omitempty" bson:"processedBy,omitempty"`
	DateProcessed *time.Time `json:"dateProcessed,omitempty" bson:"dateProcessed,omitempty"`
}

// Limitation holds the structure for the limitations collection
type Limitation struct {
	ID    string `json:"id" bson:"id"`
	Label string `json:"label" bson:"label"`
	Days  int    `json:"days" bson:"days"`
}
