package models

import "time"

// CaseType distinguishes criminal from civil matters
type CaseType string

// Case types
const (
	CaseTypeCriminal CaseType = "Criminal"
	CaseTypeCivil    CaseType = "Civil"
)

// Permission modules guarding each case type
const (
	ModuleCases      = "cases"
	ModuleCivilCases = "civil_cases"
)

// Valid reports whether t is a known case type
func (t CaseType) Valid() bool {
	return t == CaseTypeCriminal || t == CaseTypeCivil
}

// Module returns the permission module that guards cases of this type
func (t CaseType) Module() string {
	if t == CaseTypeCivil {
		return ModuleCivilCases
	}
	return ModuleCases
}

// Case holds the structure for the cases collection
type Case struct {
	ID       string   `json:"id" bson:"id"`
	CaseType CaseType `json:"caseType" bson:"caseType"`

	// Defendant, or plaintiff side for civil matters
	DefendantID         string `json:"defendantId,omitempty" bson:"defendantId,omitempty"`
	DefendantName       string `json:"defendantName" bson:"defendantName"`
	DefendantIdentifier string `json:"defendantIdentifier,omitempty" bson:"defendantIdentifier,omitempty"`

	Charge         string `json:"charge,omitempty" bson:"charge,omitempty"`
	DisputeSubject string `json:"disputeSubject,omitempty" bson:"disputeSubject,omitempty"`

	// Statute of limitations
	IncidentDate       *Date  `json:"incidentDate,omitempty" bson:"incidentDate,omitempty"`
	ExpirationDate     *Date  `json:"expirationDate,omitempty" bson:"expirationDate,omitempty"`
	ExpirationOverride bool   `json:"expirationOverride,omitempty" bson:"expirationOverride,omitempty"` // set when the expiration was entered by hand
	LimitationID       string `json:"limitationId,omitempty" bson:"limitationId,omitempty"`

	Status       Status `json:"status" bson:"status"`
	Prosecutor   string `json:"prosecutor,omitempty" bson:"prosecutor,omitempty"`
	ProsecutorID string `json:"prosecutorId,omitempty" bson:"prosecutorId,omitempty"`
	Judge        string `json:"judge,omitempty" bson:"judge,omitempty"`
	District     string `json:"district,omitempty" bson:"district,omitempty"`

	Verdict     string `json:"verdict,omitempty" bson:"verdict,omitempty"`
	VerdictDate *Date  `json:"verdictDate,omitempty" bson:"verdictDate,omitempty"`

	PleaDeal *PleaDeal `json:"pleaDeal,omitempty" bson:"pleaDeal,omitempty"`

	// Revision review
	RevisionReviewerID      string     `json:"revisionReviewerId,omitempty" bson:"revisionReviewerId,omitempty"`
	RevisionReviewerName    string     `json:"revisionReviewerName,omitempty" bson:"revisionReviewerName,omitempty"`
	RevisionReviewDate      *time.Time `json:"revisionReviewDate,omitempty" bson:"revisionReviewDate,omitempty"`
	RevisionRejectionReason string     `json:"revisionRejectionReason,omitempty" bson:"revisionRejectionReason,omitempty"`
	RevisionVerdict         string     `json:"revisionVerdict,omitempty" bson:"revisionVerdict,omitempty"`
	RevisionVerdictDate     *Date      `json:"revisionVerdictDate,omitempty" bson:"revisionVerdictDate,omitempty"`

	// Audit trail, newest first
	RevisionHistory []TransitionEntry `json:"revisionHistory" bson:"revisionHistory"`
	Notes           []Note            `json:"notes" bson:"notes"`

	CreatedBy string    `json:"createdBy" bson:"createdBy"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedBy string    `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Module returns the permission module that guards this case
func (c Case) Module() string {
	return c.CaseType.Module()
}

// TransitionEntry records one lifecycle step of a case
type TransitionEntry struct {
	Status      Status    `json:"status" bson:"status"`
	Action      string    `json:"action" bson:"action"`
	Date        time.Time `json:"date" bson:"date"`
	ActorID     string    `json:"actorId" bson:"actorId"`
	ActorName   string    `json:"actorName,omitempty" bson:"actorName,omitempty"`
	Note        string    `json:"note,omitempty" bson:"note,omitempty"`
	Verdict     string    `json:"verdict,omitempty" bson:"verdict,omitempty"`
	VerdictDate *Date     `json:"verdictDate,omitempty" bson:"verdictDate,omitempty"`
}

// Note is a free text annotation on a case
type Note struct {
	ID        string    `json:"id" bson:"id"`
	Content   string    `json:"content" bson:"content"`
	ActorID   string    `json:"actorId" bson:"actorId"`
	ActorName string    `json:"actorName,omitempty" bson:"actorName,omitempty"`
	Date      time.Time `json:"date" bson:"date"`
}

// CaseView is a case together with its read time expiry annotation
type CaseView struct {
	Case
	Expiry *ExpiryAnnotation `json:"expiry,omitempty"`
}

// ExpiryState is the derived limitation status of a case
type ExpiryState string

// Expiry states
const (
	ExpiryNone         ExpiryState = ""
	ExpiryExpiringSoon ExpiryState = "expiring_soon"
	ExpiryExpired      ExpiryState = "expired"
)

// ExpiryAnnotation is computed on every read and never stored
type ExpiryAnnotation struct {
	ExpirationDate Date        `json:"expirationDate"`
	DaysRemaining  int         `json:"daysRemaining"`
	State          ExpiryState `json:"state,omitempty"`
}
