package lifecycle

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linesmerrill/justice-case-api/databases"
	"github.com/linesmerrill/justice-case-api/limitation"
	"github.com/linesmerrill/justice-case-api/models"
	"github.com/linesmerrill/justice-case-api/permissions"
)

// NewCase is the input of CreateCase
type NewCase struct {
	CaseType            models.CaseType `json:"caseType"`
	DefendantName       string          `json:"defendantName"`
	DefendantIdentifier string          `json:"defendantIdentifier"`
	Charge              string          `json:"charge"`
	DisputeSubject      string          `json:"disputeSubject"`
	IncidentDate        *models.Date    `json:"incidentDate"`
	ExpirationDate      *models.Date    `json:"expirationDate"`
	LimitationID        string          `json:"limitationId"`
	Status              string          `json:"status"`
	Prosecutor          string          `json:"prosecutor"`
	Judge               string          `json:"judge"`
	District            string          `json:"district"`
	Note                string          `json:"note"`
}

// CaseDetails holds the descriptive fields UpdateCaseDetails may change.
// Nil fields are left alone.
type CaseDetails struct {
	Charge          *string      `json:"charge"`
	DisputeSubject  *string      `json:"disputeSubject"`
	IncidentDate    *models.Date `json:"incidentDate"`
	ExpirationDate  *models.Date `json:"expirationDate"`
	ClearExpiration bool         `json:"clearExpiration"` // drop a manual expiration and derive it again
	LimitationID    *string      `json:"limitationId"`
	Prosecutor      *string      `json:"prosecutor"`
	Judge           *string      `json:"judge"`
	District        *string      `json:"district"`
}

// CaseFile is a case with its satellite records
type CaseFile struct {
	models.CaseView
	Indictments      []models.Indictment `json:"indictments"`
	Appeals          []models.Appeal     `json:"appeals"`
	AvailableActions []Action            `json:"availableActions"`
}

// CreateCase validates in, resolves the defendant and stores a new case
func (s *Service) CreateCase(ctx context.Context, p models.Principal, in NewCase) (*models.CaseView, error) {
	if in.CaseType == "" {
		in.CaseType = models.CaseTypeCriminal
	}
	if !in.CaseType.Valid() {
		return nil, &models.ValidationError{Field: "caseType", Reason: "must be Criminal or Civil"}
	}
	if err := s.engine.RequirePermission(p, in.CaseType.Module(), permissions.ActionCreate); err != nil {
		return nil, err
	}
	if err := validateNewCase(in); err != nil {
		return nil, err
	}
	status := models.StatusOpen
	if strings.TrimSpace(in.Status) != "" {
		parsed, err := models.ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	expiration, err := s.limits.Expiration(ctx, in.IncidentDate, in.ExpirationDate, in.LimitationID)
	if err != nil {
		return nil, err
	}
	partyID, err := s.resolver.ResolveParty(ctx, in.DefendantName, in.DefendantIdentifier, p.ActorID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	c := models.Case{
		ID:                  uuid.New().String(),
		CaseType:            in.CaseType,
		DefendantID:         partyID,
		DefendantName:       strings.TrimSpace(in.DefendantName),
		DefendantIdentifier: strings.TrimSpace(in.DefendantIdentifier),
		Charge:              strings.TrimSpace(in.Charge),
		DisputeSubject:      strings.TrimSpace(in.DisputeSubject),
		IncidentDate:        in.IncidentDate,
		ExpirationDate:      expiration,
		ExpirationOverride:  in.ExpirationDate != nil,
		LimitationID:        in.LimitationID,
		Status:              status,
		Prosecutor:          in.Prosecutor,
		Judge:               in.Judge,
		District:            in.District,
		RevisionHistory: []models.TransitionEntry{{
			Status:    status,
			Action:    "create",
			Date:      now,
			ActorID:   p.ActorID,
			ActorName: p.DisplayName(),
			Note:      in.Note,
		}},
		Notes:     []models.Note{},
		CreatedBy: p.ActorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if s.engine.HasRoleType(p, permissions.RoleTypeProsecutor) && c.Prosecutor == "" {
		c.Prosecutor = p.DisplayName()
		c.ProsecutorID = p.ActorID
	}
	if strings.TrimSpace(in.Note) != "" {
		c.Notes = []models.Note{newNote(p, in.Note, now)}
	}
	if err := s.cases.InsertOne(ctx, c); err != nil {
		return nil, err
	}

	s.resolver.AppendHistory(ctx, partyID, models.PartyHistoryEntry{
		CaseID: c.ID,
		Type:   "case_created",
		Value:  firstNonEmpty(c.Charge, c.DisputeSubject),
		Status: status,
		Date:   now,
	})
	zap.S().Infow("case created",
		"case", c.ID,
		"type", c.CaseType,
		"status", c.Status,
		"actor", p.ActorID)
	s.notify(Event{CaseID: c.ID, CaseType: c.CaseType, Action: "create", To: status, ActorID: p.ActorID, Date: now})
	return s.view(&c), nil
}

func validateNewCase(in NewCase) error {
	if strings.TrimSpace(in.DefendantName) == "" {
		return &models.ValidationError{Field: "defendantName", Reason: "defendant name is required"}
	}
	if in.CaseType == models.CaseTypeCivil && strings.TrimSpace(in.DisputeSubject) == "" {
		return &models.ValidationError{Field: "disputeSubject", Reason: "dispute subject is required"}
	}
	if in.CaseType == models.CaseTypeCriminal && strings.TrimSpace(in.Charge) == "" {
		return &models.ValidationError{Field: "charge", Reason: "charge is required"}
	}
	if in.LimitationID != "" && in.ExpirationDate == nil && in.IncidentDate == nil {
		return &models.ValidationError{Field: "incidentDate", Reason: "incident date is required to apply a limitation rule"}
	}
	return nil
}

// UpdateCaseDetails edits descriptive fields and derives the expiration
// again. The status is never touched.
func (s *Service) UpdateCaseDetails(ctx context.Context, p models.Principal, caseID string, d CaseDetails) (*models.CaseView, error) {
	current, err := s.cases.FindOne(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.RequirePermission(p, current.Module(), permissions.ActionEdit); err != nil {
		return nil, err
	}

	updated, err := s.cases.UpdateOne(ctx, caseID, func(c *models.Case) error {
		setString(&c.Charge, d.Charge)
		setString(&c.DisputeSubject, d.DisputeSubject)
		setString(&c.LimitationID, d.LimitationID)
		setString(&c.Prosecutor, d.Prosecutor)
		setString(&c.Judge, d.Judge)
		setString(&c.District, d.District)
		if d.IncidentDate != nil {
			c.IncidentDate = d.IncidentDate
		}
		if c.CaseType == models.CaseTypeCriminal && c.Charge == "" {
			return &models.ValidationError{Field: "charge", Reason: "charge is required"}
		}
		if c.CaseType == models.CaseTypeCivil && c.DisputeSubject == "" {
			return &models.ValidationError{Field: "disputeSubject", Reason: "dispute subject is required"}
		}

		switch {
		case d.ExpirationDate != nil:
			c.ExpirationDate = d.ExpirationDate
			c.ExpirationOverride = true
		case d.ClearExpiration || !c.ExpirationOverride:
			days, err := s.limits.Days(ctx, c.LimitationID)
			if err != nil {
				return err
			}
			c.ExpirationDate = limitation.ComputeExpiration(c.IncidentDate, nil, days)
			c.ExpirationOverride = false
		}

		now := s.clock()
		c.UpdatedBy = p.ActorID
		c.UpdatedAt = now
		c.RevisionHistory = prependEntry(c.RevisionHistory, models.TransitionEntry{
			Status:    c.Status,
			Action:    "update_details",
			Date:      now,
			ActorID:   p.ActorID,
			ActorName: p.DisplayName(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(updated), nil
}

// AddNote prepends a note to the case
func (s *Service) AddNote(ctx context.Context, p models.Principal, caseID, content string) (*models.CaseView, error) {
	current, err := s.cases.FindOne(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.RequirePermission(p, current.Module(), permissions.ActionEdit); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, &models.ValidationError{Field: "content", Reason: "note text is required"}
	}
	updated, err := s.cases.UpdateOne(ctx, caseID, func(c *models.Case) error {
		now := s.clock()
		c.Notes = prependNote(c.Notes, newNote(p, content, now))
		c.UpdatedBy = p.ActorID
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(updated), nil
}

// GetCase returns a case with a freshly computed expiry annotation
func (s *Service) GetCase(ctx context.Context, p models.Principal, caseID string) (*models.CaseView, error) {
	c, err := s.cases.FindOne(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.RequirePermission(p, c.Module(), permissions.ActionView); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

// GetCaseFile returns a case together with its indictments, appeals and the
// actions its current state allows
func (s *Service) GetCaseFile(ctx context.Context, p models.Principal, caseID string) (*CaseFile, error) {
	v, err := s.GetCase(ctx, p, caseID)
	if err != nil {
		return nil, err
	}
	f := &CaseFile{CaseView: *v, AvailableActions: AvailableActions(v.Status)}
	if s.engine.IsAllowed(p, "indictments", permissions.ActionView) {
		if f.Indictments, err = s.indictments.FindByCase(ctx, caseID); err != nil {
			return nil, err
		}
	}
	if s.engine.IsAllowed(p, "appeals", permissions.ActionView) {
		if f.Appeals, err = s.appeals.FindByCase(ctx, caseID); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ListCases returns the cases p may view that match filter. Without a case
// type filter both criminal and civil cases are listed as far as p may view
// them.
func (s *Service) ListCases(ctx context.Context, p models.Principal, filter databases.CaseFilter) ([]models.CaseView, error) {
	types := []models.CaseType{models.CaseTypeCriminal, models.CaseTypeCivil}
	if filter.CaseType != "" {
		if !filter.CaseType.Valid() {
			return nil, &models.ValidationError{Field: "caseType", Reason: "must be Criminal or Civil"}
		}
		types = []models.CaseType{filter.CaseType}
	}
	visible := map[models.CaseType]bool{}
	for _, t := range types {
		visible[t] = s.engine.IsAllowed(p, t.Module(), permissions.ActionView)
	}
	if !visible[types[0]] && (len(types) == 1 || !visible[types[1]]) {
		return nil, &models.PermissionDeniedError{Module: types[0].Module(), Action: permissions.ActionView}
	}

	all, err := s.cases.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]models.CaseView, 0, len(all))
	for i := range all {
		if visible[all[i].CaseType] {
			out = append(out, *s.view(&all[i]))
		}
	}
	return out, nil
}

// DeleteCase removes a case and its satellite records. Deletion is an
// administrative override outside the state machine.
func (s *Service) DeleteCase(ctx context.Context, p models.Principal, caseID string) error {
	c, err := s.cases.FindOne(ctx, caseID)
	if err != nil {
		return err
	}
	if err := s.engine.RequirePermission(p, c.Module(), permissions.ActionDelete); err != nil {
		return err
	}
	if err := s.cases.DeleteOne(ctx, caseID); err != nil {
		return err
	}

	if inds, err := s.indictments.FindByCase(ctx, caseID); err == nil {
		for _, i := range inds {
			if err := s.indictments.DeleteOne(ctx, i.ID); err != nil {
				zap.S().Errorw("failed to delete indictment of deleted case", "case", caseID, "indictment", i.ID, "error", err)
			}
		}
	}
	if apps, err := s.appeals.FindByCase(ctx, caseID); err == nil {
		for _, a := range apps {
			if err := s.appeals.DeleteOne(ctx, a.ID); err != nil {
				zap.S().Errorw("failed to delete appeal of deleted case", "case", caseID, "appeal", a.ID, "error", err)
			}
		}
	}
	zap.S().Infow("case deleted", "case", caseID, "actor", p.ActorID)
	s.notify(Event{CaseID: caseID, CaseType: c.CaseType, Action: "delete", From: c.Status, ActorID: p.ActorID, Date: s.clock()})
	return nil
}

// ExpiringCases returns every case whose limitation has expired or expires
// soon. It is used by the scheduled expiry scan and performs no permission
// check.
func (s *Service) ExpiringCases(ctx context.Context) ([]models.CaseView, error) {
	all, err := s.cases.Find(ctx, databases.CaseFilter{})
	if err != nil {
		return nil, err
	}
	var out []models.CaseView
	for i := range all {
		v := s.view(&all[i])
		if v.Expiry != nil && v.Expiry.State != models.ExpiryNone {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *Service) view(c *models.Case) *models.CaseView {
	return &models.CaseView{Case: *c, Expiry: limitation.Annotate(c.ExpirationDate, s.clock())}
}
