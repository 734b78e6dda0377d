package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linesmerrill/justice-case-api/models"
)

// TransitionRequest carries the input of a lifecycle action. Which fields
// are required depends on the action.
type TransitionRequest struct {
	Action        Action        `json:"action"`
	Target        models.Status `json:"target,omitempty"`
	Content       string        `json:"content,omitempty"`
	Charges       string        `json:"charges,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Verdict       string        `json:"verdict,omitempty"`
	VerdictDate   *models.Date  `json:"verdictDate,omitempty"`
	TrialDate     *time.Time    `json:"trialDate,omitempty"`
	Courtroom     string        `json:"courtroom,omitempty"`
	Terms         string        `json:"terms,omitempty"`
	ReducedCharge string        `json:"reducedCharge,omitempty"`
	Accept        *bool         `json:"accept,omitempty"`
	Note          string        `json:"note,omitempty"`
}

// step is the work a transition does on the case under its write lock
type step struct {
	s     *Service
	ctx   context.Context
	p     models.Principal
	req   TransitionRequest
	to    models.Status
	now   time.Time
	undo  *undoLog
	entry models.TransitionEntry
	note  string
}

// Transition applies req.Action to the case. Permission is checked first,
// then the state precondition, then the required fields. Nothing is written
// unless every check passes and all writes succeed.
func (s *Service) Transition(ctx context.Context, p models.Principal, caseID string, req TransitionRequest) (*models.CaseView, error) {
	r, ok := transitions[req.Action]
	if !ok {
		return nil, &models.ValidationError{Field: "action", Reason: fmt.Sprintf("unknown action %q", req.Action)}
	}
	current, err := s.cases.FindOne(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(p, current, req.Action, r.guard); err != nil {
		return nil, err
	}

	var (
		undo  undoLog
		from  models.Status
		entry models.TransitionEntry
	)
	updated, err := s.cases.UpdateOne(ctx, caseID, func(c *models.Case) error {
		from = c.Status
		if !contains(r.from, c.Status) {
			return &models.TransitionRejectedError{
				From:   c.Status,
				Action: string(req.Action),
				Reason: fmt.Sprintf("requires state %s", joinStatuses(r.from)),
			}
		}
		to, err := target(r, req)
		if err != nil {
			return err
		}
		st := &step{s: s, ctx: ctx, p: p, req: req, to: to, now: s.clock(), undo: &undo}
		if err := st.apply(c); err != nil {
			return err
		}

		st.entry.Status = to
		st.entry.Action = string(req.Action)
		st.entry.Date = st.now
		st.entry.ActorID = p.ActorID
		st.entry.ActorName = p.DisplayName()
		if st.entry.Note == "" {
			st.entry.Note = strings.TrimSpace(req.Note)
		}
		c.RevisionHistory = prependEntry(c.RevisionHistory, st.entry)
		if r.revision && st.note != "" {
			c.Notes = prependNote(c.Notes, newNote(p, st.note, st.now))
		}
		c.Status = to
		c.UpdatedBy = p.ActorID
		c.UpdatedAt = st.now
		entry = st.entry
		return nil
	})
	if err != nil {
		if len(undo) > 0 {
			undo.run(context.WithoutCancel(ctx))
		}
		var rejected *models.TransitionRejectedError
		if errors.As(err, &rejected) {
			zap.S().Debugw("transition rejected", "case", caseID, "action", req.Action, "from", rejected.From)
		}
		return nil, err
	}

	s.afterTransition(ctx, updated, req, entry)
	zap.S().Infow("case transitioned",
		"case", caseID,
		"action", req.Action,
		"from", from,
		"to", updated.Status,
		"actor", p.ActorID)
	s.notify(Event{
		CaseID:   caseID,
		CaseType: updated.CaseType,
		Action:   string(req.Action),
		From:     from,
		To:       updated.Status,
		ActorID:  p.ActorID,
		Date:     entry.Date,
	})
	return s.view(updated), nil
}

func (s *Service) authorize(p models.Principal, c *models.Case, action Action, g guard) error {
	if action == ActionRespondPleaDeal {
		g.types = s.responders
	}
	if len(g.types) == 0 {
		module := g.module
		if module == "" {
			module = c.Module()
		}
		return s.engine.RequirePermission(p, module, g.action)
	}
	if g.altAction != "" && s.engine.IsAllowed(p, c.Module(), g.altAction) {
		return nil
	}
	return s.engine.RequireRoleType(p, c.Module(), string(action), g.types...)
}

// target picks the resulting state. Only actions with several outcomes look
// at the request.
func target(r rule, req TransitionRequest) (models.Status, error) {
	if req.Action == ActionRespondPleaDeal {
		if req.Accept == nil {
			return "", &models.ValidationError{Field: "accept", Reason: "plea deal response must accept or reject"}
		}
		if *req.Accept {
			return models.StatusPleaDealAccepted, nil
		}
		return models.StatusPleaDealRejected, nil
	}
	if req.Target == "" {
		return r.to[0], nil
	}
	if !contains(r.to, req.Target) {
		return "", &models.ValidationError{
			Field:  "target",
			Reason: fmt.Sprintf("%s must be one of %s", req.Target, joinStatuses(r.to)),
		}
	}
	return req.Target, nil
}

// afterTransition records party history for verdicts. It never fails the
// transition.
func (s *Service) afterTransition(ctx context.Context, c *models.Case, req TransitionRequest, e models.TransitionEntry) {
	var kind string
	switch req.Action {
	case ActionRecordVerdict:
		kind = "verdict"
	case ActionEnterRevisionVerdict:
		kind = "revision_verdict"
	default:
		return
	}
	s.resolver.AppendHistory(ctx, c.DefendantID, models.PartyHistoryEntry{
		CaseID: c.ID,
		Type:   kind,
		Value:  e.Verdict,
		Status: c.Status,
		Date:   e.Date,
	})
}

func (st *step) apply(c *models.Case) error {
	switch st.req.Action {
	case ActionSubmitIndictment:
		return st.submitIndictment(c)
	case ActionAcceptIndictment:
		return st.reviewIndictment(c, true)
	case ActionRejectIndictment:
		return st.reviewIndictment(c, false)
	case ActionScheduleTrial:
		return st.scheduleTrial(c)
	case ActionRecordVerdict:
		return st.recordVerdict(c)
	case ActionRequestRevision:
		return st.requestRevision(c)
	case ActionAcceptRevision:
		return st.acceptRevision(c)
	case ActionRejectRevision:
		return st.rejectRevision(c)
	case ActionEnterRevisionVerdict:
		return st.enterRevisionVerdict(c)
	case ActionOfferPleaDeal:
		return st.offerPleaDeal(c)
	case ActionRespondPleaDeal:
		return st.respondPleaDeal(c)
	case ActionBeginWork:
		return nil
	case ActionDismiss:
		return st.dismiss(c)
	}
	return &models.ValidationError{Field: "action", Reason: fmt.Sprintf("unknown action %q", st.req.Action)}
}

func required(field, value, reason string) error {
	if strings.TrimSpace(value) == "" {
		return &models.ValidationError{Field: field, Reason: reason}
	}
	return nil
}

func requireVerdict(req TransitionRequest) error {
	if err := required("verdict", req.Verdict, "verdict text is required"); err != nil {
		return err
	}
	if req.VerdictDate == nil {
		return &models.ValidationError{Field: "verdictDate", Reason: "verdict date is required"}
	}
	return nil
}

func joinStatuses(list []models.Status) string {
	parts := make([]string, len(list))
	for i, s := range list {
		parts[i] = string(s)
	}
	return strings.Join(parts, "|")
}

func newID() string {
	return uuid.New().String()
}
