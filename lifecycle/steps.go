package lifecycle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/linesmerrill/justice-case-api/models"
)

type satelliteDB[T any] interface {
	InsertOne(ctx context.Context, v T) error
	UpdateOne(ctx context.Context, id string, fn func(*T) error) (*T, error)
	DeleteOne(ctx context.Context, id string) error
}

// insertSatellite stores v and registers its removal as compensation
func insertSatellite[T any](st *step, db satelliteDB[T], kind, id string, v T) error {
	if err := db.InsertOne(st.ctx, v); err != nil {
		return err
	}
	st.undo.add(func(ctx context.Context) {
		if err := db.DeleteOne(ctx, id); err != nil {
			zap.S().Errorw("failed to roll back satellite insert", "kind", kind, "id", id, "error", err)
		}
	})
	return nil
}

// updateSatellite applies fn and registers restoring the previous value as
// compensation
func updateSatellite[T any](st *step, db satelliteDB[T], kind, id string, fn func(*T)) error {
	var prev T
	_, err := db.UpdateOne(st.ctx, id, func(v *T) error {
		prev = *v
		fn(v)
		return nil
	})
	if err != nil {
		return err
	}
	st.undo.add(func(ctx context.Context) {
		_, err := db.UpdateOne(ctx, id, func(v *T) error {
			*v = prev
			return nil
		})
		if err != nil {
			zap.S().Errorw("failed to roll back satellite update", "kind", kind, "id", id, "error", err)
		}
	})
	return nil
}

// latestIndictment returns the most recently filed indictment of the case in
// one of statuses
func (st *step) latestIndictment(caseID string, statuses ...models.SubStatus) (*models.Indictment, error) {
	all, err := st.s.indictments.FindByCase(st.ctx, caseID)
	if err != nil {
		return nil, err
	}
	for i := len(all) - 1; i >= 0; i-- {
		for _, want := range statuses {
			if all[i].Status == want {
				return &all[i], nil
			}
		}
	}
	return nil, nil
}

func (st *step) latestAppeal(caseID string, statuses ...models.SubStatus) (*models.Appeal, error) {
	all, err := st.s.appeals.FindByCase(st.ctx, caseID)
	if err != nil {
		return nil, err
	}
	for i := len(all) - 1; i >= 0; i-- {
		for _, want := range statuses {
			if all[i].Status == want {
				return &all[i], nil
			}
		}
	}
	return nil, nil
}

func (st *step) submitIndictment(c *models.Case) error {
	if err := required("content", st.req.Content, "indictment text is required"); err != nil {
		return err
	}
	ind := models.Indictment{
		ID:        newID(),
		CaseID:    c.ID,
		Content:   st.req.Content,
		Charges:   firstNonEmpty(st.req.Charges, c.Charge),
		Status:    models.SubStatusPending,
		CreatedBy: st.p.ActorID,
		CreatedAt: st.now,
		UpdatedAt: st.now,
	}
	return insertSatellite[models.Indictment](st, st.s.indictments, "indictment", ind.ID, ind)
}

func (st *step) reviewIndictment(c *models.Case, accept bool) error {
	status := models.SubStatusAccepted
	if !accept {
		if err := required("reason", st.req.Reason, "a rejection reason is required"); err != nil {
			return err
		}
		status = models.SubStatusRejected
		st.entry.Note = st.req.Reason
	}
	ind, err := st.latestIndictment(c.ID, models.SubStatusPending)
	if err != nil {
		return err
	}
	if ind == nil {
		return &models.TransitionRejectedError{From: c.Status, Action: string(st.req.Action), Reason: "case has no pending indictment"}
	}
	return updateSatellite[models.Indictment](st, st.s.indictments, "indictment", ind.ID, func(i *models.Indictment) {
		i.Status = status
		i.ReviewedBy = st.p.ActorID
		i.RejectionReason = st.req.Reason
		i.UpdatedAt = st.now
	})
}

func (st *step) scheduleTrial(c *models.Case) error {
	if st.req.TrialDate == nil || st.req.TrialDate.IsZero() {
		return &models.ValidationError{Field: "trialDate", Reason: "trial date is required"}
	}
	ind, err := st.latestIndictment(c.ID, models.SubStatusAccepted)
	if err != nil {
		return err
	}
	if ind == nil {
		return &models.TransitionRejectedError{From: c.Status, Action: string(st.req.Action), Reason: "case has no accepted indictment"}
	}
	trial := st.req.TrialDate.UTC()
	st.entry.Note = firstNonEmpty(st.req.Note, fmt.Sprintf("trial scheduled for %s", trial.Format("2006-01-02 15:04")))
	return updateSatellite[models.Indictment](st, st.s.indictments, "indictment", ind.ID, func(i *models.Indictment) {
		i.Status = models.SubStatusScheduled
		i.TrialDate = &trial
		i.Courtroom = st.req.Courtroom
		i.UpdatedAt = st.now
	})
}

func (st *step) recordVerdict(c *models.Case) error {
	if err := requireVerdict(st.req); err != nil {
		return err
	}
	c.Verdict = st.req.Verdict
	c.VerdictDate = st.req.VerdictDate
	c.Judge = firstNonEmpty(c.Judge, st.p.DisplayName())
	st.entry.Verdict = st.req.Verdict
	st.entry.VerdictDate = st.req.VerdictDate

	// cases carried over from older records may reach trial without an
	// indictment; the verdict still stands on the case itself
	ind, err := st.latestIndictment(c.ID, models.SubStatusScheduled, models.SubStatusAccepted)
	if err != nil || ind == nil {
		return err
	}
	return updateSatellite[models.Indictment](st, st.s.indictments, "indictment", ind.ID, func(i *models.Indictment) {
		i.Status = models.SubStatusCompleted
		i.Verdict = st.req.Verdict
		i.VerdictDate = st.req.VerdictDate
		i.UpdatedAt = st.now
	})
}

func (st *step) requestRevision(c *models.Case) error {
	if err := required("content", st.req.Content, "revision request text is required"); err != nil {
		return err
	}
	// a new review round starts from clean review stamps
	c.RevisionReviewerID = ""
	c.RevisionReviewerName = ""
	c.RevisionReviewDate = nil
	c.RevisionRejectionReason = ""
	c.RevisionVerdict = ""
	c.RevisionVerdictDate = nil
	st.note = "Revision requested: " + st.req.Content
	st.entry.Note = firstNonEmpty(st.req.Note, st.req.Reason)

	app := models.Appeal{
		ID:        newID(),
		CaseID:    c.ID,
		Content:   st.req.Content,
		Reason:    st.req.Reason,
		Status:    models.SubStatusPending,
		CreatedBy: st.p.ActorID,
		CreatedAt: st.now,
		UpdatedAt: st.now,
	}
	return insertSatellite[models.Appeal](st, st.s.appeals, "appeal", app.ID, app)
}

func (st *step) acceptRevision(c *models.Case) error {
	now := st.now
	c.RevisionReviewerID = st.p.ActorID
	c.RevisionReviewerName = st.p.DisplayName()
	c.RevisionReviewDate = &now
	st.note = "Revision accepted for review by " + st.p.DisplayName()

	app, err := st.latestAppeal(c.ID, models.SubStatusPending)
	if err != nil || app == nil {
		return err
	}
	return updateSatellite[models.Appeal](st, st.s.appeals, "appeal", app.ID, func(a *models.Appeal) {
		a.Status = models.SubStatusAccepted
		a.ReviewerID = st.p.ActorID
		a.ReviewDate = &now
		a.UpdatedAt = now
	})
}

func (st *step) rejectRevision(c *models.Case) error {
	if err := required("reason", st.req.Reason, "a rejection reason is required"); err != nil {
		return err
	}
	now := st.now
	c.RevisionRejectionReason = st.req.Reason
	c.RevisionReviewerID = st.p.ActorID
	c.RevisionReviewerName = st.p.DisplayName()
	c.RevisionReviewDate = &now
	st.note = "Revision rejected: " + st.req.Reason
	st.entry.Note = st.req.Reason

	app, err := st.latestAppeal(c.ID, models.SubStatusPending)
	if err != nil || app == nil {
		return err
	}
	return updateSatellite[models.Appeal](st, st.s.appeals, "appeal", app.ID, func(a *models.Appeal) {
		a.Status = models.SubStatusRejected
		a.ReviewerID = st.p.ActorID
		a.ReviewDate = &now
		a.RejectionReason = st.req.Reason
		a.UpdatedAt = now
	})
}

func (st *step) enterRevisionVerdict(c *models.Case) error {
	if err := requireVerdict(st.req); err != nil {
		return err
	}
	c.RevisionVerdict = st.req.Verdict
	c.RevisionVerdictDate = st.req.VerdictDate
	st.note = "Revision verdict: " + st.req.Verdict
	st.entry.Verdict = st.req.Verdict
	st.entry.VerdictDate = st.req.VerdictDate

	app, err := st.latestAppeal(c.ID, models.SubStatusAccepted, models.SubStatusPending)
	if err != nil || app == nil {
		return err
	}
	return updateSatellite[models.Appeal](st, st.s.appeals, "appeal", app.ID, func(a *models.Appeal) {
		a.Status = models.SubStatusCompleted
		a.Verdict = st.req.Verdict
		a.VerdictDate = st.req.VerdictDate
		a.UpdatedAt = st.now
	})
}

func (st *step) offerPleaDeal(c *models.Case) error {
	if err := required("terms", st.req.Terms, "plea deal terms are required"); err != nil {
		return err
	}
	c.PleaDeal = &models.PleaDeal{
		Terms:         st.req.Terms,
		ReducedCharge: st.req.ReducedCharge,
		Status:        models.SubStatusPending,
		OfferedBy:     st.p.ActorID,
		OfferedByName: st.p.DisplayName(),
		DateOffered:   st.now,
	}
	return nil
}

func (st *step) respondPleaDeal(c *models.Case) error {
	if c.PleaDeal == nil {
		return &models.TransitionRejectedError{From: c.Status, Action: string(st.req.Action), Reason: "case has no plea deal on record"}
	}
	now := st.now
	deal := *c.PleaDeal
	deal.Status = models.SubStatusRejected
	if st.to == models.StatusPleaDealAccepted {
		deal.Status = models.SubStatusAccepted
	}
	deal.Response = st.req.Note
	deal.ProcessedBy = st.p.ActorID
	deal.DateProcessed = &now
	c.PleaDeal = &deal
	return nil
}

func (st *step) dismiss(c *models.Case) error {
	if err := required("reason", st.req.Reason, "a dismissal reason is required"); err != nil {
		return err
	}
	st.entry.Note = st.req.Reason
	return nil
}
