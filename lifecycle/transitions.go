package lifecycle

import (
	"github.com/linesmerrill/justice-case-api/models"
	"github.com/linesmerrill/justice-case-api/permissions"
)

// Action names a lifecycle transition
type Action string

// Lifecycle actions
const (
	ActionSubmitIndictment     Action = "submit_indictment"
	ActionAcceptIndictment     Action = "accept_indictment"
	ActionRejectIndictment     Action = "reject_indictment"
	ActionScheduleTrial        Action = "schedule_trial"
	ActionRecordVerdict        Action = "record_verdict"
	ActionRequestRevision      Action = "request_revision"
	ActionAcceptRevision       Action = "accept_revision"
	ActionRejectRevision       Action = "reject_revision"
	ActionEnterRevisionVerdict Action = "enter_revision_verdict"
	ActionOfferPleaDeal        Action = "offer_plea_deal"
	ActionRespondPleaDeal      Action = "respond_plea_deal"
	ActionBeginWork            Action = "begin_work"
	ActionDismiss              Action = "dismiss"
)

// guard is the permission a principal needs for a transition. When types is
// set the principal needs one of those role types, or altAction on the case's
// module when one is named. Otherwise module and action are checked against
// the permission engine. An empty module means the case's own module.
type guard struct {
	module    string
	action    string
	types     []permissions.RoleType
	altAction string
}

type rule struct {
	from     []models.Status
	to       []models.Status
	guard    guard
	revision bool
}

var (
	judgeOrLeadership      = []permissions.RoleType{permissions.RoleTypeJudge, permissions.RoleTypeLeadership}
	prosecutorOrLeadership = []permissions.RoleType{permissions.RoleTypeProsecutor, permissions.RoleTypeLeadership}

	presideTrials = guard{types: judgeOrLeadership, altAction: permissions.ActionPresideTrials}

	revisable = []models.Status{
		models.StatusCompleted, models.StatusRejected, models.StatusDismissed, models.StatusAppealed,
		models.StatusRevisionCompleted, models.StatusRevisionRejected, models.StatusRevisionVerdict,
	}
)

// transitions is the lifecycle table. The first entry of to is the default
// target.
var transitions = map[Action]rule{
	ActionSubmitIndictment: {
		from:  []models.Status{models.StatusOpen, models.StatusInProgress},
		to:    []models.Status{models.StatusPending},
		guard: guard{module: "indictments", action: permissions.ActionCreate},
	},
	ActionAcceptIndictment: {
		from:  []models.Status{models.StatusPending},
		to:    []models.Status{models.StatusAccepted},
		guard: guard{module: "indictments", action: permissions.ActionEdit},
	},
	ActionRejectIndictment: {
		from:  []models.Status{models.StatusPending},
		to:    []models.Status{models.StatusRejected},
		guard: guard{module: "indictments", action: permissions.ActionEdit},
	},
	ActionScheduleTrial: {
		from:  []models.Status{models.StatusAccepted},
		to:    []models.Status{models.StatusScheduled},
		guard: presideTrials,
	},
	ActionRecordVerdict: {
		from:  []models.Status{models.StatusScheduled, models.StatusAccepted},
		to:    []models.Status{models.StatusCompleted, models.StatusAppealed, models.StatusDismissed},
		guard: presideTrials,
	},
	ActionRequestRevision: {
		from:     revisable,
		to:       []models.Status{models.StatusRevisionRequested},
		guard:    guard{types: prosecutorOrLeadership},
		revision: true,
	},
	ActionAcceptRevision: {
		from:     []models.Status{models.StatusRevisionRequested},
		to:       []models.Status{models.StatusRevisionInProgress},
		guard:    presideTrials,
		revision: true,
	},
	ActionRejectRevision: {
		from:     []models.Status{models.StatusRevisionRequested},
		to:       []models.Status{models.StatusRevisionRejected},
		guard:    presideTrials,
		revision: true,
	},
	ActionEnterRevisionVerdict: {
		from:     []models.Status{models.StatusRevisionInProgress},
		to:       []models.Status{models.StatusRevisionCompleted},
		guard:    presideTrials,
		revision: true,
	},
	ActionOfferPleaDeal: {
		from:  []models.Status{models.StatusOpen, models.StatusInProgress, models.StatusPending},
		to:    []models.Status{models.StatusPleaDealOffered},
		guard: guard{types: prosecutorOrLeadership},
	},
	ActionRespondPleaDeal: {
		from: []models.Status{models.StatusPleaDealOffered},
		to:   []models.Status{models.StatusPleaDealAccepted, models.StatusPleaDealRejected},
		// role types come from Service.responders
		guard: guard{types: judgeOrLeadership},
	},
	ActionBeginWork: {
		from:  []models.Status{models.StatusOpen},
		to:    []models.Status{models.StatusInProgress},
		guard: guard{action: permissions.ActionEdit},
	},
	ActionDismiss: {
		from:  []models.Status{models.StatusOpen, models.StatusInProgress, models.StatusPending},
		to:    []models.Status{models.StatusDismissed},
		guard: guard{action: permissions.ActionEdit},
	},
}

// AvailableActions lists the actions whose state precondition holds for a
// case in status s. Permission guards are not considered.
func AvailableActions(s models.Status) []Action {
	var out []Action
	for _, a := range orderedActions {
		if contains(transitions[a].from, s) {
			out = append(out, a)
		}
	}
	return out
}

var orderedActions = []Action{
	ActionBeginWork, ActionSubmitIndictment, ActionAcceptIndictment, ActionRejectIndictment,
	ActionScheduleTrial, ActionRecordVerdict, ActionOfferPleaDeal, ActionRespondPleaDeal,
	ActionRequestRevision, ActionAcceptRevision, ActionRejectRevision, ActionEnterRevisionVerdict,
	ActionDismiss,
}

func contains(list []models.Status, s models.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
