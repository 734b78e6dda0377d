// Package lifecycle drives cases through their states. Every operation takes
// the acting principal explicitly and is gated by the permission engine.
package lifecycle

import (
	"context"
	"time"

	"github.com/linesmerrill/justice-case-api/databases"
	"github.com/linesmerrill/justice-case-api/limitation"
	"github.com/linesmerrill/justice-case-api/models"
	"github.com/linesmerrill/justice-case-api/parties"
	"github.com/linesmerrill/justice-case-api/permissions"
)

// Event describes a committed lifecycle change
type Event struct {
	CaseID   string          `json:"caseId"`
	CaseType models.CaseType `json:"caseType"`
	Action   string          `json:"action"`
	From     models.Status   `json:"from,omitempty"`
	To       models.Status   `json:"to"`
	ActorID  string          `json:"actorId"`
	Date     time.Time       `json:"date"`
}

// Notifier is told about every committed change. Notify must not block.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Event)

// Notify calls f(e)
func (f NotifierFunc) Notify(e Event) { f(e) }

// Option is a functional option for the Service
type Option func(*Service)

// WithNotifier registers n for lifecycle events
func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifiers = append(s.notifiers, n) } }

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithPleaDealResponders sets the role types allowed to answer a plea deal
func WithPleaDealResponders(types ...permissions.RoleType) Option {
	return func(s *Service) { s.responders = types }
}

// Service implements the case lifecycle
type Service struct {
	engine      *permissions.Engine
	cases       databases.CaseDatabase
	indictments databases.IndictmentDatabase
	appeals     databases.AppealDatabase
	limits      limitation.Calculator
	resolver    *parties.Resolver

	notifiers  []Notifier
	responders []permissions.RoleType
	now        func() time.Time
}

// NewService wires a Service to the collections of store
func NewService(engine *permissions.Engine, store databases.RecordStore, opts ...Option) *Service {
	s := &Service{
		engine:      engine,
		cases:       databases.NewCaseDatabase(store),
		indictments: databases.NewIndictmentDatabase(store),
		appeals:     databases.NewAppealDatabase(store),
		limits:      limitation.Calculator{DB: databases.NewLimitationDatabase(store)},
		resolver:    parties.NewResolver(databases.NewPartyDatabase(store)),
		responders:  judgeOrLeadership,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolver.Now = s.now
	return s
}

// Parties exposes the party resolver the service writes through
func (s *Service) Parties() *parties.Resolver {
	return s.resolver
}

// Limitations exposes the limitation rule calculator
func (s *Service) Limitations() limitation.Calculator {
	return s.limits
}

func (s *Service) notify(e Event) {
	for _, n := range s.notifiers {
		n.Notify(e)
	}
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// undoLog collects compensations for satellite writes made while a case
// write is pending
type undoLog []func(context.Context)

func (u *undoLog) add(fn func(context.Context)) {
	*u = append(*u, fn)
}

func (u undoLog) run(ctx context.Context) {
	for i := len(u) - 1; i >= 0; i-- {
		u[i](ctx)
	}
}
