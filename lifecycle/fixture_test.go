package lifecycle_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/justice-case-api/databases"
	"github.com/linesmerrill/justice-case-api/lifecycle"
	"github.com/linesmerrill/justice-case-api/models"
	"github.com/linesmerrill/justice-case-api/permissions"
)

var (
	admin      = models.Principal{ActorID: "admin-1", Name: "Ada Admin", PrimaryRole: "Administrator"}
	prosecutor = models.Principal{ActorID: "pros-1", Name: "Pat Prosecutor", PrimaryRole: "Prosecutor"}
	judge      = models.Principal{ActorID: "judge-1", Name: "Judy Judge", PrimaryRole: "Judge"}
	chief      = models.Principal{ActorID: "chief-1", Name: "Cy Chief", PrimaryRole: "Chief Justice"}
	marshal    = models.Principal{ActorID: "marshal-1", Name: "Max Marshal", PrimaryRole: "Marshal"}
	clerk      = models.Principal{ActorID: "clerk-1", Name: "Cleo Clerk", PrimaryRole: "clerk"}
	nobody     = models.Principal{ActorID: "anon"}
)

type fixture struct {
	t           *testing.T
	ctx         context.Context
	dir         string
	store       databases.RecordStore
	svc         *lifecycle.Service
	indictments databases.IndictmentDatabase
	appeals     databases.AppealDatabase
	partyDB     databases.PartyDatabase

	mu     sync.Mutex
	events []lifecycle.Event
}

func newFixture(t *testing.T, opts ...lifecycle.Option) *fixture {
	t.Helper()
	return newFixtureWithPolicy(t, permissions.DefaultPolicy(), opts...)
}

func newFixtureWithPolicy(t *testing.T, policy *permissions.Policy, opts ...lifecycle.Option) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := databases.NewFileStore(dir)
	require.NoError(t, err)
	engine, err := permissions.NewEngine(policy)
	require.NoError(t, err)

	f := &fixture{
		t:           t,
		ctx:         context.Background(),
		dir:         dir,
		store:       store,
		indictments: databases.NewIndictmentDatabase(store),
		appeals:     databases.NewAppealDatabase(store),
		partyDB:     databases.NewPartyDatabase(store),
	}
	base := []lifecycle.Option{
		lifecycle.WithClock(func() time.Time { return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC) }),
		lifecycle.WithNotifier(lifecycle.NotifierFunc(func(e lifecycle.Event) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.events = append(f.events, e)
		})),
	}
	f.svc = lifecycle.NewService(engine, store, append(base, opts...)...)

	require.NoError(t, databases.NewLimitationDatabase(store).InsertOne(f.ctx, models.Limitation{ID: "one-year", Label: "One year", Days: 365}))
	return f
}

func (f *fixture) createCase(status string) *models.CaseView {
	f.t.Helper()
	incident := models.NewDate(2024, time.January, 1)
	v, err := f.svc.CreateCase(f.ctx, prosecutor, lifecycle.NewCase{
		CaseType:      models.CaseTypeCriminal,
		DefendantName: "Jane Doe",
		Charge:        "Grand theft",
		IncidentDate:  &incident,
		LimitationID:  "one-year",
		Status:        status,
	})
	require.NoError(f.t, err)
	return v
}

func (f *fixture) transition(p models.Principal, caseID string, req lifecycle.TransitionRequest) *models.CaseView {
	f.t.Helper()
	v, err := f.svc.Transition(f.ctx, p, caseID, req)
	require.NoError(f.t, err, "action %s", req.Action)
	return v
}

func (f *fixture) raw(caseID string) databases.Record {
	f.t.Helper()
	r, err := f.store.FindByID(f.ctx, databases.CasesCollection, caseID)
	require.NoError(f.t, err)
	return r
}

func verdictDate() *models.Date {
	d := models.NewDate(2024, time.May, 30)
	return &d
}

func boolPtr(b bool) *bool { return &b }
