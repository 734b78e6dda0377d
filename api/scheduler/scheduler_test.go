package scheduler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/justice-case-api/api/scheduler"
	"github.com/linesmerrill/justice-case-api/models"
)

type fakeSource struct {
	cases []models.CaseView
	err   error
	calls int
}

func (f *fakeSource) ExpiringCases(ctx context.Context) ([]models.CaseView, error) {
	f.calls++
	return f.cases, f.err
}

func TestScanExpiringReportsCases(t *testing.T) {
	src := &fakeSource{cases: []models.CaseView{
		{Case: models.Case{ID: "a"}, Expiry: &models.ExpiryAnnotation{DaysRemaining: -2, State: models.ExpiryExpired}},
		{Case: models.Case{ID: "b"}, Expiry: &models.ExpiryAnnotation{DaysRemaining: 3, State: models.ExpiryExpiringSoon}},
	}}
	var first, second []models.CaseView
	s := scheduler.NewScheduler(src, "",
		func(c []models.CaseView) { first = c },
		func(c []models.CaseView) { second = c },
	)

	s.ScanExpiring()
	assert.Equal(t, 1, src.calls)
	assert.Len(t, first, 2)
	assert.Equal(t, first, second)
}

func TestScanExpiringSkipsReportersOnError(t *testing.T) {
	src := &fakeSource{err: &models.IOError{Op: "read", Collection: "cases", Err: errors.New("disk")}}
	called := false
	s := scheduler.NewScheduler(src, "", func([]models.CaseView) { called = true })

	s.ScanExpiring()
	assert.False(t, called)
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	s := scheduler.NewScheduler(&fakeSource{}, "not a cron spec")
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s := scheduler.NewScheduler(&fakeSource{}, "@every 1h")
	assert.NoError(t, s.Start())
	s.Stop()
}
