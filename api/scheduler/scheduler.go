package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/linesmerrill/justice-case-api/logging"
	"github.com/linesmerrill/justice-case-api/models"
)

// DefaultSpec runs the expiry scan daily at 6 AM UTC
const DefaultSpec = "0 6 * * *"

// scanTimeout bounds a single expiry scan
const scanTimeout = 5 * time.Minute

// CaseSource lists the cases whose limitation has expired or expires soon
type CaseSource interface {
	ExpiringCases(ctx context.Context) ([]models.CaseView, error)
}

// Reporter receives the result of every expiry scan
type Reporter func(cases []models.CaseView)

// Scheduler handles periodic background jobs for the case registry
type Scheduler struct {
	cron      *cron.Cron
	spec      string
	cases     CaseSource
	reporters []Reporter
	log       *zap.SugaredLogger
}

// NewScheduler creates a new scheduler instance. An empty spec means
// DefaultSpec.
func NewScheduler(cases CaseSource, spec string, reporters ...Reporter) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		spec:      spec,
		cases:     cases,
		reporters: reporters,
		log:       logging.New("scheduler"),
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() error {
	// Report expired and soon expiring limitations. The scan only reads.
	if _, err := s.cron.AddFunc(s.spec, s.ScanExpiring); err != nil {
		s.log.Errorw("failed to register expiry scan job", "spec", s.spec, "error", err)
		return err
	}

	s.cron.Start()
	s.log.Infow("Expiry scheduler started", "spec", s.spec)
	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Expiry scheduler stopped")
}

// ScanExpiring runs one expiry scan and hands the result to the reporters
func (s *Scheduler) ScanExpiring() {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	cases, err := s.cases.ExpiringCases(ctx)
	if err != nil {
		s.log.Errorw("failed to scan for expiring cases", "error", err)
		return
	}

	var expired int
	for _, c := range cases {
		if c.Expiry != nil && c.Expiry.State == models.ExpiryExpired {
			expired++
		}
	}
	s.log.Infow("Expiry scan finished",
		"expired", expired,
		"expiringSoon", len(cases)-expired)

	for _, report := range s.reporters {
		report(cases)
	}
}
