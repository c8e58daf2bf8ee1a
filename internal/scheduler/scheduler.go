// Package scheduler keeps the panel cache warm on a cron schedule so the
// first page view after expiry does not wait on the provider.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/seenimoa/treasurycurve/internal/infra"
	"github.com/seenimoa/treasurycurve/pkg/models"
)

// EventPanelRefreshed is broadcast after a successful warm run.
const EventPanelRefreshed = "panel_refreshed"

// Refresher refetches the trailing panel. *dashboard.Service satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) (*models.YieldPanel, error)
}

// Notifier fans an event out to connected clients. The API hub satisfies it.
type Notifier interface {
	Broadcast(msgType string, data any)
}

// RefreshedEvent is the payload of EventPanelRefreshed.
type RefreshedEvent struct {
	Latest    string    `json:"latest"`
	Rows      int       `json:"rows"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewRefreshedEvent describes a freshly fetched panel.
func NewRefreshedEvent(panel *models.YieldPanel) RefreshedEvent {
	return RefreshedEvent{
		Latest:    panel.Latest().Format("2006-01-02"),
		Rows:      panel.Len(),
		Source:    panel.Source,
		FetchedAt: panel.FetchedAt,
	}
}

// Status reports the outcome of the most recent warm run.
type Status struct {
	Spec     string    `json:"spec"`
	Runs     int       `json:"runs"`
	LastRun  time.Time `json:"last_run"`
	LastErr  string    `json:"last_error,omitempty"`
	NextRun  time.Time `json:"next_run"`
	Enabled  bool      `json:"enabled"`
	Duration string    `json:"duration,omitempty"`
}

// Scheduler runs the cache warm job.
type Scheduler struct {
	Cron      *cron.Cron
	Refresher Refresher
	Notifier  Notifier
	Ctx       context.Context

	mu      sync.Mutex
	spec    string
	entry   cron.EntryID
	runs    int
	lastRun time.Time
	lastErr error
	lastDur time.Duration
}

// NewScheduler creates a scheduler. Specs use six fields, seconds first.
// notifier may be nil.
func NewScheduler(ctx context.Context, r Refresher, n Notifier) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Refresher: r,
		Notifier:  n,
		Ctx:       ctx,
	}
}

// Register schedules the warm job.
func (s *Scheduler) Register(spec string) error {
	id, err := s.Cron.AddFunc(spec, func() {
		if err := s.RunNow(); err != nil {
			infra.Errorf("cache warm: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("register warm task %q: %w", spec, err)
	}
	s.mu.Lock()
	s.spec, s.entry = spec, id
	s.mu.Unlock()
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	infra.Infof("scheduler started (%s)", s.spec)
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	infra.Infof("scheduler stopped")
}

// RunNow refreshes the panel immediately and broadcasts the result.
func (s *Scheduler) RunNow() error {
	start := time.Now()
	panel, err := s.Refresher.Refresh(s.Ctx)

	s.mu.Lock()
	s.runs++
	s.lastRun = start
	s.lastErr = err
	s.lastDur = time.Since(start)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	infra.Infof("cache warm: %d rows through %s", panel.Len(), panel.Latest().Format("2006-01-02"))

	if s.Notifier != nil {
		s.Notifier.Broadcast(EventPanelRefreshed, NewRefreshedEvent(panel))
	}
	return nil
}

// Status returns a snapshot of the warm job state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Spec:    s.spec,
		Runs:    s.runs,
		LastRun: s.lastRun,
		Enabled: s.spec != "",
	}
	if s.lastErr != nil {
		st.LastErr = s.lastErr.Error()
	}
	if s.lastDur > 0 {
		st.Duration = s.lastDur.Round(time.Millisecond).String()
	}
	if s.spec != "" {
		st.NextRun = s.Cron.Entry(s.entry).Next
	}
	return st
}
