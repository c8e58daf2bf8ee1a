package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/treasurycurve/pkg/models"
)

type stubRefresher struct {
	calls atomic.Int32
	err   error
}

func (s *stubRefresher) Refresh(context.Context) (*models.YieldPanel, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &models.YieldPanel{
		Source: "fred",
		Rows: []models.PanelRow{
			{Date: time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)},
			{Date: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)},
		},
	}, nil
}

type event struct {
	typ  string
	data any
}

type stubNotifier struct {
	mu     sync.Mutex
	events []event
}

func (n *stubNotifier) Broadcast(msgType string, data any) {
	n.mu.Lock()
	n.events = append(n.events, event{msgType, data})
	n.mu.Unlock()
}

func (n *stubNotifier) list() []event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]event(nil), n.events...)
}

func TestRunNowBroadcastsRefresh(t *testing.T) {
	r := &stubRefresher{}
	n := &stubNotifier{}
	s := NewScheduler(context.Background(), r, n)

	require.NoError(t, s.RunNow())

	events := n.list()
	require.Len(t, events, 1)
	assert.Equal(t, EventPanelRefreshed, events[0].typ)
	ev, ok := events[0].data.(RefreshedEvent)
	require.True(t, ok)
	assert.Equal(t, "2024-06-03", ev.Latest)
	assert.Equal(t, 2, ev.Rows)
	assert.Equal(t, "fred", ev.Source)

	st := s.Status()
	assert.Equal(t, 1, st.Runs)
	assert.Empty(t, st.LastErr)
	assert.False(t, st.LastRun.IsZero())
	assert.False(t, st.Enabled)
}

func TestRunNowFailureIsRecorded(t *testing.T) {
	r := &stubRefresher{err: errors.New("fred down")}
	n := &stubNotifier{}
	s := NewScheduler(context.Background(), r, n)

	err := s.RunNow()
	require.Error(t, err)
	assert.Empty(t, n.list(), "failed refresh must not broadcast")
	assert.Equal(t, "fred down", s.Status().LastErr)
}

func TestRunNowWithoutNotifier(t *testing.T) {
	s := NewScheduler(context.Background(), &stubRefresher{}, nil)
	assert.NoError(t, s.RunNow())
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := NewScheduler(context.Background(), &stubRefresher{}, nil)
	err := s.Register("every now and then")
	require.Error(t, err)
	assert.False(t, s.Status().Enabled)

	// five-field specs are rejected: the seconds field is required
	assert.Error(t, s.Register("*/5 * * * *"))
}

func TestScheduledRun(t *testing.T) {
	r := &stubRefresher{}
	n := &stubNotifier{}
	s := NewScheduler(context.Background(), r, n)

	require.NoError(t, s.Register("@every 1s"))
	s.Start()
	defer s.Stop()

	st := s.Status()
	assert.True(t, st.Enabled)
	assert.Equal(t, "@every 1s", st.Spec)
	assert.False(t, st.NextRun.IsZero())

	require.Eventually(t, func() bool { return r.calls.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)
	require.Eventually(t, func() bool { return len(n.list()) >= 1 }, time.Second, 20*time.Millisecond)
}
