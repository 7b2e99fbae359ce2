package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduforms/internal/domain"
)

// fakeClock hands out timers that only fire when the test advances time.
type fakeClock struct {
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{at: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) advance(d time.Duration) {
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= d {
			t.fired = true
			t.f()
		}
	}
}

func schedForm() *domain.DynamicForm {
	return &domain.DynamicForm{ID: 1, Slug: "request-info", IsPublished: true}
}

func TestScheduler_Immediate(t *testing.T) {
	shown := 0
	s, err := NewScheduler(context.Background(), schedForm(),
		domain.PageAssignment{PageType: "college", DisplayAs: domain.DisplayPopup, Trigger: domain.TriggerImmediate},
		NewMemoryMarkerStore(), &fakeClock{}, func() { shown++ })
	require.NoError(t, err)

	assert.Equal(t, StateIdle, s.State())
	s.Start()
	assert.Equal(t, StateVisible, s.State())
	assert.Equal(t, 1, shown)
}

func TestScheduler_DelayFires(t *testing.T) {
	clock := &fakeClock{}
	s, err := NewScheduler(context.Background(), schedForm(),
		domain.PageAssignment{Trigger: domain.TriggerDelay, DelaySeconds: 5},
		NewMemoryMarkerStore(), clock, nil)
	require.NoError(t, err)

	s.Start()
	assert.Equal(t, StateArmed, s.State())

	clock.advance(3 * time.Second)
	assert.Equal(t, StateArmed, s.State())

	clock.advance(5 * time.Second)
	assert.Equal(t, StateVisible, s.State())
}

func TestScheduler_DelayCancelledByStop(t *testing.T) {
	clock := &fakeClock{}
	s, err := NewScheduler(context.Background(), schedForm(),
		domain.PageAssignment{Trigger: domain.TriggerDelay, DelaySeconds: 5},
		NewMemoryMarkerStore(), clock, nil)
	require.NoError(t, err)

	s.Start()
	s.Stop()

	// a timer surviving Stop would fire into a torn-down view
	clock.advance(10 * time.Second)
	assert.Equal(t, StateDismissed, s.State())
	require.Len(t, clock.timers, 1)
	assert.True(t, clock.timers[0].stopped)
}

func TestScheduler_ScrollThreshold(t *testing.T) {
	shown := 0
	s, err := NewScheduler(context.Background(), schedForm(),
		domain.PageAssignment{Trigger: domain.TriggerScroll, ScrollPercent: 50},
		NewMemoryMarkerStore(), &fakeClock{}, func() { shown++ })
	require.NoError(t, err)
	s.Start()

	// below the threshold: stays armed
	s.OnScroll(ScrollSample{Top: 100, Height: 1100, Viewport: 100}) // 10%
	s.OnScroll(ScrollSample{Top: 400, Height: 1100, Viewport: 100}) // 40%
	assert.Equal(t, StateArmed, s.State())

	// at the threshold: fires exactly once
	s.OnScroll(ScrollSample{Top: 500, Height: 1100, Viewport: 100}) // 50%
	assert.Equal(t, StateVisible, s.State())
	s.OnScroll(ScrollSample{Top: 900, Height: 1100, Viewport: 100})
	assert.Equal(t, 1, shown)
}

func TestScheduler_ScrollShortPageCountsAsFull(t *testing.T) {
	assert.Equal(t, float64(100), ScrollSample{Top: 0, Height: 500, Viewport: 800}.Percent())
}

func TestScheduler_ExitIntent(t *testing.T) {
	s, err := NewScheduler(context.Background(), schedForm(),
		domain.PageAssignment{Trigger: domain.TriggerExitIntent},
		NewMemoryMarkerStore(), &fakeClock{}, nil)
	require.NoError(t, err)
	s.Start()

	s.OnPointerLeave(400) // middle of the page, not intent
	assert.Equal(t, StateArmed, s.State())

	s.OnPointerLeave(10) // top edge
	assert.Equal(t, StateVisible, s.State())
}

func TestScheduler_ShowOnceSuppressesNextMount(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryMarkerStore()
	assign := domain.PageAssignment{Trigger: domain.TriggerImmediate, ShowOnce: true}

	first, err := NewScheduler(ctx, schedForm(), assign, store, &fakeClock{}, nil)
	require.NoError(t, err)
	first.Start()
	require.Equal(t, StateVisible, first.State())
	require.NoError(t, first.Dismiss(ctx))
	assert.Equal(t, StateDismissed, first.State())

	shown, err := store.Get(ctx, MarkerKey("request-info"))
	require.NoError(t, err)
	assert.True(t, shown)

	// second simulated page mount with the persisted marker
	second, err := NewScheduler(ctx, schedForm(), assign, store, &fakeClock{}, nil)
	require.NoError(t, err)
	second.Start()
	assert.Equal(t, StateIdle, second.State())
}

func TestScheduler_SubmitAlsoPersistsMarker(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryMarkerStore()
	s, err := NewScheduler(ctx, schedForm(),
		domain.PageAssignment{Trigger: domain.TriggerImmediate, ShowOnce: true},
		store, &fakeClock{}, nil)
	require.NoError(t, err)
	s.Start()
	require.NoError(t, s.CompleteSubmit(ctx))

	shown, _ := store.Get(ctx, MarkerKey("request-info"))
	assert.True(t, shown)
}

func TestScheduler_StopWritesNoMarker(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryMarkerStore()
	s, err := NewScheduler(ctx, schedForm(),
		domain.PageAssignment{Trigger: domain.TriggerImmediate, ShowOnce: true},
		store, &fakeClock{}, nil)
	require.NoError(t, err)
	s.Start()
	s.Stop()

	shown, _ := store.Get(ctx, MarkerKey("request-info"))
	assert.False(t, shown, "navigating away is not a dismissal")
}

func TestScheduler_IndependentInstances(t *testing.T) {
	// two forms on the same page trigger independently; both may be visible
	ctx := context.Background()
	store := NewMemoryMarkerStore()

	a, err := NewScheduler(ctx, schedForm(),
		domain.PageAssignment{Trigger: domain.TriggerImmediate}, store, &fakeClock{}, nil)
	require.NoError(t, err)

	other := &domain.DynamicForm{ID: 2, Slug: "newsletter"}
	b, err := NewScheduler(ctx, other,
		domain.PageAssignment{Trigger: domain.TriggerScroll, ScrollPercent: 30}, store, &fakeClock{}, nil)
	require.NoError(t, err)

	a.Start()
	b.Start()
	b.OnScroll(ScrollSample{Top: 500, Height: 1100, Viewport: 100})

	assert.Equal(t, StateVisible, a.State())
	assert.Equal(t, StateVisible, b.State())
}
