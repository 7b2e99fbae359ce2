package engine

import (
	"context"
	"sync"
	"time"

	"eduforms/internal/domain"
)

// SchedulerState is the lifecycle of one passive form placement on one page
// view: Idle until started, Armed while waiting for its trigger, Visible
// once the trigger fires, Dismissed terminally.
type SchedulerState int

const (
	StateIdle SchedulerState = iota
	StateArmed
	StateVisible
	StateDismissed
)

func (s SchedulerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateVisible:
		return "visible"
	default:
		return "dismissed"
	}
}

// MarkerStore persists the "already shown" sentinel for show-once forms.
// Implementations range from browser local storage to redis; the scheduler
// only needs get/set on a string key.
type MarkerStore interface {
	Get(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string) error
}

// MarkerKey is the sentinel key contract for a form's shown marker.
func MarkerKey(slug string) string { return "form_shown_" + slug }

// Timer is the cancellable handle returned by a Clock.
type Timer interface {
	Stop() bool
}

// Clock abstracts timer creation so delay triggers are testable without
// real sleeps.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealClock drives delay triggers off the wall clock.
func RealClock() Clock { return realClock{} }

// ScrollSample is one reading of the page scroll position.
type ScrollSample struct {
	Top      float64
	Height   float64
	Viewport float64
}

// Percent converts the sample into scrolled percent. A page no taller than
// the viewport counts as fully scrolled.
func (s ScrollSample) Percent() float64 {
	denom := s.Height - s.Viewport
	if denom <= 0 {
		return 100
	}
	return s.Top / denom * 100
}

// exitIntentEdge is the top-edge band, in px, a pointer-leave must fall in
// to count as intent to leave the page.
const exitIntentEdge = 40.0

// Scheduler decides when one assigned form becomes visible on one page
// view. One instance per (form, page type, entity) tuple; instances never
// share state, so two forms on a page can both fire.
//
// All listeners are released by Stop, unconditionally: a pending delay timer
// must never fire into a torn-down page.
type Scheduler struct {
	mu     sync.Mutex
	slug   string
	assign domain.PageAssignment
	store  MarkerStore
	clock  Clock
	onShow func()

	state SchedulerState
	timer Timer
	// suppressed pins the scheduler at Idle for the whole page view when a
	// show-once marker already exists.
	suppressed bool
}

// NewScheduler builds a scheduler for a form placement. When the assignment
// is show-once and the marker store already holds the form's sentinel, the
// scheduler stays Idle forever. onShow may be nil.
func NewScheduler(ctx context.Context, form *domain.DynamicForm, assign domain.PageAssignment, store MarkerStore, clock Clock, onShow func()) (*Scheduler, error) {
	s := &Scheduler{
		slug:   form.Slug,
		assign: assign,
		store:  store,
		clock:  clock,
		onShow: onShow,
	}
	if clock == nil {
		s.clock = RealClock()
	}
	if assign.ShowOnce && store != nil {
		shown, err := store.Get(ctx, MarkerKey(form.Slug))
		if err != nil {
			return nil, err
		}
		s.suppressed = shown
	}
	return s, nil
}

// Start arms the trigger. Immediate placements show synchronously; delay
// placements start a timer; scroll and exit-intent placements wait for event
// samples fed through OnScroll / OnPointerLeave.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.suppressed || s.state != StateIdle {
		return
	}

	switch s.assign.Trigger {
	case domain.TriggerImmediate:
		s.showLocked()
	case domain.TriggerDelay:
		s.state = StateArmed
		d := time.Duration(s.assign.DelaySeconds) * time.Second
		s.timer = s.clock.AfterFunc(d, s.fire)
	case domain.TriggerScroll, domain.TriggerExitIntent:
		s.state = StateArmed
	}
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateArmed {
		return
	}
	s.showLocked()
}

// OnScroll feeds a scroll reading. The first sample at or past the
// threshold fires the trigger; after that the listener is spent and further
// samples are ignored.
func (s *Scheduler) OnScroll(sample ScrollSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateArmed || s.assign.Trigger != domain.TriggerScroll {
		return
	}
	if sample.Percent() >= float64(s.assign.ScrollPercent) {
		s.showLocked()
	}
}

// OnPointerLeave feeds a pointer-leave event's vertical coordinate. Leaving
// near the top edge counts as exit intent; fires at most once.
func (s *Scheduler) OnPointerLeave(y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateArmed || s.assign.Trigger != domain.TriggerExitIntent {
		return
	}
	if y <= exitIntentEdge {
		s.showLocked()
	}
}

func (s *Scheduler) showLocked() {
	s.state = StateVisible
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.onShow != nil {
		s.onShow()
	}
}

// Dismiss records an explicit close by the visitor. For show-once placements
// the marker is persisted so future page views stay Idle.
func (s *Scheduler) Dismiss(ctx context.Context) error {
	return s.finish(ctx)
}

// CompleteSubmit records a successful submission through the form; same
// terminal effect as a dismissal.
func (s *Scheduler) CompleteSubmit(ctx context.Context) error {
	return s.finish(ctx)
}

func (s *Scheduler) finish(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateVisible {
		s.mu.Unlock()
		return nil
	}
	s.state = StateDismissed
	showOnce := s.assign.ShowOnce
	s.mu.Unlock()

	if showOnce && s.store != nil {
		return s.store.Set(ctx, MarkerKey(s.slug))
	}
	return nil
}

// Stop releases every pending timer and listener. Called on page unmount;
// nothing may fire afterwards. No marker is written: navigating away is not
// a dismissal.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.state == StateArmed || s.state == StateVisible {
		s.state = StateDismissed
	}
}

// State exposes the current lifecycle state.
func (s *Scheduler) State() SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// MemoryMarkerStore is a process-local MarkerStore for tests and dev runs.
type MemoryMarkerStore struct {
	mu   sync.RWMutex
	seen map[string]bool
}

func NewMemoryMarkerStore() *MemoryMarkerStore {
	return &MemoryMarkerStore{seen: make(map[string]bool)}
}

func (m *MemoryMarkerStore) Get(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seen[key], nil
}

func (m *MemoryMarkerStore) Set(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[key] = true
	return nil
}
