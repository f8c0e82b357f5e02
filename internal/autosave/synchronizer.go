// Package autosave keeps an in-memory decomposition in sync with a remote
// store by debouncing mutations into full-document saves.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"coursework-roadmap/internal/models"
)

// DefaultWindow is the quiet period after the last mutation before a save fires
const DefaultWindow = 2 * time.Second

// State is the observable save state
type State string

const (
	StateClean  State = "clean"
	StateDirty  State = "dirty"
	StateSaving State = "saving"
	StateError  State = "error"
)

// Saver writes a full snapshot, replacing whatever the store holds
type Saver interface {
	Save(ctx context.Context, doc *models.DecompositionResponse) error
}

// SaverFunc adapts a function to Saver
type SaverFunc func(ctx context.Context, doc *models.DecompositionResponse) error

// Save calls f
func (f SaverFunc) Save(ctx context.Context, doc *models.DecompositionResponse) error {
	return f(ctx, doc)
}

// Timer is a pending debounce
type Timer interface {
	Stop() bool
}

// Clock schedules debounce callbacks
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Config configures a Synchronizer
type Config struct {
	// Window is the debounce window; zero means DefaultWindow
	Window time.Duration
	// Clock defaults to the wall clock
	Clock  Clock
	Logger *slog.Logger
}

// Synchronizer debounces mutations of one decomposition into saves.
//
// At most one save is in flight. A debounce that elapses while a save is in
// flight is deferred until that save settles, so writes reach the store in
// order and only the latest snapshot is sent.
type Synchronizer struct {
	saver    Saver
	snapshot func() *models.DecompositionResponse
	window   time.Duration
	clock    Clock
	logger   *slog.Logger

	mu        sync.Mutex
	state     State
	dirty     bool
	saving    bool
	pending   bool
	closed    bool
	timer     Timer
	timerGen  uint64
	lastErr   error
	idle      chan struct{}
	listeners []func(State)
}

// New creates a Synchronizer that saves snapshot() through saver
func New(saver Saver, snapshot func() *models.DecompositionResponse, cfg Config) *Synchronizer {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Clock == nil {
		cfg.Clock = realClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	idle := make(chan struct{})
	close(idle)
	return &Synchronizer{
		saver:    saver,
		snapshot: snapshot,
		window:   cfg.Window,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		state:    StateClean,
		idle:     idle,
	}
}

// State returns the current save state
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dirty reports whether there are changes not yet saved
func (s *Synchronizer) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// LastError returns the error of the last failed save, cleared on success
func (s *Synchronizer) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// OnStateChange registers fn to be called with every new state
func (s *Synchronizer) OnStateChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// MarkDirty records a mutation and restarts the debounce window
func (s *Synchronizer) MarkDirty() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.dirty = true
	var changed []func(State)
	if !s.saving {
		changed = s.setState(StateDirty)
	}
	s.restartTimer()
	s.mu.Unlock()

	s.logger.Debug("debounce restarted", "window", s.window)
	emit(changed, StateDirty)
}

// SaveNow saves immediately, skipping the debounce. It is a no-op when there
// is nothing to save or a save is already in flight.
func (s *Synchronizer) SaveNow(ctx context.Context) error {
	s.mu.Lock()
	if s.saving || !s.dirty {
		s.mu.Unlock()
		return nil
	}
	s.stopTimer()
	doc, changed := s.beginSave()
	s.mu.Unlock()
	emit(changed, StateSaving)

	err := s.save(ctx, doc)
	s.finishSave(err)
	return err
}

// Cancel drops a pending debounce. Unsaved changes stay dirty.
func (s *Synchronizer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimer()
	s.pending = false
}

// Close cancels any pending debounce and ignores later mutations. A save
// already in flight runs to completion.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopTimer()
	s.pending = false
}

// Wait blocks until no save is in flight and state listeners for the last
// settled save have run. It must not be called from a state listener.
func (s *Synchronizer) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		idle := s.idle
		s.mu.Unlock()
		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
		s.mu.Lock()
		settled := idle == s.idle
		s.mu.Unlock()
		if settled {
			return nil
		}
	}
}

// restartTimer must be called with s.mu held
func (s *Synchronizer) restartTimer() {
	s.stopTimer()
	s.timerGen++
	gen := s.timerGen
	s.timer = s.clock.AfterFunc(s.window, func() { s.fire(gen) })
}

// stopTimer must be called with s.mu held
func (s *Synchronizer) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
}

func (s *Synchronizer) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.timerGen || s.closed {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	if s.saving {
		s.pending = true
		s.mu.Unlock()
		return
	}
	doc, changed := s.beginSave()
	s.mu.Unlock()
	emit(changed, StateSaving)

	go s.runBackground(doc)
}

func (s *Synchronizer) runBackground(doc *models.DecompositionResponse) {
	// a started save is never cancelled
	err := s.save(context.Background(), doc)
	s.finishSave(err)
}

// beginSave must be called with s.mu held
func (s *Synchronizer) beginSave() (*models.DecompositionResponse, []func(State)) {
	doc := s.snapshot()
	s.dirty = false
	s.saving = true
	s.pending = false
	s.idle = make(chan struct{})
	return doc, s.setState(StateSaving)
}

func (s *Synchronizer) save(ctx context.Context, doc *models.DecompositionResponse) error {
	start := time.Now()
	s.logger.Info("saving roadmap", "tasks", len(doc.Tasks))
	err := s.saver.Save(ctx, doc)
	if err != nil {
		s.logger.Error("save failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return err
	}
	s.logger.Info("roadmap saved", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (s *Synchronizer) finishSave(err error) {
	s.mu.Lock()
	s.saving = false
	idle := s.idle

	var next State
	switch {
	case err != nil:
		// the snapshot never reached the store, so it must be resent
		s.dirty = true
		s.lastErr = err
		next = StateError
	case s.dirty:
		s.lastErr = nil
		next = StateDirty
	default:
		s.lastErr = nil
		next = StateClean
	}
	changed := s.setState(next)

	var doc *models.DecompositionResponse
	var savingChanged []func(State)
	resend := s.pending && s.dirty && !s.closed
	if resend {
		doc, savingChanged = s.beginSave()
	}
	s.mu.Unlock()

	emit(changed, next)
	if resend {
		emit(savingChanged, StateSaving)
		go s.runBackground(doc)
	}
	close(idle)
}

// setState must be called with s.mu held. It returns the listeners to notify
// once the lock is released, or nil if the state did not change.
func (s *Synchronizer) setState(next State) []func(State) {
	if s.state == next {
		return nil
	}
	s.state = next
	return append([]func(State){}, s.listeners...)
}

func emit(listeners []func(State), state State) {
	for _, fn := range listeners {
		fn(state)
	}
}
