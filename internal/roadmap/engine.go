package roadmap

import (
	"log/slog"
	"sync"

	"coursework-roadmap/internal/apperrors"
	"coursework-roadmap/internal/models"
)

// Change describes one effective status mutation
type Change struct {
	TaskID string
	From   models.TaskStatus
	To     models.TaskStatus
}

// Engine owns the in-memory decomposition of one viewing session. It is the
// only writer of task statuses; every aggregate is recomputed on read.
type Engine struct {
	mu        sync.RWMutex
	doc       *models.DecompositionResponse
	index     map[string]int
	listeners []func(Change)
	issues    []string
	logger    *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used to report load-boundary issues
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine normalizes doc and takes ownership of it
func NewEngine(doc *models.DecompositionResponse, opts ...Option) *Engine {
	e := &Engine{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(e)
	}
	e.load(doc)
	return e
}

func (e *Engine) load(doc *models.DecompositionResponse) {
	if doc == nil {
		doc = &models.DecompositionResponse{}
	}
	e.issues = Normalize(doc)
	for _, issue := range e.issues {
		e.logger.Warn("roadmap normalized", "issue", issue)
	}

	e.doc = doc
	e.index = make(map[string]int, len(doc.Tasks))
	for i, task := range doc.Tasks {
		e.index[task.ID] = i
	}
}

// Issues returns what Normalize changed when the engine was created
func (e *Engine) Issues() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.issues...)
}

// OnChange registers fn to be called after every effective status change.
// Listeners run on the mutating goroutine, after the engine lock is released.
func (e *Engine) OnChange(fn func(Change)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Advance moves a task to the next status of the cycle. Unknown ids are a
// silent no-op since they may refer to tasks dropped by a payload replacement.
func (e *Engine) Advance(taskID string) (models.TaskStatus, bool) {
	e.mu.Lock()
	i, ok := e.index[taskID]
	if !ok {
		e.mu.Unlock()
		return "", false
	}
	from := e.doc.Tasks[i].Status
	to := NextStatus(from)
	e.doc.Tasks[i].Status = to
	listeners := e.listeners
	e.mu.Unlock()

	notify(listeners, Change{TaskID: taskID, From: from, To: to})
	return to, true
}

// SetStatus assigns status explicitly. It reports whether a task changed;
// unknown ids and unchanged statuses report false without error.
func (e *Engine) SetStatus(taskID string, status models.TaskStatus) (bool, error) {
	if !status.IsValid() {
		return false, apperrors.Validation("invalid status %q: must be one of todo, in_progress, done", status)
	}

	e.mu.Lock()
	i, ok := e.index[taskID]
	if !ok || e.doc.Tasks[i].Status == status {
		e.mu.Unlock()
		return false, nil
	}
	from := e.doc.Tasks[i].Status
	e.doc.Tasks[i].Status = status
	listeners := e.listeners
	e.mu.Unlock()

	notify(listeners, Change{TaskID: taskID, From: from, To: status})
	return true, nil
}

// Replace swaps in a new decomposition, e.g. after a reload
func (e *Engine) Replace(doc *models.DecompositionResponse) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.load(doc)
}

// Task returns a copy of the task with the given id
func (e *Engine) Task(taskID string) (models.Task, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i, ok := e.index[taskID]
	if !ok {
		return models.Task{}, false
	}
	return e.doc.Tasks[i], true
}

// Stats aggregates the whole task list
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Summarize(e.doc.Tasks)
}

// Groups returns the milestone view of the current tasks
func (e *Engine) Groups() []Group {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return GroupTasks(e.doc.Tasks, e.doc.Milestones)
}

// GroupStats returns the milestone view with per-milestone aggregates
func (e *Engine) GroupStats() []GroupStats {
	return SummarizeGroups(e.Groups())
}

// Snapshot returns a deep copy of the current decomposition
func (e *Engine) Snapshot() *models.DecompositionResponse {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.Clone()
}

func notify(listeners []func(Change), c Change) {
	for _, fn := range listeners {
		fn(c)
	}
}
