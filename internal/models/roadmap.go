package models

import "encoding/json"

// TaskStatus is the progress state of a single task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// StatusCycle is the fixed order a task moves through when advanced
var StatusCycle = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

// IsValid reports whether s is one of the known statuses
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task represents one atomic unit of work extracted from a coursework document
type Task struct {
	ID            string     `json:"task_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	EstimatedTime string     `json:"estimated_time"`
	RelatedFiles  []string   `json:"related_files"`
	PDFSnippet    *string    `json:"pdf_snippet,omitempty"`
	Commands      []string   `json:"commands,omitempty"`
	Prerequisites []string   `json:"prerequisites,omitempty"`
	Status        TaskStatus `json:"status"`
	Priority      *int       `json:"priority,omitempty"`
}

// IsMustDo reports whether the task carries the highest priority (0)
func (t Task) IsMustDo() bool {
	return t.Priority != nil && *t.Priority == 0
}

// Milestone represents a named grouping of tasks
type Milestone struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Summary     *string  `json:"summary,omitempty"`
	TaskIDs     []string `json:"tasks"`
}

// GetStartedStep is one onboarding step with the commands it needs
type GetStartedStep struct {
	StepNumber     int      `json:"step_number"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Commands       []string `json:"commands,omitempty"`
	ExpectedOutput *string  `json:"expected_output,omitempty"`
}

// DirectoryEntry describes one file or directory of the expected project layout
type DirectoryEntry struct {
	Path        string `json:"path"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Term is a terminology definition
type Term struct {
	Term       string  `json:"term"`
	Definition string  `json:"definition"`
	Example    *string `json:"example,omitempty"`
}

// MarkingCriterion is one component of the grading breakdown
type MarkingCriterion struct {
	Component   string   `json:"component"`
	Percentage  *float64 `json:"percentage,omitempty"`
	Description string   `json:"description"`
	Priority    string   `json:"priority,omitempty"`
}

// PrioritizationTier groups tasks by return on effort
type PrioritizationTier struct {
	Tier         string   `json:"tier"`
	Description  string   `json:"description"`
	TimeEstimate string   `json:"time_estimate,omitempty"`
	TaskIDs      []string `json:"task_ids"`
}

// ScheduleWeek is one week of the recommended work plan
type ScheduleWeek struct {
	Week          int      `json:"week"`
	Title         string   `json:"title"`
	TaskIDs       []string `json:"task_ids"`
	HoursEstimate *float64 `json:"hours_estimate,omitempty"`
}

// DecompositionResponse is the root aggregate produced by the decomposition service.
// Every field other than Tasks is independently optional.
type DecompositionResponse struct {
	Tasks      []Task      `json:"tasks"`
	Milestones []Milestone `json:"milestones,omitempty"`

	SetupInstructions   []string             `json:"setup_instructions,omitempty"`
	CourseName          *string              `json:"course_name,omitempty"`
	TotalEstimatedTime  *string              `json:"total_estimated_time,omitempty"`
	SummaryOverview     *string              `json:"summary_overview,omitempty"`
	KeyDeliverables     []string             `json:"key_deliverables,omitempty"`
	WhatYouNeedToDo     *string              `json:"what_you_need_to_do,omitempty"`
	Deadline            *string              `json:"deadline,omitempty"`
	DeadlineNote        *string              `json:"deadline_note,omitempty"`
	GetStartedSteps     []GetStartedStep     `json:"get_started_steps,omitempty"`
	DirectoryStructure  []DirectoryEntry     `json:"directory_structure,omitempty"`
	Terminology         []Term               `json:"terminology,omitempty"`
	MarkingCriteria     []MarkingCriterion   `json:"marking_criteria,omitempty"`
	PrioritizationTiers []PrioritizationTier `json:"prioritization_tiers,omitempty"`
	RecommendedSchedule []ScheduleWeek       `json:"recommended_schedule,omitempty"`
	Constraints         []string             `json:"constraints,omitempty"`
	DebuggingTips       []string             `json:"debugging_tips,omitempty"`
	ExtractionWarnings  []string             `json:"extraction_warnings,omitempty"`

	SessionID  *string `json:"session_id,omitempty"`
	DocumentID *string `json:"document_id,omitempty"`
}

// DefaultCourseName is used when the producer could not detect a course name
const DefaultCourseName = "Untitled Coursework"

// Name returns the course name, falling back to DefaultCourseName
func (d *DecompositionResponse) Name() string {
	if d == nil || d.CourseName == nil || *d.CourseName == "" {
		return DefaultCourseName
	}
	return *d.CourseName
}

// ChatEnabled reports whether conversational queries can be made for this roadmap
func (d *DecompositionResponse) ChatEnabled() bool {
	return d != nil && d.SessionID != nil && *d.SessionID != ""
}

// Clone returns a deep copy of the response
func (d *DecompositionResponse) Clone() *DecompositionResponse {
	if d == nil {
		return nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		// every field is plain data, marshal cannot fail
		panic(err)
	}
	var out DecompositionResponse
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return &out
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to i
func IntPtr(i int) *int {
	return &i
}
