package models

import "time"

// CourseworkSummary is a saved roadmap as shown in list views
type CourseworkSummary struct {
	ID             string    `json:"id"`
	CourseName     string    `json:"course_name"`
	Deadline       *string   `json:"deadline,omitempty"`
	DeadlineNote   *string   `json:"deadline_note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	TotalTasks     int       `json:"total_tasks"`
	CompletedTasks int       `json:"completed_tasks"`
}

// CourseworkDetail is a saved roadmap with its full decomposition
type CourseworkDetail struct {
	ID           string                `json:"id"`
	CourseName   string                `json:"course_name"`
	Deadline     *string               `json:"deadline,omitempty"`
	DeadlineNote *string               `json:"deadline_note,omitempty"`
	RoadmapData  DecompositionResponse `json:"roadmap_data"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// CourseworkCreate is the payload for saving a new roadmap
type CourseworkCreate struct {
	CourseName   string                `json:"course_name"`
	Deadline     *string               `json:"deadline,omitempty"`
	DeadlineNote *string               `json:"deadline_note,omitempty"`
	RoadmapData  DecompositionResponse `json:"roadmap_data"`
}

// CourseworkUpdate is the payload for replacing parts of a saved roadmap.
// Nil fields are left untouched by the server.
type CourseworkUpdate struct {
	CourseName  *string                `json:"course_name,omitempty"`
	RoadmapData *DecompositionResponse `json:"roadmap_data,omitempty"`
}

// NewCourseworkCreate builds a create payload from a decomposition
func NewCourseworkCreate(doc *DecompositionResponse) CourseworkCreate {
	return CourseworkCreate{
		CourseName:   doc.Name(),
		Deadline:     doc.Deadline,
		DeadlineNote: doc.DeadlineNote,
		RoadmapData:  *doc,
	}
}
