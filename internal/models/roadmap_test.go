package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const producerPayload = `{
  "course_name": "Distributed Systems",
  "deadline": "2024-11-14T12:00:00",
  "deadline_note": "Friday noon - NO EXTENSIONS",
  "marking_criteria": [
    {"component": "Implementation", "percentage": 60, "description": "Core features", "priority": "essential"},
    {"component": "Marking Criteria", "percentage": null, "description": "Please check on Learn"}
  ],
  "milestones": [
    {"id": "m1", "title": "Part 1", "tasks": ["t1", "t2"]}
  ],
  "tasks": [
    {
      "task_id": "t1",
      "title": "Set up environment",
      "description": "Install Python 3.8",
      "estimated_time": "30 mins",
      "related_files": ["src/main.c"],
      "commands": ["make all"],
      "priority": 0,
      "status": "todo"
    },
    {
      "task_id": "t2",
      "title": "Read the spec",
      "description": "",
      "estimated_time": "about 45 minutes",
      "related_files": []
    }
  ],
  "session_id": "sess-1"
}`

func TestDecompositionResponse_DecodePartialPayload(t *testing.T) {
	var doc DecompositionResponse
	require.NoError(t, json.Unmarshal([]byte(producerPayload), &doc))

	require.Len(t, doc.Tasks, 2)
	assert.Equal(t, "t1", doc.Tasks[0].ID)
	assert.True(t, doc.Tasks[0].IsMustDo())
	assert.False(t, doc.Tasks[1].IsMustDo())
	assert.Equal(t, TaskStatus(""), doc.Tasks[1].Status, "status left for the load boundary to default")

	require.Len(t, doc.Milestones, 1)
	assert.Equal(t, []string{"t1", "t2"}, doc.Milestones[0].TaskIDs)

	require.Len(t, doc.MarkingCriteria, 2)
	require.NotNil(t, doc.MarkingCriteria[0].Percentage)
	assert.Equal(t, 60.0, *doc.MarkingCriteria[0].Percentage)
	assert.Nil(t, doc.MarkingCriteria[1].Percentage)

	assert.Nil(t, doc.SummaryOverview)
	assert.Empty(t, doc.Terminology)
	assert.Equal(t, "Distributed Systems", doc.Name())
	assert.True(t, doc.ChatEnabled())
}

func TestDecompositionResponse_NameAndChatGate(t *testing.T) {
	var doc *DecompositionResponse
	assert.Equal(t, DefaultCourseName, doc.Name())
	assert.False(t, doc.ChatEnabled())

	doc = &DecompositionResponse{SessionID: StringPtr("")}
	assert.Equal(t, DefaultCourseName, doc.Name())
	assert.False(t, doc.ChatEnabled())
}

func TestDecompositionResponse_CloneIsIndependent(t *testing.T) {
	doc := &DecompositionResponse{
		Tasks:      []Task{{ID: "t1", Status: StatusTodo, Priority: IntPtr(0)}},
		Milestones: []Milestone{{ID: "m1", TaskIDs: []string{"t1"}}},
	}

	clone := doc.Clone()
	clone.Tasks[0].Status = StatusDone
	*clone.Tasks[0].Priority = 3
	clone.Milestones[0].TaskIDs[0] = "tX"

	assert.Equal(t, StatusTodo, doc.Tasks[0].Status)
	assert.Equal(t, 0, *doc.Tasks[0].Priority)
	assert.Equal(t, "t1", doc.Milestones[0].TaskIDs[0])
}

func TestTaskStatus_IsValid(t *testing.T) {
	for _, s := range StatusCycle {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, TaskStatus("blocked").IsValid())
	assert.False(t, TaskStatus("").IsValid())
}
