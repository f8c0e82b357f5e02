package roadmap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"coursework-roadmap/internal/models"
)

func TestNormalize(t *testing.T) {
	doc := &models.DecompositionResponse{
		Tasks: []models.Task{
			{ID: "t1"},
			{ID: "t2", Status: "blocked"},
			{ID: "", Title: "orphan"},
			{ID: "t1", Status: models.StatusDone},
			{ID: "t3", Status: models.StatusDone, RelatedFiles: []string{"a.c"}},
		},
		Milestones: []models.Milestone{{ID: "m1", TaskIDs: []string{"t1", "t9"}}},
	}

	issues := Normalize(doc)

	assert.Len(t, doc.Tasks, 3)
	assert.Equal(t, models.StatusTodo, doc.Tasks[0].Status)
	assert.Equal(t, models.StatusTodo, doc.Tasks[1].Status)
	assert.Equal(t, models.StatusDone, doc.Tasks[2].Status)
	assert.NotNil(t, doc.Tasks[0].RelatedFiles)
	assert.Equal(t, []string{"a.c"}, doc.Tasks[2].RelatedFiles)

	assert.Len(t, issues, 5)
	assert.Contains(t, issues[0], "unknown status")
	assert.Contains(t, issues[1], "no id")
	assert.Contains(t, issues[2], "duplicate task id")
	assert.Contains(t, issues[3], `unknown task "t9"`)
	assert.Contains(t, issues[4], "2 task(s) belong to no milestone")
}

func TestNormalize_CleanDocumentHasNoIssues(t *testing.T) {
	doc := &models.DecompositionResponse{Tasks: []models.Task{{ID: "t1", Status: models.StatusInProgress}}}
	assert.Empty(t, Normalize(doc))
	assert.Empty(t, Normalize(nil))
}
