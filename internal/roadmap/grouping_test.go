package roadmap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursework-roadmap/internal/models"
)

func makeTasks(n int) []models.Task {
	tasks := make([]models.Task, n)
	for i := range tasks {
		tasks[i] = models.Task{ID: fmt.Sprintf("t%d", i+1), Status: models.StatusTodo}
	}
	return tasks
}

func TestGroupTasks_FallbackChunking(t *testing.T) {
	for n := 0; n <= 13; n++ {
		t.Run(fmt.Sprintf("%d tasks", n), func(t *testing.T) {
			tasks := makeTasks(n)
			groups := GroupTasks(tasks, nil)

			require.NotNil(t, groups)
			assert.Len(t, groups, (n+ChunkSize-1)/ChunkSize)

			var flattened []models.Task
			for i, g := range groups {
				assert.LessOrEqual(t, len(g.Tasks), ChunkSize)
				assert.NotEmpty(t, g.Tasks)
				assert.True(t, g.Synthetic)
				assert.Equal(t, fmt.Sprintf("Phase %d", i+1), g.Milestone.Title)
				flattened = append(flattened, g.Tasks...)
			}
			if n == 0 {
				assert.Empty(t, flattened)
			} else {
				assert.Equal(t, tasks, flattened, "concatenated phases reconstruct the task order")
			}
		})
	}
}

func TestGroupTasks_FallbackIsReproducible(t *testing.T) {
	tasks := makeTasks(9)
	assert.Equal(t, GroupTasks(tasks, nil), GroupTasks(tasks, []models.Milestone{}))
}

func TestGroupTasks_SyntheticIDsAvoidProducerIDs(t *testing.T) {
	tasks := []models.Task{
		{ID: "auto-phase-0"},
		{ID: "auto-phase-0~"},
		{ID: "t3"},
		{ID: "t4"},
		{ID: "t5"},
	}
	groups := GroupTasks(tasks, nil)

	require.Len(t, groups, 2)
	assert.Equal(t, "auto-phase-0~~", groups[0].Milestone.ID)
	assert.Equal(t, "auto-phase-4", groups[1].Milestone.ID)
	assert.Equal(t, []string{"auto-phase-0", "auto-phase-0~", "t3", "t4"}, groups[0].Milestone.TaskIDs)
}

func TestGroupTasks_TwoTasksNoMilestones(t *testing.T) {
	tasks := []models.Task{{ID: "t1", Status: models.StatusTodo}, {ID: "t2", Status: models.StatusTodo}}
	groups := GroupTasks(tasks, nil)

	require.Len(t, groups, 1)
	assert.Equal(t, "Phase 1", groups[0].Milestone.Title)
	assert.Equal(t, tasks, groups[0].Tasks)
}

func TestGroupTasks_ExplicitMilestones(t *testing.T) {
	tasks := []models.Task{{ID: "t1"}, {ID: "t2"}}

	t.Run("unmapped tasks are not shown", func(t *testing.T) {
		groups := GroupTasks(tasks, []models.Milestone{{ID: "m1", TaskIDs: []string{"t2"}}})

		require.Len(t, groups, 1)
		require.Len(t, groups[0].Tasks, 1)
		assert.Equal(t, "t2", groups[0].Tasks[0].ID)
		assert.False(t, groups[0].Synthetic)
		assert.Equal(t, []models.Task{{ID: "t1"}}, UngroupedTasks(tasks, []models.Milestone{{ID: "m1", TaskIDs: []string{"t2"}}}))
	})

	t.Run("global task order wins over mapping order", func(t *testing.T) {
		groups := GroupTasks(tasks, []models.Milestone{{ID: "m1", TaskIDs: []string{"t2", "t1"}}})
		require.Len(t, groups, 1)
		assert.Equal(t, []string{"t1", "t2"}, []string{groups[0].Tasks[0].ID, groups[0].Tasks[1].ID})
	})

	t.Run("a task mapped twice shows in both", func(t *testing.T) {
		groups := GroupTasks(tasks, []models.Milestone{
			{ID: "m1", TaskIDs: []string{"t1"}},
			{ID: "m2", TaskIDs: []string{"t1", "t2"}},
		})
		require.Len(t, groups, 2)
		assert.Equal(t, "t1", groups[0].Tasks[0].ID)
		assert.Len(t, groups[1].Tasks, 2)
	})

	t.Run("milestone order is kept and empty milestones stay", func(t *testing.T) {
		groups := GroupTasks(tasks, []models.Milestone{
			{ID: "m2", TaskIDs: []string{"t2"}},
			{ID: "m1", TaskIDs: []string{"missing"}},
		})
		require.Len(t, groups, 2)
		assert.Equal(t, "m2", groups[0].Milestone.ID)
		assert.Empty(t, groups[1].Tasks)
	})

	t.Run("no tasks", func(t *testing.T) {
		groups := GroupTasks(nil, []models.Milestone{{ID: "m1", TaskIDs: []string{"t1"}}})
		require.Len(t, groups, 1)
		assert.Empty(t, groups[0].Tasks)
	})
}

func TestUngroupedTasks_NoMilestones(t *testing.T) {
	assert.Empty(t, UngroupedTasks(makeTasks(3), nil))
}
