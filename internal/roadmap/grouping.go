// Package roadmap organizes a decomposition into milestones and owns task
// status transitions and the aggregates derived from them.
package roadmap

import (
	"fmt"

	"coursework-roadmap/internal/models"
)

// ChunkSize is the number of tasks per synthetic phase when the producer
// supplied no milestones.
const ChunkSize = 4

// Group is a milestone together with the tasks shown under it
type Group struct {
	Milestone models.Milestone
	Tasks     []models.Task
	// Synthetic is set for phases derived by chunking
	Synthetic bool
}

// GroupTasks derives the ordered milestone view of tasks.
//
// With milestones, each group holds the tasks whose id the milestone lists,
// in global task order. Tasks listed by no milestone do not appear. Without
// milestones, tasks are split into consecutive phases of ChunkSize.
func GroupTasks(tasks []models.Task, milestones []models.Milestone) []Group {
	if len(milestones) > 0 {
		return groupByMilestone(tasks, milestones)
	}
	return chunkIntoPhases(tasks)
}

func groupByMilestone(tasks []models.Task, milestones []models.Milestone) []Group {
	groups := make([]Group, 0, len(milestones))
	for _, m := range milestones {
		members := make(map[string]struct{}, len(m.TaskIDs))
		for _, id := range m.TaskIDs {
			members[id] = struct{}{}
		}

		group := Group{Milestone: m, Tasks: []models.Task{}}
		for _, task := range tasks {
			if _, ok := members[task.ID]; ok {
				group.Tasks = append(group.Tasks, task)
			}
		}
		groups = append(groups, group)
	}
	return groups
}

func chunkIntoPhases(tasks []models.Task) []Group {
	groups := make([]Group, 0, (len(tasks)+ChunkSize-1)/ChunkSize)
	if len(tasks) == 0 {
		return groups
	}

	taken := make(map[string]struct{}, len(tasks))
	for _, task := range tasks {
		taken[task.ID] = struct{}{}
	}

	for start := 0; start < len(tasks); start += ChunkSize {
		end := start + ChunkSize
		if end > len(tasks) {
			end = len(tasks)
		}

		chunk := make([]models.Task, end-start)
		copy(chunk, tasks[start:end])

		ids := make([]string, len(chunk))
		for i, task := range chunk {
			ids[i] = task.ID
		}

		groups = append(groups, Group{
			Milestone: models.Milestone{
				ID:      phaseID(start, taken),
				Title:   fmt.Sprintf("Phase %d", start/ChunkSize+1),
				TaskIDs: ids,
			},
			Tasks:     chunk,
			Synthetic: true,
		})
	}
	return groups
}

// phaseID derives a synthetic milestone id from the chunk's first index that
// collides with no producer-supplied id.
func phaseID(start int, taken map[string]struct{}) string {
	id := fmt.Sprintf("auto-phase-%d", start)
	for {
		if _, clash := taken[id]; !clash {
			return id
		}
		id += "~"
	}
}

// UngroupedTasks returns the tasks that an explicit milestone mapping leaves
// out of the grouped view. It is empty when there are no milestones.
func UngroupedTasks(tasks []models.Task, milestones []models.Milestone) []models.Task {
	out := []models.Task{}
	if len(milestones) == 0 {
		return out
	}

	mapped := make(map[string]struct{})
	for _, m := range milestones {
		for _, id := range m.TaskIDs {
			mapped[id] = struct{}{}
		}
	}
	for _, task := range tasks {
		if _, ok := mapped[task.ID]; !ok {
			out = append(out, task)
		}
	}
	return out
}
