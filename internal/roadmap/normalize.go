package roadmap

import (
	"fmt"

	"coursework-roadmap/internal/models"
)

// Normalize validates a decomposition at the load boundary so later reads
// need no checks. Missing or unknown statuses become todo, tasks without an
// id and repeated ids are dropped, and nil task lists become empty. It
// returns a description of every change made.
//
// Saves replace the whole stored document, so dropped tasks are removed from
// the stored roadmap by the next save of a session that loaded it. Callers
// should show the returned issues to the user before editing.
func Normalize(doc *models.DecompositionResponse) []string {
	var issues []string
	if doc == nil {
		return issues
	}

	seen := make(map[string]struct{}, len(doc.Tasks))
	tasks := make([]models.Task, 0, len(doc.Tasks))
	for i, task := range doc.Tasks {
		if task.ID == "" {
			issues = append(issues, fmt.Sprintf("task #%d %q has no id and was dropped", i+1, task.Title))
			continue
		}
		if _, dup := seen[task.ID]; dup {
			issues = append(issues, fmt.Sprintf("duplicate task id %q at #%d was dropped", task.ID, i+1))
			continue
		}
		seen[task.ID] = struct{}{}

		if task.Status == "" {
			task.Status = models.StatusTodo
		} else if !task.Status.IsValid() {
			issues = append(issues, fmt.Sprintf("task %q had unknown status %q, reset to todo", task.ID, task.Status))
			task.Status = models.StatusTodo
		}
		if task.RelatedFiles == nil {
			task.RelatedFiles = []string{}
		}
		tasks = append(tasks, task)
	}
	doc.Tasks = tasks

	for _, m := range doc.Milestones {
		for _, id := range m.TaskIDs {
			if _, ok := seen[id]; !ok {
				issues = append(issues, fmt.Sprintf("milestone %q references unknown task %q", m.ID, id))
			}
		}
	}
	if n := len(UngroupedTasks(doc.Tasks, doc.Milestones)); n > 0 {
		issues = append(issues, fmt.Sprintf("%d task(s) belong to no milestone and are hidden from the milestone view", n))
	}
	return issues
}
