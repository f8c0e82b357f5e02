package roadmap

import "coursework-roadmap/internal/models"

// NextStatus returns the status following s in the todo -> in_progress -> done
// -> todo cycle. Unknown statuses are treated as todo.
func NextStatus(s models.TaskStatus) models.TaskStatus {
	idx := 0
	for i, candidate := range models.StatusCycle {
		if candidate == s {
			idx = i
			break
		}
	}
	return models.StatusCycle[(idx+1)%len(models.StatusCycle)]
}
