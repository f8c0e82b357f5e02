package roadmap

import (
	"fmt"
	"regexp"
	"strconv"

	"coursework-roadmap/internal/models"
)

var firstInteger = regexp.MustCompile(`\d+`)

// ParseMinutes extracts the first integer of a free-text duration. It is a
// best-effort approximation: units are ignored and strings without a number
// count as 0.
func ParseMinutes(estimatedTime string) int {
	match := firstInteger.FindString(estimatedTime)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}

// Stats are the aggregates of a task collection
type Stats struct {
	Total            int
	Completed        int
	InProgress       int
	Todo             int
	Ratio            float64
	EstimatedMinutes int
}

// GroupStats are the aggregates of one milestone group
type GroupStats struct {
	Group
	Stats
}

// Summarize computes all aggregates of tasks. Each id counts once; repeated
// ids after the first are ignored.
func Summarize(tasks []models.Task) Stats {
	var stats Stats
	seen := make(map[string]struct{}, len(tasks))
	for _, task := range tasks {
		if _, dup := seen[task.ID]; dup {
			continue
		}
		seen[task.ID] = struct{}{}

		stats.Total++
		stats.EstimatedMinutes += ParseMinutes(task.EstimatedTime)
		switch task.Status {
		case models.StatusDone:
			stats.Completed++
		case models.StatusInProgress:
			stats.InProgress++
		default:
			stats.Todo++
		}
	}
	if stats.Total > 0 {
		stats.Ratio = float64(stats.Completed) / float64(stats.Total)
	}
	return stats
}

// CompletedCount is the number of distinct tasks whose status is done
func CompletedCount(tasks []models.Task) int {
	return Summarize(tasks).Completed
}

// TotalTasks is the number of distinct task ids
func TotalTasks(tasks []models.Task) int {
	return Summarize(tasks).Total
}

// ProgressRatio is CompletedCount / TotalTasks, or 0 for no tasks
func ProgressRatio(tasks []models.Task) float64 {
	return Summarize(tasks).Ratio
}

// TotalEstimatedMinutes sums ParseMinutes over the distinct tasks
func TotalEstimatedMinutes(tasks []models.Task) int {
	return Summarize(tasks).EstimatedMinutes
}

// SummarizeGroups computes the aggregates of every group
func SummarizeGroups(groups []Group) []GroupStats {
	out := make([]GroupStats, len(groups))
	for i, g := range groups {
		out[i] = GroupStats{Group: g, Stats: Summarize(g.Tasks)}
	}
	return out
}

// FormatHours renders minutes as hours for display only
func FormatHours(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
