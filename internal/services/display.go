package services

import (
	"fmt"
	"strings"

	"coursework-roadmap/internal/helpers"
	"coursework-roadmap/internal/models"
	"coursework-roadmap/internal/roadmap"
)

const progressBarWidth = 30

// DisplayRoadmap prints the milestone view of an open roadmap with progress
func DisplayRoadmap(name string, engine *roadmap.Engine) {
	doc := engine.Snapshot()
	stats := engine.Stats()

	helpers.PrintTitle("Roadmap: %s", name)
	if doc.Deadline != nil {
		deadline := *doc.Deadline
		if doc.DeadlineNote != nil {
			deadline += " (" + *doc.DeadlineNote + ")"
		}
		helpers.PrintInfo("Deadline: %s", deadline)
	}
	displayStats("Overall", stats)
	helpers.PrintSeparator()

	for _, group := range engine.GroupStats() {
		title := group.Milestone.Title
		if title == "" {
			title = group.Milestone.ID
		}
		displayStats(title, group.Stats)
		if group.Milestone.Summary != nil {
			helpers.PrintLine("  %s", *group.Milestone.Summary)
		}
		for _, task := range group.Tasks {
			displayTask(task)
		}
		helpers.PrintSeparator()
	}

	if ungrouped := roadmap.UngroupedTasks(doc.Tasks, doc.Milestones); len(ungrouped) > 0 {
		helpers.PrintWarning("%d task(s) belong to no milestone and are not shown above:", len(ungrouped))
		for _, task := range ungrouped {
			displayTask(task)
		}
	}
}

func displayStats(label string, stats roadmap.Stats) {
	helpers.PrintInfo("%s %s %d/%d done, %d in progress | est. %s",
		label, helpers.ProgressBar(stats.Ratio, progressBarWidth),
		stats.Completed, stats.Total, stats.InProgress, roadmap.FormatHours(stats.EstimatedMinutes))
}

func displayTask(task models.Task) {
	helpers.PrintLine("  %s %s  %s%s", helpers.StatusBadge(task.Status), task.ID, task.Title, helpers.MustDoMarker(task))
	if task.EstimatedTime != "" {
		helpers.PrintLine("      Estimate: %s", task.EstimatedTime)
	}
	if len(task.RelatedFiles) > 0 {
		helpers.PrintLine("      Files: %s", strings.Join(task.RelatedFiles, ", "))
	}
}

// DisplayTaskDetail prints everything known about one task
func DisplayTaskDetail(task models.Task) {
	helpers.PrintTitle("%s: %s", task.ID, task.Title)
	helpers.PrintLine("Status: %s%s", helpers.StatusBadge(task.Status), helpers.MustDoMarker(task))
	if task.Description != "" {
		helpers.PrintLine("%s", task.Description)
	}
	if task.EstimatedTime != "" {
		helpers.PrintLine("Estimate: %s", task.EstimatedTime)
	}
	if len(task.Prerequisites) > 0 {
		helpers.PrintLine("Prerequisites: %s", strings.Join(task.Prerequisites, ", "))
	}
	if len(task.RelatedFiles) > 0 {
		helpers.PrintLine("Read, in order:")
		for i, f := range task.RelatedFiles {
			helpers.PrintLine("  %d. %s", i+1, f)
		}
	}
	if len(task.Commands) > 0 {
		helpers.PrintLine("Commands:")
		for _, c := range task.Commands {
			helpers.PrintLine("  $ %s", c)
		}
	}
	if task.PDFSnippet != nil {
		helpers.PrintLine("From the document: %q", *task.PDFSnippet)
	}
}

// DisplayGuide prints the guidance blocks the producer filled in
func DisplayGuide(doc *models.DecompositionResponse) {
	if doc.SummaryOverview != nil {
		helpers.PrintTitle("Overview")
		helpers.PrintLine("%s", *doc.SummaryOverview)
	}
	if doc.WhatYouNeedToDo != nil {
		helpers.PrintTitle("What you need to do")
		helpers.PrintLine("%s", *doc.WhatYouNeedToDo)
	}
	printList("Key deliverables", doc.KeyDeliverables)

	if len(doc.GetStartedSteps) > 0 {
		helpers.PrintTitle("Get started")
		for _, step := range doc.GetStartedSteps {
			helpers.PrintLine("%d. %s - %s", step.StepNumber, step.Title, step.Description)
			for _, c := range step.Commands {
				helpers.PrintLine("     $ %s", c)
			}
		}
	}
	printList("Setup", doc.SetupInstructions)

	if len(doc.MarkingCriteria) > 0 {
		helpers.PrintTitle("Marking criteria")
		for _, mc := range doc.MarkingCriteria {
			weight := "?"
			if mc.Percentage != nil {
				weight = fmt.Sprintf("%g%%", *mc.Percentage)
			}
			helpers.PrintLine("  %-5s %s: %s", weight, mc.Component, mc.Description)
		}
	}

	if len(doc.PrioritizationTiers) > 0 {
		helpers.PrintTitle("Prioritization")
		for _, tier := range doc.PrioritizationTiers {
			helpers.PrintLine("  %s (%s): %s", tier.Tier, tier.TimeEstimate, strings.Join(tier.TaskIDs, ", "))
		}
	}

	if len(doc.RecommendedSchedule) > 0 {
		helpers.PrintTitle("Recommended schedule")
		for _, week := range doc.RecommendedSchedule {
			helpers.PrintLine("  Week %d: %s [%s]", week.Week, week.Title, strings.Join(week.TaskIDs, ", "))
		}
	}

	if len(doc.Terminology) > 0 {
		helpers.PrintTitle("Terminology")
		for _, term := range doc.Terminology {
			helpers.PrintLine("  %s: %s", term.Term, term.Definition)
		}
	}
	printList("Constraints", doc.Constraints)
	printList("Debugging tips", doc.DebuggingTips)

	for _, warning := range doc.ExtractionWarnings {
		helpers.PrintWarning("%s", warning)
	}
}

func printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	helpers.PrintTitle("%s", title)
	for _, item := range items {
		helpers.PrintLine("  • %s", item)
	}
}

// DisplaySummaries prints a list of saved roadmaps
func DisplaySummaries(list []models.CourseworkSummary) {
	if len(list) == 0 {
		helpers.PrintInfo("No saved roadmaps yet")
		return
	}
	for _, cw := range list {
		ratio := 0.0
		if cw.TotalTasks > 0 {
			ratio = float64(cw.CompletedTasks) / float64(cw.TotalTasks)
		}
		deadline := ""
		if cw.Deadline != nil {
			deadline = " due " + *cw.Deadline
		}
		helpers.PrintLine("%s  %s%s", cw.ID, cw.CourseName, deadline)
		helpers.PrintLine("    %s %d/%d tasks", helpers.ProgressBar(ratio, 20), cw.CompletedTasks, cw.TotalTasks)
	}
}

// DisplayChatMessage prints one conversation entry. imageURL, when set,
// turns cited image paths into addresses the user can open.
func DisplayChatMessage(msg models.ChatMessage, imageURL func(path string) string) {
	switch msg.Role {
	case models.RoleUser:
		helpers.PrintLine("> %s", msg.Text)
	case models.RoleError:
		helpers.PrintError("%s", msg.Text)
	default:
		helpers.PrintLine("%s", msg.Text)
		for _, src := range msg.Sources {
			helpers.PrintLine("    [%s #%d] %s", src.SourceType, src.ChunkIndex, src.Preview)
		}
		for _, img := range msg.Images {
			if imageURL != nil {
				img = imageURL(img)
			}
			helpers.PrintLine("    image: %s", img)
		}
	}
}
