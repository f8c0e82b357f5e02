package main

import (
	"context"
	"fmt"

	"coursework-roadmap/internal/apperrors"
	"coursework-roadmap/internal/helpers"
	"coursework-roadmap/internal/models"
	"coursework-roadmap/internal/roadmap"
	"coursework-roadmap/internal/services"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved roadmaps",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			list, err := a.roadmaps().List(ctx)
			if err != nil {
				return err
			}
			services.DisplaySummaries(list)
			return nil
		}),
	}
}

func newShowCmd() *cobra.Command {
	var guide bool
	cmd := &cobra.Command{
		Use:   "show <roadmap-id>",
		Short: "Show a roadmap grouped by milestone",
		Args:  cobra.ExactArgs(1),
		RunE: withRoadmap(func(ctx context.Context, a *app, edit *services.EditSession, args []string) error {
			services.DisplayRoadmap(edit.CourseName, edit.Engine)
			if guide {
				services.DisplayGuide(edit.Document())
			}
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&guide, "guide", "g", false, "Also show overview, deliverables and marking criteria")
	return cmd
}

func newTaskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "task <roadmap-id> <task-id>",
		Short: "Show the details of one task",
		Args:  cobra.ExactArgs(2),
		RunE: withRoadmap(func(ctx context.Context, a *app, edit *services.EditSession, args []string) error {
			task, ok := edit.Engine.Task(args[0])
			if !ok {
				return apperrors.NotFound("task %s not found", args[0])
			}
			services.DisplayTaskDetail(task)
			return nil
		}),
	}
}

func newAdvanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advance <roadmap-id> <task-id>...",
		Short: "Move tasks to their next status (todo, in progress, done, todo)",
		Args:  cobra.MinimumNArgs(2),
		RunE: withRoadmap(func(ctx context.Context, a *app, edit *services.EditSession, args []string) error {
			for _, id := range args {
				next, ok := edit.Engine.Advance(id)
				if !ok {
					helpers.PrintWarning("Task %s not found, skipped", id)
					continue
				}
				helpers.PrintSuccess("%s is now %s", id, helpers.StatusBadge(next))
			}
			printProgress(edit.Engine.Stats())
			return nil
		}),
	}
}

func newSetStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <roadmap-id> <task-id> <todo|in_progress|done>",
		Short: "Set the status of a task",
		Args:  cobra.ExactArgs(3),
		RunE: withRoadmap(func(ctx context.Context, a *app, edit *services.EditSession, args []string) error {
			changed, err := edit.Engine.SetStatus(args[0], models.TaskStatus(args[1]))
			if err != nil {
				return err
			}
			if !changed {
				if _, ok := edit.Engine.Task(args[0]); !ok {
					return apperrors.NotFound("task %s not found", args[0])
				}
				helpers.PrintInfo("%s is already %s", args[0], args[1])
				return nil
			}
			helpers.PrintSuccess("%s is now %s", args[0], helpers.StatusBadge(models.TaskStatus(args[1])))
			printProgress(edit.Engine.Stats())
			return nil
		}),
	}
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <roadmap-id> <course-name>",
		Short: "Rename a saved roadmap",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if err := a.roadmaps().Rename(ctx, args[0], args[1]); err != nil {
				return err
			}
			helpers.PrintSuccess("Renamed %s to %q", args[0], args[1])
			return nil
		}),
	}
}

func newDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <roadmap-id>",
		Short: "Delete a saved roadmap",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if !yes && !confirm(fmt.Sprintf("Delete roadmap %s?", args[0])) {
				helpers.PrintInfo("Operation cancelled by user")
				return nil
			}
			if err := a.roadmaps().Delete(ctx, args[0]); err != nil {
				return err
			}
			helpers.PrintSuccess("Deleted %s", args[0])
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newDecomposeCmd() *cobra.Command {
	var courseURL, output string
	var noSave bool
	cmd := &cobra.Command{
		Use:   "decompose <specification.pdf>",
		Short: "Decompose a coursework specification into a roadmap",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			helpers.PrintTitle("Decomposing Coursework Specification")
			doc, err := a.decomposer().DecomposeFile(ctx, args[0], courseURL)
			if err != nil {
				return err
			}

			services.DisplayRoadmap(doc.Name(), roadmap.NewEngine(doc.Clone()))
			services.DisplayGuide(doc)

			if output != "" {
				if err := services.ExportFile(output, doc); err != nil {
					return err
				}
				helpers.PrintSuccess("Roadmap written to %s", output)
			}
			if noSave {
				return nil
			}
			return saveNew(ctx, a, doc)
		}),
	}
	cmd.Flags().StringVar(&courseURL, "course-url", "", "Course page to fetch extra context from")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Also write the roadmap as JSON to this file")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not save the roadmap")
	return cmd
}

func newImportCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <roadmap.json>",
		Short: "Save a roadmap from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			doc, issues, err := services.ImportFile(args[0])
			if err != nil {
				return err
			}
			for _, issue := range issues {
				helpers.PrintWarning("%s", issue)
			}
			services.DisplayRoadmap(doc.Name(), roadmap.NewEngine(doc.Clone()))

			if dryRun {
				helpers.PrintInfo("Dry run mode - nothing will be saved")
				return nil
			}
			return saveNew(ctx, a, doc)
		}),
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Show the roadmap without saving it")
	return cmd
}

func newExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <roadmap-id>",
		Short: "Write a saved roadmap to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: withRoadmap(func(ctx context.Context, a *app, edit *services.EditSession, args []string) error {
			path := output
			if path == "" {
				path = helpers.GenerateOutputFilename(edit.CourseName, "json")
			}
			if err := services.ExportFile(path, edit.Document()); err != nil {
				return err
			}
			helpers.PrintSuccess("Roadmap written to %s", path)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: <course>-<timestamp>.json)")
	return cmd
}

func saveNew(ctx context.Context, a *app, doc *models.DecompositionResponse) error {
	id, err := a.roadmaps().Create(ctx, doc)
	if err != nil {
		return err
	}
	helpers.PrintSuccess("Saved as %s", id)
	return nil
}

func printProgress(stats roadmap.Stats) {
	helpers.PrintInfo("Progress %s %d/%d tasks done", helpers.ProgressBar(stats.Ratio, 30), stats.Completed, stats.Total)
}
