package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"coursework-roadmap/internal/apperrors"
	"coursework-roadmap/internal/autosave"
	"coursework-roadmap/internal/helpers"
	"coursework-roadmap/internal/models"
	"coursework-roadmap/internal/services"

	"github.com/spf13/cobra"
)

const editHelp = `Commands:
  a <task-id>...          advance tasks to their next status
  s <task-id> <status>    set a status (todo, in_progress, done)
  t <task-id>             show task details
  l                       show the roadmap
  w                       save now
  q                       save and quit`

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <roadmap-id>",
		Short: "Update task statuses interactively; changes are saved automatically",
		Args:  cobra.ExactArgs(1),
		RunE: withRoadmap(func(ctx context.Context, a *app, edit *services.EditSession, args []string) error {
			edit.Sync.OnStateChange(func(state autosave.State) {
				if state == autosave.StateError {
					helpers.PrintWarning("Autosave failed: %s (changes kept, will retry)", apperrors.Message(edit.Sync.LastError()))
				}
			})
			services.DisplayRoadmap(edit.CourseName, edit.Engine)
			helpers.PrintLine("%s", editHelp)
			return editLoop(ctx, edit, os.Stdin)
		}),
	}
}

// editLoop applies commands read from in until q or end of input
func editLoop(ctx context.Context, edit *services.EditSession, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		helpers.PrintLine("[%s] >", edit.Sync.State())
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch cmd, args := fields[0], fields[1:]; cmd {
		case "a", "advance":
			for _, id := range args {
				next, ok := edit.Engine.Advance(id)
				if !ok {
					helpers.PrintWarning("Task %s not found", id)
					continue
				}
				helpers.PrintLine("%s %s", helpers.StatusBadge(next), id)
			}
		case "s", "set":
			if len(args) != 2 {
				helpers.PrintWarning("usage: s <task-id> <status>")
				continue
			}
			if _, err := edit.Engine.SetStatus(args[0], models.TaskStatus(args[1])); err != nil {
				helpers.PrintWarning("%s", apperrors.Message(err))
			}
		case "t", "task":
			for _, id := range args {
				task, ok := edit.Engine.Task(id)
				if !ok {
					helpers.PrintWarning("Task %s not found", id)
					continue
				}
				services.DisplayTaskDetail(task)
			}
		case "l", "list":
			services.DisplayRoadmap(edit.CourseName, edit.Engine)
		case "w", "save":
			if err := edit.Flush(ctx); err != nil {
				helpers.PrintError("Save failed: %s", apperrors.Message(err))
				continue
			}
			helpers.PrintSuccess("Saved")
		case "q", "quit", "exit":
			return nil
		case "h", "help", "?":
			helpers.PrintLine("%s", editHelp)
		default:
			helpers.PrintWarning("Unknown command %q, type h for help", cmd)
		}
	}
}
