package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"coursework-roadmap/internal/helpers"
	"coursework-roadmap/internal/services"

	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var question, saveImages string
	cmd := &cobra.Command{
		Use:   "chat <roadmap-id>",
		Short: "Ask questions about a roadmap's specification",
		Long: `Ask questions about the specification a roadmap was decomposed from.
Without --question an interactive session starts; an empty line ends it.
Images cited in answers are shown as links, or downloaded with --save-images.`,
		Args: cobra.ExactArgs(1),
		RunE: withRoadmap(func(ctx context.Context, a *app, edit *services.EditSession, args []string) error {
			conv, err := services.ConversationFor(edit.Document())
			if err != nil {
				return err
			}
			c := &chatter{chat: a.chat(), images: a.images(), conv: conv, saveDir: saveImages}
			if question != "" {
				return c.ask(ctx, question)
			}
			helpers.PrintTitle("Chat: %s", edit.CourseName)
			return c.loop(ctx, os.Stdin)
		}),
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "Ask a single question and exit")
	cmd.Flags().StringVar(&saveImages, "save-images", "", "Download images cited in answers into this directory")
	return cmd
}

func newClearChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-chat <roadmap-id>",
		Short: "Forget the chat history of a roadmap",
		Args:  cobra.ExactArgs(1),
		RunE: withRoadmap(func(ctx context.Context, a *app, edit *services.EditSession, args []string) error {
			conv, err := services.ConversationFor(edit.Document())
			if err != nil {
				return err
			}
			if err := a.chat().ClearHistory(ctx, conv); err != nil {
				return err
			}
			helpers.PrintSuccess("Chat history cleared")
			return nil
		}),
	}
}

// chatter runs one conversation from the terminal
type chatter struct {
	chat    *services.ChatService
	images  *services.ImageService
	conv    *services.Conversation
	saveDir string
}

func (c *chatter) ask(ctx context.Context, question string) error {
	reply, err := c.chat.Ask(ctx, c.conv, question)
	if err != nil {
		return err
	}
	services.DisplayChatMessage(reply, c.images.URL)

	if c.saveDir == "" || len(reply.Images) == 0 {
		return nil
	}
	saved, err := c.images.SaveAll(ctx, reply.Images, c.saveDir)
	for _, path := range saved {
		helpers.PrintSuccess("Saved %s", path)
	}
	if err != nil {
		helpers.PrintWarning("Some images could not be saved: %v", err)
	}
	return nil
}

func (c *chatter) loop(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(helpers.Out, "? ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			return nil
		}
		if err := c.ask(ctx, question); err != nil {
			return err
		}
	}
}
