package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"coursework-roadmap/internal/config"
	"coursework-roadmap/internal/helpers"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteDefault(configFile); err != nil {
				return err
			}
			helpers.PrintSuccess("Configuration written to %s", config.ExpandHome(configFile))
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the coursework service",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if email == "" {
				email = prompt("Email: ")
			}
			if password == "" {
				password = prompt("Password: ")
			}
			user, err := a.auth().Register(ctx, name, email, password)
			if err != nil {
				return err
			}
			helpers.PrintSuccess("Registered and signed in as %s", user.Email)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func newLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the coursework service",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if email == "" {
				email = prompt("Email: ")
			}
			if password == "" {
				password = prompt("Password: ")
			}
			user, err := a.auth().Login(ctx, email, password)
			if err != nil {
				return err
			}
			helpers.PrintSuccess("Signed in as %s", user.Email)
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if err := a.auth().Logout(ctx); err != nil {
				return err
			}
			helpers.PrintSuccess("Signed out")
			return nil
		}),
	}
}

func newWhoAmICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if !a.session.Authenticated() {
				helpers.PrintInfo("Not signed in")
				return nil
			}
			user, err := a.auth().WhoAmI(ctx)
			if err != nil {
				return err
			}
			helpers.PrintInfo("%s <%s>", user.Name, user.Email)
			if exp := a.session.ExpiresAt(); !exp.IsZero() {
				helpers.PrintInfo("Session expires %s", exp.Local().Format("2006-01-02 15:04"))
			}
			return nil
		}),
	}
}

func prompt(label string) string {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print(label)
	response, _ := reader.ReadString('\n')
	return strings.TrimSpace(response)
}

func confirm(question string) bool {
	response := strings.ToLower(prompt(question + " (y/N): "))
	return response == "y" || response == "yes"
}
