// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/taibuivan/readtrack/internal/platform/migration"
	"github.com/taibuivan/readtrack/internal/platform/sec"
	"github.com/taibuivan/readtrack/internal/users/auth"
)

type runtimeFactory func() (*runtime, error)

// # Migrations

func newMigrateCommand(env runtimeFactory) *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	command.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := env()
			if err != nil {
				return err
			}
			if err := migration.RunUp(rt.cfg.DatabaseURL, rt.cfg.MigrationPath, rt.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive, got %d", steps)
			}
			rt, err := env()
			if err != nil {
				return err
			}
			if err := migration.RunDown(rt.cfg.DatabaseURL, rt.cfg.MigrationPath, steps, rt.logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	command.AddCommand(down)

	return command
}

// # Maintenance

func newRecomputeCommand(env runtimeFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Re-derive progress and status of every library entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := env()
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.connect(cmd.Context(), true); err != nil {
				return err
			}

			changed, err := rt.services().Library.RecomputeAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recomputed library, %d entries changed\n", changed)
			return nil
		},
	}
}

func newPurgeSessionsCommand(env runtimeFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-sessions",
		Short: "Delete expired and revoked refresh sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := env()
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.connect(cmd.Context(), false); err != nil {
				return err
			}

			removed, err := rt.services().Auth.PurgeExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d session(s)\n", removed)
			return nil
		},
	}
}

// # Users

func newUserCommand(env runtimeFactory) *cobra.Command {
	command := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var (
		username      string
		email         string
		admin         bool
		passwordStdin bool
	)

	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account with its default profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd, passwordStdin)
			if err != nil {
				return err
			}

			rt, err := env()
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.connect(cmd.Context(), false); err != nil {
				return err
			}

			role := sec.RoleMember
			if admin {
				role = sec.RoleAdmin
			}

			user, err := rt.services().Auth.Register(cmd.Context(), auth.RegisterInput{
				Username: username,
				Email:    email,
				Password: password,
				Role:     role,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", user.Role, user.Username, user.ID)
			return nil
		},
	}
	create.Flags().StringVar(&username, "username", "", "account username")
	create.Flags().StringVar(&email, "email", "", "account email")
	create.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	create.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("email")

	command.AddCommand(create)
	return command
}

// readPassword reads the password from stdin, masking it on a terminal.
func readPassword(cmd *cobra.Command, fromStdin bool) (string, error) {
	if fromStdin {
		return readLine(cmd.InOrStdin())
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal; use --password-stdin")
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func readLine(reader io.Reader) (string, error) {
	line, err := bufio.NewReader(reader).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
