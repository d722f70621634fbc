package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aura-survey/backend/internal/flow"
)

type credentials struct {
	email    string
	password string
	name     string
}

func (c *credentials) bind(cmd *cobra.Command, withName bool) {
	cmd.Flags().StringVar(&c.email, "email", "", "account email")
	cmd.Flags().StringVar(&c.password, "password", "", "account password (prompted when omitted)")
	if withName {
		cmd.Flags().StringVar(&c.name, "name", "", "display name")
	}
}

// fill prompts for missing values.
func (c *credentials) fill(cmd *cobra.Command) error {
	in := bufio.NewReader(cmd.InOrStdin())
	var err error
	if c.email == "" {
		if c.email, err = prompt(cmd, in, "Email: "); err != nil {
			return err
		}
	}
	if c.password == "" {
		if c.password, err = prompt(cmd, in, "Password: "); err != nil {
			return err
		}
	}
	return nil
}

func newRegisterCmd(opts *options) *cobra.Command {
	var creds credentials
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := creds.fill(cmd); err != nil {
				return err
			}
			ctrl, err := opts.controller()
			if err != nil {
				return err
			}
			var name *string
			if creds.name != "" {
				name = &creds.name
			}
			if err := ctrl.Register(cmd.Context(), creds.email, creds.password, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and signed in as %s\n", creds.email)
			return nil
		},
	}
	creds.bind(cmd, true)
	return cmd
}

func newLoginCmd(opts *options) *cobra.Command {
	var creds credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := creds.fill(cmd); err != nil {
				return err
			}
			ctrl, err := opts.controller()
			if err != nil {
				return err
			}
			if err := ctrl.Login(cmd.Context(), creds.email, creds.password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", creds.email)
			return nil
		},
	}
	creds.bind(cmd, false)
	return cmd
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := opts.controller()
			if err != nil {
				return err
			}
			if err := ctrl.Load(cmd.Context()); err != nil {
				return err
			}
			if err := ctrl.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newResetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear all local survey progress and the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := opts.controller()
			if err != nil {
				return err
			}
			if err := ctrl.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Local survey progress cleared")
			return nil
		},
	}
}

func newSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show your answers and the current results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := opts.controller()
			if err != nil {
				return err
			}
			if err := ctrl.Load(cmd.Context()); err != nil {
				return err
			}
			if ctrl.View() == flow.ViewAuth {
				return errNotSignedIn
			}
			renderSummary(cmd.OutOrStdout(), ctrl.Summary())
			return nil
		},
	}
}

var errNotSignedIn = errors.New("not signed in: run `surveycli login` or `surveycli register`")

func prompt(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
