package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client"
	"github.com/spf13/cobra"
)

type credentialOptions struct {
	email    string
	password string
}

func newRegisterCmd(g *globalOptions) *cobra.Command {
	opts := &credentialOptions{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := passwordOrPrompt(cmd, opts.password, "Password")
			if err != nil {
				return err
			}
			return withClient(cmd, g, func(ctx context.Context, c *client.Client) error {
				msg, err := c.Register(ctx, opts.email, pw)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "account email")
	cmd.Flags().StringVar(&opts.password, "password", "", "account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLoginCmd(g *globalOptions) *cobra.Command {
	opts := &credentialOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Open a session and print its id",
		Long: `Log in with email and password. The greeting goes to stderr and the
session id alone to stdout so it can be captured by scripts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := passwordOrPrompt(cmd, opts.password, "Password")
			if err != nil {
				return err
			}
			return withClient(cmd, g, func(ctx context.Context, c *client.Client) error {
				sid, msg, err := c.Login(ctx, opts.email, pw)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
				fmt.Fprintln(cmd.OutOrStdout(), sid)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "account email")
	cmd.Flags().StringVar(&opts.password, "password", "", "account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newProfileCmd(g *globalOptions) *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the email of the session owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, g, func(ctx context.Context, c *client.Client) error {
				email, err := c.Profile(ctx, session)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "session id returned by login")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func newLogoutCmd(g *globalOptions) *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Close a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, g, func(ctx context.Context, c *client.Client) error {
				msg, err := c.Logout(ctx, session)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "session id returned by login")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func newResetTokenCmd(g *globalOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset-token",
		Short: "Request a password reset token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, g, func(ctx context.Context, c *client.Client) error {
				token, err := c.ResetToken(ctx, email)
				if err != nil {
					return err
				}
				if token == "" {
					fmt.Fprintln(cmd.ErrOrStderr(), "reset requested")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

type updatePasswordOptions struct {
	email    string
	token    string
	password string
}

func newUpdatePasswordCmd(g *globalOptions) *cobra.Command {
	opts := &updatePasswordOptions{}

	cmd := &cobra.Command{
		Use:   "update-password",
		Short: "Set a new password using a reset token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := passwordOrPrompt(cmd, opts.password, "New password")
			if err != nil {
				return err
			}
			return withClient(cmd, g, func(ctx context.Context, c *client.Client) error {
				msg, err := c.UpdatePassword(ctx, opts.email, opts.token, pw)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "account email")
	cmd.Flags().StringVar(&opts.token, "token", "", "reset token from reset-token")
	cmd.Flags().StringVar(&opts.password, "password", "", "new password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}
