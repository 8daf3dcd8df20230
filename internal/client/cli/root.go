// Package cli implements the authctl command tree on top of the gophauth
// gRPC client.
package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client"
	"github.com/spf13/cobra"
)

const (
	defaultAddr    = "localhost:50051"
	defaultTimeout = 10 * time.Second
)

// dial is a test seam for connecting to the server.
var dial = func(addr string) (*client.Client, error) {
	return client.New(addr)
}

type globalOptions struct {
	addr    string
	timeout time.Duration
}

// NewRootCmd creates the root authctl command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "authctl",
		Short: "Command line client for the gophauth service",
		Long: `authctl talks to a running gophauth server over gRPC. It can register
accounts, open and close sessions and drive the password reset flow.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.addr, "addr", defaultAddr, "server address")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", defaultTimeout, "per request timeout")

	cmd.AddCommand(newRegisterCmd(opts))
	cmd.AddCommand(newLoginCmd(opts))
	cmd.AddCommand(newProfileCmd(opts))
	cmd.AddCommand(newLogoutCmd(opts))
	cmd.AddCommand(newResetTokenCmd(opts))
	cmd.AddCommand(newUpdatePasswordCmd(opts))

	return cmd
}

// withClient dials the server, bounds the call by the configured timeout and
// closes the connection afterwards.
func withClient(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, c *client.Client) error) error {
	c, err := dial(opts.addr)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}
	return fn(ctx, c)
}
