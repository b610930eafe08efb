// Package cli implements the rawsync command, which runs demonstration
// scenarios for the spin lock and one-shot channel primitives.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/creachadair/rawsync/internal/log"
)

// NewRootCmd constructs the root command and its scenario subcommands.
func NewRootCmd(name, shortDesc, longDesc string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           name,
		Short:         shortDesc,
		Long:          longDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("log_level", "warn", "Set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log_format", "text", "Set the log format (text, logfmt, json)")

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		flags := cc.Flags()

		var merr error

		logLevel, err := flags.GetString("log_level")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		logFormat, err := flags.GetString("log_format")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		if merr != nil {
			return fmt.Errorf("invalid argument: %w", merr)
		}

		h, err := log.CreateHandler(cc.ErrOrStderr(), logLevel, logFormat)
		if err != nil {
			return fmt.Errorf("failed creating log handler: %w", err)
		}
		slog.SetDefault(slog.New(h))

		return nil
	}

	cmd.AddCommand(NewSpinCmd())
	cmd.AddCommand(NewOneshotCmd())
	cmd.AddCommand(NewSplitCmd())
	cmd.AddCommand(NewAbandonCmd())

	return cmd
}

// positive checks that each named integer flag of cmd is greater than zero.
func positive(cmd *cobra.Command, names ...string) (map[string]int, error) {
	var merr error

	vals := make(map[string]int, len(names))
	for _, name := range names {
		v, err := cmd.Flags().GetInt(name)
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}
		if v <= 0 {
			merr = multierror.Append(merr, fmt.Errorf("--%s must be positive, got %d", name, v))
			continue
		}
		vals[name] = v
	}

	if merr != nil {
		return nil, fmt.Errorf("invalid argument: %w", merr)
	}

	return vals, nil
}
