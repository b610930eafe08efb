package cli

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/creachadair/rawsync/spin"
)

// NewSpinCmd returns a command in which several goroutines each append a
// distinct value to a slice guarded by one spin lock.
func NewSpinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spin",
		Short: "Append values to a shared slice under a spin lock",
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			vals, err := positive(cc, "workers")
			if err != nil {
				return err
			}
			hold, err := cc.Flags().GetDuration("hold")
			if err != nil {
				return fmt.Errorf("invalid argument: %w", err)
			}

			got := runSpin(vals["workers"], hold)
			fmt.Fprintf(cc.OutOrStdout(), "collected %d values in lock order: %v\n", len(got), got)

			return nil
		},
	}

	cmd.Flags().Int("workers", 10, "Number of goroutines contending for the lock")
	cmd.Flags().Duration("hold", 0, "How long each worker holds the lock")

	return cmd
}

// runSpin starts n workers that each push their index into a shared slice
// under a spin lock, and returns the slice once all have finished.
func runSpin(n int, hold time.Duration) []int {
	l := spin.New(make([]int, 0, n))

	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			l.With(func(vs *[]int) {
				*vs = append(*vs, i)
				slog.Debug("worker holds lock", "worker", i, "len", len(*vs))
				if hold > 0 {
					time.Sleep(hold)
				}
			})
			return nil
		})
	}
	_ = g.Wait() // workers do not fail

	guard := l.Lock()
	defer guard.Unlock()
	slog.Info("spin scenario complete", "workers", n, "procs", runtime.GOMAXPROCS(0))

	return guard.Get()
}
