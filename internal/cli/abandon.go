package cli

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/creachadair/rawsync/spin"
)

// NewAbandonCmd returns a command showing that a spin lock whose guard is
// never released stays locked: there is no poisoning or recovery.
func NewAbandonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abandon",
		Short: "Show that an abandoned spin lock guard is never released",
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			vals, err := positive(cc, "attempts")
			if err != nil {
				return err
			}

			n := vals["attempts"]
			if held := runAbandon(n); held {
				fmt.Fprintf(cc.OutOrStdout(), "lock still held after %d attempts\n", n)
			} else {
				fmt.Fprintln(cc.OutOrStdout(), "lock was released")
			}

			return nil
		},
	}

	cmd.Flags().Int("attempts", 1000, "Number of times to try the abandoned lock")

	return cmd
}

// runAbandon acquires a lock on a goroutine that exits without releasing it,
// then tries the lock up to attempts times and reports whether it was still
// held on every try.
func runAbandon(attempts int) bool {
	l := spin.New[[]int](nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		g := l.Lock()
		*g.Ptr() = append(g.Get(), -1)
		slog.Warn("goroutine exiting without releasing its guard")
		runtime.Goexit()
	}()
	<-done

	for i := range attempts {
		if g, ok := l.TryLock(); ok {
			g.Unlock()
			slog.Error("abandoned lock was acquired", "attempt", i+1)
			return false
		}
		runtime.Gosched()
	}

	return true
}
