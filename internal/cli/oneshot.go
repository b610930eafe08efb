package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/creachadair/rawsync"
	"github.com/creachadair/rawsync/oneshot"
)

const defaultMessage = "Message text"

// NewOneshotCmd returns a command that sends a message through a
// [oneshot.Channel] from one goroutine and receives it on another.
func NewOneshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oneshot",
		Short: "Hand one message between goroutines over a shared one-shot channel",
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			return runChannelCmd(cc, func(ctx context.Context, msg string) (string, error) {
				return runOneshot(ctx, msg)
			})
		},
	}
	addChannelFlags(cmd)

	return cmd
}

// NewSplitCmd returns a command that sends a message through the handles
// returned by [oneshot.Split].
func NewSplitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Hand one message between goroutines over a sender/receiver pair",
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			return runChannelCmd(cc, func(ctx context.Context, msg string) (string, error) {
				return runSplit(ctx, msg)
			})
		},
	}
	addChannelFlags(cmd)

	return cmd
}

func addChannelFlags(cmd *cobra.Command) {
	cmd.Flags().String("message", defaultMessage, "Message to send")
	cmd.Flags().Duration("timeout", 5*time.Second, "How long the receiver waits for the message")
}

func runChannelCmd(cc *cobra.Command, run func(context.Context, string) (string, error)) error {
	msg, err := cc.Flags().GetString("message")
	if err != nil {
		return fmt.Errorf("invalid argument: %w", err)
	}
	timeout, err := cc.Flags().GetDuration("timeout")
	if err != nil {
		return fmt.Errorf("invalid argument: %w", err)
	}

	ctx, cancel := context.WithTimeout(cc.Context(), timeout)
	defer cancel()

	got, err := run(ctx, msg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cc.OutOrStdout(), "received: %s\n", got)

	return nil
}

// runOneshot sends msg on a new channel from a separate goroutine, parks
// until it is ready, and returns what was received.
func runOneshot(ctx context.Context, msg string) (string, error) {
	c := oneshot.New[string]()
	defer c.Close()

	p := rawsync.NewParker()

	var g errgroup.Group
	g.Go(func() error {
		defer p.Unpark()
		if err := c.Send(msg); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		slog.Debug("message sent", "len", len(msg))
		return nil
	})

	if err := p.ParkUntil(ctx, c.IsReady); err != nil {
		return "", fmt.Errorf("waiting for message: %w", err)
	}
	got, err := c.Receive()
	if err != nil {
		return "", fmt.Errorf("receive: %w", err)
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	slog.Info("oneshot scenario complete")

	return got, nil
}

// runSplit is like runOneshot, but moves each handle of a split channel to
// the goroutine that uses it.
func runSplit(ctx context.Context, msg string) (string, error) {
	s, r := oneshot.Split[string]()
	defer r.Close()

	p := rawsync.NewParker()

	var g errgroup.Group
	g.Go(func() error {
		defer p.Unpark()
		if err := s.Send(msg); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		slog.Debug("message sent", "len", len(msg))
		return nil
	})

	if err := p.ParkUntil(ctx, r.IsReady); err != nil {
		return "", fmt.Errorf("waiting for message: %w", err)
	}
	got, err := r.Receive()
	if err != nil {
		return "", fmt.Errorf("receive: %w", err)
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	slog.Info("split scenario complete")

	return got, nil
}
