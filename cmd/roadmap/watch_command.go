package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/services"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var interval time.Duration
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "watch <roadmap>",
		Short: "Wait for the quiz flow to complete the roadmap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if interval <= 0 {
				interval = cfg.PollInterval()
			}
			if interval <= 0 {
				return fmt.Errorf("watch needs a poll interval: set watcher.poll_interval_seconds or --interval")
			}
			ctx.pollInterval = interval

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(runCtx, timeout)
				defer cancel()
			}

			logger := ctx.logger(cmd.ErrOrStderr())
			return ctx.withSession(runCtx, logger, args[0], func(session *services.Session) error {
				if session.View().Terminal {
					fmt.Fprintln(cmd.OutOrStdout(), "Roadmap already completed")
					return nil
				}

				completed := make(chan services.ProgressView, 1)
				watchCtx, cancelWatch := context.WithCancel(runCtx)
				defer cancelWatch()
				session.Watch(watchCtx, func(view services.ProgressView) {
					select {
					case completed <- view:
					default:
					}
				})
				fmt.Fprintf(cmd.OutOrStdout(), "Watching %s every %s\n", args[0], interval)

				select {
				case view := <-completed:
					fmt.Fprintln(cmd.OutOrStdout(), "Roadmap completed")
					renderView(cmd.OutOrStdout(), view)
					return nil
				case <-runCtx.Done():
					return runCtx.Err()
				}
			})
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Polling interval (defaults to watcher.poll_interval_seconds)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long (0 waits until interrupted)")
	return cmd
}
