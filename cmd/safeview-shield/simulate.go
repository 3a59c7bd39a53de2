package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"safeview-shield/internal/incidentlog"
	"safeview-shield/internal/models"
	"safeview-shield/internal/player"

	"github.com/spf13/cobra"
)

type simulateOptions struct {
	decision string
	manualAt int
	all      bool
}

func newSimulateCommand(load func() (*models.Config, error)) *cobra.Command {
	opts := simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play one offline session to the end and print the incident log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.decision != player.CommandResume && opts.decision != player.CommandSkipFurther {
				return fmt.Errorf("invalid --decision %q (want %s or %s)", opts.decision, player.CommandResume, player.CommandSkipFurther)
			}
			cfg, err := load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return simulate(ctx, cfg, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.decision, "decision", player.CommandResume, "How to dismiss an overlay: resume or skip_further")
	cmd.Flags().IntVar(&opts.manualAt, "manual-at", -1, "Raise a manual interruption once playback reaches this second")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Print the whole incident log instead of the dashboard view")

	return cmd
}

// simulate plays a session to the duration cap, dismissing every overlay with
// opts.decision, then prints the incident log to out.
func simulate(ctx context.Context, cfg *models.Config, opts simulateOptions, out io.Writer) error {
	incidents, session := newPlayer(cfg, wiring{})

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- session.Run(runCtx) }()
	defer func() {
		cancel()
		<-done
	}()

	session.Commands() <- models.Command{Type: player.CommandStart}

	poll := time.NewTicker(time.Duration(cfg.Player.TickIntervalMs) * time.Millisecond)
	defer poll.Stop()

	manualSent := opts.manualAt < 0
	// Snapshot a command was sent for; polling skips until the loop moves on.
	waitingOn := ""

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-poll.C:
		}

		st, err := session.Snapshot(ctx)
		if err != nil {
			return err
		}
		key := snapshotKey(st)
		if key == waitingOn {
			continue
		}
		waitingOn = ""

		switch {
		case st.State == player.StateSuspended.String():
			fmt.Fprintf(out, "%3ds  interrupted (%s): %s, skipping %ds\n",
				st.ElapsedSeconds, st.Overlay.Source, st.Overlay.Reason, st.Overlay.Skipped)
			session.Commands() <- models.Command{Type: opts.decision}
			waitingOn = key
		case st.ElapsedSeconds >= st.DurationCap:
			fmt.Fprintf(out, "%3ds  finished\n", st.ElapsedSeconds)
			printLog(out, incidents, opts.all)
			return nil
		case st.State == player.StatePaused.String():
			session.Commands() <- models.Command{Type: player.CommandStart}
			waitingOn = key
		case !manualSent && st.ElapsedSeconds >= opts.manualAt:
			session.Commands() <- models.Command{Type: player.CommandManualTrigger}
			manualSent = true
			waitingOn = key
		}
	}
}

func snapshotKey(st models.PlayerState) string {
	source := ""
	if st.Overlay != nil {
		source = st.Overlay.Source
	}
	return fmt.Sprintf("%s/%d/%s", st.State, st.ElapsedSeconds, source)
}

func printLog(out io.Writer, incidents *incidentlog.Log, all bool) {
	entries := incidents.Recent(incidentlog.DashboardSize)
	if all {
		entries = incidents.All()
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No incidents.")
		return
	}
	fmt.Fprintf(out, "Incident log (%d total):\n", incidents.Len())
	for _, e := range entries {
		fmt.Fprintf(out, "[%s] %s • %s • skip %ds\n", e.At, e.Category, e.Platform, e.Skipped)
	}
}
