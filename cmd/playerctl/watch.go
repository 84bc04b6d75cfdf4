package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/stwalsh4118/coursecast/internal/player"
	"github.com/stwalsh4118/coursecast/internal/reporter"
)

const statusInterval = time.Second

type watchOptions struct {
	duration time.Duration
	speed    float64
	report   bool
}

func newWatchCmd(a *app) *cobra.Command {
	opts := watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <content-id|url>",
		Short: "Play a lesson headlessly and report progress",
		Long: "watch mounts the player for a lesson, plays a simulated media element of the given duration " +
			"and reports progress samples and completion to the lessons API until the lesson ends.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, cmd.OutOrStdout(), parseReference(args[0]), opts, clockwork.NewRealClock())
		},
	}

	cmd.Flags().DurationVar(&opts.duration, "duration", 30*time.Second, "Length of the simulated lesson")
	cmd.Flags().Float64Var(&opts.speed, "speed", 1, "Playback speed multiplier")
	cmd.Flags().BoolVar(&opts.report, "report", true, "Report progress to the lessons API")
	return cmd
}

// lockedWriter serialises output from the sampler and the status loop
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// watch drives one controller until the lesson ends or ctx is cancelled
func (a *app) watch(ctx context.Context, w io.Writer, ref player.Reference, opts watchOptions, clock clockwork.Clock) error {
	out := &lockedWriter{w: w}
	source := player.Resolve(ref)
	switch source.Kind {
	case player.SourceNone:
		return errors.New("nothing to play: reference is empty")
	case player.SourceExternal:
		fmt.Fprintln(out, "external lessons play in the embedded player; frame:")
		return player.RenderEmbed(out, player.NewEmbedFrame(a.cfg.Player.EmbedHost, source.EmbedID, "Lesson video"))
	}
	if opts.duration <= 0 {
		return errors.New("duration must be positive")
	}

	media := player.NewSimulatedMedia(clock, opts.duration.Seconds())
	media.SetSpeed(opts.speed)

	controllerOpts := player.Options{
		Reference: ref,
		Checker:   a.prechecker(),
		Media:     media,
		Clock:     clock,
		Autoplay:  a.cfg.Player.Autoplay,
		OnStateChange: func(from, to player.PlaybackState) {
			fmt.Fprintf(out, "[%s -> %s]\n", from, to)
		},
	}

	var progress player.ProgressSink
	var complete player.CompletionSink
	if opts.report {
		client := reporter.NewClient(a.cfg.Player.APIBaseURL, a.creds, a.cfg.Player.CredentialKeys, a.cfg.Player.PrecheckTimeout)
		queue := reporter.NewQueue(client, source.ContentID, nil)
		queue.Start(context.WithoutCancel(ctx))
		defer queue.Close()

		progress = queue.ProgressSink()
		complete = queue.CompletionSink()
	}

	controllerOpts.OnProgress = func(watched, total float64) {
		fmt.Fprintf(out, "progress %s / %s\n", player.FormatTime(watched), player.FormatTime(total))
		if progress != nil {
			progress(watched, total)
		}
	}
	controllerOpts.OnComplete = func() {
		fmt.Fprintln(out, "lesson completed")
		if complete != nil {
			complete()
		}
	}

	controller := player.NewController(controllerOpts)
	defer controller.Unmount()

	switch controller.Mount(ctx) {
	case player.StateFailed:
		view, _ := controller.ErrorView()
		fmt.Fprintf(out, "%s: %s\n", view.Title, view.Message)
		return errUnavailable
	case player.StateReady:
		// autoplay is off or was refused
		if _, err := controller.TogglePlay(); err != nil {
			return err
		}
	}

	ticker := clock.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "stopped")
			return nil
		case <-ticker.Chan():
			controller.HandleMediaEvent(player.MediaEvent{Type: player.EventTimeUpdate})
			if media.Ended() {
				controller.HandleMediaEvent(player.MediaEvent{Type: player.EventEnded})
				fmt.Fprintf(out, "ended at %s\n", player.FormatTime(media.CurrentTime()))
				return nil
			}
		}
	}
}
