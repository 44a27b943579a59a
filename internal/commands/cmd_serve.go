package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/hay-kot/taskbot/internal/taskbot"
	"github.com/hay-kot/taskbot/internal/taskbot/sweep"
	"github.com/hay-kot/taskbot/pkg/iojson"
)

// ServeCmd runs the reminder scheduler and background maintenance until
// the process is signalled.
type ServeCmd struct {
	flags *Flags
	app   *taskbot.App

	events          bool
	sweepInterval   time.Duration
	shutdownTimeout time.Duration
}

// NewServeCmd creates a new serve command.
func NewServeCmd(flags *Flags, app *taskbot.App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

// Register adds the serve command to the application.
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run the reminder scheduler",
		UsageText: "taskbot serve [--events]",
		Description: `Runs the reminder scheduler and the expired-entry sweep until SIGINT or
SIGTERM.

With --events, interaction events are read from stdin as JSON lines and
each outcome is written to stdout as a JSON line.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "events",
				Usage:       "read JSON-lines events from stdin",
				Destination: &cmd.events,
			},
			&cli.DurationFlag{
				Name:        "sweep-interval",
				Usage:       "how often expired key-value entries are removed",
				Value:       sweep.DefaultInterval,
				Destination: &cmd.sweepInterval,
			},
			&cli.DurationFlag{
				Name:        "shutdown-timeout",
				Usage:       "how long to wait for workers on shutdown",
				Value:       15 * time.Second,
				Destination: &cmd.shutdownTimeout,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	workCtx, stop := context.WithCancel(ctx)
	defer stop()

	g, gctx := errgroup.WithContext(workCtx)
	g.Go(func() error {
		return cmd.app.Scheduler.Run(gctx)
	})
	g.Go(func() error {
		sweep.Start(gctx, cmd.app.KV, cmd.sweepInterval)
		return nil
	})

	if cmd.events {
		// Not part of the group: a blocked stdin read must not hold up shutdown.
		go func() {
			if err := cmd.readEvents(gctx, c); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("event stream stopped")
			}
		}()
	}

	log.Info().Bool("events", cmd.events).Msg("taskbot serving")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cmd.shutdownTimeout,
		map[string]gfshutdown.Operation{
			"workers": func(ctx context.Context) error {
				log.Info().Msg("graceful shutdown initiated")
				stop()
				return g.Wait()
			},
		},
	)

	if exitCode := <-wait; exitCode != 0 {
		return cli.Exit(fmt.Sprintf("shutdown finished with exit code %d", exitCode), exitCode)
	}
	return nil
}

func (cmd *ServeCmd) readEvents(ctx context.Context, c *cli.Command) error {
	return iojson.DecodeLines(ctx, c.Root().Reader, func(ev taskbot.Event) error {
		out := cmd.app.Dispatcher.Handle(ctx, ev)
		return iojson.WriteLine(c.Root().Writer, out)
	})
}
