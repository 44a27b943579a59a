package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskbot/internal/core/config"
	"github.com/hay-kot/taskbot/internal/core/notify"
	"github.com/hay-kot/taskbot/internal/taskbot"
	"github.com/hay-kot/taskbot/pkg/iojson"
)

// InboxCmd reads messages delivered through the outbox notifier.
type InboxCmd struct {
	flags *Flags
	app   *taskbot.App

	identity int64
	clear    bool
}

// NewInboxCmd creates a new inbox command.
func NewInboxCmd(flags *Flags, app *taskbot.App) *InboxCmd {
	return &InboxCmd{flags: flags, app: app}
}

// Register adds the inbox command to the application.
func (cmd *InboxCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "inbox",
		Usage:     "Show delivered notifications",
		UsageText: "taskbot inbox [--as <identity>] [--clear]",
		Description: `Lists notifications stored by the outbox notifier as JSON lines, oldest
first. Without --as every recipient is shown.

Examples:
  taskbot inbox --as 100
  taskbot inbox --clear`,
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:        "as",
				Usage:       "only show messages for this identity",
				Destination: &cmd.identity,
			},
			&cli.BoolFlag{
				Name:        "clear",
				Usage:       "delete all stored notifications",
				Destination: &cmd.clear,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *InboxCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.app.Config != nil && cmd.app.Config.Notifier.Driver != config.NotifierOutbox {
		log.Warn().Str("driver", cmd.app.Config.Notifier.Driver).Msg("notifier does not write to the outbox")
	}

	if cmd.clear {
		if err := cmd.app.Outbox.Clear(ctx); err != nil {
			return fmt.Errorf("clear inbox: %w", err)
		}
		_, _ = fmt.Fprintln(c.Root().Writer, "cleared")
		return nil
	}

	var (
		items []notify.Notification
		err   error
	)
	if cmd.identity != 0 {
		items, err = cmd.app.Outbox.ListFor(ctx, cmd.identity)
	} else {
		items, err = cmd.app.Outbox.List(ctx)
	}
	if err != nil {
		return fmt.Errorf("list inbox: %w", err)
	}

	for _, item := range items {
		if err := iojson.WriteLine(c.Root().Writer, item); err != nil {
			return err
		}
	}

	return nil
}
