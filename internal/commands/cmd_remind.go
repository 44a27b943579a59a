package commands

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskbot/internal/taskbot"
	"github.com/hay-kot/taskbot/pkg/iojson"
)

// RemindCmd runs one reminder cycle on demand.
type RemindCmd struct {
	flags *Flags
	app   *taskbot.App

	at     string
	dryRun bool
}

// NewRemindCmd creates a new remind command.
func NewRemindCmd(flags *Flags, app *taskbot.App) *RemindCmd {
	return &RemindCmd{flags: flags, app: app}
}

// Register adds the remind command to the application.
func (cmd *RemindCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "remind",
		Usage:     "Run one reminder cycle",
		UsageText: "taskbot remind [--at <DD.MM.YYYY HH:MM>] [--dry-run]",
		Description: `Selects tasks whose deadline is a configured number of days after the
reference date and sends their reminders. Reminders already sent for the
same task, threshold and deadline are skipped. A dry run reports them as
already_sent while their claim is held.

Examples:
  taskbot remind --dry-run
  taskbot remind --at "18.12.2030 09:00"`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "at",
				Usage:       "reference time in the configured timezone (defaults to now)",
				Destination: &cmd.at,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "report what would be sent without sending or claiming",
				Destination: &cmd.dryRun,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RemindCmd) run(ctx context.Context, c *cli.Command) error {
	ref := time.Now()
	if cmd.at != "" {
		t, err := taskbot.ParseTime(cmd.at, cmd.app.Config.Location())
		if err != nil {
			return err
		}
		ref = t
	}

	report, err := cmd.app.Scheduler.RunCycle(ctx, ref, cmd.dryRun)
	if err != nil {
		return err
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, report)
}
