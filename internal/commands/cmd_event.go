package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskbot/internal/taskbot"
	"github.com/hay-kot/taskbot/pkg/iojson"
)

// EventCmd applies a batch of interaction events.
type EventCmd struct {
	flags *Flags
	app   *taskbot.App

	input iojson.FileReader[[]taskbot.Event]
}

// NewEventCmd creates a new event command.
func NewEventCmd(flags *Flags, app *taskbot.App) *EventCmd {
	return &EventCmd{flags: flags, app: app}
}

// Register adds the event command to the application.
func (cmd *EventCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "event",
		Usage:     "Apply a JSON array of interaction events",
		UsageText: "taskbot event [-f events.json]",
		Description: `Reads a JSON array of events from a file or stdin, applies them in order
and prints one outcome per line.

Example input:
  [
    {"type": "register_user", "identity": 100, "handle": "bob"},
    {"type": "admin_create_task", "identity": 1, "description": "Report",
     "assignee": "@bob", "deadline": "25.12.2030 18:00"},
    {"type": "request_completion", "identity": 100}
  ]`,
		Flags:  []cli.Flag{cmd.input.Flag()},
		Action: cmd.run,
	})

	return app
}

func (cmd *EventCmd) run(ctx context.Context, c *cli.Command) error {
	// os.Stdin is left to the reader so an interactive terminal is rejected.
	if r := c.Root().Reader; r != nil && r != os.Stdin {
		cmd.input.WithStdin(r)
	}

	events, err := cmd.input.Read()
	if err != nil {
		return err
	}

	failed := 0
	for _, ev := range events {
		out := cmd.app.Dispatcher.Handle(ctx, ev)
		if !out.OK {
			failed++
		}
		if err := iojson.WriteLine(c.Root().Writer, out); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d events failed", failed, len(events))
	}
	return nil
}
