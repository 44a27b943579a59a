package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskbot/internal/taskbot"
	"github.com/hay-kot/taskbot/pkg/iojson"
)

// dispatch applies ev, writes the outcome as a JSON line and turns a failed
// outcome into a command error.
func dispatch(ctx context.Context, c *cli.Command, app *taskbot.App, ev taskbot.Event) error {
	out := app.Dispatcher.Handle(ctx, ev)
	if err := iojson.WriteLine(c.Root().Writer, out); err != nil {
		return err
	}
	if out.Error != nil {
		return out.Error
	}
	return nil
}

func identityFlag(dest *int64) *cli.Int64Flag {
	return &cli.Int64Flag{
		Name:        "as",
		Usage:       "identity the event is sent as",
		Sources:     cli.EnvVars("TASKBOT_IDENTITY"),
		Required:    true,
		Destination: dest,
	}
}

func requireArgs(c *cli.Command, n int, usage string) error {
	if c.NArg() < n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}
