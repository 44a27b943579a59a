package commands

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskbot/internal/core/conversation"
	"github.com/hay-kot/taskbot/internal/taskbot"
	"github.com/hay-kot/taskbot/pkg/iojson"
)

// CompleteCmd drives the task completion dialog from the command line.
type CompleteCmd struct {
	flags *Flags
	app   *taskbot.App

	identity int64
}

// NewCompleteCmd creates a new complete command.
func NewCompleteCmd(flags *Flags, app *taskbot.App) *CompleteCmd {
	return &CompleteCmd{flags: flags, app: app}
}

// Register adds the complete command to the application.
func (cmd *CompleteCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "complete",
		Usage: "Complete a task through the selection dialog",
		Description: `The dialog is: request -> select <id> -> comment <text>.

Dialog state is kept per identity between invocations when
conversations.persist is enabled (the default).

Examples:
  taskbot complete request --as 100
  taskbot complete select --as 100 3
  taskbot complete comment --as 100 "sent to finance"
  taskbot complete reset --as 100`,
		Commands: []*cli.Command{
			{
				Name:   "request",
				Usage:  "Start the dialog and list pending tasks",
				Flags:  []cli.Flag{identityFlag(&cmd.identity)},
				Action: cmd.runRequest,
			},
			{
				Name:          "select",
				Usage:         "Select the task to complete",
				UsageText:     "taskbot complete select --as <identity> <id>",
				Flags:         []cli.Flag{identityFlag(&cmd.identity)},
				Action:        cmd.runSelect,
				ShellComplete: TaskIDCompleter(cmd.app),
			},
			{
				Name:      "comment",
				Usage:     "Submit the completion comment",
				UsageText: "taskbot complete comment --as <identity> <text...>",
				Flags:     []cli.Flag{identityFlag(&cmd.identity)},
				Action:    cmd.runComment,
			},
			{
				Name:   "reset",
				Usage:  "Abandon the dialog",
				Flags:  []cli.Flag{identityFlag(&cmd.identity)},
				Action: cmd.runReset,
			},
			{
				Name:   "state",
				Usage:  "Show the dialog state",
				Flags:  []cli.Flag{identityFlag(&cmd.identity)},
				Action: cmd.runState,
			},
		},
	})

	return app
}

func (cmd *CompleteCmd) runRequest(ctx context.Context, c *cli.Command) error {
	return dispatch(ctx, c, cmd.app, taskbot.Event{
		Type:     taskbot.EventRequestCompletion,
		Identity: cmd.identity,
	})
}

func (cmd *CompleteCmd) runSelect(ctx context.Context, c *cli.Command) error {
	if err := requireArgs(c, 1, "taskbot complete select --as <identity> <id>"); err != nil {
		return err
	}

	id, err := parseTaskID(c.Args().Get(0))
	if err != nil {
		return err
	}

	return dispatch(ctx, c, cmd.app, taskbot.Event{
		Type:     taskbot.EventSelectTask,
		Identity: cmd.identity,
		TaskID:   id,
	})
}

func (cmd *CompleteCmd) runComment(ctx context.Context, c *cli.Command) error {
	if err := requireArgs(c, 1, "taskbot complete comment --as <identity> <text...>"); err != nil {
		return err
	}

	return dispatch(ctx, c, cmd.app, taskbot.Event{
		Type:     taskbot.EventSubmitComment,
		Identity: cmd.identity,
		Comment:  strings.Join(c.Args().Slice(), " "),
	})
}

func (cmd *CompleteCmd) runReset(ctx context.Context, c *cli.Command) error {
	return dispatch(ctx, c, cmd.app, taskbot.Event{
		Type:     taskbot.EventReset,
		Identity: cmd.identity,
	})
}

func (cmd *CompleteCmd) runState(ctx context.Context, c *cli.Command) error {
	state, err := cmd.app.Completion.State(ctx, cmd.identity)
	if err != nil {
		return err
	}

	return iojson.WriteLine(c.Root().Writer, struct {
		Identity int64 `json:"identity"`
		conversation.Conversation
	}{cmd.identity, state})
}
