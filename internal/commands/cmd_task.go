package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskbot/internal/taskbot"
)

// TaskCmd implements the taskbot task command group.
type TaskCmd struct {
	flags *Flags
	app   *taskbot.App

	identity    int64
	description string
	assignee    string
	deadline    string
}

// NewTaskCmd creates a new task command.
func NewTaskCmd(flags *Flags, app *taskbot.App) *TaskCmd {
	return &TaskCmd{flags: flags, app: app}
}

// Register adds the task command to the application.
func (cmd *TaskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "task",
		Usage: "Create, list and delete tasks",
		Description: `Task commands send interaction events on behalf of an identity.

Creating, listing all and deleting tasks require an admin identity.

Examples:
  taskbot task create --as 1 -d "Quarterly report" -a @bob --deadline "25.12.2030 18:00"
  taskbot task ls --as 1
  taskbot task mine --as 100
  taskbot task rm --as 1 3`,
		Commands: []*cli.Command{
			cmd.createCmd(),
			cmd.listCmd(),
			cmd.mineCmd(),
			cmd.removeCmd(),
		},
	})

	return app
}

func (cmd *TaskCmd) createCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a task (admin)",
		UsageText: "taskbot task create --as <admin> -d <description> -a <handle> --deadline <DD.MM.YYYY HH:MM>",
		Description: `Creates a todo task. The deadline is read in the configured timezone
and must be in the future. The assignee is notified if registered.`,
		Flags: []cli.Flag{
			identityFlag(&cmd.identity),
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "what needs to be done",
				Required:    true,
				Destination: &cmd.description,
			},
			&cli.StringFlag{
				Name:        "assignee",
				Aliases:     []string{"a"},
				Usage:       "assignee handle",
				Required:    true,
				Destination: &cmd.assignee,
			},
			&cli.StringFlag{
				Name:        "deadline",
				Usage:       "deadline as DD.MM.YYYY HH:MM",
				Required:    true,
				Destination: &cmd.deadline,
			},
		},
		Action: cmd.runCreate,
	}
}

func (cmd *TaskCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List all tasks (admin)",
		UsageText: "taskbot task ls --as <admin>",
		Flags:     []cli.Flag{identityFlag(&cmd.identity)},
		Action:    cmd.runList,
	}
}

func (cmd *TaskCmd) mineCmd() *cli.Command {
	return &cli.Command{
		Name:      "mine",
		Usage:     "List tasks assigned to an identity",
		UsageText: "taskbot task mine --as <identity>",
		Flags:     []cli.Flag{identityFlag(&cmd.identity)},
		Action:    cmd.runMine,
	}
}

func (cmd *TaskCmd) removeCmd() *cli.Command {
	return &cli.Command{
		Name:          "remove",
		Aliases:       []string{"rm"},
		Usage:         "Delete a task (admin)",
		UsageText:     "taskbot task rm --as <admin> <id>",
		Flags:         []cli.Flag{identityFlag(&cmd.identity)},
		Action:        cmd.runRemove,
		ShellComplete: TaskIDCompleter(cmd.app),
	}
}

func (cmd *TaskCmd) runCreate(ctx context.Context, c *cli.Command) error {
	return dispatch(ctx, c, cmd.app, taskbot.Event{
		Type:        taskbot.EventAdminCreateTask,
		Identity:    cmd.identity,
		Description: cmd.description,
		Assignee:    cmd.assignee,
		Deadline:    cmd.deadline,
	})
}

func (cmd *TaskCmd) runList(ctx context.Context, c *cli.Command) error {
	return dispatch(ctx, c, cmd.app, taskbot.Event{
		Type:     taskbot.EventAdminListAll,
		Identity: cmd.identity,
	})
}

func (cmd *TaskCmd) runMine(ctx context.Context, c *cli.Command) error {
	return dispatch(ctx, c, cmd.app, taskbot.Event{
		Type:     taskbot.EventListMyTasks,
		Identity: cmd.identity,
	})
}

func (cmd *TaskCmd) runRemove(ctx context.Context, c *cli.Command) error {
	if err := requireArgs(c, 1, "taskbot task rm --as <admin> <id>"); err != nil {
		return err
	}

	id, err := parseTaskID(c.Args().Get(0))
	if err != nil {
		return err
	}

	return dispatch(ctx, c, cmd.app, taskbot.Event{
		Type:     taskbot.EventAdminDeleteTask,
		Identity: cmd.identity,
		TaskID:   id,
	})
}

func parseTaskID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}
