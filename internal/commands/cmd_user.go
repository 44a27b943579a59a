package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskbot/internal/taskbot"
)

// UserCmd implements the taskbot user command group.
type UserCmd struct {
	flags *Flags
	app   *taskbot.App

	identity  int64
	handle    string
	firstName string
	lastName  string
}

// NewUserCmd creates a new user command.
func NewUserCmd(flags *Flags, app *taskbot.App) *UserCmd {
	return &UserCmd{flags: flags, app: app}
}

// Register adds the user command to the application.
func (cmd *UserCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "user",
		Usage: "Register and list chat users",
		Commands: []*cli.Command{
			{
				Name:      "register",
				Usage:     "Register (or re-register) an identity with a handle",
				UsageText: "taskbot user register --as <identity> --handle <handle>",
				Description: `Stores the identity, handle and names. Registering the same identity
again overwrites the previous record.

Examples:
  taskbot user register --as 100 --handle @bob --first-name Bob`,
				Flags: []cli.Flag{
					identityFlag(&cmd.identity),
					&cli.StringFlag{Name: "handle", Usage: "chat handle, with or without @", Destination: &cmd.handle},
					&cli.StringFlag{Name: "first-name", Destination: &cmd.firstName},
					&cli.StringFlag{Name: "last-name", Destination: &cmd.lastName},
				},
				Action: cmd.runRegister,
			},
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List registered users (admin)",
				UsageText: "taskbot user ls --as <admin identity>",
				Flags:     []cli.Flag{identityFlag(&cmd.identity)},
				Action:    cmd.runList,
			},
		},
	})

	return app
}

func (cmd *UserCmd) runRegister(ctx context.Context, c *cli.Command) error {
	return dispatch(ctx, c, cmd.app, taskbot.Event{
		Type:      taskbot.EventRegisterUser,
		Identity:  cmd.identity,
		Handle:    cmd.handle,
		FirstName: cmd.firstName,
		LastName:  cmd.lastName,
	})
}

func (cmd *UserCmd) runList(ctx context.Context, c *cli.Command) error {
	return dispatch(ctx, c, cmd.app, taskbot.Event{
		Type:     taskbot.EventAdminListUsers,
		Identity: cmd.identity,
	})
}
