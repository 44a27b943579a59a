package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskbot/internal/core/task"
	"github.com/hay-kot/taskbot/internal/taskbot"
)

// TaskIDCompleter returns a ShellCompleteFunc that suggests the IDs of open
// tasks. When --as is already set only that identity's pending tasks are
// offered.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func TaskIDCompleter(app *taskbot.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		var (
			tasks []task.Task
			err   error
		)
		if identity := cmd.Int64("as"); identity != 0 {
			tasks, err = app.Tasks.Pending(ctx, identity)
		} else {
			tasks, err = app.Tasks.List(ctx)
			tasks = task.FilterStatus(tasks, task.StatusTodo)
		}
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, t := range tasks {
			_, _ = fmt.Fprintf(w, "%d:%s\n", t.ID, t.Description)
		}
	}
}
