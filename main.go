package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/taskbot/internal/commands"
	"github.com/hay-kot/taskbot/internal/core/config"
	"github.com/hay-kot/taskbot/internal/core/conversation"
	"github.com/hay-kot/taskbot/internal/core/eventbus"
	"github.com/hay-kot/taskbot/internal/core/logging"
	"github.com/hay-kot/taskbot/internal/core/notify"
	"github.com/hay-kot/taskbot/internal/core/reminder"
	"github.com/hay-kot/taskbot/internal/data/db"
	"github.com/hay-kot/taskbot/internal/data/stores"
	"github.com/hay-kot/taskbot/internal/notifier"
	"github.com/hay-kot/taskbot/internal/taskbot"
	"github.com/hay-kot/taskbot/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser   func()
		taskApp     = &taskbot.App{}
		database    *db.DB
		redisClient *redis.Client
		busCancel   context.CancelFunc
		busDone     chan struct{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:                  "taskbot",
		Usage:                 "Assign deadline-bound tasks and remind assignees",
		UsageText:             "taskbot [global options] command [command options]",
		EnableShellCompletion: true,
		Description: `Taskbot assigns tasks with deadlines to chat users, walks them through
completing a task with a comment, and sends reminders a configured number
of days before each deadline.

Run 'taskbot serve' to start the reminder scheduler.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TASKBOT_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stderr)",
				Sources:     cli.EnvVars("TASKBOT_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TASKBOT_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TASKBOT_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "admin-ids",
				Usage:       "comma separated admin identities, merged with the config file",
				Sources:     cli.EnvVars("TASKBOT_ADMIN_IDS"),
				Destination: &flags.AdminIDs,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			if flags.AdminIDs != "" {
				ids, err := config.ParseAdminIDs(flags.AdminIDs)
				if err != nil {
					return ctx, fmt.Errorf("parse admin ids: %w", err)
				}
				cfg.AddAdmins(ids...)
			}
			flags.Config = cfg

			database, err = openDatabase(cfg)
			if err != nil {
				return ctx, err
			}

			if cfg.UsesRedis() {
				redisClient, err = connectRedis(ctx, cfg)
				if err != nil {
					return ctx, err
				}
			}

			kvStore := stores.NewKVStore(database)
			outbox := stores.NewNotifyStore(database)

			var ledger reminder.Ledger = reminder.NewKVLedger(kvStore, cfg.Reminders.LedgerTTL)
			if cfg.Reminders.Ledger == config.LedgerRedis {
				ledger = reminder.NewRedisLedger(redisClient, cfg.Redis.KeyPrefix, cfg.Reminders.LedgerTTL)
			}

			var sender notify.Notifier = notifier.NewOutbox(outbox)
			if cfg.Notifier.Driver == config.NotifierRedis {
				sender = notifier.NewRedis(redisClient, cfg.Redis.ChannelPrefix)
			}

			var convs conversation.Store = conversation.NewMemoryStore()
			if cfg.PersistConversations() {
				convs = conversation.NewKVStore(kvStore)
			}

			// The bus runs for every command so assignment notices created by
			// one-shot commands are delivered before exit.
			bus := eventbus.New(256)
			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))

			busCtx, cancel := context.WithCancel(context.Background())
			busCancel = cancel
			busDone = make(chan struct{})
			go func() {
				_ = bus.Start(busCtx)
				close(busDone)
			}()

			*taskApp = *taskbot.NewApp(taskbot.Deps{
				Config:        cfg,
				DB:            database,
				Store:         stores.NewTaskStore(database),
				KV:            kvStore,
				Conversations: convs,
				Ledger:        ledger,
				Notifier:      sender,
				Outbox:        outbox,
				Bus:           bus,
				Logger:        log.Logger,
			})

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Drain pending events before closing the stores they write to.
			if busCancel != nil {
				busCancel()
				<-busDone
			}

			if redisClient != nil {
				if err := redisClient.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close redis client")
				}
			}

			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewServeCmd(flags, taskApp).Register(app)
	app = commands.NewEventCmd(flags, taskApp).Register(app)
	app = commands.NewUserCmd(flags, taskApp).Register(app)
	app = commands.NewTaskCmd(flags, taskApp).Register(app)
	app = commands.NewCompleteCmd(flags, taskApp).Register(app)
	app = commands.NewInboxCmd(flags, taskApp).Register(app)
	app = commands.NewRemindCmd(flags, taskApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}

// openDatabase opens the database, moving a corrupted file aside and
// starting fresh when SQLite reports corruption.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil {
		return database, nil
	}
	if !stores.IsCorruptionError(err) {
		return nil, fmt.Errorf("open database: %w", err)
	}

	backup, rerr := stores.RecoverFromCorruption(cfg.DataDir)
	if rerr != nil {
		return nil, fmt.Errorf("recover corrupted database: %w", rerr)
	}
	log.Warn().Str("backup", backup).Msg("database was corrupted; moved aside and recreated")

	database, err = db.Open(cfg.DataDir, opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return database, nil
}

func connectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis at %s: %w", cfg.Redis.Addr, err)
	}
	return client, nil
}
