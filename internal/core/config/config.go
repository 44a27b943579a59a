// Package config handles configuration loading and validation for taskbot.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Ledger backends for reminder watermarks.
const (
	LedgerSQLite = "sqlite"
	LedgerRedis  = "redis"
)

// Notifier drivers.
const (
	NotifierOutbox = "outbox"
	NotifierRedis  = "redis"
)

// Config holds the application configuration.
type Config struct {
	Admins        []int64       `yaml:"admins"`
	Timezone      string        `yaml:"timezone"`
	Reminders     Reminders     `yaml:"reminders"`
	Notifier      Notifier      `yaml:"notifier"`
	Redis         Redis         `yaml:"redis"`
	Conversations Conversations `yaml:"conversations"`
	Database      Database      `yaml:"database"`
	Messages      Messages      `yaml:"messages"`
	DataDir       string        `yaml:"-"` // set by caller, not from config file

	location *time.Location
}

// Reminders configures the deadline reminder loop.
type Reminders struct {
	Time       string        `yaml:"time"`       // HH:MM trigger minute in Timezone
	Resolution time.Duration `yaml:"resolution"` // loop tick
	Workers    int           `yaml:"workers"`    // concurrent recipients per cycle
	Ledger     string        `yaml:"ledger"`     // sqlite | redis
	LedgerTTL  time.Duration `yaml:"ledger_ttl"` // how long a sent reminder is remembered
	Thresholds []Threshold   `yaml:"thresholds"`
}

// Threshold is a day count before the deadline with its message template.
type Threshold struct {
	Days    int    `yaml:"days"`
	Message string `yaml:"message"`
}

// Notifier selects the outgoing message transport.
type Notifier struct {
	Driver string `yaml:"driver"`
}

// Redis holds connection settings shared by the redis ledger and notifier.
type Redis struct {
	Addr          string `yaml:"addr"`
	Password      string `yaml:"password"`
	DB            int    `yaml:"db"`
	ChannelPrefix string `yaml:"channel_prefix"`
	KeyPrefix     string `yaml:"key_prefix"`
}

// Conversations controls where completion dialog state lives.
type Conversations struct {
	Persist *bool `yaml:"persist"`
}

// Database holds connection pool settings.
type Database struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// Messages holds templates for non-reminder notices.
type Messages struct {
	Assignment string `yaml:"assignment"`
}

const (
	defaultReminderMessage = "Reminder: task #{{ .Task.ID }}: {{ .Task.Description }}\n" +
		"Deadline: {{ date .Task.Deadline }}\n" +
		"{{ .Days }} {{ plural .Days \"day\" \"days\" }} left until the deadline."
	defaultUrgentMessage = "Urgent reminder: task #{{ .Task.ID }}: {{ .Task.Description }}\n" +
		"Deadline: {{ date .Task.Deadline }}\n" +
		"1 day left until the deadline!"
	defaultAssignmentMessage = "You have been assigned a new task.\n\n" +
		"Task #{{ .Task.ID }}: {{ .Task.Description }}\n" +
		"Deadline: {{ date .Task.Deadline }}\n" +
		"Status: {{ .Task.Status }}"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	persist := true
	return Config{
		Admins:   []int64{},
		Timezone: "Europe/Moscow",
		Reminders: Reminders{
			Time:       "09:00",
			Resolution: time.Minute,
			Workers:    4,
			Ledger:     LedgerSQLite,
			LedgerTTL:  72 * time.Hour,
			Thresholds: []Threshold{
				{Days: 7, Message: defaultReminderMessage},
				{Days: 1, Message: defaultUrgentMessage},
			},
		},
		Notifier: Notifier{Driver: NotifierOutbox},
		Redis: Redis{
			Addr:          "localhost:6379",
			ChannelPrefix: "taskbot:notify:",
			KeyPrefix:     "taskbot:reminder:",
		},
		Conversations: Conversations{Persist: &persist},
		Database: Database{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5000,
		},
		Messages: Messages{Assignment: defaultAssignmentMessage},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			// Thresholds replace the defaults wholesale rather than merging by index.
			cfg.Reminders.Thresholds = nil
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Timezone == "" {
		c.Timezone = defaults.Timezone
	}
	if c.Reminders.Time == "" {
		c.Reminders.Time = defaults.Reminders.Time
	}
	if c.Reminders.Resolution == 0 {
		c.Reminders.Resolution = defaults.Reminders.Resolution
	}
	if c.Reminders.Workers == 0 {
		c.Reminders.Workers = defaults.Reminders.Workers
	}
	if c.Reminders.Ledger == "" {
		c.Reminders.Ledger = defaults.Reminders.Ledger
	}
	if c.Reminders.LedgerTTL == 0 {
		c.Reminders.LedgerTTL = defaults.Reminders.LedgerTTL
	}
	if len(c.Reminders.Thresholds) == 0 {
		c.Reminders.Thresholds = defaults.Reminders.Thresholds
	}
	for i := range c.Reminders.Thresholds {
		if c.Reminders.Thresholds[i].Message == "" {
			c.Reminders.Thresholds[i].Message = defaultReminderMessage
		}
	}
	if c.Notifier.Driver == "" {
		c.Notifier.Driver = defaults.Notifier.Driver
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = defaults.Redis.Addr
	}
	if c.Redis.ChannelPrefix == "" {
		c.Redis.ChannelPrefix = defaults.Redis.ChannelPrefix
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = defaults.Redis.KeyPrefix
	}
	if c.Conversations.Persist == nil {
		c.Conversations.Persist = defaults.Conversations.Persist
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Messages.Assignment == "" {
		c.Messages.Assignment = defaults.Messages.Assignment
	}
}

// Validate checks that the configuration is structurally valid and caches
// the resolved timezone.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	c.location = loc

	if _, _, err := c.ReminderClock(); err != nil {
		return err
	}

	if c.Reminders.Resolution < time.Second {
		return fmt.Errorf("reminders.resolution must be at least 1s")
	}
	if c.Reminders.Workers < 1 {
		return fmt.Errorf("reminders.workers must be at least 1")
	}
	if c.Reminders.LedgerTTL < 0 {
		return fmt.Errorf("reminders.ledger_ttl cannot be negative")
	}

	switch c.Reminders.Ledger {
	case LedgerSQLite, LedgerRedis:
	default:
		return fmt.Errorf("reminders.ledger must be %q or %q, got %q", LedgerSQLite, LedgerRedis, c.Reminders.Ledger)
	}

	switch c.Notifier.Driver {
	case NotifierOutbox, NotifierRedis:
	default:
		return fmt.Errorf("notifier.driver must be %q or %q, got %q", NotifierOutbox, NotifierRedis, c.Notifier.Driver)
	}

	seen := make(map[int]bool, len(c.Reminders.Thresholds))
	for i, th := range c.Reminders.Thresholds {
		if th.Days < 0 {
			return fmt.Errorf("reminders.thresholds[%d].days cannot be negative", i)
		}
		if seen[th.Days] {
			return fmt.Errorf("reminders.thresholds[%d]: duplicate days %d", i, th.Days)
		}
		seen[th.Days] = true
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}

	return nil
}

// Location returns the governing timezone. Valid after Validate.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return time.UTC
		}
		c.location = loc
	}
	return c.location
}

// ReminderClock parses Reminders.Time into hour and minute.
func (c *Config) ReminderClock() (int, int, error) {
	t, err := time.Parse("15:04", c.Reminders.Time)
	if err != nil {
		return 0, 0, fmt.Errorf("reminders.time must be HH:MM, got %q", c.Reminders.Time)
	}
	return t.Hour(), t.Minute(), nil
}

// ThresholdDays returns the configured day counts in declaration order.
func (c *Config) ThresholdDays() []int {
	days := make([]int, 0, len(c.Reminders.Thresholds))
	for _, th := range c.Reminders.Thresholds {
		days = append(days, th.Days)
	}
	return days
}

// ThresholdMessage returns the template for a day count.
func (c *Config) ThresholdMessage(days int) (string, bool) {
	for _, th := range c.Reminders.Thresholds {
		if th.Days == days {
			return th.Message, true
		}
	}
	return "", false
}

// IsAdmin reports whether identity is in the admin allow-list.
func (c *Config) IsAdmin(identity int64) bool {
	return slices.Contains(c.Admins, identity)
}

// AddAdmins merges identities into the allow-list, skipping duplicates.
func (c *Config) AddAdmins(ids ...int64) {
	for _, id := range ids {
		if !c.IsAdmin(id) {
			c.Admins = append(c.Admins, id)
		}
	}
}

// PersistConversations reports whether dialog state is stored in the database.
func (c *Config) PersistConversations() bool {
	return c.Conversations.Persist == nil || *c.Conversations.Persist
}

// ParseAdminIDs parses a comma separated list of identities, as supplied
// through the environment.
func ParseAdminIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("admin id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
