package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/taskbot/internal/core/task"
	"github.com/hay-kot/taskbot/internal/core/validate"
	"github.com/hay-kot/taskbot/pkg/tmpl"
)

// MessageData defines the fields available to reminder and assignment templates.
type MessageData struct {
	Task task.Task // the task the message is about
	Days int       // calendar days left until the deadline (0 for assignments)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// template syntax, redis address shape, and file accessibility. The configPath
// argument specifies the config file location to validate (empty string skips
// the config file check). This calls Validate() first for basic structural
// validation.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		criterio.Run("timezone", c.Timezone, validate.Timezone),
		criterio.Run("reminders.time", c.Reminders.Time, validate.ClockTime),
		c.validateRedis(),
		c.validateTemplates(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if len(c.Admins) == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Admins",
			Message:  "no admin identities configured; tasks cannot be created or deleted",
		})
	}

	for i, th := range c.Reminders.Thresholds {
		if th.Days == 0 {
			warnings = append(warnings, ValidationWarning{
				Category: "Reminders",
				Item:     fmt.Sprintf("thresholds[%d]", i),
				Message:  "a 0-day threshold fires on the deadline day itself",
			})
		}
	}

	if !c.PersistConversations() {
		warnings = append(warnings, ValidationWarning{
			Category: "Conversations",
			Message:  "completion dialogs are kept in memory and lost on restart",
		})
	}

	return warnings
}

// validateFileAccess checks the config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// validateRedis checks the redis address only when a component uses redis.
func (c *Config) validateRedis() error {
	if !c.UsesRedis() {
		return nil
	}

	var errs criterio.FieldErrorsBuilder
	if _, _, err := net.SplitHostPort(c.Redis.Addr); err != nil {
		errs = errs.Append("redis.addr", fmt.Errorf("expected host:port: %w", err))
	}
	if c.Redis.DB < 0 {
		errs = errs.Append("redis.db", fmt.Errorf("cannot be negative"))
	}
	return errs.ToError()
}

// UsesRedis reports whether any configured backend needs a redis connection.
func (c *Config) UsesRedis() bool {
	return c.Reminders.Ledger == LedgerRedis || c.Notifier.Driver == NotifierRedis
}

// validateTemplates renders every message template against sample data.
func (c *Config) validateTemplates() error {
	var errs criterio.FieldErrorsBuilder

	for i, th := range c.Reminders.Thresholds {
		if err := validateTemplate(th.Message, sampleMessageData(th.Days)); err != nil {
			errs = errs.Append(fmt.Sprintf("reminders.thresholds[%d].message", i), fmt.Errorf("template error: %w", err))
		}
	}

	if err := validateTemplate(c.Messages.Assignment, sampleMessageData(0)); err != nil {
		errs = errs.Append("messages.assignment", fmt.Errorf("template error: %w", err))
	}

	return errs.ToError()
}

func sampleMessageData(days int) MessageData {
	deadline := time.Date(2030, 1, 1, 18, 0, 0, 0, time.UTC)
	return MessageData{
		Task: task.Task{
			ID:          1,
			Description: "sample task",
			Assignee:    "sample",
			Deadline:    deadline,
			Status:      task.StatusTodo,
			CreatedAt:   deadline.AddDate(0, 0, -days-1),
		},
		Days: days,
	}
}

// validationRenderer is used for template syntax checking during config validation.
var validationRenderer = tmpl.NewValidation()

// validateTemplate checks if a template string is valid.
func validateTemplate(tmplStr string, data any) error {
	_, err := validationRenderer.Render(tmplStr, data)
	return err
}
