package taskbot

import (
	"fmt"
	"strings"
	"time"

	"github.com/hay-kot/taskbot/internal/core/task"
)

// DeadlineLayout is the day-first input format for deadlines.
const DeadlineLayout = "02.01.2006 15:04"

// ParseTime parses "DD.MM.YYYY HH:MM" in loc. RFC 3339 timestamps are also
// accepted; the instant is kept and moved into loc, the zone reminder days
// are counted in.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := time.ParseInLocation(DeadlineLayout, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}

	return time.Time{}, fmt.Errorf("%w: %q, expected DD.MM.YYYY HH:MM", task.ErrInvalidFormat, s)
}

// ParseDeadline is ParseTime for the required deadline field.
func ParseDeadline(s string, loc *time.Location) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, fmt.Errorf("%w: deadline is required", task.ErrInvalidFormat)
	}

	t, err := ParseTime(s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("deadline: %w", err)
	}
	return t, nil
}
