// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
)

// Description validates a task description is non-empty after trimming whitespace.
func Description(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("description is required")
	}
	return nil
}

// Handle validates a chat handle. A single leading "@" is allowed; the rest
// may contain letters, digits and underscores.
func Handle(h string) error {
	h = strings.TrimPrefix(strings.TrimSpace(h), "@")
	if h == "" {
		return fmt.Errorf("handle is required")
	}
	for _, r := range h {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return fmt.Errorf("handle %q contains invalid character %q", h, r)
		}
	}
	return nil
}

// Comment validates a completion comment is non-empty.
func Comment(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("comment is required")
	}
	return nil
}

// ClockTime validates a HH:MM wall-clock time.
func ClockTime(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("expected HH:MM, got %q", s)
	}
	return nil
}

// Timezone validates an IANA zone name.
func Timezone(name string) error {
	if name == "" {
		return fmt.Errorf("timezone is required")
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("unknown timezone %q", name)
	}
	return nil
}

// HandleField returns a criterio validator for handles.
func HandleField(field, h string) error {
	return criterio.Run(field, h, Handle)
}

// DescriptionField returns a criterio validator for descriptions.
func DescriptionField(field, s string) error {
	return criterio.Run(field, s, Description)
}
