package stores

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/hay-kot/taskbot/internal/core/task"
	"github.com/hay-kot/taskbot/internal/data/db"
)

func rowToTask(row db.Task) task.Task {
	t := task.Task{
		ID:          row.ID,
		Description: row.Description,
		Assignee:    row.Assignee,
		Deadline:    time.Unix(0, row.Deadline).In(loadZone(row.DeadlineTz)),
		Status:      task.Status(row.Status),
		CreatedAt:   time.Unix(0, row.CreatedAt),
		Comment:     fromNullString(row.Comment),
	}

	if row.CompletedAt.Valid {
		at := time.Unix(0, row.CompletedAt.Int64)
		t.CompletedAt = &at
	}

	return t
}

func rowsToTasks(rows []db.Task) []task.Task {
	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, rowToTask(row))
	}
	return tasks
}

func rowToUser(row db.User) task.User {
	return task.User{
		Identity:     row.UserID,
		Handle:       row.Handle,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		RegisteredAt: time.Unix(0, row.RegisteredAt),
	}
}

// zoneName is the deadline_tz value for t. Unnamed fixed zones, as produced
// by parsing an RFC 3339 offset, are stored as "+HH:MM".
func zoneName(t time.Time) string {
	if name := t.Location().String(); name != "" {
		return name
	}

	_, offset := t.Zone()
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("%c%02d:%02d", sign, offset/3600, offset%3600/60)
}

// loadZone resolves a stored zone name, falling back to UTC for names the
// host tz database does not know.
func loadZone(name string) *time.Location {
	switch name {
	case "":
		return time.UTC
	case "Local":
		return time.Local
	}
	if offset, ok := parseOffset(name); ok {
		return time.FixedZone("", offset)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseOffset(s string) (int, bool) {
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return 0, false
	}
	h, err := strconv.Atoi(s[1:3])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(s[4:])
	if err != nil {
		return 0, false
	}

	offset := h*3600 + m*60
	if s[0] == '-' {
		offset = -offset
	}
	return offset, true
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
