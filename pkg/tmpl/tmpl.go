// Package tmpl renders user-configurable message templates.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// DateLayout is the day-first layout used for deadlines in messages.
const DateLayout = "02.01.2006 15:04"

// Renderer executes Go templates with the message helper functions bound to
// a display location.
type Renderer struct {
	funcs template.FuncMap
}

// New returns a renderer that formats times in loc. A nil loc means UTC.
func New(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}

	return &Renderer{funcs: template.FuncMap{
		"date":  func(t time.Time) string { return t.In(loc).Format(DateLayout) },
		"day":   func(t time.Time) string { return t.In(loc).Format("02.01.2006") },
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"join":  strings.Join,
		"plural": func(n int, one, many string) string {
			if n == 1 {
				return one
			}
			return many
		},
	}}
}

// NewValidation returns a renderer for syntax checking configured templates.
// Output is discarded by callers; only parse and missing-key errors matter.
func NewValidation() *Renderer {
	return New(time.UTC)
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - date: format a time as DD.MM.YYYY HH:MM in the renderer's location
//   - day: format a time as DD.MM.YYYY
//   - plural: pick a word by count (e.g., plural .Days "day" "days")
//   - upper, lower, join
func (r *Renderer) Render(text string, data any) (string, error) {
	t, err := template.New("").Funcs(r.funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}

// Render executes text with a UTC renderer.
func Render(text string, data any) (string, error) {
	return New(time.UTC).Render(text, data)
}
