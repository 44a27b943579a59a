// Package logutils builds the process logger.
package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// New returns a logger at the named level (debug, info, warn, error, fatal).
//
// With a file the logger appends JSON lines to it and the returned func
// closes the file. Without one it writes to stderr, keeping stdout for
// command output; an interactive stderr gets the console format unless
// NO_COLOR is set.
func New(level string, file string) (zerolog.Logger, func(), error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, func() {}, fmt.Errorf("log level %q: %w", level, err)
	}

	w, closer, err := output(file)
	if err != nil {
		return zerolog.Logger{}, func() {}, err
	}

	return zerolog.New(w).With().Timestamp().Logger().Level(lvl), closer, nil
}

func output(file string) (io.Writer, func(), error) {
	if file == "" {
		if !term.IsTerminal(int(os.Stderr.Fd())) {
			return os.Stderr, func() {}, nil
		}
		_, noColor := os.LookupEnv("NO_COLOR")
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen, NoColor: noColor}, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
