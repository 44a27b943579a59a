package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// ErrNoInput is returned by FileReader.Read when no file was named and
// stdin is an interactive terminal.
var ErrNoInput = errors.New("no input: pass --file or pipe JSON on stdin")

// FileReader decodes one JSON document of type T from the path given by its
// --file flag. An unset path or "-" reads stdin.
type FileReader[T any] struct {
	path  string
	stdin io.Reader
}

// WithStdin replaces os.Stdin as the fallback source.
func (fr *FileReader[T]) WithStdin(r io.Reader) *FileReader[T] {
	fr.stdin = r
	return fr
}

// Flag returns the --file flag bound to the reader.
func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "JSON file to read, - or unset for stdin",
		Destination: &fr.path,
	}
}

func (fr *FileReader[T]) Read() (T, error) {
	var v T

	r, closer, err := fr.open()
	if err != nil {
		return v, err
	}
	defer closer()

	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return v, fmt.Errorf("decode JSON: %w", err)
	}
	return v, nil
}

func (fr *FileReader[T]) open() (io.Reader, func(), error) {
	if fr.path != "" && fr.path != "-" {
		f, err := os.Open(fr.path)
		if err != nil {
			return nil, nil, fmt.Errorf("open input: %w", err)
		}
		return f, func() { _ = f.Close() }, nil
	}

	if fr.stdin != nil {
		return fr.stdin, func() {}, nil
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, nil, ErrNoInput
	}
	return os.Stdin, func() {}, nil
}
