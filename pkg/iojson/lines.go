package iojson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DecodeLines decodes a stream of JSON values (one per line, or any
// whitespace separation) and calls fn for each until EOF, ctx is cancelled,
// or fn returns an error.
func DecodeLines[T any](ctx context.Context, r io.Reader, fn func(T) error) error {
	dec := json.NewDecoder(r)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var v T
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode JSON line: %w", err)
		}

		if err := fn(v); err != nil {
			return err
		}
	}
}
