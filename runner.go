package main

import (
	"context"
	"fmt"
	"io"

	"gregoryjjb/camelot/script"
)

// RunScript runs the script read from r against a fresh table and writes
// one line to w for every command that produces output.
func RunScript(ctx context.Context, r io.Reader, w io.Writer) error {
	cmds, err := script.Parse(r)
	if err != nil {
		return err
	}

	s := NewSession(ctx, "script", 0)
	defer s.Close()

	outputs, _, execErr := s.Exec(ctx, cmds)
	for _, out := range outputs {
		if _, err := fmt.Fprintln(w, out); err != nil {
			return err
		}
	}
	return execErr
}

// OpenScript opens the script named on the command line. "-" is stdin.
func OpenScript(fs CamelotFS, name string, stdin io.Reader) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(stdin), nil
	}

	path, err := ResolvePath(fs, name)
	if err != nil {
		return nil, err
	}
	return fs.Open(path)
}
