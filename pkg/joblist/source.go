// Package joblist turns line-oriented job lists into transfer jobs.
//
// Input is CSV-ish: one job per line, comma-separated columns, optional
// metadata column of space-separated key=value pairs. Lines come from a file
// or stdin.
package joblist

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// StdinPath is the conventional path value selecting stdin.
const StdinPath = "-"

// Open returns a reader for the job list at path. "-" or an empty path
// selects stdin.
func Open(path string) (io.ReadCloser, error) {
	if path == "" || path == StdinPath {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// ReadLines reads all non-blank lines from r, trimmed of surrounding
// whitespace. Blank lines are silently dropped.
func ReadLines(r io.Reader) ([]string, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)

	var out []string
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
