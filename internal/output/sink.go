package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrSink indicates the output destination could not be written.
var ErrSink = errors.New("output sink error")

// StdoutPath selects standard output as the sink.
const StdoutPath = "-"

// Sink is an output destination that counts the bytes written to it.
type Sink struct {
	Path  string
	w     io.Writer
	c     io.Closer
	bytes uint64
}

// Create opens path for writing, creating parent directories as needed.
// An existing file is truncated. StdoutPath writes to os.Stdout.
func Create(path string) (*Sink, error) {
	if path == StdoutPath || path == "" {
		return &Sink{Path: StdoutPath, w: os.Stdout}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: failed to create directory %s: %v", ErrSink, dir, err)
		}
	}

	f, err := os.Create(path) //#nosec G304 -- CLI tool writes to user-specified output file
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create %s: %v", ErrSink, path, err)
	}
	return &Sink{Path: path, w: f, c: f}, nil
}

// Write implements io.Writer.
func (s *Sink) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	s.bytes += uint64(n)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrSink, err)
	}
	return n, nil
}

// Bytes returns the number of bytes written so far.
func (s *Sink) Bytes() uint64 {
	return s.bytes
}

// Close closes the underlying file. Closing stdout is a no-op.
func (s *Sink) Close() error {
	if s.c == nil {
		return nil
	}
	if err := s.c.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrSink, err)
	}
	return nil
}
