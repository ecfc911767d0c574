package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aleister1102/ayumi/internal/common/errorwrapper"
)

// JSONLWriter appends one JSON object per line to a file. Write is safe for
// concurrent use and each record is flushed whole, so readers never observe
// an interleaved line.
type JSONLWriter struct {
	mu     sync.Mutex
	file   *os.File
	buf    *bufio.Writer
	path   string
	count  int
	closed bool
}

// OpenJSONL opens path for appending, creating it and its directory if needed
func OpenJSONL(path string) (*JSONLWriter, error) {
	if path == "" {
		return nil, errorwrapper.NewValidationError("output", path, "output path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to create output directory")
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errorwrapper.WrapError(err, fmt.Sprintf("failed to open output file %s", path))
	}

	return &JSONLWriter{
		file: f,
		buf:  bufio.NewWriter(f),
		path: path,
	}, nil
}

// Write encodes v as a single line
func (w *JSONLWriter) Write(v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to encode record")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errorwrapper.NewError("write to closed output %s", w.path)
	}
	if _, err := w.buf.Write(append(line, '\n')); err != nil {
		return errorwrapper.WrapError(err, "failed to write record")
	}
	if err := w.buf.Flush(); err != nil {
		return errorwrapper.WrapError(err, "failed to flush record")
	}
	w.count++
	return nil
}

// Count returns the number of records written so far
func (w *JSONLWriter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Path returns the file path
func (w *JSONLWriter) Path() string {
	return w.path
}

// Close flushes and closes the file. Closing twice is a no-op.
func (w *JSONLWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	if flushErr != nil {
		return errorwrapper.WrapError(flushErr, "failed to flush output")
	}
	if closeErr != nil {
		return errorwrapper.WrapError(closeErr, "failed to close output")
	}
	return nil
}
