// Package deferred provides a writer that buffers output for later replay.
package deferred

import (
	"bytes"
	"io"
	"sync"
)

// Writer buffers everything written to it. While a TUI owns the terminal,
// log output is routed here and flushed to the console after exit.
type Writer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

// Flush writes the buffered output to out and resets the buffer.
func (w *Writer) Flush(out io.Writer) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() == 0 {
		return nil
	}
	_, err := io.Copy(out, &w.buf)
	w.buf.Reset()
	return err
}
