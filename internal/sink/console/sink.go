// Package console writes frame reports to a line-oriented text stream.
package console

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"firestige.xyz/sniffer/internal/core"
)

// Sink writes one complete report per Send and flushes before returning, so
// reports never interleave and a slow reader holds back the next frame.
type Sink struct {
	mu sync.Mutex
	w  *bufio.Writer
}

// NewSink creates a sink writing to w (typically os.Stdout).
func NewSink(w io.Writer) *Sink {
	return &Sink{w: bufio.NewWriterSize(w, 16*1024)}
}

// Send writes report and flushes it. Write failures are wrapped with
// core.ErrRenderFailure and are not retried.
func (s *Sink) Send(report string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.WriteString(report); err != nil {
		return fmt.Errorf("%w: write: %w", core.ErrRenderFailure, err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("%w: flush: %w", core.ErrRenderFailure, err)
	}
	return nil
}

// Close flushes anything still buffered.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("%w: flush: %w", core.ErrRenderFailure, err)
	}
	return nil
}
