// Package countsink wraps an io.Writer so the archive writer can assign
// byte offsets to objects as it streams them out (spec component C2).
package countsink

import "io"

// Sink wraps an io.Writer and tracks the total number of bytes written
// through it.
type Sink struct {
	w     io.Writer
	count uint64
}

// New returns a Sink wrapping w.
func New(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Write implements io.Writer, forwarding to the wrapped writer and
// accumulating the byte count.
func (s *Sink) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	s.count += uint64(n)
	return n, err
}

// Count returns the number of bytes written through the sink so far.
func (s *Sink) Count() uint64 {
	return s.count
}
