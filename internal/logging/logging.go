// Package logging builds the timestamped loggers used by the training tools.
package logging

import (
	"bytes"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// TimeFormat is the prefix layout written at the start of every line.
const TimeFormat = "[2006/01/02-15:04:05]-"

type stampWriter struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
	buf []byte
}

func (s *stampWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(p)
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		line := p
		if i >= 0 {
			line = p[:i+1]
		}
		s.buf = s.buf[:0]
		s.buf = s.now().AppendFormat(s.buf, TimeFormat)
		s.buf = append(s.buf, ' ')
		s.buf = append(s.buf, line...)
		if _, err := s.w.Write(s.buf); err != nil {
			return 0, err
		}
		p = p[len(line):]
	}
	return n, nil
}

// New returns a logger whose lines start with the local time in TimeFormat.
func New(w io.Writer) *log.Logger {
	return NewWithClock(w, time.Now)
}

// NewWithClock is New with an explicit clock.
func NewWithClock(w io.Writer, now func() time.Time) *log.Logger {
	return log.New(&stampWriter{w: w, now: now}, "", 0)
}

// Default logs to stdout.
func Default() *log.Logger {
	return New(os.Stdout)
}

// Discard is used where a caller passes a nil logger.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
