package sse

import (
	"bufio"
	"io"
	"strings"
)

// Scanner reassembles the transport's arbitrary read fragments into complete,
// newline-terminated protocol lines. The trailing incomplete fragment is held
// in the underlying buffered reader between calls, so line boundaries are
// invariant to where the transport happens to split its reads.
type Scanner struct {
	r *bufio.Reader
}

// NewScanner returns a Scanner reading protocol lines from src.
func NewScanner(src io.Reader) *Scanner {
	return &Scanner{
		r: bufio.NewReaderSize(src, 64*1024),
	}
}

// Next returns the next complete line with its newline (and any trailing
// carriage return) stripped. It returns io.EOF when the source is exhausted.
//
// A trailing unterminated line at end of stream is not protocol-valid and is
// discarded, never emitted.
func (s *Scanner) Next() (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			// Residual bytes without a terminating newline are dropped.
			return "", io.EOF
		}
		return "", err
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}
