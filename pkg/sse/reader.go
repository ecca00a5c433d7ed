package sse

import (
	"io"
	"strings"
)

// Reader decodes the reassembled line sequence into Event frames.
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
//          │
//          ▼
// ┌──────────────────┐
// │     Scanner      │  fragments → complete lines
// └──────────────────┘
//          │
//          ▼
// ┌──────────────────┐
// │  Reader.Next()   │  lines → frames
// └──────────────────┘
//
// The decoder is deliberately lenient: any line that is not an "event:" or
// "data:" field is skipped. Content payloads are free text, so a line must
// never be rejected for containing a colon or the word "data".
type Reader struct {
	scanner *Scanner

	// event is the current event name, set by "event:" lines and reset to
	// DefaultEvent after every emitted frame and on blank lines.
	event string

	done bool
}

// NewReader returns a Reader decoding frames from src.
func NewReader(src io.Reader) *Reader {
	return &Reader{
		scanner: NewScanner(src),
		event:   DefaultEvent,
	}
}

// Next returns the next decoded frame. It returns (nil, nil) when the stream
// has ended, either by the DoneSentinel or by the transport closing; Done
// distinguishes the two. Transport read errors are returned as-is.
func (r *Reader) Next() (*Event, error) {
	if r.done {
		return nil, nil
	}

	for {
		line, err := r.scanner.Next()
		if err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, err
		}

		// A blank line resets the event name to default.
		if line == "" {
			r.event = DefaultEvent
			continue
		}

		field, value, ok := strings.Cut(line, ":")
		if !ok {
			// No colon: not a protocol field, skip.
			continue
		}

		// A single space after the colon is separator; everything beyond it
		// belongs to the payload.
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			r.event = value

		case "data":
			data := unescape(value)
			if r.event == DefaultEvent && data == DoneSentinel {
				r.done = true
				return nil, nil
			}
			ev := &Event{Type: r.event, Data: data}
			r.event = DefaultEvent
			return ev, nil

		default:
			// Unknown field, skip.
		}
	}
}

// Done reports whether the stream ended with the DoneSentinel rather than
// the transport closing on its own.
func (r *Reader) Done() bool {
	return r.done
}

// unescape expands the two-character \n escape sequences the backend uses to
// keep payloads single-line.
func unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
