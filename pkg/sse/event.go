// Package sse provides a minimal, purpose-built decoder for the line-oriented
// event stream emitted by the willAIam backend. The wire grammar is a small
// subset of SSE (Server-Sent Events):
//
//	event: <name>\n       optional; names the next data frame
//	data: <payload>\n     emits one frame; newlines escaped as \n
//	\n                    blank line resets the event name to default
//
// The stream terminates with a default-event frame whose payload is the
// literal token [DONE], or by the transport closing naturally.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
package sse

// DefaultEvent is the event name carried by frames that had no preceding
// "event:" line. Default frames carry answer content.
const DefaultEvent = ""

// TraceIDEvent names frames carrying the correlation trace id for the
// in-flight answer. Trace frames are out-of-band: they never contribute to
// answer content.
const TraceIDEvent = "trace_id"

// DoneSentinel is the reserved default-event payload marking normal stream
// termination. It is consumed by the Reader and never surfaced as a frame.
const DoneSentinel = "[DONE]"

// Event represents a single decoded frame from the stream.
type Event struct {
	// Type is the frame's event name from the preceding "event:" line.
	// DefaultEvent (empty string) means answer content.
	Type string

	// Data is the frame payload with \n escape sequences expanded to real
	// newlines. It is otherwise preserved byte-for-byte, including leading
	// and trailing spaces.
	Data string
}
