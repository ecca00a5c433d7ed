// Package voice consumes discrete realtime-session events and routes them
// into a conversation store. Unlike the HTTP stream, voice events arrive
// whole; only the routing contract lives here, audio transport does not.
package voice

// Realtime event types the consumer routes.
const (
	// EventUserTranscriptCompleted carries the final transcript of the
	// user's spoken turn.
	EventUserTranscriptCompleted = "conversation.item.input_audio_transcription.completed"

	// EventResponseTextDelta carries a fragment of the assistant's text
	// response.
	EventResponseTextDelta = "response.text.delta"

	// EventResponseAudioTranscriptDelta carries a fragment of the
	// transcript of the assistant's spoken response.
	EventResponseAudioTranscriptDelta = "response.audio_transcript.delta"

	// EventResponseStarted marks the beginning of an assistant response.
	EventResponseStarted = "response.output_item.added"

	// EventResponseDone marks the end of an assistant response.
	EventResponseDone = "response.done"

	// EventError reports a session error.
	EventError = "error"
)

// Event is one discrete realtime-session event.
type Event struct {
	Type       string        `json:"type"`
	Transcript string        `json:"transcript,omitempty"`
	Delta      string        `json:"delta,omitempty"`
	Item       *Item         `json:"item,omitempty"`
	Error      *SessionError `json:"error,omitempty"`
}

// Item describes the conversation item an event refers to.
type Item struct {
	Type string `json:"type"`
}

// SessionError is the error payload of an EventError event.
type SessionError struct {
	Message string `json:"message"`
}
