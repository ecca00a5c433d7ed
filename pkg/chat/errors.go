package chat

import "errors"

// ErrAlreadyStreaming is returned by Start while another turn is pending or
// streaming. Callers needing stop-and-restart must Cancel first. The call
// mutates no state.
var ErrAlreadyStreaming = errors.New("a turn is already streaming for this conversation")
