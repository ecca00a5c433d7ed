package backend

import "fmt"

// TransportError reports a failed exchange with the backend: either the
// request never completed (Cause set) or the backend answered with a
// non-200 status before the first frame (Status, and Body when one was
// readable).
type TransportError struct {
	Status int
	Body   string
	Cause  error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("backend transport: %v", e.Cause)
	}
	if e.Body != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}
