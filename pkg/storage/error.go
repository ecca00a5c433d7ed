package storage

// NotFoundError is returned when no record exists under the requested key.
type NotFoundError struct {
	Key string
}

func (e NotFoundError) Error() string {
	if e.Key == "" {
		return "record not found"
	}

	return "record not found: " + e.Key
}
