package core

import (
	"errors"
)

// Error kinds. Concrete errors wrap one of these; classify with errors.Is.
var (
	// ErrResolution means a reference or catalog lookup, or a reference insert, failed.
	ErrResolution = errors.New("resolution failed")

	// ErrInsert means a catalog entry or alternate link insert failed.
	ErrInsert = errors.New("insert failed")

	// ErrConnection means no session to the catalog store could be opened.
	ErrConnection = errors.New("catalog connection failed")

	// ErrSession means a savepoint or commit statement failed.
	ErrSession = errors.New("transaction control failed")

	// ErrRunNotFound is returned when an import run ID is unknown.
	ErrRunNotFound = errors.New("import run not found")
)

// ErrorKind names the kind of err for logs and failure reports.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrResolution):
		return "resolution"
	case errors.Is(err, ErrInsert):
		return "insert"
	case errors.Is(err, ErrConnection):
		return "connection"
	case errors.Is(err, ErrSession):
		return "session"
	default:
		return "unknown"
	}
}
