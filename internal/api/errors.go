package api

import (
	"errors"
	"fmt"
)

// Error is a structured non-2xx API response. It is always propagated to
// the caller untouched; a server rejection must never be absorbed into an
// optimistic local write.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsDomainError reports whether err is a structured server rejection rather
// than a transport failure.
func IsDomainError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr)
}
