package api

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Error is returned for any non-2xx backend response outside the handled
// unauthorized-retry path. It carries the HTTP status code and the raw
// response body (the backend returns plain-text error messages).
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

// IsUnauthorized reports whether err is an API error with status 401.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

var errPrefix = regexp.MustCompile(`^API error \(\d+\): `)

// CleanMessage strips the "API error (<code>): " prefix from an error
// message so it can be shown to the user as-is.
func CleanMessage(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimSpace(errPrefix.ReplaceAllString(err.Error(), ""))
}
