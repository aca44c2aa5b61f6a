package services

import (
	"errors"
	"fmt"
	"net/url"
)

// TransportError means no HTTP response was received at all.
type TransportError struct {
	Err error
}

// Error never prints the request URL: it carries the API key.
func (e *TransportError) Error() string {
	var urlErr *url.Error
	if errors.As(e.Err, &urlErr) {
		return fmt.Sprintf("gemini transport error: %s: %v", urlErr.Op, urlErr.Err)
	}
	return fmt.Sprintf("gemini transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
