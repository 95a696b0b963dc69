package airtable

import "fmt"

// APIError is returned when the Airtable API answers with a non-2xx status.
// It keeps the status code and the raw response body so a failed batch can be
// diagnosed without re-running it.
type APIError struct {
	Method     string
	Table      string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("airtable: %s %s returned status %d: %s", e.Method, e.Table, e.StatusCode, e.Body)
}
