package activitylog

import (
	"errors"
	"fmt"
)

// TransportError reports that the log source could not be reached.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError reports a non-2xx response from the log source.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: server returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: server returned status %d: %s", e.Op, e.StatusCode, e.Message)
}

// NotFoundError reports a detail lookup against an unknown log id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("activity log %d not found", e.ID)
}

// ValidationError reports facet input that cannot form a query.
type ValidationError struct {
	Facet   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Facet == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Facet, e.Message)
}

// QueryError is the normalised failure stored in engine state. Message is safe to show an operator.
type QueryError struct {
	Op      string
	Message string
	Err     error
}

func (e *QueryError) Error() string {
	return e.Message
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// normalizeError folds source failures into a QueryError. Not-found and validation errors pass
// through unchanged so callers can tell them apart.
func normalizeError(op string, err error) error {
	if err == nil {
		return nil
	}

	var (
		queryErr      *QueryError
		notFound      *NotFoundError
		validationErr *ValidationError
		transportErr  *TransportError
		serverErr     *ServerError
	)
	switch {
	case errors.As(err, &queryErr):
		return queryErr
	case errors.As(err, &notFound):
		return notFound
	case errors.As(err, &validationErr):
		return validationErr
	case errors.As(err, &transportErr):
		return &QueryError{Op: op, Message: fmt.Sprintf("failed to %s: the activity log service is unreachable", op), Err: err}
	case errors.As(err, &serverErr):
		message := serverErr.Message
		if message == "" {
			message = fmt.Sprintf("failed to %s (status %d)", op, serverErr.StatusCode)
		}
		return &QueryError{Op: op, Message: message, Err: err}
	default:
		return &QueryError{Op: op, Message: fmt.Sprintf("failed to %s", op), Err: err}
	}
}
