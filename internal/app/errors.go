package app

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotConnected is returned when a query is run on a runner without an
// open connection: it was closed, or it was loaded from a snapshot.
var ErrNotConnected = errors.New("not connected to a database")

// ErrNoResult is returned when an operation needs a result table and no
// query has produced one yet.
var ErrNoResult = errors.New("no result table")

// ErrConnection represents a database connection error.
type ErrConnection struct {
	Driver string
	Cause  error
}

func (e *ErrConnection) Error() string {
	if e.Driver == "" {
		return fmt.Sprintf("connection error: %v", e.Cause)
	}
	return fmt.Sprintf("connection error (%s): %v", e.Driver, e.Cause)
}

func (e *ErrConnection) Unwrap() error {
	return e.Cause
}

// ErrRejectedQuery is returned for statements that are not SELECT queries.
// Nothing is sent to the server.
type ErrRejectedQuery struct {
	Query string
}

func (e *ErrRejectedQuery) Error() string {
	return "query rejected: only SELECT statements are allowed"
}

// ErrQuery represents a query execution error.
type ErrQuery struct {
	Query string
	Cause error
}

func (e *ErrQuery) Error() string {
	return fmt.Sprintf("query error: %v", e.Cause)
}

func (e *ErrQuery) Unwrap() error {
	return e.Cause
}

// ErrMissingColumn is returned when the result table lacks a column needed
// for plotting.
type ErrMissingColumn struct {
	Columns []string
}

func (e *ErrMissingColumn) Error() string {
	return "missing columns: " + strings.Join(e.Columns, ", ")
}

// ErrConfig represents a configuration error.
type ErrConfig struct {
	Cause error
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("config error: %v", e.Cause)
}

func (e *ErrConfig) Unwrap() error {
	return e.Cause
}

// IsSoft reports whether err is a condition the caller should treat as a
// warning: a rejected query or a missing plot column.
func IsSoft(err error) bool {
	var rejected *ErrRejectedQuery
	var missing *ErrMissingColumn
	return errors.As(err, &rejected) || errors.As(err, &missing)
}
