package types

import "errors"

// Sentinel kinds shared by the service and its transports.
var (
	// ErrNotFound marks an unknown session, chart or workbook entry.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable marks a request refused for lack of capacity.
	ErrUnavailable = errors.New("unavailable")
)
