package service

import "errors"

// Sentinel errors returned by the service.
var (
	// ErrNotStarted is returned when an operation runs before Start or after Stop.
	ErrNotStarted = errors.New("service not started")
	// ErrReadWorkbook wraps every failure to ingest an uploaded workbook.
	ErrReadWorkbook = errors.New("read workbook")
)
