package core

import "errors"

var (
	// ErrEmptyRecord is returned by a manual save when every field is blank.
	ErrEmptyRecord = errors.New("empty record: every field is blank")

	// ErrInvalidState is returned when a workflow action does not apply to
	// the current state.
	ErrInvalidState = errors.New("invalid workflow state")

	// ErrNoFile is returned by Upload when no file has been selected.
	ErrNoFile = errors.New("no file provided")

	// ErrSomeDeletesFailed is returned when at least one row of a bulk
	// delete could not be removed.
	ErrSomeDeletesFailed = errors.New("some deletions failed")

	// ErrUnsupportedDocument is returned by Ingest for files that are not
	// PDF, DOCX or plain text.
	ErrUnsupportedDocument = errors.New("unsupported document type")

	// ErrFileTooLarge is returned when an upload exceeds the configured size.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNotFound is returned when a domain, subdomain or list named by the
	// caller does not exist.
	ErrNotFound = errors.New("not found")
)
