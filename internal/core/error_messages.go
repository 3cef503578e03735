package core

// error_messages.go maps technical errors to notifications with support codes.
//
// # Catalog Errors (CAT001-CAT099)
//
//	CAT001 - Unknown list type: The list type is not in the catalog
//	         Patterns: "unknown list type"
//
//	CAT002 - No entry table: The subdomain has no known entry table
//	         Patterns: "unknown table mapping"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Malformed CSV: Header line or data lines missing
//	          Patterns: "malformed csv"
//
//	FILE002 - Not a CSV: The selected file does not end in .csv
//	          Patterns: "not a csv file"
//
//	FILE003 - No file: Upload pressed without a selected file
//	          Patterns: "no file provided"
//
//	FILE004 - Unsupported document: Ingestion accepts PDF, DOCX and text
//	          Patterns: "unsupported document type"
//
//	FILE005 - File too large: Upload exceeds the configured size
//	          Patterns: "file too large"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Empty record: Every field of a manual entry is blank
//	         Patterns: "empty record"
//
//	VAL002 - Invalid request: A required field is missing
//	         Patterns: "validation failed"
//
// # Backend Errors (API001-API099)
//
//	API001 - Rejected: The backend answered with a non-2xx status
//	         Patterns: "server rejected request"
//
//	API002 - Unreachable: The backend could not be contacted
//	         Patterns: "connection refused", "no such host"
//
//	API003 - Timeout: The backend did not answer in time
//	         Patterns: "context deadline exceeded", "timeout"
//
//	API004 - Busy: Too many imports are already running
//	         Patterns: "too many concurrent imports"
//
// # Delete Errors (DEL001-DEL099)
//
//	DEL001 - Partial delete: At least one selected row was not deleted
//	         Patterns: "some deletions failed"
//
// # Navigation Errors (NAV001-NAV099)
//
//	NAV001 - Not found: A domain, subdomain or list id does not exist
//	         Patterns: "not found"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. The technical error is in the logs.
//
// Patterns are matched case-insensitively with strings.Contains against the
// full wrapped error text. The first match wins.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/pharmadb/internal/api"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Catalog
	{
		pattern: "unknown list type",
		msg: UserMessage{
			Message: "This list type is not known",
			Action:  "Pick one of the list types shown for the domain",
			Code:    "CAT001",
		},
	},
	{
		pattern: "unknown table mapping",
		msg: UserMessage{
			Message: "This subdomain has no entry table",
			Action:  "Ask an administrator to map the subdomain before adding entries",
			Code:    "CAT002",
		},
	},

	// Files
	{
		pattern: "malformed csv",
		msg: UserMessage{
			Message: "The CSV file needs a header line and at least one data line",
			Action:  "Download the sample template and fill in your rows",
			Code:    "FILE001",
		},
	},
	{
		pattern: "not a csv file",
		msg: UserMessage{
			Message: "Only .csv files can be imported",
			Action:  "Save the sheet as CSV and select it again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE003",
		},
	},
	{
		pattern: "unsupported document type",
		msg: UserMessage{
			Message: "This document type cannot be ingested",
			Action:  "Upload a PDF, DOCX or plain text file",
			Code:    "FILE004",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "The file exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE005",
		},
	},

	// Validation
	{
		pattern: "empty record",
		msg: UserMessage{
			Message: "Please fill at least one field",
			Action:  "Enter a value before saving",
			Code:    "VAL001",
		},
	},
	{
		pattern: "validation failed",
		msg: UserMessage{
			Message: "A required field is missing",
			Action:  "Fill every required field and try again",
			Code:    "VAL002",
		},
	},

	// Backend
	{
		pattern: "server rejected request",
		msg: UserMessage{
			Message: "The server rejected the request",
			Action:  "Check the values and try again",
			Code:    "API001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the PharmaDB server",
			Action:  "Check that the backend is running and PHARMADB_API_URL is correct",
			Code:    "API002",
		},
	},
	{
		pattern: "no such host",
		msg: UserMessage{
			Message: "Unable to reach the PharmaDB server",
			Action:  "Check that the backend is running and PHARMADB_API_URL is correct",
			Code:    "API002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The server did not answer in time",
			Action:  "Please try again in a few moments",
			Code:    "API003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The server did not answer in time",
			Action:  "Please try again in a few moments",
			Code:    "API003",
		},
	},
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "Other imports are still running",
			Action:  "Please wait a moment and try again",
			Code:    "API004",
		},
	},

	// Delete
	{
		pattern: "some deletions failed",
		msg: UserMessage{
			Message: "Some entries could not be deleted",
			Action:  "Refresh the table and retry the remaining rows",
			Code:    "DEL001",
		},
	},

	// Navigation
	{
		pattern: "not found",
		msg: UserMessage{
			Message: "The requested item does not exist",
			Action:  "Go back to the dashboard and pick it again",
			Code:    "NAV001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. A backend
// rejection keeps the server's own detail as the message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var rejected *api.ServerRejectedError
	if errors.As(err, &rejected) && rejected.Detail != "" {
		msg := errorPatterns[indexOf("server rejected request")].msg
		msg.Message = rejected.Detail
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

func indexOf(pattern string) int {
	for i, ep := range errorPatterns {
		if ep.pattern == pattern {
			return i
		}
	}
	panic("unknown error pattern: " + pattern)
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
