// Package core provides the schema-reconciliation and type-inference engine.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// A file that cannot be normalized is reported with one of these codes and the
// batch moves on to the next file.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the configured size limit
//	          Action: Split the export into smaller files
//	          Patterns: "file too large"
//
//	FILE002 - Invalid CSV: File is not a valid comma-separated table
//	          Action: Check quoting and that no row has more cells than the header
//	          Patterns: "invalid csv"
//
//	FILE003 - Encoding error: File contains invalid characters
//	          Action: Save the export as UTF-8
//	          Patterns: "encoding error"
//
//	FILE004 - No input: No files were found to process
//	          Action: Place .csv or .xlsx exports in the input directory
//	          Patterns: "no input files"
//
//	FILE005 - Empty file: The file has no header row
//	          Action: Export again including the header row
//	          Patterns: "empty file"
//
//	FILE006 - Unsupported type: Only .csv and .xlsx are read
//	          Action: Convert the export to CSV
//	          Patterns: "unsupported file type"
//
//	FILE007 - Unreadable: The file could not be opened
//	          Action: Check the path and file permissions
//	          Patterns: "no such file", "permission denied", "open file"
//
//	FILE008 - Invalid workbook: The spreadsheet could not be read
//	          Action: Re-save the workbook as .xlsx
//	          Patterns: "invalid xlsx"
//
// # Output Errors (OUT001-OUT099)
//
//	OUT001 - Write failed: The normalized file could not be written
//	         Action: Check free space and permissions on the output directory
//	         Patterns: "write output"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Cancelled: The run was interrupted before this file
//	         Action: Run again to process the remaining files
//	         Patterns: "context canceled"
//
//	RUN002 - Internal error: Processing this file panicked
//	         Action: Report the file to the maintainers
//	         Patterns: "internal error"
//
// # Row Tool Errors (ROW001-ROW099)
//
//	ROW001 - Missing column: A required column is missing
//	         Action: Check the header row names the column
//	         Patterns: "column"
//
//	ROW002 - Uneven groups: Offer groups have different numbers of rows
//	         Action: Give every offer the same number of rows
//	         Patterns: "different lengths"
//
//	ROW003 - Invalid parts: The number of parts is invalid
//	         Action: Pass --parts 1 or more
//	         Patterns: "parts must be"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Check the log for the technical error
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns come first.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE008)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the configured size limit",
			Action:  "Split the export into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid comma-separated table",
			Action:  "Check quoting and that no row has more cells than the header",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save the export as UTF-8",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no input files",
		msg: UserMessage{
			Message: "No files were found to process",
			Action:  "Place .csv or .xlsx exports in the input directory",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file has no header row",
			Action:  "Export again including the header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "Only .csv and .xlsx files are read",
			Action:  "Convert the export to CSV",
			Code:    "FILE006",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "The file could not be found",
			Action:  "Check the path and file permissions",
			Code:    "FILE007",
		},
	},
	{
		pattern: "permission denied",
		msg: UserMessage{
			Message: "The file could not be opened",
			Action:  "Check the path and file permissions",
			Code:    "FILE007",
		},
	},
	{
		pattern: "open file",
		msg: UserMessage{
			Message: "The file could not be opened",
			Action:  "Check the path and file permissions",
			Code:    "FILE007",
		},
	},
	{
		pattern: "invalid xlsx",
		msg: UserMessage{
			Message: "The spreadsheet could not be read",
			Action:  "Re-save the workbook as .xlsx",
			Code:    "FILE008",
		},
	},

	// =========================================================================
	// Output Errors (OUT001)
	// =========================================================================
	{
		pattern: "write output",
		msg: UserMessage{
			Message: "The normalized file could not be written",
			Action:  "Check free space and permissions on the output directory",
			Code:    "OUT001",
		},
	},

	// =========================================================================
	// Run Errors (RUN001-RUN002)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The run was interrupted before this file",
			Action:  "Run again to process the remaining files",
			Code:    "RUN001",
		},
	},
	{
		pattern: "internal error",
		msg: UserMessage{
			Message: "Processing this file failed unexpectedly",
			Action:  "Report the file to the maintainers",
			Code:    "RUN002",
		},
	},

	// =========================================================================
	// Row Tool Errors
	// =========================================================================
	{
		pattern: "different lengths",
		msg: UserMessage{
			Message: "Offer groups have different numbers of rows",
			Action:  "Give every offer the same number of rows",
			Code:    "ROW002",
		},
	},
	{
		pattern: "parts must be",
		msg: UserMessage{
			Message: "The number of parts is invalid",
			Action:  "Pass --parts 1 or more",
			Code:    "ROW003",
		},
	},
	{
		pattern: "column",
		msg: UserMessage{
			Message: "A required column is missing",
			Action:  "Check the header row names the column",
			Code:    "ROW001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the log for the technical error",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// String formats m for display: "Message (Code: XXX). Action"
func (m UserMessage) String() string {
	if m.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", m.Message, m.Code, m.Action)
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	return MapError(err).String()
}

// IsUserFacing reports whether err matches a known pattern rather than the
// generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.String()
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
