package core

// error_messages.go maps technical errors to user-facing messages.
//
// This file defines user-friendly error messages with codes for support reference.
// The CLI prints these instead of raw driver or parser errors; the technical
// error stays available through [UserError.Unwrap] for logging.
//
// Argument Errors (ARG001-ARG099)
//
//	ARG001 - Key column not in result: the keyed JSON key is not a result column
//	         Patterns: "is not a result column"
//
//	ARG002 - Unique column not in header: the dedup column is not in the CSV header
//	         Patterns: "not in csv header"
//
//	ARG003 - Unknown JSON shape
//	         Patterns: "unknown json shape"
//
//	ARG004 - Key column not unique: two rows share a keyed JSON key
//	         Patterns: "repeats value"
//
//	ARG005 - Name too short: usernames need a first and last name
//	         Patterns: "at least two tokens"
//
//	ARG006 - Wrong JSON layout: import expects an object of records
//	         Patterns: "expected an object of records"
//
// Schema Errors (SCH001-SCH099)
//
//	SCH001 - Record length mismatch
//	         Patterns: "fields, expected"
//
//	SCH002 - Column length mismatch
//	         Patterns: "values, expected"
//
//	SCH003 - Record missing a column
//	         Patterns: "missing column"
//
// File Errors (FILE001-FILE099)
//
//	FILE001 - File not found
//	FILE002 - Invalid CSV
//	FILE003 - Invalid JSON
//	FILE004 - Empty file
//
// Database Errors (DB001-DB099)
//
//	DB001-DB003 - Constraint violations (duplicate key, unique, foreign key)
//	DB004-DB007 - Connectivity (refused, reset, timeout, deadlock)
//	DB008       - SQL syntax error, usually a bad table or column name
//	DB009       - Unknown column
//	DB010       - Stored value has no JSON form (NaN or infinity)
//	TBL001      - Table not found
//
// Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check the logs for the
// technical error.
//
// Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns come first.

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

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Argument Errors (ARG001-ARG006)
	// =========================================================================
	{
		pattern: "is not a result column",
		msg: UserMessage{
			Message: "The key column is not part of the query result",
			Action:  "Pick a column that the query selects",
			Code:    "ARG001",
		},
	},
	{
		pattern: "not in csv header",
		msg: UserMessage{
			Message: "The unique column is not in the CSV header",
			Action:  "Check the header row of your file",
			Code:    "ARG002",
		},
	},
	{
		pattern: "unknown json shape",
		msg: UserMessage{
			Message: "Unknown JSON shape",
			Action:  "Use list or keyed",
			Code:    "ARG003",
		},
	},
	{
		pattern: "repeats value",
		msg: UserMessage{
			Message: "The key column does not identify rows uniquely",
			Action:  "Choose a key column with unique values or export as a list",
			Code:    "ARG004",
		},
	},
	{
		pattern: "at least two tokens",
		msg: UserMessage{
			Message: "A name needs at least a first and a last part",
			Action:  "Provide full names such as \"Ann Lee\"",
			Code:    "ARG005",
		},
	},
	{
		pattern: "expected an object of records",
		msg: UserMessage{
			Message: "The JSON file is not an object of records",
			Action:  "Wrap records in an object keyed by an id",
			Code:    "ARG006",
		},
	},

	// =========================================================================
	// Schema Errors (SCH001-SCH003)
	// =========================================================================
	{
		pattern: "fields, expected",
		msg: UserMessage{
			Message: "Records do not all have the same number of fields",
			Action:  "Make every record carry the same columns",
			Code:    "SCH001",
		},
	},
	{
		pattern: "values, expected",
		msg: UserMessage{
			Message: "Columns do not all have the same number of values",
			Action:  "Pad or trim columns to the same length",
			Code:    "SCH002",
		},
	},
	{
		pattern: "missing column",
		msg: UserMessage{
			Message: "A record is missing one of the requested columns",
			Action:  "Check the column list against the records",
			Code:    "SCH003",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE004)
	// =========================================================================
	{
		pattern: "no such file or directory",
		msg: UserMessage{
			Message: "File not found",
			Action:  "Check the path and try again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "missing header row",
		msg: UserMessage{
			Message: "The file is empty",
			Action:  "Provide a CSV file with a header row",
			Code:    "FILE004",
		},
	},
	{
		pattern: "parse csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with consistent columns",
			Code:    "FILE002",
		},
	},
	{
		pattern: "parse json",
		msg: UserMessage{
			Message: "File is not valid JSON",
			Action:  "Validate the file with a JSON linter",
			Code:    "FILE003",
		},
	},

	// =========================================================================
	// Database Constraint Errors (DB001-DB003)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Import with a unique column to skip existing rows",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate entries in your file",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key constraint",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Load parent records first",
			Code:    "DB003",
		},
	},

	// =========================================================================
	// Database Connection Errors (DB004-DB007)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// =========================================================================
	// Statement Errors (DB008-DB009, TBL001)
	// =========================================================================
	{
		pattern: "syntax error",
		msg: UserMessage{
			Message: "The generated SQL was rejected",
			Action:  "Check the table and column names",
			Code:    "DB008",
		},
	},
	{
		pattern: "no such column",
		msg: UserMessage{
			Message: "Unknown column",
			Action:  "Check the column names against the table",
			Code:    "DB009",
		},
	},
	{
		pattern: "has no column named",
		msg: UserMessage{
			Message: "Unknown column",
			Action:  "Check the column names against the table",
			Code:    "DB009",
		},
	},
	{
		pattern: "unsupported real value",
		msg: UserMessage{
			Message: "A stored number cannot be written as JSON",
			Action:  "Filter out NaN or infinite values in the query",
			Code:    "DB010",
		},
	},
	{
		pattern: "no such table",
		msg: UserMessage{
			Message: "Table not found",
			Action:  "Verify the table name is correct",
			Code:    "TBL001",
		},
	},
	{
		pattern: "does not exist",
		msg: UserMessage{
			Message: "Table not found",
			Action:  "Verify the table name is correct",
			Code:    "TBL001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the logs for details",
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

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than
// the ERR000 fallback.
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
	return e.User.Message
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
