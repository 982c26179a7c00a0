package core

// error_messages.go maps technical errors to coded user messages.
//
// Codes by category:
//
//	DB001-DB008   catalog store (constraints, connectivity)
//	IMP001-IMP007 import run (reconciliation, slot, cancellation)
//	FILE001-FILE006 source files (size, format, content)
//	ERR000        fallback; check the logs for the technical error
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

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

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Catalog store
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A reference code was created by another writer at the same time",
			Action:  "Run the import again; existing rows are skipped",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A duplicate value was found",
			Action:  "Run the import again; existing rows are skipped",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "Referenced manufacturer or unit of measure does not exist",
			Action:  "Check that the catalog schema is migrated",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the catalog database",
			Action:  "Check DATABASE_URL and that the database is running",
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
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB006",
		},
	},
	{
		pattern: "catalog connection failed",
		msg: UserMessage{
			Message: "Could not open a session to the catalog database",
			Action:  "Check DATABASE_URL and database availability",
			Code:    "DB007",
		},
	},
	{
		pattern: "does not exist",
		msg: UserMessage{
			Message: "Catalog tables are missing",
			Action:  "Run the migrate command before importing",
			Code:    "DB008",
		},
	},

	// Import run
	{
		pattern: "resolution failed",
		msg: UserMessage{
			Message: "A manufacturer, unit of measure or part lookup failed",
			Action:  "Review the failed records in the run report",
			Code:    "IMP001",
		},
	},
	{
		pattern: "insert failed",
		msg: UserMessage{
			Message: "A catalog row could not be written",
			Action:  "Review the failed records in the run report",
			Code:    "IMP002",
		},
	},
	{
		pattern: "transaction control failed",
		msg: UserMessage{
			Message: "The import transaction could not be managed",
			Action:  "Please try again",
			Code:    "IMP003",
		},
	},
	{
		pattern: "another import is in progress",
		msg: UserMessage{
			Message: "Another import is running",
			Action:  "Wait for it to finish and try again",
			Code:    "IMP004",
		},
	},
	{
		pattern: "import run not found",
		msg: UserMessage{
			Message: "Import run not found",
			Action:  "Check the run ID",
			Code:    "IMP005",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Import was cancelled",
			Action:  "Start a new import when ready",
			Code:    "IMP006",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Import timed out",
			Action:  "Raise IMPORT_TIMEOUT or split the file",
			Code:    "IMP007",
		},
	},

	// Source files
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "This file type cannot be imported",
			Action:  "Use .xlsx, .csv or a SQLite catalog database",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to import",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no records",
		msg: UserMessage{
			Message: "The file contains no catalog records",
			Action:  "Check that the data starts below the header row",
			Code:    "FILE004",
		},
	},
	{
		pattern: "open workbook",
		msg: UserMessage{
			Message: "The spreadsheet could not be opened",
			Action:  "Save the file again as .xlsx",
			Code:    "FILE005",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with consistent columns",
			Code:    "FILE006",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Unknown errors map to ERR000.
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

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
