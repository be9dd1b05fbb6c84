package core

// # Error Codes Reference
//
// User-facing messages carry a code that can be quoted to support staff.
//
// # Format Errors (FMT001-FMT099)
//
//	FMT001 - Unsupported file type
//	         Action: Upload a .csv or .xlsx file
//	         Patterns: "unsupported file type"
//
// # Parse Errors (PARSE001-PARSE099)
//
//	PARSE001 - The file could not be read
//	           Action: Check that the file is a valid CSV or Excel workbook
//	           Patterns: "error reading file"
//
//	PARSE002 - The file has no header row
//	           Action: Add a header row naming each column
//	           Patterns: "no columns to parse"
//
//	PARSE003 - A row has more values than there are column headers
//	           Action: Check for stray commas or unquoted text containing commas
//	           Patterns: "more fields than the header"
//
//	PARSE004 - The workbook has no worksheets
//	           Action: Add a worksheet with a header row
//	           Patterns: "workbook has no worksheets"
//
// # Conversion Errors (CONV001-CONV099)
//
//	CONV001 - The file could not be converted
//	          Action: Try the other format or check for very long cell values
//	          Patterns: "error during file conversion"
//
// # Numeric Warnings (NUM001-NUM099)
//
//	NUM001 - No numeric columns to fill
//	NUM002 - Fewer than two numeric columns to chart
//
// # Request Errors (FILE, REQ, UPL, RATE)
//
//	FILE001 - File too large          ("file too large", "request body too large")
//	FILE004 - No file was selected    ("no file provided")
//	FILE006 - Too many files          ("too many files")
//	REQ001  - Invalid options         ("invalid options")
//	UPL002  - System busy             ("too many batches")
//	UPL004  - Request cancelled       ("context canceled")
//	UPL005  - Request timeout         ("context deadline exceeded")
//	RATE001 - Rate limited            ("rate limit")
//	DB004   - History unavailable     ("connection refused")
//
// # Default Error (ERR000)
//
//	ERR000 - An unexpected error occurred
//	         Action: Please try again or contact support
//
// Patterns are matched case-insensitively using strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
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
	// Format and parse errors. Causes come before the generic wrapper text.
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload a .csv or .xlsx file",
			Code:    "FMT001",
		},
	},
	{
		pattern: "no columns to parse",
		msg: UserMessage{
			Message: "The file has no header row",
			Action:  "Add a header row naming each column",
			Code:    "PARSE002",
		},
	},
	{
		pattern: "more fields than the header",
		msg: UserMessage{
			Message: "A row has more values than there are column headers",
			Action:  "Check for stray commas or unquoted text containing commas",
			Code:    "PARSE003",
		},
	},
	{
		pattern: "workbook has no worksheets",
		msg: UserMessage{
			Message: "The workbook has no worksheets",
			Action:  "Add a worksheet with a header row",
			Code:    "PARSE004",
		},
	},
	{
		pattern: "error reading file",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Check that the file is a valid CSV or Excel workbook",
			Code:    "PARSE001",
		},
	},
	{
		pattern: "error during file conversion",
		msg: UserMessage{
			Message: "The file could not be converted",
			Action:  "Try the other format or check for very long cell values",
			Code:    "CONV001",
		},
	},

	// Warnings raised by optional steps.
	{
		pattern: "no numeric columns",
		msg: UserMessage{
			Message: "No numeric columns found to fill missing values",
			Action:  "Select at least one numeric column",
			Code:    "NUM001",
		},
	},
	{
		pattern: "not enough numerical columns",
		msg: UserMessage{
			Message: "Not enough numerical columns for visualization",
			Action:  "Select at least two numeric columns",
			Code:    "NUM002",
		},
	},

	// Request errors.
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "Upload exceeds the maximum request size",
			Action:  "Upload fewer or smaller files at once",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV or Excel file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "too many files",
		msg: UserMessage{
			Message: "Too many files in one upload",
			Action:  "Upload the files in smaller groups",
			Code:    "FILE006",
		},
	},
	{
		pattern: "invalid options",
		msg: UserMessage{
			Message: "The processing options were not understood",
			Action:  "Reload the page and try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "too many batches",
		msg: UserMessage{
			Message: "The server is busy processing other files",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Activity history is unavailable",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error into a user-friendly message.
// Returns an empty UserMessage for a nil error.
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

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback. Unknown errors should be logged, not shown verbatim.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
