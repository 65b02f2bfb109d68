package core

// error_messages.go maps technical errors to user-friendly messages with
// codes for support reference.
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - Table not found: The specified table does not exist
//	TBL002 - Column not found: The column is not part of this table
//	TBL003 - Column not editable: Editing is disabled for this column
//	TBL004 - Row not found: The row no longer exists
//	TBL005 - Export disabled: Export is not enabled for this table
//
// # View Errors (VIEW001-VIEW099)
//
//	VIEW001 - View not found: The saved view was deleted or never existed
//	VIEW002 - Empty name: A view needs a name
//	VIEW003 - Views disabled: Saved views are not enabled for this table
//
// # Storage Errors (STO001-STO099)
//
//	STO001 - Connection refused: The view store is unreachable
//	STO002 - Timeout: The view store did not answer in time
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled
//	REQ002 - Request timeout
//	REQ003 - Rate limited
//	REQ004 - Export busy: Every export slot is taken
//
// # Default Error (ERR000)
//
// Returned when nothing matches. Support staff should check the application
// logs for the original technical error when users report ERR000.

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by core operations.
var (
	ErrTableNotFound     = errors.New("table not found")
	ErrColumnNotFound    = errors.New("column not found")
	ErrColumnNotEditable = errors.New("column not editable")
	ErrRowNotFound       = errors.New("row not found")
	ErrExportDisabled    = errors.New("export is disabled")
	ErrViewNotFound      = errors.New("view not found")
	ErrEmptyViewName     = errors.New("view name is empty")
	ErrViewsDisabled     = errors.New("views are disabled")
)

// UserMessage contains a user-friendly error message with an action and code.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// sentinelMessages are matched with errors.Is before any text pattern.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrTableNotFound, UserMessage{"Table not found", "Verify the table name is correct", "TBL001"}},
	{ErrColumnNotFound, UserMessage{"Column not found", "Reload the table and try again", "TBL002"}},
	{ErrColumnNotEditable, UserMessage{"This column cannot be edited", "Edit a different column", "TBL003"}},
	{ErrRowNotFound, UserMessage{"Row not found", "The row may have been removed. Reload the table", "TBL004"}},
	{ErrExportDisabled, UserMessage{"Export is not enabled for this table", "Ask an administrator to enable export", "TBL005"}},
	{ErrViewNotFound, UserMessage{"Saved view not found", "The view may have been deleted. Reload the table", "VIEW001"}},
	{ErrEmptyViewName, UserMessage{"A view needs a name", "Enter a name and save again", "VIEW002"}},
	{ErrViewsDisabled, UserMessage{"Saved views are not enabled for this table", "Ask an administrator to enable views", "VIEW003"}},
	{ErrTooManyExports, UserMessage{"Too many exports are running", "Wait a moment and export again", "REQ004"}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns are searched case-insensitively, first match wins.
var errorPatterns = []errorPattern{
	{"connection refused", UserMessage{"Unable to reach the view store", "Please try again in a few moments", "STO001"}},
	{"timeout", UserMessage{"The view store did not respond in time", "Please try again", "STO002"}},
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "REQ001"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Please try again", "REQ002"}},
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "REQ003"}},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	msg := MapError(fmt.Errorf("delete view: %w", ErrViewNotFound))
//	// msg.Code == "VIEW001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
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

// IsUserFacing reports whether an error maps to a specific message rather
// than the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
