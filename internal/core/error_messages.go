package core

// error_messages.go maps technical errors to user-facing messages with codes
// that users can quote to support.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: the file exceeds the configured size limit
//	FILE002 - Invalid CSV: the file could not be parsed as CSV
//	FILE003 - Encoding error: the file contains characters that cannot be decoded
//	FILE004 - No file: the request carried no file
//	FILE005 - Empty file: the file has no header row
//	FILE006 - Unsupported format: the source or target format is not CSV or XLSX
//	FILE007 - Invalid workbook: the file could not be parsed as an Excel workbook
//	FILE008 - Too many files: the request carried more files than allowed
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL005 - Column not found: a selected column is not in the file
//	VAL007 - Duplicate column: a column was selected more than once
//	VAL008 - Invalid options: the processing options failed validation
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: every processing slot is taken
//	UPL004 - Request cancelled
//	UPL005 - Request timed out
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests from one client
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: check the server logs for the technical error
//
// Typed errors from the tabular package and this package are matched first
// with errors.As / errors.Is. Anything else falls through to case-insensitive
// substring patterns; the first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/datasweeper/internal/tabular"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`          // What happened (user-friendly)
	Action  string `json:"action,omitempty"` // What to do about it
	Code    string `json:"code"`             // Error code for support reference
	Detail  string `json:"detail,omitempty"` // Offending line, column or format, when known
}

var (
	msgFileTooLarge = UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Remove unused rows or columns, or split the file",
		Code:    "FILE001",
	}
	msgInvalidCSV = UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure the file is comma-separated with a single header row and consistent columns",
		Code:    "FILE002",
	}
	msgEncoding = UserMessage{
		Message: "File contains invalid characters",
		Action:  "Save the file as UTF-8",
		Code:    "FILE003",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please choose a CSV or Excel file to upload",
		Code:    "FILE004",
	}
	msgEmptyFile = UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Upload a file with a header row",
		Code:    "FILE005",
	}
	msgUnsupportedFormat = UserMessage{
		Message: "Unsupported file type",
		Action:  "Upload a .csv or .xlsx file and choose CSV or Excel as the target",
		Code:    "FILE006",
	}
	msgInvalidXLSX = UserMessage{
		Message: "File is not a valid Excel workbook",
		Action:  "Open the file in Excel and save it again as .xlsx",
		Code:    "FILE007",
	}
	msgTooManyFiles = UserMessage{
		Message: "Too many files in one request",
		Action:  "Upload fewer files at a time",
		Code:    "FILE008",
	}
	msgColumnNotFound = UserMessage{
		Message: "Selected column not found in the file",
		Action:  "Pick columns from the file's header row",
		Code:    "VAL005",
	}
	msgDuplicateColumn = UserMessage{
		Message: "A column was selected more than once",
		Action:  "Select each column only once",
		Code:    "VAL007",
	}
	msgInvalidOptions = UserMessage{
		Message: "Invalid processing options",
		Action:  "Check the selected cleaning steps and columns",
		Code:    "VAL008",
	}
	msgBusy = UserMessage{
		Message: "System is busy processing other files",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "UPL005",
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns catch errors that arrive without a type, such as wrapped
// strings from the HTTP layer. Specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{pattern: "file too large", msg: msgFileTooLarge},
	{pattern: "request body too large", msg: msgFileTooLarge},
	{pattern: "invalid csv", msg: msgInvalidCSV},
	{pattern: "invalid xlsx", msg: msgInvalidXLSX},
	{pattern: "encoding error", msg: msgEncoding},
	{pattern: "invalid utf", msg: msgEncoding},
	{pattern: "no file provided", msg: msgNoFile},
	{pattern: "empty file", msg: msgEmptyFile},
	{pattern: "unsupported format", msg: msgUnsupportedFormat},
	{pattern: "too many files", msg: msgTooManyFiles},
	{pattern: "column not found", msg: msgColumnNotFound},
	{pattern: "duplicate column", msg: msgDuplicateColumn},
	{pattern: "too many uploads", msg: msgBusy},
	{pattern: "context canceled", msg: msgCancelled},
	{pattern: "context deadline exceeded", msg: msgTimeout},
	{pattern: "rate limit", msg: msgRateLimited},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
//	_, err := tabular.SelectColumns(t, []string{"z"})
//	msg := MapError(err)
//	// msg.Code == "VAL005", msg.Detail == `column not found: "z"`
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if msg, ok := mapTyped(err); ok {
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

// mapTyped recognizes the typed errors this service and the pipeline return.
func mapTyped(err error) (UserMessage, bool) {
	var (
		unsupported *tabular.UnsupportedFormatError
		formatErr   *tabular.FormatError
		unknownCol  *tabular.UnknownColumnError
		dupCol      *tabular.DuplicateColumnError
		invalid     ValidationErrors
	)

	switch {
	case errors.Is(err, ErrFileTooLarge):
		return withDetail(msgFileTooLarge, err), true
	case errors.Is(err, ErrNoFile):
		return msgNoFile, true
	case errors.Is(err, ErrTooManyFiles):
		return withDetail(msgTooManyFiles, err), true
	case errors.Is(err, tabular.ErrNoRows):
		return msgEmptyFile, true
	case errors.As(err, &unsupported):
		return withDetail(msgUnsupportedFormat, unsupported), true
	case errors.As(err, &formatErr):
		if formatErr.Format == tabular.XLSX {
			return withDetail(msgInvalidXLSX, formatErr), true
		}
		return withDetail(msgInvalidCSV, formatErr), true
	case errors.As(err, &unknownCol):
		return withDetail(msgColumnNotFound, unknownCol), true
	case errors.As(err, &dupCol):
		return withDetail(msgDuplicateColumn, dupCol), true
	case errors.As(err, &invalid):
		return withDetail(msgInvalidOptions, invalid), true
	case errors.Is(err, ErrTooManyUploads):
		return msgBusy, true
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout, true
	case errors.Is(err, context.Canceled):
		return msgCancelled, true
	}
	return UserMessage{}, false
}

func withDetail(msg UserMessage, err error) UserMessage {
	msg.Detail = err.Error()
	return msg
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

// IsUserFacing reports whether err maps to a specific message rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logging, with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err and wraps it. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
