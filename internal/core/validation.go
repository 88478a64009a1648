package core

// validation.go checks a FileRequest before any parsing happens.
//
// Struct-level rules (required name, known cleaning steps, preview bounds) are
// declared as validate tags on the request types and enforced with
// go-playground/validator. Size limits depend on configuration and are
// checked by hand.

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrFileTooLarge is wrapped when a file exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNoFile is returned by callers when a request carries no file at all.
	ErrNoFile = errors.New("no file provided")

	// ErrTooManyFiles is wrapped when a request carries more files than allowed.
	ErrTooManyFiles = errors.New("too many files")
)

// ValidationError represents a single rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors collects every rejected field of a request.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, ve := range e {
		parts[i] = ve.Error()
	}
	return "invalid options: " + strings.Join(parts, "; ")
}

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest applies the struct tags on req and the size limit.
// maxSize <= 0 disables the size check.
func validateRequest(v *validator.Validate, req FileRequest, maxSize int64) error {
	if err := v.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate request: %w", err)
		}
		out := make(ValidationErrors, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, ValidationError{
				Field:   fieldPath(fe),
				Message: formatValidationError(fe),
			})
		}
		return out
	}

	if maxSize > 0 && int64(len(req.Data)) > maxSize {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, len(req.Data), maxSize)
	}
	return nil
}

// fieldPath drops the top-level struct name from the validator namespace,
// so "FileRequest.options.clean[0]" becomes "options.clean[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
