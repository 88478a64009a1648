package tabular

import (
	"path/filepath"
	"strings"
)

// Format identifies a tabular file format accepted by Parse and Export.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// MIME types returned by Export.
const (
	MIMETypeCSV  = "text/csv"
	MIMETypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseFormat converts a user-supplied format name or file extension to a Format.
// Matching is case-insensitive and ignores a leading dot. "excel" is accepted
// as an alias for XLSX.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	switch name {
	case "csv":
		return CSV, nil
	case "xlsx", "excel":
		return XLSX, nil
	default:
		return "", &UnsupportedFormatError{Format: s}
	}
}

// FormatFromFilename guesses the format from a file name's extension.
func FormatFromFilename(name string) (Format, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", &UnsupportedFormatError{Format: name}
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", &UnsupportedFormatError{Format: ext}
	}
	return f, nil
}

// Valid reports whether f is CSV or XLSX.
func (f Format) Valid() bool {
	return f == CSV || f == XLSX
}

// MIMEType returns the canonical content type, or "" for an invalid format.
func (f Format) MIMEType() string {
	switch f {
	case CSV:
		return MIMETypeCSV
	case XLSX:
		return MIMETypeXLSX
	default:
		return ""
	}
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	if !f.Valid() {
		return ""
	}
	return "." + string(f)
}

// OutputFilename replaces the extension of name with the one for target.
// A name without an extension gets the target extension appended.
func OutputFilename(name string, target Format) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		base = "export"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + target.Extension()
}
