package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Parse decodes data in the given format into a Table. The first row is the
// header and must hold unique, non-empty names.
func Parse(data []byte, format Format) (*Table, error) {
	switch format {
	case CSV:
		return parseCSV(data)
	case XLSX:
		return parseXLSX(data)
	default:
		return nil, &UnsupportedFormatError{Format: string(format)}
	}
}

// decodeText wraps r so that a UTF-8 BOM is dropped, UTF-16 input with a BOM
// is transcoded, and invalid UTF-8 sequences become U+FFFD.
func decodeText(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

func parseCSV(data []byte) (*Table, error) {
	cr := csv.NewReader(decodeText(bytes.NewReader(data)))
	cr.FieldsPerRecord = -1

	var (
		header     []string
		headerLine int
		rows       [][]string
		lines      []int
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvFormatError(err)
		}
		line, _ := cr.FieldPos(0)
		if header == nil {
			header, headerLine = rec, line
			continue
		}
		rows = append(rows, rec)
		lines = append(lines, line)
	}

	if header == nil {
		return nil, &FormatError{Format: CSV, Reason: "no header row", Err: ErrNoRows}
	}
	return buildTable(CSV, header, headerLine, rows, lines)
}

// csvFormatError converts an encoding/csv error into a FormatError.
func csvFormatError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &FormatError{Format: CSV, Line: pe.Line, Err: pe.Err}
	}
	return &FormatError{Format: CSV, Err: err}
}

func parseXLSX(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &FormatError{Format: XLSX, Reason: "open workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &FormatError{Format: XLSX, Reason: "no worksheets", Err: ErrNoRows}
	}

	// Raw values keep numbers free of the sheet's display formatting.
	grid, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &FormatError{Format: XLSX, Reason: fmt.Sprintf("read sheet %q", sheets[0]), Err: err}
	}

	// GetRows drops trailing empty rows. Pad back to the sheet dimension so
	// rows of missing cells at the end are kept.
	if n := dimensionRows(f, sheets[0]); n > len(grid) {
		grid = append(grid, make([][]string, min(n-len(grid), maxTrailingRows))...)
	}

	var (
		header     []string
		headerLine int
		rows       [][]string
		lines      []int
	)
	// Blank rows above the header are skipped; blank rows below it are data.
	for i, row := range grid {
		if header == nil {
			if !isEmptyRow(row) {
				header, headerLine = row, i+1
			}
			continue
		}
		rows = append(rows, row)
		lines = append(lines, i+1)
	}

	if header == nil {
		return nil, &FormatError{Format: XLSX, Reason: "no header row", Err: ErrNoRows}
	}
	return buildTable(XLSX, header, headerLine, rows, lines)
}

// maxTrailingRows bounds how many empty rows a declared sheet dimension can
// add past the last row with content.
const maxTrailingRows = 10000

// dimensionRows returns the last row of the sheet's used range, or 0 when the
// workbook does not record one.
func dimensionRows(f *excelize.File, sheet string) int {
	ref, err := f.GetSheetDimension(sheet)
	if err != nil || ref == "" {
		return 0
	}
	if _, end, ok := strings.Cut(ref, ":"); ok {
		ref = end
	}
	_, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return 0
	}
	return row
}

// buildTable validates the header, pads short rows with missing cells and
// classifies each column. lines holds the source line of every data row.
func buildTable(format Format, header []string, headerLine int, rows [][]string, lines []int) (*Table, error) {
	header = trimNames(header)
	seen := make(map[string]int, len(header))
	for i, name := range header {
		if name == "" {
			return nil, &FormatError{Format: format, Line: headerLine, Reason: fmt.Sprintf("empty header name at column %d", i+1)}
		}
		if prev, dup := seen[name]; dup {
			return nil, &FormatError{Format: format, Line: headerLine, Reason: fmt.Sprintf("duplicate header %q at columns %d and %d", name, prev+1, i+1)}
		}
		seen[name] = i
	}

	for i, row := range rows {
		if len(row) > len(header) {
			return nil, &FormatError{
				Format: format,
				Line:   lines[i],
				Reason: fmt.Sprintf("expected %d fields, saw %d", len(header), len(row)),
			}
		}
	}

	columns := make([]Column, len(header))
	raw := make([]string, len(rows))
	for j, name := range header {
		for i, row := range rows {
			if j < len(row) {
				raw[i] = row[j]
			} else {
				raw[i] = ""
			}
		}
		columns[j] = NewColumn(name, raw)
	}

	t, err := NewTable(columns...)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.Format = format
		}
		return nil, err
	}
	return t, nil
}

// trimNames strips surrounding whitespace from header names, so "a, b" names
// its columns "a" and "b".
func trimNames(header []string) []string {
	out := make([]string, len(header))
	for i, name := range header {
		out[i] = strings.TrimSpace(name)
	}
	return out
}

// isEmptyRow reports whether every cell is blank.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
