package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written by XLSX export.
const SheetName = "Sheet1"

// Export serializes t in the given format and returns the bytes together with
// the format's MIME type.
func Export(t *Table, format Format) ([]byte, string, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case CSV:
		data, err = exportCSV(t)
	case XLSX:
		data, err = exportXLSX(t)
	default:
		return nil, "", &UnsupportedFormatError{Format: string(format)}
	}
	if err != nil {
		return nil, "", err
	}
	return data, format.MIMEType(), nil
}

func exportCSV(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(t.ColumnNames()); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(t.columns))
	for i := 0; i < t.rows; i++ {
		// encoding/csv writes a lone empty field as a blank line, which
		// readers skip. Quote it so the row survives.
		if len(t.columns) == 1 && t.columns[0].Values[i].IsMissing() {
			w.Flush()
			buf.WriteString("\"\"\n")
			continue
		}
		for j, c := range t.columns {
			record[j] = c.Values[i].String()
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func exportXLSX(t *Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Trailing rows of missing cells have no cells to write. The dimension
	// records how far the data goes so Parse can restore them. The stream
	// writer copies it into the sheet when it opens.
	if len(t.columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.columns), t.rows+1)
		if err != nil {
			return nil, fmt.Errorf("xlsx dimension: %w", err)
		}
		if err := f.SetSheetDimension(SheetName, "A1:"+last); err != nil {
			return nil, fmt.Errorf("set xlsx dimension: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return nil, fmt.Errorf("open xlsx stream writer: %w", err)
	}

	header := make([]interface{}, len(t.columns))
	for j, c := range t.columns {
		header[j] = c.Name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("write xlsx header: %w", err)
	}

	row := make([]interface{}, len(t.columns))
	for i := 0; i < t.rows; i++ {
		for j, c := range t.columns {
			row[j] = cellValue(c.Values[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, fmt.Errorf("write xlsx row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flush xlsx: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// cellValue maps a cell to the value excelize writes: float64 for numbers,
// string for text and nil (no cell) for missing.
func cellValue(v Value) interface{} {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		return v.str
	default:
		return nil
	}
}
