package tabular

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
)

func mustParseCSV(t *testing.T, s string) *Table {
	t.Helper()
	tbl, err := Parse([]byte(s), CSV)
	require.NoError(t, err)
	return tbl
}

// buildWorkbook writes rows to the first sheet of a new workbook, starting at
// startRow (1-based), and returns the encoded bytes.
func buildWorkbook(t *testing.T, startRow int, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, startRow+i)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParse_CSVShape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCols []string
		wantRows int
	}{
		{
			name:     "simple",
			input:    "a,b\n1,2\n3,4\n",
			wantCols: []string{"a", "b"},
			wantRows: 2,
		},
		{
			name:     "header only",
			input:    "a,b,c\n",
			wantCols: []string{"a", "b", "c"},
			wantRows: 0,
		},
		{
			name:     "no trailing newline",
			input:    "x\n1",
			wantCols: []string{"x"},
			wantRows: 1,
		},
		{
			name:     "blank lines skipped",
			input:    "a,b\n\n1,2\n\n3,4\n",
			wantCols: []string{"a", "b"},
			wantRows: 2,
		},
		{
			name:     "short rows padded",
			input:    "a,b,c\n1\n1,2\n",
			wantCols: []string{"a", "b", "c"},
			wantRows: 2,
		},
		{
			name:     "quoted fields with commas and newlines",
			input:    "name,note\n\"Smith, J\",\"line1\nline2\"\n",
			wantCols: []string{"name", "note"},
			wantRows: 1,
		},
		{
			name:     "windows line endings",
			input:    "a,b\r\n1,2\r\n",
			wantCols: []string{"a", "b"},
			wantRows: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := mustParseCSV(t, tt.input)
			assert.Equal(t, tt.wantCols, tbl.ColumnNames())
			assert.Equal(t, len(tt.wantCols), tbl.NumColumns())
			assert.Equal(t, tt.wantRows, tbl.NumRows())
			for _, c := range tbl.Columns() {
				assert.Len(t, c.Values, tt.wantRows, "column %q", c.Name)
			}
		})
	}
}

func TestParse_ColumnTypes(t *testing.T) {
	tbl := mustParseCSV(t, "id,name,score,empty,odd\n1,alice, 3.5 ,,NaN\n2,bob,-1e3,,4\n3,,,,\n")

	tests := []struct {
		column string
		want   ColumnType
	}{
		{"id", Numeric},
		{"name", Text},
		{"score", Numeric},
		{"empty", Numeric},
		{"odd", Text},
	}
	for _, tt := range tests {
		c, ok := tbl.Column(tt.column)
		require.True(t, ok, tt.column)
		assert.Equal(t, tt.want, c.Type, tt.column)
	}

	score, _ := tbl.Column("score")
	f, ok := score.Values[0].Float()
	require.True(t, ok)
	assert.Equal(t, 3.5, f)
	f, _ = score.Values[1].Float()
	assert.Equal(t, -1000.0, f)
	assert.True(t, score.Values[2].IsMissing())

	name, _ := tbl.Column("name")
	assert.Equal(t, "alice", name.Values[0].String())
	assert.True(t, name.Values[2].IsMissing())

	// Numeric-looking cells in a text column stay text.
	odd, _ := tbl.Column("odd")
	assert.Equal(t, KindText, odd.Values[1].Kind())
	assert.Equal(t, "4", odd.Values[1].String())
}

func TestParse_Decoding(t *testing.T) {
	t.Run("utf-8 BOM stripped", func(t *testing.T) {
		tbl := mustParseCSV(t, "\xEF\xBB\xBFa,b\n1,2\n")
		assert.Equal(t, []string{"a", "b"}, tbl.ColumnNames())
	})

	t.Run("utf-16 with BOM transcoded", func(t *testing.T) {
		enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
		data, err := enc.String("größe,b\n1,2\n")
		require.NoError(t, err)

		tbl := mustParseCSV(t, data)
		assert.Equal(t, []string{"größe", "b"}, tbl.ColumnNames())
		assert.Equal(t, 1, tbl.NumRows())
	})

	t.Run("invalid utf-8 replaced", func(t *testing.T) {
		tbl := mustParseCSV(t, "a\nx\xffy\n")
		c, _ := tbl.Column("a")
		assert.Equal(t, "x�y", c.Values[0].String())
	})
}

func TestParse_HeaderNamesTrimmed(t *testing.T) {
	tbl := mustParseCSV(t, "a, b ,\tc\n1,2,3\n")
	assert.Equal(t, []string{"a", "b", "c"}, tbl.ColumnNames())

	sel, err := SelectColumns(tbl, []string{"b"})
	require.NoError(t, err)
	c, ok := sel.Column("b")
	require.True(t, ok)
	assert.Equal(t, "2", c.Values[0].String())
}

func TestParse_CSVErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
		noRows   bool
	}{
		{name: "empty buffer", input: "", noRows: true},
		{name: "only blank lines", input: "\n\n", noRows: true},
		{name: "duplicate header", input: "a,b,a\n1,2,3\n", wantLine: 1},
		{name: "duplicate header after trim", input: "a, a\n1,2\n", wantLine: 1},
		{name: "blank header name", input: "a, \n1,2\n", wantLine: 1},
		{name: "empty header name", input: "a,,c\n1,2,3\n", wantLine: 1},
		{name: "row wider than header", input: "a,b\n1,2\n1,2,3\n", wantLine: 3},
		{name: "bare quote", input: "a,b\n1,x\"y\n", wantLine: 2},
		{name: "text after closing quote", input: "a,b\n1,2\n\"3\"4,5\n", wantLine: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input), CSV)
			require.Error(t, err)

			var fe *FormatError
			require.True(t, errors.As(err, &fe), "want *FormatError, got %T", err)
			assert.Equal(t, CSV, fe.Format)
			if tt.noRows {
				assert.ErrorIs(t, err, ErrNoRows)
			}
			if tt.wantLine > 0 {
				assert.Equal(t, tt.wantLine, fe.Line)
			}
		})
	}
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := Parse([]byte("a,b\n1,2\n"), Format("pdf"))
	var ue *UnsupportedFormatError
	require.True(t, errors.As(err, &ue), "want *UnsupportedFormatError, got %T", err)
	assert.Equal(t, "pdf", ue.Format)
}

func TestParse_XLSX(t *testing.T) {
	data := buildWorkbook(t, 1,
		[]interface{}{"name", "qty", "price"},
		[]interface{}{"widget", 3, 1.25},
		[]interface{}{"gadget", nil, 2},
		[]interface{}{"gizmo", 7},
	)

	tbl, err := Parse(data, XLSX)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "qty", "price"}, tbl.ColumnNames())
	assert.Equal(t, 3, tbl.NumRows())

	qty, _ := tbl.Column("qty")
	assert.Equal(t, Numeric, qty.Type)
	assert.True(t, qty.Values[1].IsMissing())

	price, _ := tbl.Column("price")
	f, ok := price.Values[0].Float()
	require.True(t, ok)
	assert.Equal(t, 1.25, f)
	assert.True(t, price.Values[2].IsMissing())

	name, _ := tbl.Column("name")
	assert.Equal(t, Text, name.Type)
	assert.Equal(t, "gadget", name.Values[1].String())
}

func TestParse_XLSXHeaderBelowBlankRows(t *testing.T) {
	data := buildWorkbook(t, 3,
		[]interface{}{"a", "b"},
		[]interface{}{1, 2},
	)

	tbl, err := Parse(data, XLSX)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.ColumnNames())
	assert.Equal(t, 1, tbl.NumRows())
}

func TestParse_XLSXErrors(t *testing.T) {
	t.Run("not a workbook", func(t *testing.T) {
		_, err := Parse([]byte("a,b\n1,2\n"), XLSX)
		var fe *FormatError
		require.True(t, errors.As(err, &fe), "want *FormatError, got %T", err)
		assert.Equal(t, XLSX, fe.Format)
	})

	t.Run("empty sheet", func(t *testing.T) {
		f := excelize.NewFile()
		buf, err := f.WriteToBuffer()
		require.NoError(t, err)
		f.Close()

		_, err = Parse(buf.Bytes(), XLSX)
		assert.ErrorIs(t, err, ErrNoRows)
	})

	t.Run("duplicate header", func(t *testing.T) {
		data := buildWorkbook(t, 1,
			[]interface{}{"a", "a"},
			[]interface{}{1, 2},
		)
		_, err := Parse(data, XLSX)
		var fe *FormatError
		require.True(t, errors.As(err, &fe), "want *FormatError, got %T", err)
		assert.Equal(t, 1, fe.Line)
	})
}
