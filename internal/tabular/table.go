package tabular

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex matches integers, decimals and scientific notation. It keeps
// strconv from accepting NaN, Inf, hex floats and underscores as numbers.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Kind is the kind of a single cell.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindText
)

// Value is a single cell: a number, a text or missing.
// The zero Value is missing.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// NumberValue returns a numeric cell.
func NumberValue(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// TextValue returns a text cell.
func TextValue(s string) Value {
	return Value{kind: KindText, str: s}
}

// MissingValue returns a missing cell.
func MissingValue() Value {
	return Value{}
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Float returns the numeric value and true for a number cell.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// String returns the serialized form used by CSV export: the shortest
// representation that parses back to the same float for numbers, the text
// as is, and "" for missing cells.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.str
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same value. Missing equals missing.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindText:
		return v.str == o.str
	default:
		return true
	}
}

// parseNumber parses a trimmed cell as a number.
func parseNumber(s string) (float64, bool) {
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ColumnType classifies a whole column.
type ColumnType uint8

const (
	Numeric ColumnType = iota
	Text
)

func (t ColumnType) String() string {
	if t == Numeric {
		return "numeric"
	}
	return "text"
}

// MarshalText lets column types appear as "numeric"/"text" in JSON.
func (t ColumnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Column is a named sequence of cells, one per row.
type Column struct {
	Name   string
	Type   ColumnType
	Values []Value
}

// NewColumn classifies raw cell strings and builds a column. A cell is missing
// when it is empty after trimming whitespace. The column is Numeric when every
// other cell parses as a number.
func NewColumn(name string, raw []string) Column {
	values := make([]Value, len(raw))
	numeric := true

	for i, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		f, ok := parseNumber(s)
		if !ok {
			numeric = false
			break
		}
		values[i] = NumberValue(f)
	}

	if numeric {
		return Column{Name: name, Type: Numeric, Values: values}
	}

	for i, s := range raw {
		if strings.TrimSpace(s) == "" {
			values[i] = MissingValue()
			continue
		}
		values[i] = TextValue(s)
	}
	return Column{Name: name, Type: Text, Values: values}
}

// Len returns the number of cells.
func (c Column) Len() int {
	return len(c.Values)
}

// MissingCount returns the number of missing cells.
func (c Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

func (c Column) clone() Column {
	values := make([]Value, len(c.Values))
	copy(values, c.Values)
	return Column{Name: c.Name, Type: c.Type, Values: values}
}

// Table is an ordered set of uniquely named columns of equal length.
//
// Operations in this package never mutate a Table they receive; they return
// a new one. A Table is not safe for concurrent mutation by its owner, but
// distinct Tables share no state.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// NewTable builds a table from columns. It fails with a FormatError when two
// columns share a name, a name is empty, or the columns differ in length.
func NewTable(columns ...Column) (*Table, error) {
	t := &Table{
		columns: columns,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if c.Name == "" {
			return nil, &FormatError{Reason: fmt.Sprintf("empty header name at column %d", i+1)}
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, &FormatError{Reason: fmt.Sprintf("duplicate header %q", c.Name)}
		}
		t.index[c.Name] = i
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, &FormatError{Reason: fmt.Sprintf("column %q has %d rows, want %d", c.Name, c.Len(), t.rows)}
		}
	}
	return t, nil
}

// newTableRows builds a table whose row count does not depend on its columns.
// Used for projections that keep no columns.
func newTableRows(columns []Column, rows int) *Table {
	t := &Table{
		columns: columns,
		index:   make(map[string]int, len(columns)),
		rows:    rows,
	}
	for i, c := range columns {
		t.index[c.Name] = i
	}
	return t
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return t.rows }

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.columns) }

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// Columns returns the columns in order. The slice must not be modified.
func (t *Table) Columns() []Column {
	return t.columns
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.Values[i]
	}
	return row
}

// Records returns every row serialized as strings, header excluded.
func (t *Table) Records() [][]string {
	records := make([][]string, t.rows)
	for i := range records {
		rec := make([]string, len(t.columns))
		for j, c := range t.columns {
			rec[j] = c.Values[i].String()
		}
		records[i] = rec
	}
	return records
}

// Head returns a table holding at most the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > t.rows {
		n = t.rows
	}
	cols := make([]Column, len(t.columns))
	for i, c := range t.columns {
		values := make([]Value, n)
		copy(values, c.Values[:n])
		cols[i] = Column{Name: c.Name, Type: c.Type, Values: values}
	}
	return newTableRows(cols, n)
}

// ColumnInfo describes one column for previews.
type ColumnInfo struct {
	Name    string     `json:"name"`
	Type    ColumnType `json:"type"`
	Missing int        `json:"missing"`
}

// Schema lists column names, types and missing counts.
func (t *Table) Schema() []ColumnInfo {
	info := make([]ColumnInfo, len(t.columns))
	for i, c := range t.columns {
		info[i] = ColumnInfo{Name: c.Name, Type: c.Type, Missing: c.MissingCount()}
	}
	return info
}

// Equal reports whether two tables have the same columns, types and cells.
func (t *Table) Equal(o *Table) bool {
	if t.rows != o.rows || len(t.columns) != len(o.columns) {
		return false
	}
	for i, c := range t.columns {
		oc := o.columns[i]
		if c.Name != oc.Name || c.Type != oc.Type {
			return false
		}
		for r := range c.Values {
			if !c.Values[r].Equal(oc.Values[r]) {
				return false
			}
		}
	}
	return true
}
