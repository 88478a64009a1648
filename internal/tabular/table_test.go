package tabular

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	a := NewColumn("a", []string{"1", "2"})
	b := NewColumn("b", []string{"x", ""})

	tbl, err := NewTable(a, b)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, []string{"a", "b"}, tbl.ColumnNames())
	assert.Equal(t, []Value{NumberValue(2), MissingValue()}, tbl.Row(1))

	tests := []struct {
		name    string
		columns []Column
	}{
		{"duplicate name", []Column{a, NewColumn("a", []string{"3", "4"})}},
		{"empty name", []Column{a, NewColumn("", []string{"3", "4"})}},
		{"length mismatch", []Column{a, NewColumn("c", []string{"3"})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.columns...)
			var fe *FormatError
			assert.True(t, errors.As(err, &fe), "want *FormatError, got %v", err)
		})
	}
}

func TestNewColumn(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		want    ColumnType
		missing int
	}{
		{"integers", []string{"1", "-2", "+3"}, Numeric, 0},
		{"floats and exponents", []string{"1.5", ".5", "2.", "1e-3"}, Numeric, 0},
		{"blank cells missing", []string{"1", "", "  "}, Numeric, 2},
		{"all missing", []string{"", ""}, Numeric, 2},
		{"mixed", []string{"1", "two"}, Text, 0},
		{"inf is text", []string{"Inf"}, Text, 0},
		{"hex is text", []string{"0x10"}, Text, 0},
		{"underscores are text", []string{"1_000"}, Text, 0},
		{"thousands separator is text", []string{"1,000"}, Text, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewColumn("c", tt.raw)
			assert.Equal(t, tt.want, c.Type)
			assert.Equal(t, tt.missing, c.MissingCount())
			assert.Equal(t, len(tt.raw), c.Len())
		})
	}
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "1.5", NumberValue(1.5).String())
	assert.Equal(t, "100000000000", NumberValue(1e11).String())
	assert.Equal(t, "-0.25", NumberValue(-0.25).String())
	assert.Equal(t, " x ", TextValue(" x ").String())
	assert.Equal(t, "", MissingValue().String())
	assert.True(t, MissingValue().Equal(Value{}))
	assert.False(t, NumberValue(1).Equal(TextValue("1")))
}

func TestTable_Head(t *testing.T) {
	in := mustParseCSV(t, "a\n1\n2\n3\n4\n5\n6\n7\n")

	assert.Equal(t, 5, in.Head(5).NumRows())
	assert.Equal(t, 7, in.Head(50).NumRows())
	assert.Equal(t, 0, in.Head(-1).NumRows())
	assert.Equal(t, [][]string{{"1"}, {"2"}}, in.Head(2).Records())
	assert.Equal(t, 7, in.NumRows())
}

func TestTable_Schema(t *testing.T) {
	in := mustParseCSV(t, "id,name\n1,a\n,b\n")

	schema := in.Schema()
	assert.Equal(t, []ColumnInfo{
		{Name: "id", Type: Numeric, Missing: 1},
		{Name: "name", Type: Text, Missing: 0},
	}, schema)

	data, err := json.Marshal(schema)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"id","type":"numeric","missing":1},{"name":"name","type":"text","missing":0}]`, string(data))
}
