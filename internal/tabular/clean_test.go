package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveDuplicates(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantRows [][]string
	}{
		{
			name:     "keeps first occurrence in order",
			input:    "a,b\n1,x\n2,y\n1,x\n3,z\n2,y\n",
			wantRows: [][]string{{"1", "x"}, {"2", "y"}, {"3", "z"}},
		},
		{
			name:     "missing equals missing",
			input:    "a,b\n1,\n1,\n",
			wantRows: [][]string{{"1", ""}},
		},
		{
			name:     "numbers compared by value",
			input:    "a,b\n1.0,x\n1,x\n1e0,x\n",
			wantRows: [][]string{{"1", "x"}},
		},
		{
			name:     "rows differing in one column kept",
			input:    "a,b\n1,x\n1,y\n",
			wantRows: [][]string{{"1", "x"}, {"1", "y"}},
		},
		{
			name:     "text is not trimmed for comparison",
			input:    "a,b\n1,x\n1, x\n",
			wantRows: [][]string{{"1", "x"}, {"1", " x"}},
		},
		{
			name:     "no rows",
			input:    "a,b\n",
			wantRows: [][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := mustParseCSV(t, tt.input)
			out := RemoveDuplicates(in)
			assert.Equal(t, tt.wantRows, out.Records())
			assert.Equal(t, in.ColumnNames(), out.ColumnNames())
		})
	}
}

func TestRemoveDuplicates_Idempotent(t *testing.T) {
	in := mustParseCSV(t, "a,b,c\n1,x,\n1,x,\n2,,3\n2,,3\n,y,1\n")
	once := RemoveDuplicates(in)
	twice := RemoveDuplicates(once)
	assert.True(t, once.Equal(twice))
	assert.Equal(t, 3, once.NumRows())
}

func TestRemoveDuplicates_DoesNotMutateInput(t *testing.T) {
	in := mustParseCSV(t, "a\n1\n1\n")
	_ = RemoveDuplicates(in)
	assert.Equal(t, 2, in.NumRows())
}

func TestFillMissingWithMean(t *testing.T) {
	in := mustParseCSV(t, "a,b,name,none\n1,,x,\n,4,,\n3,8,z,\n")
	out := FillMissingWithMean(in)

	a, _ := out.Column("a")
	got, ok := a.Values[1].Float()
	require.True(t, ok)
	assert.Equal(t, 2.0, got)

	b, _ := out.Column("b")
	got, ok = b.Values[0].Float()
	require.True(t, ok)
	assert.Equal(t, 6.0, got)

	// Text and all-missing columns are untouched.
	name, _ := out.Column("name")
	assert.True(t, name.Values[1].IsMissing())
	none, _ := out.Column("none")
	assert.Equal(t, 3, none.MissingCount())

	// The input keeps its gaps.
	inA, _ := in.Column("a")
	assert.True(t, inA.Values[1].IsMissing())
}

func TestFillMissingWithMean_NoMissingInNumericColumns(t *testing.T) {
	in := mustParseCSV(t, "a,b,c\n1,,2.5\n,,\n7,3,\n,-1,\n")
	out := FillMissingWithMean(in)
	for _, c := range out.Columns() {
		if c.Type == Numeric {
			assert.Zero(t, c.MissingCount(), "column %q", c.Name)
		}
	}
	assert.Equal(t, in.NumRows(), out.NumRows())
}

func TestFillMissingWithMean_Idempotent(t *testing.T) {
	in := mustParseCSV(t, "a,b\n1,\n,2\n4,\n")
	once := FillMissingWithMean(in)
	assert.True(t, once.Equal(FillMissingWithMean(once)))
}

func TestCleanScenario(t *testing.T) {
	in := mustParseCSV(t, "a,b\n1,\n,4\n1,\n")

	deduped := RemoveDuplicates(in)
	require.Equal(t, 2, deduped.NumRows())
	assert.Equal(t, [][]string{{"1", ""}, {"", "4"}}, deduped.Records())

	filled := FillMissingWithMean(deduped)
	assert.Equal(t, [][]string{{"1", "4"}, {"1", "4"}}, filled.Records())
}

func TestParseCleanOp(t *testing.T) {
	tests := []struct {
		input   string
		want    CleanOp
		wantErr bool
	}{
		{"remove_duplicates", RemoveDuplicatesOp, false},
		{"drop-duplicates", RemoveDuplicatesOp, false},
		{"Dedupe", RemoveDuplicatesOp, false},
		{"fill_missing_mean", FillMissingWithMeanOp, false},
		{"fill-missing", FillMissingWithMeanOp, false},
		{"fillna_mean", FillMissingWithMeanOp, false},
		{"sort", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCleanOp(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyAll(t *testing.T) {
	in := mustParseCSV(t, "a,b\n1,\n,4\n1,\n")

	out, err := ApplyAll(in, RemoveDuplicatesOp, FillMissingWithMeanOp)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "4"}, {"1", "4"}}, out.Records())

	// Order matters: filling first changes which rows are duplicates.
	out, err = ApplyAll(in, FillMissingWithMeanOp, RemoveDuplicatesOp)
	require.NoError(t, err)
	assert.Equal(t, 1, out.NumRows())

	same, err := ApplyAll(in)
	require.NoError(t, err)
	assert.Same(t, in, same)

	_, err = ApplyAll(in, CleanOp("sort"))
	assert.Error(t, err)
}
