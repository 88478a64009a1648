package tabular

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// CleanOp is a named, stateless cleaning operation.
type CleanOp string

const (
	RemoveDuplicatesOp    CleanOp = "remove_duplicates"
	FillMissingWithMeanOp CleanOp = "fill_missing_mean"
)

// ParseCleanOp resolves a clean operation by name. Hyphens and case are ignored.
func ParseCleanOp(s string) (CleanOp, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch name {
	case "remove_duplicates", "drop_duplicates", "dedupe":
		return RemoveDuplicatesOp, nil
	case "fill_missing_mean", "fill_missing", "fillna_mean":
		return FillMissingWithMeanOp, nil
	default:
		return "", fmt.Errorf("unknown clean operation: %q", s)
	}
}

// Apply runs the operation on t.
func (op CleanOp) Apply(t *Table) (*Table, error) {
	switch op {
	case RemoveDuplicatesOp:
		return RemoveDuplicates(t), nil
	case FillMissingWithMeanOp:
		return FillMissingWithMean(t), nil
	default:
		return nil, fmt.Errorf("unknown clean operation: %q", string(op))
	}
}

// ApplyAll runs ops in order and returns the final table.
func ApplyAll(t *Table, ops ...CleanOp) (*Table, error) {
	var err error
	for _, op := range ops {
		t, err = op.Apply(t)
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// RemoveDuplicates returns a table without rows that equal an earlier row in
// every column. First occurrences keep their relative order.
func RemoveDuplicates(t *Table) *Table {
	seen := make(map[string]struct{}, t.rows)
	keep := make([]int, 0, t.rows)

	var b strings.Builder
	for i := 0; i < t.rows; i++ {
		b.Reset()
		for _, c := range t.columns {
			writeRowKey(&b, c.Values[i])
		}
		key := b.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}

	cols := make([]Column, len(t.columns))
	for j, c := range t.columns {
		values := make([]Value, len(keep))
		for k, i := range keep {
			values[k] = c.Values[i]
		}
		cols[j] = Column{Name: c.Name, Type: c.Type, Values: values}
	}
	return newTableRows(cols, len(keep))
}

// writeRowKey appends an unambiguous encoding of v: a kind tag, then a
// length-prefixed payload.
func writeRowKey(b *strings.Builder, v Value) {
	switch v.kind {
	case KindNumber:
		s := strconv.FormatFloat(v.num, 'g', -1, 64)
		if v.num == 0 {
			s = "0" // -0 == 0
		}
		b.WriteByte('n')
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
	case KindText:
		b.WriteByte('s')
		b.WriteString(strconv.Itoa(len(v.str)))
		b.WriteByte(':')
		b.WriteString(v.str)
	default:
		b.WriteByte('m')
	}
}

// FillMissingWithMean returns a table where every missing cell of a numeric
// column is replaced by the mean of that column's non-missing cells. Numeric
// columns without any value and text columns are left unchanged.
func FillMissingWithMean(t *Table) *Table {
	cols := make([]Column, len(t.columns))
	for j, c := range t.columns {
		cols[j] = c.clone()
		if c.Type != Numeric {
			continue
		}
		mean, ok := columnMean(c)
		if !ok {
			continue
		}
		for i, v := range cols[j].Values {
			if v.IsMissing() {
				cols[j].Values[i] = NumberValue(mean)
			}
		}
	}
	return newTableRows(cols, t.rows)
}

// columnMean returns the arithmetic mean of the non-missing numbers in c.
func columnMean(c Column) (float64, bool) {
	xs := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if f, ok := v.Float(); ok {
			xs = append(xs, f)
		}
	}
	if len(xs) == 0 {
		return 0, false
	}
	mean := stat.Mean(xs, nil)
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return 0, false
	}
	return mean, true
}
