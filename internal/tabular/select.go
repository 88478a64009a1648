package tabular

// SelectColumns returns a table with exactly the named columns in the given
// order. Rows keep their order and count.
func SelectColumns(t *Table, names []string) (*Table, error) {
	cols := make([]Column, 0, len(names))
	picked := make(map[string]struct{}, len(names))
	for _, name := range names {
		c, ok := t.Column(name)
		if !ok {
			return nil, &UnknownColumnError{Column: name}
		}
		if _, dup := picked[name]; dup {
			return nil, &DuplicateColumnError{Column: name}
		}
		picked[name] = struct{}{}
		cols = append(cols, c.clone())
	}
	return newTableRows(cols, t.rows), nil
}
