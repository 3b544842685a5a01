package cif

// Loop represents a single table of data within a block or save frame,
// declared with "loop_". Every row has exactly one value per tag.
type Loop struct {
	tags  []string
	index map[string]int
	rows  [][]Value
}

// Tags returns the column tags as written, in source order.
func (lp *Loop) Tags() []string {
	return append([]string(nil), lp.tags...)
}

// Width returns the number of columns.
func (lp *Loop) Width() int { return len(lp.tags) }

// Len returns the number of rows.
func (lp *Loop) Len() int { return len(lp.rows) }

// Has reports whether the loop has a column with the given tag.
func (lp *Loop) Has(tag string) bool {
	_, ok := lp.index[tagKey(tag)]
	return ok
}

// Row returns the values of row i in column order.
func (lp *Loop) Row(i int) ([]Value, bool) {
	if i < 0 || i >= len(lp.rows) {
		return nil, false
	}
	return append([]Value(nil), lp.rows[i]...), true
}

// Rows returns a copy of every row, in source order.
func (lp *Loop) Rows() [][]Value {
	rows := make([][]Value, len(lp.rows))
	for i, row := range lp.rows {
		rows[i] = append([]Value(nil), row...)
	}
	return rows
}

// RowMap returns row i keyed by column tag as written.
func (lp *Loop) RowMap(i int) (map[string]Value, bool) {
	if i < 0 || i >= len(lp.rows) {
		return nil, false
	}
	m := make(map[string]Value, len(lp.tags))
	for col, tag := range lp.tags {
		m[tag] = lp.rows[i][col]
	}
	return m, true
}

// Get returns the value at the given row and column.
func (lp *Loop) Get(row, col int) (Value, bool) {
	if row < 0 || row >= len(lp.rows) || col < 0 || col >= len(lp.tags) {
		return Value{}, false
	}
	return lp.rows[row][col], true
}

// GetByTag returns the value at the given row in the column with the given
// tag.
func (lp *Loop) GetByTag(row int, tag string) (Value, bool) {
	col, ok := lp.index[tagKey(tag)]
	if !ok {
		return Value{}, false
	}
	return lp.Get(row, col)
}

// Column returns every value in the column with the given tag.
func (lp *Loop) Column(tag string) ([]Value, bool) {
	col, ok := lp.index[tagKey(tag)]
	if !ok {
		return nil, false
	}
	vals := make([]Value, len(lp.rows))
	for i, row := range lp.rows {
		vals[i] = row[col]
	}
	return vals, true
}

// Floats returns a column as numbers. It reports false if the tag is absent
// or if any value in the column is not numeric, including the '?' and '.'
// placeholders.
func (lp *Loop) Floats(tag string) ([]float64, bool) {
	vals, ok := lp.Column(tag)
	if !ok {
		return nil, false
	}
	nums := make([]float64, len(vals))
	for i, v := range vals {
		if nums[i], ok = v.Float(); !ok {
			return nil, false
		}
	}
	return nums, true
}

// Strings returns a column with every value written as its literal, e.g.
// "C1", "0.1234(5)" or "?". It reports false if the tag is absent.
func (lp *Loop) Strings(tag string) ([]string, bool) {
	vals, ok := lp.Column(tag)
	if !ok {
		return nil, false
	}
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = v.Literal()
	}
	return strs, true
}
