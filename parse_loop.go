package cif

import "log/slog"

// parseLoop consumes a "loop_" declaration: its data tags, then values until
// the next tag, reserved word or EOF. It returns the first item after the
// loop.
func (p *parser) parseLoop(c *Container, head item) item {
	// Check that there's at least one data tag. Then slurp up any remaining
	// data tags.
	t := p.next()
	if t.typ != itemDataTag {
		p.errf(StructuralError, head, "After 'loop_' declaration, there must "+
			"be at least one data tag, but found %s instead.", t)
	}
	lp := &Loop{index: make(map[string]int, 5)}
	var keys []string
	for ; t.typ == itemDataTag; t = p.next() {
		key := p.keys.tag(t.val)
		if _, ok := lp.index[key]; ok {
			p.errf(StructuralError, t, "Data tag '%s' appears twice in the "+
				"same 'loop_' header.", t.val)
		}
		lp.index[key] = len(lp.tags)
		lp.tags = append(lp.tags, t.val)
		keys = append(keys, key)
	}

	// Values fill the table row by row. A loop is allowed to end with no
	// values at all, but never part way through a row.
	width := len(lp.tags)
	var row []Value
	count := 0
	for ; isValueType(t.typ); t, count = p.next(), count+1 {
		if row == nil {
			row = make([]Value, 0, width)
		}
		row = append(row, classifyValue(t))
		if len(row) == width {
			lp.rows = append(lp.rows, row)
			row = nil
		}
	}
	if count%width != 0 {
		p.errf(StructuralError, head, "Loop row/column mismatch: there are "+
			"%d values in the loop, which is not a multiple of the number of "+
			"columns in the loop (%d).", count, width)
	}

	if clashes := c.addLoop(lp, keys); len(clashes) > 0 {
		p.warnf(head, "Loop tags %v are already defined in '%s'.",
			clashes, c.name)
	}
	p.log.Debug("loop", slog.String("container", c.name),
		slog.Int("line", head.line), slog.Int("columns", width),
		slog.Int("rows", len(lp.rows)))
	return t
}
