package cif

import (
	"regexp"
	"strconv"
)

// matchNumeric matches a CIF number: an optional sign, digits with an
// optional fraction (or a fraction alone), an optional exponent and an
// optional parenthesized standard uncertainty.
var matchNumeric = regexp.MustCompile(
	`^([+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?)(?:\(([0-9]+)\))?$`)

// Classify decides the type of a scalar as it would appear in a CIF file:
//
//	?          unknown
//	.          inapplicable
//	10.000(5)  numeric, 10 with uncertainty 5
//	'John Doe' text "John Doe"
//	C1         text "C1"
//
// Numbers that do not fit in a float64 (or an uncertainty that does not fit
// in a uint64) are classified as text. Classify never fails.
func Classify(literal string) Value {
	switch literal {
	case string(dataMissing):
		return NewUnknown()
	case string(dataOmitted):
		return NewInapplicable()
	}
	if s, ok := unquote(literal); ok {
		return NewText(s)
	}
	if v, ok := classifyNumeric(literal); ok {
		return v
	}
	return NewText(literal)
}

// classifyValue converts a value item from the lexer. Only bare values are
// candidates for the placeholders and numbers.
func classifyValue(t item) Value {
	if t.typ == itemValue {
		return Classify(t.val)
	}
	return NewText(t.val)
}

func classifyNumeric(literal string) (Value, bool) {
	m := matchNumeric.FindStringSubmatch(literal)
	if m == nil {
		return Value{}, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Value{}, false
	}
	v := Value{kind: KindNumeric, num: f, literal: literal}
	if m[2] != "" {
		su, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			return Value{}, false
		}
		v.su, v.hasSU = su, true
	}
	return v, true
}

// unquote strips matching single or double quotes from a literal.
func unquote(literal string) (string, bool) {
	if len(literal) < 2 {
		return "", false
	}
	q := literal[0]
	if (q != '\'' && q != '"') || literal[len(literal)-1] != q {
		return "", false
	}
	return literal[1 : len(literal)-1], true
}
