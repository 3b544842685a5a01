package cif

// Kind discriminates the four variants of a Value.
type Kind int

const (
	// KindText is free text. Quoted values and text fields are always text.
	KindText Kind = iota + 1

	// KindNumeric is a number with an optional standard uncertainty.
	KindNumeric

	// KindUnknown is the '?' placeholder: a value exists but was not given.
	KindUnknown

	// KindInapplicable is the '.' placeholder: the tag does not apply.
	KindInapplicable
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	case KindUnknown:
		return "unknown"
	case KindInapplicable:
		return "inapplicable"
	}
	return sf("Kind(%d)", int(k))
}

// Value is a single CIF scalar. Its Kind says which of the typed accessors
// is meaningful; the others report false rather than converting.
//
// The zero Value is not valid. Values are immutable and safe to copy.
type Value struct {
	kind    Kind
	text    string
	num     float64
	su      uint64
	hasSU   bool
	literal string
}

// NewText returns a text value.
func NewText(s string) Value {
	return Value{kind: KindText, text: s, literal: s}
}

// NewNumeric returns a numeric value without a standard uncertainty.
func NewNumeric(f float64) Value {
	return Value{kind: KindNumeric, num: f, literal: formatFloat(f)}
}

// NewNumericSU returns a numeric value with a standard uncertainty. The
// uncertainty is in units of the last printed digit, exactly as written in
// parentheses after a CIF number.
func NewNumericSU(f float64, su uint64) Value {
	return Value{
		kind:    KindNumeric,
		num:     f,
		su:      su,
		hasSU:   true,
		literal: sf("%s(%d)", formatFloat(f), su),
	}
}

// NewUnknown returns the '?' placeholder.
func NewUnknown() Value {
	return Value{kind: KindUnknown, literal: string(dataMissing)}
}

// NewInapplicable returns the '.' placeholder.
func NewInapplicable() Value {
	return Value{kind: KindInapplicable, literal: string(dataOmitted)}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsText() bool         { return v.kind == KindText }
func (v Value) IsNumeric() bool      { return v.kind == KindNumeric }
func (v Value) IsUnknown() bool      { return v.kind == KindUnknown }
func (v Value) IsInapplicable() bool { return v.kind == KindInapplicable }

// Text returns the string held by a text value. For any other kind it
// returns false.
func (v Value) Text() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// Float returns the magnitude of a numeric value. For any other kind it
// returns false.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumeric {
		return 0, false
	}
	return v.num, true
}

// Uncertainty returns the standard uncertainty of a numeric value, in units
// of its last printed digit. It returns false for numbers written without
// one and for every other kind.
func (v Value) Uncertainty() (uint64, bool) {
	if v.kind != KindNumeric || !v.hasSU {
		return 0, false
	}
	return v.su, true
}

// Literal returns the token the value was classified from, without quote
// or text field delimiters.
func (v Value) Literal() string {
	return v.literal
}

// Equal reports whether two values have the same kind and content. The
// literal spelling of numbers is ignored, so "10.0" equals "10.000".
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumeric:
		return v.num == o.num && v.hasSU == o.hasSU && v.su == o.su
	}
	return true
}
