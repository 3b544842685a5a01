package cif

// ErrorKind classifies a fatal parse error.
type ErrorKind int

const (
	// LexicalError covers unterminated quoted values and text fields, and
	// the unsupported reserved words stop_ and global_.
	LexicalError ErrorKind = iota + 1

	// StructuralError covers well-formed tokens in an invalid arrangement:
	// a tag without a value, a loop whose values do not fill its rows,
	// unbalanced or nested save frames, unnamed or duplicate data blocks.
	StructuralError
)

func (k ErrorKind) String() string {
	switch k {
	case LexicalError:
		return "lexical error"
	case StructuralError:
		return "structural error"
	}
	return sf("ErrorKind(%d)", int(k))
}

// ParseError is returned by Parse and Read when the input is not valid CIF.
// ReadFile adds the file name to it; errors.Cause or errors.As recover the
// ParseError. Parsing stops at the first error.
type ParseError struct {
	Kind   ErrorKind
	Line   int // 1-based
	Column int // 1-based, in runes
	Msg    string
}

func (e *ParseError) Error() string {
	return sf("cif: line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// Warning records something suspicious that did not stop the parse, such as
// a data tag given twice in one block.
type Warning struct {
	Line   int
	Column int
	Msg    string
}

func (w Warning) String() string {
	return sf("line %d, column %d: %s", w.Line, w.Column, w.Msg)
}
