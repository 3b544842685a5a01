package cif

import (
	"math"
	"strconv"
	"strings"
)

// String returns the value written as a CIF scalar. Text is left unquoted
// when that reads back as the same text, and is otherwise quoted or, when it
// spans lines, written as a semi-colon text field. Numbers keep the spelling
// they were parsed from.
//
// CIF 1.1 has no way to write text with a line that begins with ';': it
// would close the text field. Such text is still written as a text field,
// and reading it back fails or gives different text. CanWrite reports which
// values are affected.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return formatText(v.text)
	case KindNumeric:
		return v.literal
	case KindUnknown:
		return string(dataMissing)
	case KindInapplicable:
		return string(dataOmitted)
	}
	return "<invalid cif.Value>"
}

// formatText examines the contents of the given string to determine how to
// write it. It decides between unquoted, single-quoted, double-quoted or
// a semi-colon text field. The first three are only used for strings without
// new lines. A quote character is only a problem inside a quoted value when
// whitespace follows it.
func formatText(s string) string {
	switch {
	case isTextField(s):
		return string(textDelim) + "\n" + s + "\n" + string(textDelim)
	case isBare(s):
		return s
	case !hasCloser(s, '\''):
		return "'" + s + "'"
	}
	return "\"" + s + "\""
}

// isTextField reports whether formatText writes s as a text field.
func isTextField(s string) bool {
	return strings.ContainsAny(s, "\r\n") ||
		hasCloser(s, '\'') && hasCloser(s, '"')
}

// CanWrite reports whether String writes the value in a form that reads
// back as an equal value.
func (v Value) CanWrite() bool {
	switch v.kind {
	case KindNumeric:
		return !math.IsInf(v.num, 0) && !math.IsNaN(v.num)
	case KindText:
		if !isTextField(v.text) {
			return true
		}
		// Inside a text field a ';' at the start of a line ends the field,
		// and CRLF line ends are read back as LF.
		return !strings.HasPrefix(v.text, string(textDelim)) &&
			!strings.Contains(v.text, "\n"+string(textDelim)) &&
			!strings.Contains(v.text, "\r\n") &&
			!strings.HasSuffix(v.text, "\r")
	}
	return true
}

// isBare reports whether s can be written without delimiters and still be
// read back as the text s.
func isBare(s string) bool {
	if s == "" || !isOrdinaryChar(rune(s[0])) {
		return false
	}
	if strings.IndexFunc(s, isWhiteSpace) >= 0 {
		return false
	}
	if strings.EqualFold(s, "loop_") || strings.EqualFold(s, "stop_") ||
		strings.EqualFold(s, "global_") || hasPrefixFold(s, "data_") ||
		hasPrefixFold(s, "save_") {
		return false
	}
	return Classify(s).IsText()
}

// hasCloser reports whether quote appears in s followed by whitespace, which
// would end a value delimited by quote too early.
func hasCloser(s string, quote byte) bool {
	for i := 0; i < len(s)-1; i++ {
		if s[i] == quote && isWhiteSpace(rune(s[i+1])) {
			return true
		}
	}
	return false
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
