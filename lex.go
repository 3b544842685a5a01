package cif

import "strings"

type itemType int

const (
	itemError itemType = iota
	itemEOF
	itemVersion
	itemComment
	itemDataBlockStart
	itemSaveFrameStart
	itemSaveFrameEnd
	itemLoop
	itemDataTag
	itemValue
	itemValueQuoted
	itemValueTextField
)

const (
	eof          = -1
	tagPrefix    = '_'
	commentStart = '#'
	textDelim    = ';'
	dataOmitted  = '.'
	dataMissing  = '?'
	magicComment = "#\\#CIF_"
)

// lexCifInitial starts consuming a CIF file. It checks for the special
// version annotation recommended in the CIF 1.1 spec.
func lexCifInitial(lx *lexer) stateFn {
	if strings.HasPrefix(lx.input, magicComment) {
		lx.pos += len("#\\#")
		lx.ignore()
		lx.push(lexVersion)
		return lx.chars(true, isNonBlankChar)
	}
	return lexCif
}

// lexVersion emits the version named by the magic comment. Anything after it
// on the same line is treated as an ordinary comment.
func lexVersion(lx *lexer) stateFn {
	lx.emit(itemVersion)
	lx.push(lexCif)
	return lexComment
}

// lexCif consumes the space between tokens and dispatches on the first
// character of the next one.
func lexCif(lx *lexer) stateFn {
	r := lx.peek()
	switch {
	case r == eof:
		return lx.stop()
	case r == commentStart || isWhiteSpace(r):
		lx.push(lexCif)
		return lexWhiteSpaceContinue
	case r == textDelim && lx.atLineStart():
		lx.next()
		return lexTextField
	case r == '\'' || r == '"':
		lx.next()
		return lexValueQuoted(r)
	}
	lx.push(lexBareEnd)
	return lx.chars(true, isNonBlankChar)
}

// lexBareEnd classifies a run of non-blank characters as a data tag, a
// reserved word or an unquoted value.
func lexBareEnd(lx *lexer) stateFn {
	word := lx.current()
	switch {
	case word[0] == tagPrefix:
		lx.emit(itemDataTag)
	case strings.EqualFold(word, "loop_"):
		lx.emit(itemLoop)
	case strings.EqualFold(word, "stop_"), strings.EqualFold(word, "global_"):
		return lx.errf("unsupported CIF construct '%s' (STAR extension).", word)
	case hasPrefixFold(word, "data_"):
		lx.emitVal(itemDataBlockStart, word[len("data_"):])
	case strings.EqualFold(word, "save_"):
		lx.emit(itemSaveFrameEnd)
	case hasPrefixFold(word, "save_"):
		lx.emitVal(itemSaveFrameStart, word[len("save_"):])
	default:
		lx.emit(itemValue)
	}
	return lexCif
}

// lexValueQuoted consumes a quoted string. The opening quote has been
// consumed but not ignored. It makes sure that values like 'andrew's pet'
// are valid: a quote only closes the value when followed by whitespace or
// EOF.
func lexValueQuoted(quote rune) stateFn {
	return func(lx *lexer) stateFn {
		for {
			r := lx.next()
			if isNL(r) {
				return lx.errf("Unterminated quoted value: new line before "+
					"the closing %s.", quote)
			}
			if r == eof {
				return lx.errf("Unterminated quoted value: EOF before the "+
					"closing %s.", quote)
			}
			if r == quote {
				if next := lx.peek(); isWhiteSpace(next) || next == eof {
					val := lx.input[lx.start+1 : lx.pos-1]
					lx.emitVal(itemValueQuoted, val)
					return lexCif
				}
			}
		}
	}
}

// lexTextField assumes that '<eol>;' has been consumed but not ignored, and
// consumes the rest of a semi-colon text field up to and including the
// terminating '<eol>;'.
func lexTextField(lx *lexer) stateFn {
	body := lx.input[lx.pos:]
	end := strings.Index(body, "\n;")
	if end < 0 {
		return lx.errf("Unterminated text field: no line beginning with " +
			"';' closes it.")
	}
	lx.pos += end + len("\n;")
	lx.emitVal(itemValueTextField, textFieldContent(body[:end]))
	return lexCif
}

// textFieldContent normalizes line endings and drops a blank opening line,
// which is the customary layout of a text field:
//
//	;
//	first line of the value
//	;
func textFieldContent(s string) string {
	s = strings.TrimSuffix(s, "\r")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	first, rest, found := strings.Cut(s, "\n")
	if strings.TrimSpace(first) != "" {
		return s
	}
	if !found {
		return ""
	}
	return rest
}

func lexOneOrMore(lx *lexer) stateFn {
	r := lx.next()
	if !lx.pred(r) {
		return lx.errf("Expected at least one character, but "+
			"got '%s' instead.", r)
	}
	return lexPred
}

func lexPred(lx *lexer) stateFn {
	for {
		r := lx.next()
		if r == eof || !lx.pred(r) {
			lx.backup()
			return lx.pop()
		}
	}
}

// chars consumes a sequence of characters while `pred` is true. If `oneOrMore`
// is true, then at least one character must match `pred`, or else the lexer
// will fail.
func (lx *lexer) chars(oneOrMore bool, predFn func(rune) bool) stateFn {
	lx.pred = predFn
	if oneOrMore {
		return lexOneOrMore
	}
	return lexPred
}

// lexWhiteSpaceContinue consumes zero or more whitespace characters. It also
// looks for comments and consumes those as well.
func lexWhiteSpaceContinue(lx *lexer) stateFn {
	r := lx.next()
	switch {
	case r == commentStart:
		lx.ignore()
		return lexComment
	case r == eof || !isWhiteSpace(r):
		lx.backup()
		lx.ignore()
		return lx.pop()
	}
	lx.ignore()
	return lexWhiteSpaceContinue
}

// lexComment consumes any sequence of characters up to a <eol> or EOF.
func lexComment(lx *lexer) stateFn {
	if i := strings.IndexAny(lx.input[lx.pos:], "\r\n"); i >= 0 {
		lx.pos += i
	} else {
		lx.pos = len(lx.input)
	}
	lx.emit(itemComment)
	return lexWhiteSpaceContinue
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func isOrdinaryChar(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') ||
		(r >= '0' && r <= '9') || r == '!' || r == '%' || r == '&' ||
		r == '(' || r == ')' || r == '*' || r == '+' || r == ',' ||
		r == '-' || r == '.' || r == '/' || r == ':' || r == '<' ||
		r == '=' || r == '>' || r == '?' || r == '@' || r == '\\' ||
		r == '^' || r == '`' || r == '{' || r == '|' || r == '}' || r == '~'
}

// isNonBlankChar accepts anything but whitespace. Unlike the CIF 1.1 grammar
// it admits non-ASCII text, which is common in real files.
func isNonBlankChar(r rune) bool {
	return r != eof && !isWhiteSpace(r)
}

func isWhiteSpace(r rune) bool {
	return r == ' ' || r == '\t' || isNL(r)
}

func isNL(r rune) bool {
	return r == '\n' || r == '\r'
}

func (itype itemType) String() string {
	switch itype {
	case itemError:
		return "Error"
	case itemEOF:
		return "EOF"
	case itemVersion:
		return "Version"
	case itemComment:
		return "Comment"
	case itemDataBlockStart:
		return "DataBlockStart"
	case itemSaveFrameStart:
		return "SaveFrameStart"
	case itemSaveFrameEnd:
		return "SaveFrameEnd"
	case itemLoop:
		return "Loop"
	case itemDataTag:
		return "DataTag"
	case itemValue:
		return "Value"
	case itemValueQuoted:
		return "QuotedValue"
	case itemValueTextField:
		return "TextField"
	}
	panic(sf("BUG: Unknown type '%d'.", int(itype)))
}
