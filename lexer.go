package cif

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

var sf = fmt.Sprintf

type stateFn func(lx *lexer) stateFn

type lexer struct {
	input string
	start int
	pos   int
	width int
	state stateFn
	items chan item

	// Byte offsets of every '\n' in input, used to turn offsets into
	// line/column positions.
	newlines []int

	// The predicate used by lexOneOrMore and lexPred.
	pred func(rune) bool

	// A stack of state functions used to maintain context.
	// The idea is to reuse parts of the state machine in various places.
	// The last state on the stack is used after whitespace or a comment
	// has been consumed.
	stack []stateFn
}

type item struct {
	typ    itemType
	val    string
	line   int
	column int
}

func (it item) String() string {
	switch it.typ {
	case itemEOF:
		return "end of input"
	case itemError:
		return it.val
	}
	return sf("%s '%s'", it.typ, it.val)
}

// byteOrderMark is dropped from the start of the input, so that positions
// count from the first real character.
const byteOrderMark = "\ufeff"

func lex(input string) *lexer {
	input = strings.TrimPrefix(input, byteOrderMark)
	lx := &lexer{
		input: input,
		state: lexCifInitial,
		items: make(chan item, 10),
		stack: make([]stateFn, 0, 10),
	}
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			lx.newlines = append(lx.newlines, i)
		}
	}
	return lx
}

// nextItem runs the state machine until it has produced an item. Once the
// machine has stopped, every further call returns an EOF item.
func (lx *lexer) nextItem() item {
	for {
		select {
		case it := <-lx.items:
			return it
		default:
			if lx.state == nil {
				line, col := lx.position(len(lx.input))
				return item{itemEOF, "", line, col}
			}
			lx.state = lx.state(lx)
		}
	}
}

func (lx *lexer) push(state stateFn) {
	lx.stack = append(lx.stack, state)
}

func (lx *lexer) pop() stateFn {
	if len(lx.stack) == 0 {
		return lx.errf("BUG in lexer: no states to pop.")
	}
	last := lx.stack[len(lx.stack)-1]
	lx.stack = lx.stack[0 : len(lx.stack)-1]
	return last
}

// position converts a byte offset into a 1-based line and a 1-based column
// counted in runes.
func (lx *lexer) position(offset int) (line, column int) {
	i := sort.SearchInts(lx.newlines, offset)
	lineStart := 0
	if i > 0 {
		lineStart = lx.newlines[i-1] + 1
	}
	return i + 1, utf8.RuneCountInString(lx.input[lineStart:offset]) + 1
}

// atLineStart reports whether the current position is the first character of
// a line.
func (lx *lexer) atLineStart() bool {
	return lx.pos == 0 || lx.input[lx.pos-1] == '\n'
}

func (lx *lexer) current() string {
	return lx.input[lx.start:lx.pos]
}

func (lx *lexer) emit(typ itemType) {
	lx.emitVal(typ, lx.current())
}

// emitVal emits an item positioned at the start of the pending input but
// carrying val instead of the raw input.
func (lx *lexer) emitVal(typ itemType, val string) {
	line, col := lx.position(lx.start)
	lx.items <- item{typ, val, line, col}
	lx.start = lx.pos
}

func (lx *lexer) next() (r rune) {
	if lx.pos >= len(lx.input) {
		lx.width = 0
		return eof
	}
	r, lx.width = utf8.DecodeRuneInString(lx.input[lx.pos:])
	lx.pos += lx.width
	return r
}

// ignore skips over the pending input before this point.
func (lx *lexer) ignore() {
	lx.start = lx.pos
}

// backup steps back one rune. Can be called only once per call of next.
func (lx *lexer) backup() {
	lx.pos -= lx.width
}

// peek returns but does not consume the next rune in the input.
func (lx *lexer) peek() rune {
	r := lx.next()
	lx.backup()
	return r
}

// errf stops all lexing by emitting an error positioned at the start of the
// pending input and returning `nil`.
// Note that any value that is a character is escaped if it's a special
// character (new lines, tabs, etc.).
func (lx *lexer) errf(format string, values ...interface{}) stateFn {
	for i, value := range values {
		if v, ok := value.(rune); ok {
			switch v {
			case '\n':
				values[i] = "\\n"
			case '\r':
				values[i] = "\\r"
			case '\t':
				values[i] = "\\t"
			case eof:
				values[i] = "EOF"
			default:
				values[i] = string(v)
			}
		}
	}
	line, col := lx.position(lx.start)
	lx.items <- item{itemError, sf(format, values...), line, col}
	return nil
}

func (lx *lexer) stop() stateFn {
	lx.ignore()
	lx.emit(itemEOF)
	return nil
}
