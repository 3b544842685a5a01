package cif

import (
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
)

type parser struct {
	lx   *lexer
	doc  *Document
	log  *slog.Logger
	keys folder
}

// Parse reads an entire CIF document from text. On any lexical or
// structural problem it returns a *ParseError and no Document.
func Parse(text string, opts ...Option) (*Document, error) {
	p := &parser{
		lx: lex(text),
		doc: &Document{
			index: make(map[string]*Block, 1),
		},
		log:  slog.New(slog.DiscardHandler),
		keys: newFolder(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p.parse()
}

// Read reads all of r and parses it with Parse.
func Read(r io.Reader, opts ...Option) (*Document, error) {
	input, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "cif: reading input")
	}
	return Parse(string(input), opts...)
}

// ReadFile reads the named file and parses it with Parse.
func ReadFile(path string, opts ...Option) (*Document, error) {
	input, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cif: reading %s", path)
	}
	doc, err := Parse(string(input), opts...)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return doc, nil
}

// errf aborts the parse with an error positioned at t. It is recovered in
// parse.
func (p *parser) errf(kind ErrorKind, t item, format string, v ...interface{}) {
	panic(&ParseError{
		Kind:   kind,
		Line:   t.line,
		Column: t.column,
		Msg:    sf(format, v...),
	})
}

func (p *parser) warnf(t item, format string, v ...interface{}) {
	w := Warning{Line: t.line, Column: t.column, Msg: sf(format, v...)}
	p.doc.warnings = append(p.doc.warnings, w)
	p.log.Warn(w.Msg, slog.Int("line", w.Line), slog.Int("column", w.Column))
}

// next returns the next item that is not a comment. Lexer errors abort the
// parse.
func (p *parser) next() item {
	for {
		t := p.lx.nextItem()
		switch t.typ {
		case itemComment:
			continue
		case itemError:
			p.errf(LexicalError, t, "%s", t.val)
		}
		return t
	}
}

func (p *parser) parse() (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*ParseError)
			if !ok {
				panic(r)
			}
			doc, err = nil, e
		}
	}()

	t := p.next()
	if t.typ == itemVersion {
		p.doc.version = t.val
		t = p.next()
	}
	for {
		switch t.typ {
		case itemEOF:
			p.log.Debug("parsed document",
				slog.Int("blocks", len(p.doc.blocks)),
				slog.Int("warnings", len(p.doc.warnings)))
			return p.doc, nil
		case itemDataBlockStart:
			t = p.parseDataBlock(t)
		default:
			p.errf(StructuralError, t, "Expected comments, whitespace or a "+
				"data block heading, but got %s instead.", t)
		}
	}
}

// parseDataBlock consumes a data block, starting with its heading, and
// returns the first item after it (EOF or the next heading).
func (p *parser) parseDataBlock(head item) item {
	if head.val == "" {
		p.errf(StructuralError, head, "Data block heading 'data_' has no name.")
	}
	key := p.keys.name(head.val)
	if _, ok := p.doc.index[key]; ok {
		p.errf(StructuralError, head, "Data block with name '%s' already "+
			"exists.", head.val)
	}
	b := newBlock(head.val)
	p.doc.blocks = append(p.doc.blocks, b)
	p.doc.index[key] = b
	p.log.Debug("data block", slog.String("block", b.name),
		slog.Int("line", head.line))

	for t := p.next(); ; {
		switch t.typ {
		case itemEOF, itemDataBlockStart:
			return t
		case itemSaveFrameStart:
			t = p.parseSaveFrame(b, t)
		case itemLoop:
			t = p.parseLoop(&b.Container, t)
		case itemDataTag:
			t = p.parseItem(&b.Container, t)
		case itemSaveFrameEnd:
			p.errf(StructuralError, t, "'save_' in data block '%s' closes "+
				"no save frame.", b.name)
		default:
			p.errf(StructuralError, t, "Expected a data item, loop or save "+
				"frame in data block '%s', but got %s instead. (Strings with "+
				"spaces must be quoted and all data tags must begin with "+
				"an underscore.)", b.name, t)
		}
	}
}

// parseSaveFrame consumes a save frame, starting with its heading, and
// returns the first item after it.
func (p *parser) parseSaveFrame(b *Block, head item) item {
	frame := newSaveFrame(head.val)
	if b.addFrame(p.keys.name(frame.name), frame) {
		p.warnf(head, "Save frame with name '%s' already exists in data "+
			"block '%s'.", frame.name, b.name)
	}
	p.log.Debug("save frame", slog.String("block", b.name),
		slog.String("frame", frame.name), slog.Int("line", head.line))

	for t := p.next(); ; {
		switch t.typ {
		case itemSaveFrameEnd:
			return p.next()
		case itemLoop:
			t = p.parseLoop(&frame.Container, t)
		case itemDataTag:
			t = p.parseItem(&frame.Container, t)
		case itemSaveFrameStart:
			p.errf(StructuralError, t, "Save frame '%s' cannot be nested "+
				"in save frame '%s'.", t.val, frame.name)
		case itemDataBlockStart:
			p.warnf(t, "Save frame '%s' (line %d) is closed by a data "+
				"block heading instead of 'save_'.", frame.name, head.line)
			return t
		case itemEOF:
			p.errf(StructuralError, head, "Unterminated save frame '%s': "+
				"expected 'save_' before end of input.", frame.name)
		default:
			p.errf(StructuralError, t, "Expected a data item, loop or "+
				"'save_' in save frame '%s', but got %s instead.",
				frame.name, t)
		}
	}
}

// parseItem consumes a data tag and its value.
func (p *parser) parseItem(c *Container, tag item) item {
	t := p.next()
	if !isValueType(t.typ) {
		p.errf(StructuralError, tag, "Data tag '%s' has no value (found %s "+
			"instead).", tag.val, t)
	}
	if c.setItem(p.keys.tag(tag.val), tag.val, classifyValue(t)) {
		p.warnf(tag, "Data item '%s' already exists in '%s'; the last value "+
			"is kept.", tag.val, c.name)
	}
	return p.next()
}

func isValueType(t itemType) bool {
	return t == itemValue || t == itemValueQuoted || t == itemValueTextField
}
