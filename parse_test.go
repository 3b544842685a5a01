package cif

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
)

var cifSmall = `#\#CIF_1.1
data_1CTF
_entry.id 1ctf
_entry.name 'andrew's pet'
loop_ _a _b
1
;2
;
data_abcd
save_wat
_entry.id .
_entry.name .
save_`

var cifExample = `
    data_example
    _cell_length_a 10.000
    _cell_length_b 20.000
    _cell_length_c 30.000
    _cell_angle_alpha 90.0
    _cell_angle_beta 90.0
    _cell_angle_gamma 90.0
    _author_name 'John Doe'
    _title 'Example Crystal Structure'

    loop_
    _atom_site_label
    _atom_site_type_symbol
    _atom_site_fract_x
    _atom_site_fract_y
    _atom_site_fract_z
    C1 C 0.1234 0.5678 0.9012
    N1 N 0.2345 0.6789 0.0123
    O1 O 0.3456 0.7890 0.1234

    save_frame1
    _frame_item1 'Frame data 1'
    _frame_item2 42.0
    save_
    `

func mustParse(t *testing.T, input string, opts ...Option) *Document {
	t.Helper()
	doc, err := Parse(input, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestParser(t *testing.T) {
	doc := mustParse(t, cifSmall)
	if doc.Version() != "CIF_1.1" {
		t.Fatalf("Version mismatch. Should be 'CIF_1.1' but is '%s'.",
			doc.Version())
	}
	if got := strings.Join(doc.Names(), ","); got != "1CTF,abcd" {
		t.Fatalf("block names %q", got)
	}

	block, ok := doc.Lookup("1ctf")
	if !ok {
		t.Fatal("block 1ctf not found")
	}
	if v, _ := block.Item("_entry.name"); !v.Equal(NewText("andrew's pet")) {
		t.Errorf("_entry.name = %s", v)
	}
	lp, ok := block.FindLoop("_b")
	if !ok {
		t.Fatal("loop with _b not found")
	}
	row, _ := lp.Row(0)
	if !row[0].Equal(NewNumeric(1)) || !row[1].Equal(NewText("2")) {
		t.Errorf("loop row %v", row)
	}

	block, _ = doc.Lookup("ABCD")
	frame, ok := block.LookupFrame("WAT")
	if !ok {
		t.Fatal("save frame wat not found")
	}
	if v, _ := frame.Item("_entry.id"); !v.IsInapplicable() {
		t.Errorf("_entry.id = %s, want '.'", v)
	}
}

func TestParseExample(t *testing.T) {
	doc := mustParse(t, cifExample)
	if doc.Len() != 1 {
		t.Fatalf("got %d blocks, want 1", doc.Len())
	}
	block, ok := doc.Lookup("example")
	if !ok || block.Name() != "example" {
		t.Fatalf("block 'example' not found in %v", doc.Names())
	}

	if n := block.ItemCount(); n != 8 {
		t.Errorf("got %d items, want 8", n)
	}
	wantTags := []string{
		"_cell_length_a", "_cell_length_b", "_cell_length_c",
		"_cell_angle_alpha", "_cell_angle_beta", "_cell_angle_gamma",
		"_author_name", "_title",
	}
	if got := strings.Join(block.Tags(), " "); got != strings.Join(wantTags, " ") {
		t.Errorf("tags %q", got)
	}
	if v, _ := block.Item("_cell_length_a"); !v.Equal(NewNumeric(10)) {
		t.Errorf("_cell_length_a = %s (%s)", v, v.Kind())
	}
	if v, _ := block.Item("_title"); !v.Equal(NewText("Example Crystal Structure")) {
		t.Errorf("_title = %s (%s)", v, v.Kind())
	}
	if v, _ := block.Item("_author_name"); !v.Equal(NewText("John Doe")) {
		t.Errorf("_author_name = %s (%s)", v, v.Kind())
	}

	if block.LoopCount() != 1 {
		t.Fatalf("got %d loops, want 1", block.LoopCount())
	}
	lp, _ := block.Loop(0)
	if lp.Width() != 5 || lp.Len() != 3 {
		t.Fatalf("loop is %d x %d, want 5 tags x 3 rows", lp.Width(), lp.Len())
	}
	row, _ := lp.Row(0)
	want := []Value{
		NewText("C1"), NewText("C"),
		NewNumeric(0.1234), NewNumeric(0.5678), NewNumeric(0.9012),
	}
	for i := range want {
		if !row[i].Equal(want[i]) {
			t.Errorf("row 0, column %d = %s (%s), want %s (%s)",
				i, row[i], row[i].Kind(), want[i], want[i].Kind())
		}
	}
	m, _ := lp.RowMap(2)
	if v := m["_atom_site_label"]; !v.Equal(NewText("O1")) {
		t.Errorf("row 2 label = %s", v)
	}

	if block.FrameCount() != 1 {
		t.Fatalf("got %d save frames, want 1", block.FrameCount())
	}
	frame, _ := block.Frame(0)
	if frame.Name() != "frame1" || frame.ItemCount() != 2 {
		t.Fatalf("save frame %q with %d items", frame.Name(), frame.ItemCount())
	}
	if v, _ := frame.Item("_frame_item2"); !v.Equal(NewNumeric(42)) {
		t.Errorf("_frame_item2 = %s (%s)", v, v.Kind())
	}
	if _, ok := block.Item("_frame_item1"); ok {
		t.Error("save frame items must not leak into the block")
	}
	if len(doc.Warnings()) != 0 {
		t.Errorf("unexpected warnings %v", doc.Warnings())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  ErrorKind
		line  int
		msg   string
	}{
		{"tag without value", "data_a\n_x\n", StructuralError, 2, "has no value"},
		{"tag followed by a tag", "data_a\n_x\n_y 1", StructuralError, 2, "has no value"},
		{"tag followed by loop_", "data_a\n_x loop_ _y 1", StructuralError, 2, "has no value"},
		{"loop mismatch", "data_a\nloop_\n_x\n_y\n1 2 3\n", StructuralError, 2, "row/column mismatch"},
		{"loop mismatch before a tag", "data_a\nloop_ _x _y\n1 2 3\n_z 1", StructuralError, 2, "row/column mismatch"},
		{"loop without tags", "data_a\nloop_\ndata_b", StructuralError, 2, "at least one data tag"},
		{"duplicate loop tag", "data_a\nloop_ _x _X 1 2", StructuralError, 2, "appears twice"},
		{"unmatched save_", "data_a\nsave_\n", StructuralError, 2, "closes no save frame"},
		{"nested save frame", "data_a\nsave_f\nsave_g\n_x 1\nsave_\nsave_", StructuralError, 3, "cannot be nested"},
		{"unterminated save frame", "data_a\nsave_f\n_x 1\n", StructuralError, 2, "Unterminated save frame"},
		{"empty block name", "data_\n_x 1", StructuralError, 1, "has no name"},
		{"duplicate block", "data_a\n_x 1\ndata_A\n", StructuralError, 3, "already exists"},
		{"content before a block", "_x 1\ndata_a", StructuralError, 1, "data block heading"},
		{"value without tag", "data_a\n_x 1 2\n", StructuralError, 2, "Expected a data item"},
		{"unterminated quote", "data_a\n_x 'abc\n", LexicalError, 2, "Unterminated quoted value"},
		{"unterminated text field", "data_a\n_x\n;abc\n", LexicalError, 3, "Unterminated text field"},
		{"stop_", "data_a\nstop_\n", LexicalError, 2, "unsupported CIF construct"},
		{"global_", "global_\ndata_a", LexicalError, 1, "unsupported CIF construct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("expected an error, got a document with %v", doc.Names())
			}
			if doc != nil {
				t.Error("a failed parse must not return a document")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("got %T, want *ParseError", err)
			}
			if perr.Kind != tt.kind {
				t.Errorf("kind %s, want %s (%v)", perr.Kind, tt.kind, err)
			}
			if perr.Line != tt.line {
				t.Errorf("line %d, want %d (%v)", perr.Line, tt.line, err)
			}
			if !strings.Contains(perr.Msg, tt.msg) {
				t.Errorf("message %q does not mention %q", perr.Msg, tt.msg)
			}
		})
	}
}

func TestParseDuplicateItem(t *testing.T) {
	doc := mustParse(t, "data_a\n_x 1\n_y 2\n_X 3\n")
	block, _ := doc.First()
	if got := strings.Join(block.Tags(), " "); got != "_x _y" {
		t.Errorf("tags %q, want the first spelling in first position", got)
	}
	if v, _ := block.Item("_x"); !v.Equal(NewNumeric(3)) {
		t.Errorf("_x = %s, want the last value", v)
	}
	entries := block.Entries()
	if len(entries) != 2 || entries[0].Tag != "_x" || !entries[0].Value.Equal(NewNumeric(3)) {
		t.Errorf("entries %+v", entries)
	}

	warnings := doc.Warnings()
	if len(warnings) != 1 || warnings[0].Line != 4 {
		t.Fatalf("warnings %v, want one on line 4", warnings)
	}
}

func TestParseLoopTagWarnings(t *testing.T) {
	doc := mustParse(t, "data_a\n_x 1\nloop_ _x _y 1 2\n")
	if len(doc.Warnings()) != 1 {
		t.Fatalf("warnings %v", doc.Warnings())
	}
	block, _ := doc.First()
	if v, _ := block.Item("_x"); !v.Equal(NewNumeric(1)) {
		t.Errorf("the item _x must survive a loop column of the same name")
	}
}

// A loop header may be followed directly by another keyword or by the end
// of input.
func TestParseEmptyLoop(t *testing.T) {
	doc := mustParse(t, "data_a\nloop_ _x _y\nloop_ _z 1\ndata_b\nloop_ _w\n")
	a, _ := doc.Lookup("a")
	if a.LoopCount() != 2 {
		t.Fatalf("got %d loops in a", a.LoopCount())
	}
	lp, _ := a.Loop(0)
	if lp.Len() != 0 || lp.Width() != 2 {
		t.Errorf("loop_ _x _y: %d rows, %d columns; want 0 rows, 2 columns",
			lp.Len(), lp.Width())
	}
	if len(lp.Rows()) != 0 {
		t.Errorf("Rows() of an empty loop = %v", lp.Rows())
	}
	lp, _ = a.Loop(1)
	if v, ok := lp.GetByTag(0, "_z"); !ok || !v.Equal(NewNumeric(1)) {
		t.Errorf("_z = %s, %v", v, ok)
	}

	b, _ := doc.Lookup("b")
	lp, ok := b.Loop(0)
	if !ok || lp.Len() != 0 || lp.Width() != 1 {
		t.Errorf("a loop ended by EOF must be empty with one column")
	}
}

func TestParseDataClosesSaveFrame(t *testing.T) {
	doc := mustParse(t, "data_a\nsave_f\n_x 1\ndata_b\n_y 2")
	if doc.Len() != 2 {
		t.Fatalf("got %d blocks", doc.Len())
	}
	a, _ := doc.Lookup("a")
	f, _ := a.LookupFrame("f")
	if f.ItemCount() != 1 {
		t.Errorf("save frame has %d items", f.ItemCount())
	}
	if len(doc.Warnings()) != 1 {
		t.Errorf("warnings %v", doc.Warnings())
	}
}

func TestParseValueKinds(t *testing.T) {
	doc := mustParse(t, `data_kinds
_bare       1.5(2)
_quoted     '1.5(2)'
_field
;
1.5(2)
;
_unknown    ?
_na         .
_quoted_na  '.'
`)
	block, _ := doc.First()
	tests := []struct {
		tag  string
		want Value
	}{
		{"_bare", NewNumericSU(1.5, 2)},
		{"_quoted", NewText("1.5(2)")},
		{"_field", NewText("1.5(2)")},
		{"_unknown", NewUnknown()},
		{"_na", NewInapplicable()},
		{"_quoted_na", NewText(".")},
	}
	for _, tt := range tests {
		if v, _ := block.Item(tt.tag); !v.Equal(tt.want) {
			t.Errorf("%s = %s (%s), want %s (%s)",
				tt.tag, v, v.Kind(), tt.want, tt.want.Kind())
		}
	}
}

func TestParseTextField(t *testing.T) {
	doc := mustParse(t, "data_a\n_text\n;\nfirst line\n\n# kept\n  indented 'quote\n;\n_next 1\n")
	block, _ := doc.First()
	v, _ := block.Item("_text")
	want := "first line\n\n# kept\n  indented 'quote"
	if s, ok := v.Text(); !ok || s != want {
		t.Fatalf("_text = %q, want %q", s, want)
	}
	if block.ItemCount() != 2 {
		t.Errorf("got %d items", block.ItemCount())
	}
}

func TestParseEmptyDocument(t *testing.T) {
	doc := mustParse(t, "# nothing but a comment\n\n")
	if doc.Len() != 0 {
		t.Fatalf("got %d blocks", doc.Len())
	}
	if _, ok := doc.First(); ok {
		t.Error("First() on an empty document must fail")
	}
}

func TestParseByteOrderMark(t *testing.T) {
	doc := mustParse(t, "\ufeff#\\#CIF_1.1\ndata_a _x 1")
	if doc.Version() != "CIF_1.1" {
		t.Errorf("version %q", doc.Version())
	}
	doc = mustParse(t, "\ufeffdata_a _x 1")
	block, ok := doc.Lookup("a")
	if !ok {
		t.Fatalf("blocks %v", doc.Names())
	}
	if v, _ := block.Item("_x"); !v.Equal(NewNumeric(1)) {
		t.Errorf("_x = %s", v)
	}
}

// Tags that only match under Unicode case folding are one tag, however many
// names the parse folds in between.
func TestParseFoldsTags(t *testing.T) {
	doc := mustParse(t, "data_Straße\n_ſize 1\n_SIZE 2\nloop_ _K_x _b 3 4\n"+
		"save_Ωmega\n_a 5\nsave_\n")
	if len(doc.Warnings()) != 1 {
		t.Fatalf("warnings %v, want only the repeated _size", doc.Warnings())
	}
	block, ok := doc.Lookup("STRASSE")
	if !ok {
		t.Fatalf("blocks %v", doc.Names())
	}
	if v, _ := block.Item("_size"); !v.Equal(NewNumeric(2)) {
		t.Errorf("_size = %s", v)
	}
	if lp, ok := block.FindLoop("_k_X"); !ok || lp.Width() != 2 {
		t.Errorf("FindLoop(_k_X) = %v, %v", lp, ok)
	}
	if _, ok := block.LookupFrame("ωMEGA"); !ok {
		t.Error("LookupFrame(ωMEGA) must be found")
	}
}

func TestParseLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	l := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mustParse(t, "data_a\n_x 1\n_x 2\nloop_ _y 1\n", WithLogger(l))
	out := buf.String()
	for _, want := range []string{"data block", "block=a", "loop", "already exists", "level=WARN"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output does not contain %q:\n%s", want, out)
		}
	}
}

func TestParseConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := Parse(cifExample)
			if err != nil {
				t.Error(err)
				return
			}
			block, _ := doc.First()
			lp, _ := block.Loop(0)
			if lp.Len() != 3 {
				t.Errorf("got %d rows", lp.Len())
			}
		}()
	}
	wg.Wait()
}

func TestRead(t *testing.T) {
	doc, err := Read(strings.NewReader(cifSmall))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Len() != 2 {
		t.Fatalf("got %d blocks", doc.Len())
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.cif")
	if err := os.WriteFile(good, []byte(cifExample), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := ReadFile(good)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := doc.Lookup("EXAMPLE"); !ok {
		t.Error("block example not found")
	}

	bad := filepath.Join(dir, "bad.cif")
	if err := os.WriteFile(bad, []byte("data_a\n_x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = ReadFile(bad)
	if err == nil || !strings.Contains(err.Error(), bad) {
		t.Fatalf("error %v does not name the file", err)
	}
	if perr, ok := errors.Cause(err).(*ParseError); !ok || perr.Line != 2 {
		t.Errorf("cause %#v, want a *ParseError on line 2", errors.Cause(err))
	}

	_, err = ReadFile(filepath.Join(dir, "missing.cif"))
	if err == nil || !os.IsNotExist(errors.Cause(err)) {
		t.Errorf("got %v, want a not-exist error", err)
	}
}
