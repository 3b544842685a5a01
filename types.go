package cif

import (
	"strings"

	"golang.org/x/text/cases"
)

// Document represents an entire CIF file: its data blocks in the order they
// appear. A Document is immutable and safe for concurrent use.
type Document struct {
	version  string
	blocks   []*Block
	index    map[string]*Block
	warnings []Warning
}

// Version returns the version named by a leading "#\#CIF_1.1" style
// comment, e.g. "CIF_1.1", or "" if the file has none.
func (d *Document) Version() string { return d.version }

// Len returns the number of data blocks.
func (d *Document) Len() int { return len(d.blocks) }

// Names returns the data block names in source order, as written.
func (d *Document) Names() []string {
	names := make([]string, len(d.blocks))
	for i, b := range d.blocks {
		names[i] = b.name
	}
	return names
}

// Block returns the i'th data block.
func (d *Document) Block(i int) (*Block, bool) {
	if i < 0 || i >= len(d.blocks) {
		return nil, false
	}
	return d.blocks[i], true
}

// Lookup returns the data block with the given name. Names are compared
// case-insensitively.
func (d *Document) Lookup(name string) (*Block, bool) {
	b, ok := d.index[fold(name)]
	return b, ok
}

// First returns the first data block.
func (d *Document) First() (*Block, bool) {
	return d.Block(0)
}

// Blocks returns every data block in source order.
func (d *Document) Blocks() []*Block {
	return append([]*Block(nil), d.blocks...)
}

// Warnings returns the problems found while parsing that did not make the
// input invalid.
func (d *Document) Warnings() []Warning {
	return append([]Warning(nil), d.warnings...)
}

// EntryKind says what an Entry holds.
type EntryKind int

const (
	EntryItem EntryKind = iota + 1
	EntryLoop
	EntryFrame
)

func (k EntryKind) String() string {
	switch k {
	case EntryItem:
		return "item"
	case EntryLoop:
		return "loop"
	case EntryFrame:
		return "save frame"
	}
	return sf("EntryKind(%d)", int(k))
}

// Entry is one element of a block or save frame, in source order. Exactly
// one of the fields after Kind is meaningful.
type Entry struct {
	Kind EntryKind

	// Tag and Value are set for items. When a tag is given more than once,
	// the entry sits at the first position and holds the last value.
	Tag   string
	Value Value

	Loop  *Loop
	Frame *SaveFrame
}

type entry struct {
	kind  EntryKind
	tag   string
	loop  *Loop
	frame *SaveFrame
}

// Container holds the data items and loops that data blocks and save frames
// have in common.
type Container struct {
	name    string
	entries []entry

	// tags lists item tags, as first written, in source order. items maps
	// folded tags to their latest value.
	tags  []string
	items map[string]Value

	loops []*Loop

	// loopIndex maps the folded tags of every loop column to its loop.
	loopIndex map[string]*Loop
}

func newContainer(name string) Container {
	return Container{
		name:      name,
		items:     make(map[string]Value, 10),
		loopIndex: make(map[string]*Loop, 10),
	}
}

// Name returns the name of the block or save frame, without its "data_" or
// "save_" prefix.
func (c *Container) Name() string { return c.name }

// Tags returns the tags of the data items (not loop columns) in source
// order.
func (c *Container) Tags() []string {
	return append([]string(nil), c.tags...)
}

// Item returns the value of a data item. Tags are compared
// case-insensitively and the leading underscore may be omitted. Loop columns
// are not items; use FindLoop for those.
func (c *Container) Item(tag string) (Value, bool) {
	v, ok := c.items[tagKey(tag)]
	return v, ok
}

// Items returns every data item keyed by its tag as first written.
func (c *Container) Items() map[string]Value {
	m := make(map[string]Value, len(c.tags))
	keys := newFolder()
	for _, tag := range c.tags {
		m[tag] = c.items[keys.tag(tag)]
	}
	return m
}

// ItemCount returns the number of distinct data items.
func (c *Container) ItemCount() int { return len(c.tags) }

// LoopCount returns the number of loops.
func (c *Container) LoopCount() int { return len(c.loops) }

// Loop returns the i'th loop in source order.
func (c *Container) Loop(i int) (*Loop, bool) {
	if i < 0 || i >= len(c.loops) {
		return nil, false
	}
	return c.loops[i], true
}

// Loops returns every loop in source order.
func (c *Container) Loops() []*Loop {
	return append([]*Loop(nil), c.loops...)
}

// FindLoop returns the loop that has a column with the given tag. If
// several loops declare the tag, the last one wins.
func (c *Container) FindLoop(tag string) (*Loop, bool) {
	lp, ok := c.loopIndex[tagKey(tag)]
	return lp, ok
}

// LoopTags returns the column tags of every loop, loop by loop, in source
// order.
func (c *Container) LoopTags() []string {
	var tags []string
	for _, lp := range c.loops {
		tags = append(tags, lp.tags...)
	}
	return tags
}

// Entries returns the items, loops and save frames in source order.
func (c *Container) Entries() []Entry {
	entries := make([]Entry, len(c.entries))
	keys := newFolder()
	for i, e := range c.entries {
		entries[i] = Entry{Kind: e.kind, Tag: e.tag, Loop: e.loop, Frame: e.frame}
		if e.kind == EntryItem {
			entries[i].Value = c.items[keys.tag(e.tag)]
		}
	}
	return entries
}

// setItem stores a data item under its folded key and reports whether it
// replaced an earlier value for the same tag.
func (c *Container) setItem(key, tag string, v Value) (replaced bool) {
	_, replaced = c.items[key]
	c.items[key] = v
	if !replaced {
		c.tags = append(c.tags, tag)
		c.entries = append(c.entries, entry{kind: EntryItem, tag: tag})
	}
	return replaced
}

// addLoop stores a loop and returns the tags it shares with items or
// earlier loops of the container. keys holds the folded tags in column
// order.
func (c *Container) addLoop(lp *Loop, keys []string) (clashes []string) {
	for i, tag := range lp.tags {
		key := keys[i]
		_, isItem := c.items[key]
		_, isLoop := c.loopIndex[key]
		if isItem || isLoop {
			clashes = append(clashes, tag)
		}
		c.loopIndex[key] = lp
	}
	c.loops = append(c.loops, lp)
	c.entries = append(c.entries, entry{kind: EntryLoop, loop: lp})
	return clashes
}

// Block represents a data block: a Container that may also hold save
// frames.
type Block struct {
	// The name, data items and loops are stored in a container.
	Container

	frames     []*SaveFrame
	frameIndex map[string]*SaveFrame
}

func newBlock(name string) *Block {
	return &Block{
		Container:  newContainer(name),
		frameIndex: make(map[string]*SaveFrame),
	}
}

// FrameCount returns the number of save frames.
func (b *Block) FrameCount() int { return len(b.frames) }

// Frame returns the i'th save frame in source order.
func (b *Block) Frame(i int) (*SaveFrame, bool) {
	if i < 0 || i >= len(b.frames) {
		return nil, false
	}
	return b.frames[i], true
}

// Frames returns every save frame in source order.
func (b *Block) Frames() []*SaveFrame {
	return append([]*SaveFrame(nil), b.frames...)
}

// LookupFrame returns the save frame with the given name, compared
// case-insensitively. If the name is used twice, the last frame wins.
func (b *Block) LookupFrame(name string) (*SaveFrame, bool) {
	f, ok := b.frameIndex[fold(name)]
	return f, ok
}

// addFrame stores a save frame under its folded name and reports whether
// the name was already taken.
func (b *Block) addFrame(key string, f *SaveFrame) (replaced bool) {
	_, replaced = b.frameIndex[key]
	b.frameIndex[key] = f
	b.frames = append(b.frames, f)
	b.entries = append(b.entries, entry{kind: EntryFrame, frame: f})
	return replaced
}

// SaveFrame represents a save frame in a data block. Save frames hold
// items and loops but no further save frames.
type SaveFrame struct {
	// The name, data items and loops are stored in a container.
	Container
}

func newSaveFrame(name string) *SaveFrame {
	return &SaveFrame{Container: newContainer(name)}
}

// folder maps names to the keys they are looked up by. A folder must not be
// used from more than one goroutine at a time.
type folder struct {
	caser cases.Caser
}

func newFolder() folder {
	return folder{caser: cases.Fold()}
}

func (f folder) name(name string) string {
	return f.caser.String(name)
}

// tag is like name for data tags, and also accepts a tag written without
// its leading underscore.
func (f folder) tag(tag string) string {
	if !strings.HasPrefix(tag, string(tagPrefix)) {
		tag = string(tagPrefix) + tag
	}
	return f.caser.String(tag)
}

// fold and tagKey serve lookups on a finished Document, which may run
// concurrently.
func fold(name string) string { return newFolder().name(name) }

func tagKey(tag string) string { return newFolder().tag(tag) }
