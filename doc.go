/*
Package cif provides a reader for the Crystallographic Information File (CIF)
format. This package follows the syntax of version 1.1 of the CIF
specification:
http://www.iucr.org/resources/cif/spec/version1.1/cifsyntax

Parse turns CIF text into an immutable Document: an ordered list of data
blocks, each holding data items, loop_ tables and save frames. Every scalar is
classified as text, a number (with an optional standard uncertainty such as
the "(5)" in "10.000(5)"), unknown ("?") or inapplicable (".").

	doc, err := cif.Parse(text)
	if err != nil {
		log.Fatal(err)
	}
	block, ok := doc.Lookup("example")
	if !ok {
		log.Fatal("no data block named example")
	}
	a, _ := block.Item("_cell_length_a")
	if x, ok := a.Float(); ok {
		fmt.Println(x)
	}

The reserved words stop_ and global_ (used by STAR extensions) are rejected.
Dictionary validation is not performed, and line length limits are not
enforced.
*/
package cif
