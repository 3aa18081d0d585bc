package parser

import (
	"github.com/carn181/mlsp/model"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// FindBytes walks the decoded UTF-8 stream one char at a time from an
// anchor, converting an LSP-style (row, column) Range into a byte range.
// Grounded on original_source/src/impls/range.rs's Range::find_bytes:
// when the file's tree can locate a descendant spanning the range, the
// walk starts from that node's start byte/position instead of offset 0,
// so large files don't re-scan from the beginning on every edit.
//
// End byte defaults to the current byte if EOF is reached before the end
// point is matched exactly (spec.md §4.1: "partial matches at end of
// file are allowed").
func FindBytes(r model.Range, contents []byte, tree *tree_sitter.Tree) (startByte, endByte uint) {
	var byteOff uint
	var row, col uint32
	chars := []byte(contents)

	if tree != nil {
		start := tree_sitter.Point{Row: r.Start.Row, Column: r.Start.Column}
		end := tree_sitter.Point{Row: r.End.Row, Column: r.End.Column}
		node := tree.RootNode().DescendantForPointRange(start, end)
		if !node.IsNull() {
			byteOff = uint(node.StartByte())
			p := node.StartPosition()
			row, col = p.Row, p.Column
			chars = contents[byteOff:]
		}
	}

	i := 0
	for {
		if row == r.Start.Row && col == r.Start.Column {
			startByte = byteOff
		}
		if row == r.End.Row && col == r.End.Column {
			endByte = byteOff
			return
		}
		if i >= len(chars) {
			endByte = byteOff
			return
		}
		size := utf8RuneSize(chars[i:])
		c := chars[i]
		byteOff += uint(size)
		i += size
		col++
		if c == '\n' {
			row++
			col = 0
		}
	}
}

// utf8RuneSize returns the byte length of the UTF-8 rune starting at b,
// without the full decode cost of unicode/utf8.DecodeRune (we only need
// the length to advance the cursor, not the rune value).
func utf8RuneSize(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	c := b[0]
	switch {
	case c < 0x80:
		return 1
	case c&0xE0 == 0xC0:
		return 2
	case c&0xF0 == 0xE0:
		return 3
	case c&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}
