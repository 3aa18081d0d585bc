package features

import (
	"github.com/carn181/mlsp/model"
	"github.com/carn181/mlsp/parser"
)

// FoldingRanges answers spec.md §4.5 "Folding": every block node's
// start/end rows.
func FoldingRanges(p *parser.TSParser, pf *model.ParsedFile) ([]model.Range, error) {
	return p.FoldingRanges(pf.Contents, pf.Tree)
}
