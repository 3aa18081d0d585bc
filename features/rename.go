package features

import (
	"fmt"
	"regexp"

	"github.com/carn181/mlsp/model"
)

// validIdentifier matches spec.md §4.5 "Rename"'s validation rule: the
// new name must itself be a legal MATLAB identifier, otherwise the
// rename is refused outright rather than producing code that won't
// parse.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// TextEdit is one (path, range, replacement) edit; RenameSymbol groups
// these into a workspace edit the same way FindReferences groups
// locations.
type TextEdit struct {
	Path    string
	Loc     model.Range
	NewText string
}

// RenameSymbol answers spec.md §4.5 "Rename". It refuses in-place if
// newName isn't a valid identifier, and otherwise reuses FindReferences
// (with declarations included) to build one edit per occurrence.
func RenameSymbol(files map[string]*model.ParsedFile, path string, pos model.Point, newName string) ([]TextEdit, error) {
	if !validIdentifier.MatchString(newName) {
		return nil, fmt.Errorf("%q is not a valid MATLAB identifier", newName)
	}
	locs := FindReferences(files, path, pos, true)
	if len(locs) == 0 {
		return nil, fmt.Errorf("no renameable symbol at the given position")
	}
	edits := make([]TextEdit, len(locs))
	for i, l := range locs {
		edits[i] = TextEdit{Path: l.Path, Loc: l.Loc, NewText: newName}
	}
	return edits, nil
}
