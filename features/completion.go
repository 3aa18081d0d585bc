package features

import (
	"sort"
	"strconv"
	"strings"

	"github.com/carn181/mlsp/extract"
	"github.com/carn181/mlsp/model"
)

// CompletionKind loosely mirrors lsp_types::CompletionItemKind's
// VARIABLE/FIELD/FUNCTION/MODULE/FILE distinction (spec.md §4.5
// "Completion").
type CompletionKind int

const (
	CompletionVariable CompletionKind = iota
	CompletionField
	CompletionFunction
	CompletionNamespace
	CompletionScript
)

// CompletionItem is one completion candidate.
type CompletionItem struct {
	Label   string
	Kind    CompletionKind
	Doc     string
	Snippet string // tab-stop snippet body, functions only (spec.md §4.5/S5)
}

// CompletionPrefix extracts the identifier (possibly dotted) ending at
// pos, walking backward from the cursor (spec.md §4.5: completion
// triggers on `.` or identifier characters). Grounded on
// original_source/src/features/completion.rs's identifier().
func CompletionPrefix(pf *model.ParsedFile, pos model.Point) string {
	lines := strings.Split(string(pf.Contents), "\n")
	if int(pos.Row) >= len(lines) {
		return ""
	}
	line := lines[pos.Row]
	col := int(pos.Column)
	if col > len(line) {
		col = len(line)
	}
	i := col
	for i > 0 {
		c := line[i-1]
		if isIdentByte(c) || c == '.' {
			i--
			continue
		}
		break
	}
	return line[i:col]
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// CompletionAt builds the candidate list for pos in pf: in-scope
// variables visible before the cursor, every known function, every
// known package, and every known script, each filtered by prefix and
// deduplicated by label (spec.md §4.5). files supplies the workspace's
// scripts; lookup supplies cross-file functions/packages, typically a
// StoreClient or a *store.Store directly.
func CompletionAt(pf *model.ParsedFile, pos model.Point, files map[string]*model.ParsedFile, lookup extract.Lookup) []CompletionItem {
	prefix := CompletionPrefix(pf, pos)

	var items []CompletionItem
	if pf.Workspace != nil {
		for _, v := range pf.Workspace.Variables {
			if v.Loc.Start.Row >= pos.Row {
				continue
			}
			if v.Cleared > 0 && v.Cleared < pos.Row {
				continue
			}
			if !strings.HasPrefix(v.Name, prefix) {
				continue
			}
			kind := CompletionVariable
			if strings.Contains(v.Name, ".") {
				kind = CompletionField
			}
			items = append(items, CompletionItem{Label: v.Name, Kind: kind})
		}
		for _, ref := range pf.Workspace.References {
			if ref.Target.Kind != model.TargetVariable {
				continue
			}
			if ref.Target.VarDef != nil {
				vd := ref.Target.VarDef
				if vd.Loc.Start.Row > pos.Row || (vd.Cleared > 0 && vd.Cleared < pos.Row) {
					continue
				}
			}
			if !strings.HasPrefix(ref.Name, prefix) {
				continue
			}
			kind := CompletionVariable
			if ref.Dotted() {
				kind = CompletionField
			}
			items = append(items, CompletionItem{Label: ref.Name, Kind: kind})
		}
		for _, fn := range pf.Workspace.Functions {
			if strings.HasPrefix(fn.Name, prefix) {
				items = append(items, CompletionItem{
					Label:   fn.Name,
					Kind:    CompletionFunction,
					Doc:     fn.Signature.Documentation,
					Snippet: functionSnippet(fn.Name, fn.Signature.ArginNames),
				})
			}
		}
	}

	if lookup != nil {
		for _, fn := range lookup.AllFunctions() {
			name := fn.QualifiedName()
			if strings.HasPrefix(name, prefix) || strings.HasPrefix(fn.Name, prefix) {
				items = append(items, CompletionItem{
					Label:   name,
					Kind:    CompletionFunction,
					Doc:     fn.Signature.Documentation,
					Snippet: functionSnippet(name, fn.Signature.ArginNames),
				})
			}
		}
		for _, pkg := range lookup.Packages(prefix) {
			items = append(items, CompletionItem{Label: pkg, Kind: CompletionNamespace})
		}
	}

	for _, f := range files {
		if f.IsScript && strings.HasPrefix(f.Name, prefix) {
			items = append(items, CompletionItem{Label: f.Name, Kind: CompletionScript})
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return dedupByLabel(items)
}

// functionSnippet builds the `name(${1:a1}, ${2:a2}...)` tab-stop body
// spec.md §4.5/S5 describes for function completion items.
func functionSnippet(name string, argNames []string) string {
	if len(argNames) == 0 {
		return name + "()"
	}
	parts := make([]string, len(argNames))
	for i, a := range argNames {
		parts[i] = "${" + strconv.Itoa(i+1) + ":" + a + "}"
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

func dedupByLabel(items []CompletionItem) []CompletionItem {
	out := items[:0]
	var last string
	first := true
	for _, it := range items {
		if !first && it.Label == last {
			continue
		}
		out = append(out, it)
		last = it.Label
		first = false
	}
	return out
}
