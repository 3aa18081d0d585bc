// Package features implements the Query Features (spec.md §4.5): hover,
// go-to-definition, find-references, document-highlight, rename,
// completion, semantic tokens, diagnostics, and folding. Every function
// here takes a *model.ParsedFile and a position, and returns plain Go
// values; server/ adapts these to LSP request/response shapes. Grounded
// throughout on
// original_source/src/features/{hover,completion,references,semantic}.rs.
package features

import (
	"fmt"
	"strings"

	"github.com/carn181/mlsp/model"
)

// Hover is a (markdown, plaintext) pair, mirroring
// original_source/src/features/hover.rs's (MarkupContent, MarkupContent)
// return so the caller picks whichever the client's hoverFormat prefers.
type Hover struct {
	Markdown  string
	PlainText string
}

// HoverAt answers spec.md §4.5 "Hover": find the reference (or
// definition) covering pos and describe its target.
func HoverAt(pf *model.ParsedFile, pos model.Point) (*Hover, bool) {
	if pf.Workspace == nil {
		return nil, false
	}
	for _, ref := range pf.Workspace.References {
		if !ref.Loc.Contains(pos) {
			continue
		}
		switch ref.Target.Kind {
		case model.TargetNamespace:
			return simpleHover("Namespace: " + ref.Target.Namespace), true
		case model.TargetScript:
			return simpleHover("Script: " + ref.Target.Script), true
		case model.TargetFunction:
			return hoverFunction(ref.Target.FuncDef), true
		case model.TargetUnknownVariable:
			return simpleHover("Unknown variable."), true
		case model.TargetUnknownFunction:
			return simpleHover("Unknown function."), true
		case model.TargetVariable:
			return hoverVariable(pf, ref.Target.VarDef), true
		}
	}
	for _, v := range pf.Workspace.Variables {
		if v.Loc.Contains(pos) {
			return hoverVariable(pf, v), true
		}
	}
	for _, fn := range pf.Workspace.Functions {
		if fn.Loc.Contains(pos) {
			return hoverFunction(fn), true
		}
	}
	return nil, false
}

func hoverVariable(pf *model.ParsedFile, v *model.VariableDefinition) *Hover {
	if v == nil {
		return simpleHover("Unknown variable.")
	}
	line := strings.TrimSpace(lineAt(pf, v.Loc.Start.Row))
	return &Hover{
		Markdown:  fmt.Sprintf("Line %d:\n```matlab\n%s\n```", v.Loc.Start.Row+1, line),
		PlainText: line,
	}
}

func hoverFunction(def *model.FunctionDefinition) *Hover {
	if def == nil {
		return simpleHover("Unknown function.")
	}
	sig := def.Signature
	var b strings.Builder
	b.WriteString("function ")
	switch len(sig.ArgoutNames) {
	case 0:
	case 1:
		b.WriteString(sig.ArgoutNames[0])
		b.WriteString(" = ")
	default:
		b.WriteByte('[')
		b.WriteString(strings.Join(sig.ArgoutNames, ", "))
		b.WriteString("] = ")
	}
	b.WriteString(sig.Name)
	b.WriteByte('(')
	b.WriteString(strings.Join(sig.ArginNames, ", "))
	b.WriteByte(')')

	return &Hover{
		Markdown:  fmt.Sprintf("```matlab\n%s\n```\n---\n%s", b.String(), sig.Documentation),
		PlainText: fmt.Sprintf("%s\n\n%s", b.String(), sig.Documentation),
	}
}

func simpleHover(text string) *Hover {
	return &Hover{Markdown: text, PlainText: text}
}

// lineAt returns source line row (0-indexed), used when no enclosing
// assignment/definition node is readily at hand for a textual preview.
func lineAt(pf *model.ParsedFile, row uint32) string {
	lines := strings.Split(string(pf.Contents), "\n")
	if int(row) >= len(lines) {
		return ""
	}
	return lines[row]
}
