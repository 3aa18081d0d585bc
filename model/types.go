// Package model holds the data types shared across MLSP: positions and
// ranges over source text, parsed files, and the symbols a file's
// workspace accumulates during extraction.
package model

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Point is a (row, column) position in 0-indexed UTF-8 characters, not
// bytes.
type Point struct {
	Row    uint32
	Column uint32
}

func FromTSPoint(p tree_sitter.Point) Point {
	return Point{Row: p.Row, Column: p.Column}
}

// Range is inclusive at both endpoints.
type Range struct {
	Start Point
	End   Point
}

// RangeFromNode builds a Range from a tree-sitter node's start/end
// positions (the teacher's own convention in parser/parser.go, which
// favors StartPosition()/EndPosition() over the Range() accessor).
func RangeFromNode(n tree_sitter.Node) Range {
	return Range{Start: FromTSPoint(n.StartPosition()), End: FromTSPoint(n.EndPosition())}
}

// Contains reports whether p lies on the start/end row within column
// bounds, or strictly between the two rows.
func (r Range) Contains(p Point) bool {
	if p.Row == r.Start.Row && p.Row == r.End.Row {
		return p.Column >= r.Start.Column && p.Column <= r.End.Column
	}
	if p.Row == r.Start.Row {
		return p.Column >= r.Start.Column
	}
	if p.Row == r.End.Row {
		return p.Column <= r.End.Column
	}
	return p.Row > r.Start.Row && p.Row < r.End.Row
}

// FullyContains reports whether both of other's endpoints lie within r.
func (r Range) FullyContains(other Range) bool {
	return r.Contains(other.Start) && r.Contains(other.End)
}

// FunctionSignature is produced by signature extraction (spec.md §4.3).
type FunctionSignature struct {
	Name          string
	NameRange     Range
	Range         Range // range of the whole function_definition node
	Argin         int
	Argout        int
	Vargin        bool
	Vargout       bool
	ArginNames    []string
	ArgoutNames   []string
	VarginNames   []string // optional-argument names from `arguments` blocks
	Documentation string
}

// FunctionDefinition is uniquely identified by (Path, Loc).
type FunctionDefinition struct {
	Path      string
	Name      string
	Package   string
	Loc       Range // the name's range
	Signature FunctionSignature
}

func (f FunctionDefinition) QualifiedName() string {
	if f.Package == "" {
		return f.Name
	}
	return f.Package + "." + f.Name
}

// VariableDefinition.
type VariableDefinition struct {
	Loc         Range
	Name        string
	Cleared     uint32 // row at which a clear/clearvars invalidated this binding; 0 = live
	IsParameter bool
	IsGlobal    bool
}

func (v VariableDefinition) Live(atRow uint32) bool {
	return v.Cleared == 0 || v.Cleared > atRow
}

// ReferenceTargetKind tags the variant held by a Reference's Target.
type ReferenceTargetKind int

const (
	TargetUnknownVariable ReferenceTargetKind = iota
	TargetUnknownFunction
	TargetNamespace
	TargetScript
	TargetFunction
	TargetVariable
)

// ReferenceTarget is a tagged union. Only the field matching Kind is valid.
// TargetFunction/TargetVariable carry a plain pointer into the owning
// Workspace's Functions/Variables rather than an arena index: the Store
// (and every Workspace) is owned by exactly one goroutine at a time
// (spec.md §5 — the Dispatcher, or the extractor goroutine that built
// it before publishing), so the aliasing a pointer implies is never
// observed concurrently. This is a deliberate narrower reading of
// spec.md §9's arena/index suggestion, not an oversight: see DESIGN.md.
type ReferenceTarget struct {
	Kind      ReferenceTargetKind
	Namespace string // TargetNamespace
	Script    string // TargetScript (script file path)
	FuncDef   *FunctionDefinition // TargetFunction: resolved function definition, set at extraction time
	VarDef    *VariableDefinition // TargetVariable: resolved variable definition, set at extraction time
}

func UnknownVariable() ReferenceTarget { return ReferenceTarget{Kind: TargetUnknownVariable} }
func UnknownFunction() ReferenceTarget { return ReferenceTarget{Kind: TargetUnknownFunction} }
func NamespaceTarget(name string) ReferenceTarget {
	return ReferenceTarget{Kind: TargetNamespace, Namespace: name}
}
func ScriptTarget(name string) ReferenceTarget { return ReferenceTarget{Kind: TargetScript, Script: name} }
func FunctionTarget(def *FunctionDefinition) ReferenceTarget {
	return ReferenceTarget{Kind: TargetFunction, FuncDef: def}
}
func VariableTarget(def *VariableDefinition) ReferenceTarget {
	return ReferenceTarget{Kind: TargetVariable, VarDef: def}
}

// Reference: a use of a (possibly dotted) name, coexisting with
// definitions in a Workspace.
type Reference struct {
	Loc    Range
	Name   string // possibly dotted, e.g. "pkg.sub.foo"
	Target ReferenceTarget
}

// Dotted reports whether Name contains a '.'.
func (r Reference) Dotted() bool { return strings.Contains(r.Name, ".") }
