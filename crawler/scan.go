package crawler

import (
	"sort"

	"github.com/carn181/mlsp/extract"
	"github.com/carn181/mlsp/logging"
	"github.com/carn181/mlsp/model"
	"github.com/carn181/mlsp/parser"
	"github.com/google/uuid"
)

// ProgressKind mirrors the three `$/progress` value shapes (spec.md
// §4.6): begin once, report any number of times, end exactly once, all
// under the same token so the client can render one progress bar per
// scan.
type ProgressKind int

const (
	ProgressBegin ProgressKind = iota
	ProgressReport
	ProgressEnd
)

// ProgressEvent is emitted to a ScanReporter as a scan makes progress.
// One token identifies one logical scan (spec.md: "progress
// notifications for the same work-id are totally ordered").
type ProgressEvent struct {
	Token      string
	Kind       ProgressKind
	Title      string
	Message    string
	Percentage uint32
}

// ScanReporter receives ProgressEvents. nil is a valid value (scans run
// silently, used by tests).
type ScanReporter func(ProgressEvent)

func newToken() string { return uuid.NewString() }

func report(fn ScanReporter, ev ProgressEvent) {
	if fn != nil {
		fn(ev)
	}
}

// FastScanResult is the single batch fast scan produces. It is applied
// to the Store in one shot (original_source's InitPath message) so
// readers never observe a partially populated package set.
type FastScanResult struct {
	Files     []*model.ParsedFile
	Functions []*model.FunctionDefinition
	Packages  []string
}

// FastScan discovers every `.m` file under roots and extracts only its
// public function's signature (spec.md §4.6 "fast scan"), dumping file
// contents immediately afterward to bound memory. Grounded on
// original_source/src/extractors/fast.rs's fast_scan/parse.
func FastScan(p *parser.TSParser, roots []string, report_ ScanReporter) FastScanResult {
	token := newToken()
	report(report_, ProgressEvent{Token: token, Kind: ProgressBegin, Title: "Indexing MATLAB path"})

	files, packages := TraverseAll(roots)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	result := FastScanResult{Packages: packages}
	total := len(files)
	for i, fe := range files {
		pf, err := p.Load(fe.Path, nil)
		if err != nil {
			logging.Logger.Warn("fast scan: could not load file", "path", fe.Path, "err", err)
			continue
		}
		pf.Package = fe.Package
		pf.IsScript = !HasTopLevelFunction(p, pf)

		if def, ok := publicFunction(p, pf); ok {
			def.Package = fe.Package
			result.Functions = append(result.Functions, def)
		}
		pf.Dump()
		result.Files = append(result.Files, pf)

		if total > 0 && (i%32 == 0 || i == total-1) {
			report(report_, ProgressEvent{
				Token:      token,
				Kind:       ProgressReport,
				Message:    fe.Path,
				Percentage: uint32((i + 1) * 100 / total),
			})
		}
	}

	report(report_, ProgressEvent{Token: token, Kind: ProgressEnd})
	return result
}

// HasTopLevelFunction reports whether pf's first meaningful statement
// is a function_definition; a `.m` file that doesn't start with one is
// a script (spec.md §3). Exported so server/sync.go can classify a
// freshly opened buffer the same way a scan classifies one on disk.
func HasTopLevelFunction(p *parser.TSParser, pf *model.ParsedFile) bool {
	root := pf.Tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		c := root.NamedChild(i)
		if c.GrammarName() == "comment" {
			continue
		}
		return c.GrammarName() == "function_definition"
	}
	return false
}

// publicFunction extracts the signature of pf's first top-level
// function_definition, the one callable by the file's basename
// (original_source's public_function: MATLAB only exposes a file's
// first function outside the file).
func publicFunction(p *parser.TSParser, pf *model.ParsedFile) (*model.FunctionDefinition, bool) {
	root := pf.Tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		c := root.NamedChild(i)
		if c.GrammarName() != "function_definition" {
			continue
		}
		sig, err := extract.ExtractSignature(pf, c)
		if err != nil {
			return nil, false
		}
		return &model.FunctionDefinition{
			Path:      pf.Path,
			Name:      pf.Name,
			Loc:       sig.NameRange,
			Signature: sig,
		}, true
	}
	return nil, false
}

// FullScanResult is one file's complete extraction, produced
// incrementally so the full scan can publish each file to the Store as
// soon as it's ready instead of waiting for the whole workspace (spec.md
// §4.6 "full scan").
type FullScanResult struct {
	File *model.ParsedFile
}

// FullScan runs the complete Symbol Extractor over every file under
// roots, streaming one FullScanResult per file to sink. The extractor's
// Lookup is typically a StoreClient so cross-file references resolve against
// whatever the fast scan (or a prior full scan) already published.
func FullScan(extractor *extract.Extractor, roots []string, sink func(FullScanResult), report_ ScanReporter) {
	token := newToken()
	report(report_, ProgressEvent{Token: token, Kind: ProgressBegin, Title: "Building workspace index"})

	files, _ := TraverseAll(roots)
	total := len(files)
	for i, fe := range files {
		pf, err := extractor.Parser.Load(fe.Path, nil)
		if err != nil {
			logging.Logger.Warn("full scan: could not load file", "path", fe.Path, "err", err)
			continue
		}
		pf.Package = fe.Package
		pf.IsScript = !HasTopLevelFunction(extractor.Parser, pf)
		if err := extractor.Extract(pf); err != nil {
			logging.Logger.Warn("full scan: extraction failed", "path", fe.Path, "err", err)
			continue
		}
		pf.Dump()
		sink(FullScanResult{File: pf})

		if total > 0 && (i%16 == 0 || i == total-1) {
			report(report_, ProgressEvent{
				Token:      token,
				Kind:       ProgressReport,
				Message:    fe.Path,
				Percentage: uint32((i + 1) * 100 / total),
			})
		}
	}

	report(report_, ProgressEvent{Token: token, Kind: ProgressEnd})
}

// RescanOpen re-runs full extraction for every currently open file
// (spec.md §4.6's "scan open" sub-phase: a full workspace scan must not
// leave an already-open, already-edited file's workspace stale just
// because the scan read an older copy from disk).
func RescanOpen(extractor *extract.Extractor, open []*model.ParsedFile, sink func(FullScanResult)) {
	for _, pf := range open {
		if err := extractor.Extract(pf); err != nil {
			logging.Logger.Warn("rescan open: extraction failed", "path", pf.Path, "err", err)
			continue
		}
		sink(FullScanResult{File: pf})
	}
}
