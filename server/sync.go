package server

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/carn181/mlsp/crawler"
	"github.com/carn181/mlsp/features"
	"github.com/carn181/mlsp/logging"
	"github.com/carn181/mlsp/model"
	"github.com/carn181/mlsp/store"
	"github.com/carn181/mlsp/transport"
	"github.com/carn181/mlsp/util"
)

// DidOpen loads the client's in-memory buffer, extracts it, and
// publishes it to the Store as a handler-owned write (spec.md §4.3:
// an open buffer always wins over whatever a background scan saw on
// disk).
func (s *Server) DidOpen(ctx context.Context, method string, params json.RawMessage) {
	var p transport.DidOpenTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		logging.Logger.Warn("didOpen: bad params", "err", err)
		return
	}
	path, err := util.URI2path(string(p.TextDocument.URI))
	if err != nil {
		logging.Logger.Warn("didOpen: bad uri", "uri", p.TextDocument.URI, "err", err)
		return
	}

	pf, err := s.Parser.Load(path, []byte(p.TextDocument.Text))
	if err != nil {
		logging.Logger.Warn("didOpen: load failed", "path", path, "err", err)
		return
	}
	pf.Open = true
	pf.Package = packageFromPath(s.Root, path)
	pf.IsScript = !crawler.HasTopLevelFunction(s.Parser, pf)

	if err := s.Extractor.Extract(pf); err != nil {
		logging.Logger.Warn("didOpen: extraction failed", "path", path, "err", err)
		return
	}
	s.publishOpenedFile(pf)
	s.publishDiagnostics(pf)
}

// DidChange re-applies the client's incremental (or full) edits to the
// already-tracked file and re-extracts, falling back to a fresh Load if
// the Store doesn't have the file (client sent didChange without a
// matching didOpen, or the Store forgot it across a restart).
func (s *Server) DidChange(ctx context.Context, method string, params json.RawMessage) {
	var p transport.DidChangeTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		logging.Logger.Warn("didChange: bad params", "err", err)
		return
	}
	path, err := util.URI2path(string(p.TextDocument.URI))
	if err != nil {
		logging.Logger.Warn("didChange: bad uri", "uri", p.TextDocument.URI, "err", err)
		return
	}

	pf, ok := s.StoreClient.GetParsedFile(path)
	if !ok {
		pf, err = s.Parser.Load(path, nil)
		if err != nil {
			logging.Logger.Warn("didChange: load failed", "path", path, "err", err)
			return
		}
		pf.Package = packageFromPath(s.Root, path)
	}
	pf.Open = true

	for _, change := range p.ContentChanges {
		var r *model.Range
		if change.Range != nil {
			mr := toModelRange(*change.Range)
			r = &mr
		}
		if err := s.Parser.ApplyEdit(pf, r, change.Text); err != nil {
			logging.Logger.Warn("didChange: apply edit failed", "path", path, "err", err)
			return
		}
	}
	pf.IsScript = !crawler.HasTopLevelFunction(s.Parser, pf)

	if err := s.Extractor.Extract(pf); err != nil {
		logging.Logger.Warn("didChange: extraction failed", "path", path, "err", err)
		return
	}
	s.publishOpenedFile(pf)
	s.publishDiagnostics(pf)
}

// DidClose marks the file closed and drops it from the Store entirely
// if it no longer exists on disk (spec.md §4.3), otherwise keeps the
// last-known extraction around so other files can still resolve
// references into it.
func (s *Server) DidClose(ctx context.Context, method string, params json.RawMessage) {
	var p transport.DidCloseTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		logging.Logger.Warn("didClose: bad params", "err", err)
		return
	}
	path, err := util.URI2path(string(p.TextDocument.URI))
	if err != nil {
		logging.Logger.Warn("didClose: bad uri", "uri", p.TextDocument.URI, "err", err)
		return
	}

	if !util.IsValidPath(path) {
		s.StoreClient.DeleteParsedFile(path)
		s.StoreClient.DeleteFunctionsByPath(path)
		return
	}

	pf, ok := s.StoreClient.GetParsedFile(path)
	if !ok {
		return
	}
	pf.Open = false
	pf.Dump()
	s.StoreClient.SetParsedFile(pf, store.FromHandler)
}

// DidSave is intentionally a no-op: the on-disk write it reports
// triggers the same fsnotify event the watch loop already reacts to,
// so handling it here would just rescan twice.
func (s *Server) DidSave(ctx context.Context, method string, params json.RawMessage) {}

func (s *Server) publishOpenedFile(pf *model.ParsedFile) {
	s.StoreClient.SetParsedFile(pf, store.FromHandler)
	if pf.Workspace == nil {
		return
	}
	for _, fn := range pf.Workspace.Functions {
		fn.Package = pf.Package
		s.StoreClient.SetFunction(fn)
	}
}

// publishDiagnostics runs the Diagnostics query feature and sends the
// result as textDocument/publishDiagnostics, replacing whatever
// diagnostics the client is currently showing for this file.
func (s *Server) publishDiagnostics(pf *model.ParsedFile) {
	diags, err := features.Diagnostics(s.Parser, pf, s.StoreClient)
	if err != nil {
		logging.Logger.Warn("diagnostics failed", "path", pf.Path, "err", err)
		return
	}

	out := make([]transport.Diagnostic, 0, len(diags))
	for _, d := range diags {
		sev := transport.SeverityWarning
		if d.Severity == features.SeverityError {
			sev = transport.SeverityError
		}
		out = append(out, transport.Diagnostic{
			Range:    toTransportRange(d.Loc),
			Severity: sev,
			Source:   "mlsp",
			Message:  d.Message,
		})
	}

	paramsBytes, err := json.Marshal(transport.PublishDiagnosticsParams{
		URI:         transport.DocumentURI(util.Path2URI(pf.Path)),
		Diagnostics: out,
	})
	if err != nil {
		logging.Logger.Warn("could not marshal diagnostics", "err", err)
		return
	}
	s.WriteNotification("textDocument/publishDiagnostics", paramsBytes)
}

// packageFromPath classifies path the same way crawler.Traverse does
// for files discovered on disk: walk ancestor directory names, joining
// `+pkg`/`@cls` segments with dots, stopping at the first ancestor that
// isn't prefixed. Needed here because a didOpen buffer may never have
// been seen by a scan.
func packageFromPath(root util.Path, path string) string {
	dir := parentDir(path)
	var segs []string
	for dir != "" && dir != string(root) && dir != "." && dir != "/" {
		base := baseName(dir)
		if len(base) == 0 || (base[0] != '+' && base[0] != '@') {
			break
		}
		segs = append([]string{base[1:]}, segs...)
		dir = parentDir(dir)
	}
	return strings.Join(segs, ".")
}

func parentDir(path string) string {
	i := strings.LastIndexAny(path, "/\\")
	if i < 0 {
		return ""
	}
	return path[:i]
}

func baseName(path string) string {
	i := strings.LastIndexAny(path, "/\\")
	return path[i+1:]
}
