package server

import (
	"encoding/json"

	"github.com/carn181/mlsp/actors"
	"github.com/carn181/mlsp/crawler"
	"github.com/carn181/mlsp/logging"
	"github.com/carn181/mlsp/model"
	"github.com/carn181/mlsp/store"
	"github.com/carn181/mlsp/transport"
)

// ScanPaths and ScanWorkspace queue work for the Background Worker;
// the heavy lifting runs on that actor's goroutine via RunScanPaths/
// RunScanWorkspace below, never on Main or the Handler (spec.md §5).
func (s *Server) ScanPaths(roots []string) {
	s.Dispatcher.PostScan(actors.BackgroundItem{ScanPaths: roots})
}

func (s *Server) ScanWorkspace(root string) {
	s.Dispatcher.PostScan(actors.BackgroundItem{ScanWorkspace: root})
}

// RunScanPaths is the fast-scan half of spec.md §4.6, wired as the
// Background Worker's RunScanPaths callback.
func (s *Server) RunScanPaths(roots []string) {
	result := crawler.FastScan(s.Parser, roots, s.reportProgress)
	for _, pf := range result.Files {
		s.StoreClient.SetParsedFile(pf, store.FromBackgroundWorker)
	}
	for _, fn := range result.Functions {
		s.StoreClient.SetFunction(fn)
	}
	s.StoreClient.SetPackages(result.Packages)
}

// RunScanWorkspace is the full-scan half, followed by a rescan of
// whatever is currently open so an in-progress edit never gets
// clobbered by a stale on-disk read (spec.md §4.6 "scan open").
func (s *Server) RunScanWorkspace(root string) {
	crawler.FullScan(s.Extractor, []string{root}, func(r crawler.FullScanResult) {
		s.publishScannedFile(r.File)
	}, s.reportProgress)

	crawler.RescanOpen(s.Extractor, s.openFiles(), func(r crawler.FullScanResult) {
		s.publishScannedFile(r.File)
	})
}

func (s *Server) publishScannedFile(pf *model.ParsedFile) {
	writer := store.FromBackgroundWorker
	if pf.Open {
		writer = store.FromHandler
	}
	s.StoreClient.SetParsedFile(pf, writer)
	if pf.Workspace == nil {
		return
	}
	for _, fn := range pf.Workspace.Functions {
		fn.Package = pf.Package
		s.StoreClient.SetFunction(fn)
	}
}

func (s *Server) openFiles() []*model.ParsedFile {
	var open []*model.ParsedFile
	for _, f := range s.StoreClient.FetchParsedFiles() {
		if f.Open {
			open = append(open, f)
		}
	}
	return open
}

// reportProgress adapts a crawler.ProgressEvent to $/progress
// notifications (spec.md §4.6), sending Begin/Report/End under the
// event's own work-done token.
func (s *Server) reportProgress(ev crawler.ProgressEvent) {
	var value interface{}
	switch ev.Kind {
	case crawler.ProgressBegin:
		value = transport.WorkDoneProgressBegin{Kind: "begin", Title: ev.Title, Message: ev.Message, Percentage: ev.Percentage}
	case crawler.ProgressReport:
		value = transport.WorkDoneProgressReport{Kind: "report", Message: ev.Message, Percentage: ev.Percentage}
	case crawler.ProgressEnd:
		value = transport.WorkDoneProgressEnd{Kind: "end", Message: ev.Message}
	}
	valueBytes, err := json.Marshal(value)
	if err != nil {
		logging.Logger.Warn("could not marshal progress value", "err", err)
		return
	}
	paramsBytes, err := json.Marshal(transport.ProgressParams{Token: ev.Token, Value: valueBytes})
	if err != nil {
		logging.Logger.Warn("could not marshal progress params", "err", err)
		return
	}
	s.WriteNotification("$/progress", paramsBytes)
}
