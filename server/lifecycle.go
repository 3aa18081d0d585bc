package server

import (
	"context"
	"encoding/json"

	"github.com/carn181/mlsp/features"
	"github.com/carn181/mlsp/logging"
	"github.com/carn181/mlsp/transport"
	"github.com/carn181/mlsp/util"
)

// semanticTokenTypes is features.SemanticLegend itself; lifecycle
// advertises it by name when declaring capabilities so the two never
// drift apart.
var semanticTokenTypes = features.SemanticLegend

// Initialize answers spec.md §6's `initialize` request: UTF-8 position
// encoding (MLSP tracks positions in characters, not UTF-16 code
// units, so it always negotiates utf-8 rather than picking from the
// client's offered list the way the teacher does), incremental sync,
// and the capability list set below.
func (s *Server) Initialize(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, *transport.ResponseError) {
	s.setStatus(Initializing)

	var p transport.InitializeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, transport.NewResponseError(transport.InvalidParams, err.Error())
	}

	if p.ProcessID != nil {
		s.ClientPID = *p.ProcessID
	}

	root, err := util.URI2path(string(p.RootURI))
	if err == nil && root != "" {
		s.Root = root
	} else if len(s.Config.LibPath) > 0 {
		s.Root = s.Config.LibPath[0]
	}
	logging.Logger.Info("initializing workspace", "root", s.Root)

	encoding := transport.UTF8
	completionChars := []string{"."}

	s.Capabilities = transport.ServerCapabilities{
		PositionEncoding:           &encoding,
		TextDocumentSync:           transport.Incremental,
		HoverProvider:              true,
		DefinitionProvider:         true,
		ReferencesProvider:         true,
		DocumentHighlightProvider:  true,
		RenameProvider:             true,
		FoldingRangeProvider:       true,
		DocumentFormattingProvider: true,
		CompletionProvider:         &transport.CompletionOptions{TriggerCharacters: completionChars},
		SemanticTokensProvider: &transport.SemanticTokensOptions{
			Legend: transport.SemanticTokensLegend{TokenTypes: semanticTokenTypes, TokenModifiers: []string{}},
			Full:   true,
		},
		Workspace: &transport.WorkspaceOptions{
			WorkspaceFolders: &transport.WorkspaceFoldersServerCapabilities{Supported: true},
		},
	}

	result := transport.InitializeResult{
		Capabilities: s.Capabilities,
		ServerInfo:   &transport.ServerInfo{Name: "mlsp", Version: "0.1.0"},
	}
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return nil, transport.NewResponseError(transport.InternalError, err.Error())
	}
	return resultBytes, nil
}

// Initialized kicks off the Workspace Crawler (spec.md §4.6): a fast
// scan over every configured library path, then a full scan of the
// workspace root, then a recursive filesystem watch so out-of-band
// changes re-trigger a scan.
func (s *Server) Initialized(ctx context.Context, method string, params json.RawMessage) {
	s.setStatus(Running)

	roots := s.Config.LibPath
	if len(roots) > 0 {
		s.ScanPaths(roots)
	}
	if s.Root != "" {
		s.ScanWorkspace(s.Root)

		w, err := util.NewWatcher(s.Root)
		if err != nil {
			logging.Logger.Warn("could not start workspace watcher", "err", err)
			return
		}
		s.Watcher = w
		go s.watchLoop(ctx)
	}
}

// watchLoop re-triggers a full workspace scan on every filesystem
// change the watcher reports. Triggers are not coalesced: each change
// queues its own ScanWorkspace item, and feedBackground hands them to
// the Background Worker one at a time.
func (s *Server) watchLoop(ctx context.Context) {
	go s.Watcher.Run(ctx)
	for range s.Watcher.Changes {
		s.ScanWorkspace(s.Root)
	}
}

// Shutdown runs synchronously on Main, per spec.md §5: no further
// requests besides exit are valid afterward.
func (s *Server) Shutdown(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, *transport.ResponseError) {
	s.setStatus(Shutdown)
	return json.RawMessage("null"), nil
}

// Exit also runs synchronously: it only ever legally follows shutdown.
func (s *Server) Exit(ctx context.Context, method string, params json.RawMessage) {
	if s.Status() == Shutdown {
		s.setStatus(Exit)
	} else {
		s.setStatus(ExitError)
	}
}
