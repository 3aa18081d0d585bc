package server

import (
	"context"
	"encoding/json"

	"github.com/carn181/mlsp/logging"
	"github.com/carn181/mlsp/transport"
)

type requestHandler func(s *Server, ctx context.Context, method string, params json.RawMessage) (json.RawMessage, *transport.ResponseError)
type notificationHandler func(s *Server, ctx context.Context, method string, params json.RawMessage)

var requestHandlers = map[string]requestHandler{
	"initialize":                        (*Server).Initialize,
	"shutdown":                          (*Server).Shutdown,
	"textDocument/hover":                (*Server).Hover,
	"textDocument/definition":           (*Server).Definition,
	"textDocument/references":           (*Server).References,
	"textDocument/documentHighlight":    (*Server).DocumentHighlight,
	"textDocument/rename":               (*Server).Rename,
	"textDocument/completion":           (*Server).Completion,
	"textDocument/semanticTokens/full":  (*Server).SemanticTokensFull,
	"textDocument/foldingRange":         (*Server).FoldingRange,
	"textDocument/formatting":           (*Server).Formatting,
}

var notificationHandlers = map[string]notificationHandler{
	"initialized":            (*Server).Initialized,
	"exit":                   (*Server).Exit,
	"textDocument/didOpen":   (*Server).DidOpen,
	"textDocument/didChange": (*Server).DidChange,
	"textDocument/didClose":  (*Server).DidClose,
	"textDocument/didSave":   (*Server).DidSave,
}

// HandleRequest answers actors.RequestFunc: the Handler actor calls
// this for every queued request in turn (spec.md §5).
func (s *Server) HandleRequest(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, *transport.ResponseError) {
	h, ok := requestHandlers[method]
	if !ok {
		return nil, transport.NewResponseError(transport.MethodNotFound, "unsupported method: "+method)
	}
	return h(s, ctx, method, params)
}

// HandleNotification answers actors.NotificationFunc.
func (s *Server) HandleNotification(ctx context.Context, method string, params json.RawMessage) {
	h, ok := notificationHandlers[method]
	if !ok {
		logging.Logger.Warn("unsupported notification", "method", method)
		return
	}
	h(s, ctx, method, params)
}
