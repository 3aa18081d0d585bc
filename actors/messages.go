// Package actors implements the four-actor concurrency core (spec.md
// §5): Main (owned by server/), Dispatcher, Handler, and Background
// Worker, connected by typed channels with an in-memory store mediated
// exclusively by the Dispatcher. Grounded throughout on
// original_source/src/threads/{dispatcher,handler,background_worker,db}.rs,
// translated from crossbeam_channel + VecDeque to native Go channels
// and slice-backed queues.
package actors

import (
	"encoding/json"

	"github.com/carn181/mlsp/transport"
)

// Notification is an LSP notification waiting to reach the Handler.
type Notification struct {
	Method string
	Params json.RawMessage
}

// InboundRequest is an LSP request waiting to reach the Handler.
type InboundRequest struct {
	ID     interface{}
	Method string
	Params json.RawMessage
}

// InboundResponse is the client's reply to a server-initiated request
// (e.g. workspace/semanticTokens/refresh), waiting to reach the
// Handler.
type InboundResponse struct {
	ID     interface{}
	Result json.RawMessage
	Error  *transport.ResponseError
}

// CancelRequest asks the Dispatcher to drop a not-yet-started request
// from its queue (spec.md §5 "Cancellation": in-flight requests cannot
// be cancelled).
type CancelRequest struct{ ID interface{} }

// Exit tells the Dispatcher to begin orderly shutdown, either because
// the client sent `exit` or because Main's liveness poll found the
// client process dead (spec.md §6 "Main... sends an Exit message to
// the Dispatcher on death or on exit notification").
type Exit struct{ Graceful bool }

// HandlerItem is one unit of work the Dispatcher hands the Handler.
// Exactly one of the fields is set; Func carries internal follow-up
// work (e.g. the crawler's "scan open files" sub-phase) that needs to
// run serialized with real LSP requests on the Handler, per spec.md
// §4.6.
type HandlerItem struct {
	Notification *Notification
	Request      *InboundRequest
	Response     *InboundResponse
	Func         func()
}

// BackgroundItem is one unit of work the Dispatcher hands the
// Background Worker: a fast scan over library roots, or a full scan of
// the workspace (spec.md §4.6). Exactly one field is set.
type BackgroundItem struct {
	ScanPaths     []string
	ScanWorkspace string
}

// Done signals that a Handler or Background Worker finished its
// current item and is idle again.
type Done struct{}
