package actors

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/carn181/mlsp/transport"
)

// RequestFunc answers one LSP request. A non-nil *transport.ResponseError
// means the Handler replies with an error response instead of a result.
type RequestFunc func(ctx context.Context, method string, params json.RawMessage) (result json.RawMessage, errResp *transport.ResponseError)

// NotificationFunc processes one LSP notification.
type NotificationFunc func(ctx context.Context, method string, params json.RawMessage)

// ResponseFunc processes the client's reply to a server-initiated
// request, identified by id (e.g. workspace/semanticTokens/refresh).
type ResponseFunc func(id interface{}, result json.RawMessage, errResp *transport.ResponseError)

// Handler runs exactly one HandlerItem to completion at a time: one LSP
// request, one notification, one server-initiated-response reply, or
// one internal follow-up func. It never touches the Store directly —
// all state lives behind the request/notification/response callbacks
// the server wires in, which close over a StoreClient. Grounded on
// original_source/src/threads/handler.rs's single-threaded request
// loop.
type Handler struct {
	items <-chan HandlerItem
	done  chan<- Done

	HandleRequest      RequestFunc
	HandleNotification NotificationFunc
	HandleResponse     ResponseFunc

	// WriteResponse sends a JSON-RPC response for a request this
	// handler answered.
	WriteResponse func(id interface{}, result json.RawMessage, errResp *transport.ResponseError)

	ShuttingDown bool

	log *slog.Logger
}

func NewHandler(items <-chan HandlerItem, done chan<- Done, writeResponse func(interface{}, json.RawMessage, *transport.ResponseError), log *slog.Logger) *Handler {
	return &Handler{items: items, done: done, WriteResponse: writeResponse, log: log}
}

// Run drains items until ctx is cancelled or the channel closes.
func (h *Handler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-h.items:
			if !ok {
				return
			}
			h.process(ctx, item)
			h.done <- Done{}
		}
	}
}

func (h *Handler) process(ctx context.Context, item HandlerItem) {
	switch {
	case item.Request != nil:
		r := item.Request
		if h.ShuttingDown {
			h.WriteResponse(r.ID, nil, transport.NewResponseError(transport.InvalidRequest, "server is shutting down"))
			return
		}
		if r.Method == "shutdown" {
			h.ShuttingDown = true
		}
		result, errResp := h.HandleRequest(ctx, r.Method, r.Params)
		h.WriteResponse(r.ID, result, errResp)

	case item.Notification != nil:
		n := item.Notification
		h.HandleNotification(ctx, n.Method, n.Params)

	case item.Response != nil:
		r := item.Response
		if h.HandleResponse != nil {
			h.HandleResponse(r.ID, r.Result, r.Error)
		}

	case item.Func != nil:
		item.Func()
	}
}
