// Package server wires the four-actor core, the symbol extractor, and
// the Query Features onto the LSP wire protocol: Server owns the
// transport, the parser, and every actor-facing callback the
// Dispatcher's Handler and Background Worker call into. Grounded on
// the teacher's server/server.go Server/ServerState/Init/Run/Loop
// pattern, adapted so the main read loop posts decoded envelopes to an
// actors.Dispatcher instead of spawning a goroutine per request.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/carn181/mlsp/actors"
	"github.com/carn181/mlsp/extract"
	"github.com/carn181/mlsp/logging"
	"github.com/carn181/mlsp/parser"
	"github.com/carn181/mlsp/transport"
	"github.com/carn181/mlsp/util"
)

type ServerState int

const (
	Created ServerState = iota
	Initializing
	Running
	Shutdown
	Exit
	ExitError
)

var crlfcrlf = []byte{'\r', '\n', '\r', '\n'}

// Server is Main: it owns the Transport and the Dispatcher, decodes
// every framed JSON-RPC message exactly once, and posts it onward.
// Every method the Handler and Background Worker call back into lives
// on *Server in lifecycle.go, sync.go, query.go, and scan.go.
type Server struct {
	Transport   *transport.Transport
	Parser      *parser.TSParser
	StoreClient *actors.StoreClient
	Dispatcher  *actors.Dispatcher
	Extractor   *extract.Extractor
	Config      Config

	Capabilities transport.ServerCapabilities
	Root         util.Path

	// ClientPID is the editor process's PID as reported at initialize
	// (spec.md §5); 0 means the client didn't send one (some clients
	// legitimately omit it) and liveness polling is skipped.
	ClientPID int

	Watcher *util.Watcher

	statusMu sync.Mutex
	status   ServerState

	writeMu sync.Mutex
}

func New(t *transport.Transport, p *parser.TSParser, sc *actors.StoreClient, d *actors.Dispatcher, ex *extract.Extractor, cfg Config) *Server {
	return &Server{
		Transport:   t,
		Parser:      p,
		StoreClient: sc,
		Dispatcher:  d,
		Extractor:   ex,
		Config:      cfg,
		status:      Created,
	}
}

func (s *Server) Status() ServerState {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	return s.status
}

func (s *Server) setStatus(st ServerState) {
	s.statusMu.Lock()
	s.status = st
	s.statusMu.Unlock()
}

// ValidateMethod rejects methods the client shouldn't send given the
// current state, mirroring the teacher's gating in server/server.go.
func (s *Server) ValidateMethod(method string) error {
	switch s.Status() {
	case Created:
		if method != "initialize" {
			return errors.New("server not initialized, received " + method)
		}
	case Shutdown:
		if method != "exit" {
			return errors.New("server shutting down, can only receive exit, got " + method)
		}
	}
	return nil
}

// Loop is the Main actor's read loop (spec.md §5): every framed
// message is decoded exactly once here and handed either straight to
// the Dispatcher, or — for "shutdown"/"exit"/"$/cancelRequest" — acted
// on immediately, since those three never go through ordinary Handler
// scheduling (spec.md §5 "shutdown and exit run synchronously").
func (s *Server) Loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msg, err := s.Transport.Read()
		if err != nil {
			return err
		}
		if s.Transport.Closed {
			return errors.New("transport closed")
		}
		if len(msg) == 0 {
			continue
		}

		method, err := transport.GetMethod(msg)
		if err != nil {
			logging.Logger.Warn("malformed message", "err", err)
			continue
		}

		_, content, _ := bytes.Cut(msg, crlfcrlf)

		if method == "" {
			s.handleInboundResponse(content)
			continue
		}

		if err := s.ValidateMethod(method); err != nil {
			logging.Logger.Warn("rejected method", "method", method, "err", err)
			continue
		}

		switch method {
		case "shutdown":
			s.handleShutdownSync(content)
			continue
		case "exit":
			s.handleExitSync(content)
			return nil
		case "$/cancelRequest":
			s.handleCancel(content)
			continue
		}

		if id, ok := requestID(content); ok {
			var m transport.RequestMessage
			if err := json.Unmarshal(content, &m); err != nil {
				logging.Logger.Warn("bad request envelope", "err", err)
				continue
			}
			s.Dispatcher.PostRequest(actors.InboundRequest{ID: id, Method: method, Params: m.Params})
		} else {
			var m transport.NotificationMessage
			if err := json.Unmarshal(content, &m); err != nil {
				logging.Logger.Warn("bad notification envelope", "err", err)
				continue
			}
			s.Dispatcher.PostNotification(actors.Notification{Method: method, Params: m.Params})
		}
	}
}

// requestID reports whether content carries a non-null "id" field,
// distinguishing a request from a notification the same way every
// JSON-RPC implementation in the ecosystem does.
func requestID(content []byte) (interface{}, bool) {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(content, &probe); err != nil || len(probe.ID) == 0 || string(probe.ID) == "null" {
		return nil, false
	}
	var id interface{}
	json.Unmarshal(probe.ID, &id)
	return id, true
}

func (s *Server) handleCancel(content []byte) {
	var m transport.NotificationMessage
	if err := json.Unmarshal(content, &m); err != nil {
		return
	}
	var p transport.CancelParams
	if err := json.Unmarshal(m.Params, &p); err != nil {
		return
	}
	s.Dispatcher.PostCancel(actors.CancelRequest{ID: p.ID})
}

func (s *Server) handleInboundResponse(content []byte) {
	var m transport.ResponseMessage
	if err := json.Unmarshal(content, &m); err != nil {
		return
	}
	s.Dispatcher.PostResponse(actors.InboundResponse{ID: m.ID, Result: m.Result, Error: m.Error})
}

func (s *Server) handleShutdownSync(content []byte) {
	var m transport.RequestMessage
	json.Unmarshal(content, &m)
	result, errResp := s.Shutdown(context.Background(), "shutdown", m.Params)
	s.WriteResponse(m.ID, result, errResp)
}

func (s *Server) handleExitSync(content []byte) {
	var m transport.NotificationMessage
	json.Unmarshal(content, &m)
	s.Exit(context.Background(), "exit", m.Params)
	graceful := s.Status() == Exit
	s.Dispatcher.PostExit(actors.Exit{Graceful: graceful})
}

// WriteResponse satisfies the shape actors.Handler calls WriteResponse
// with, serializing every write against concurrent $/progress and
// publishDiagnostics notifications from the Background Worker.
func (s *Server) WriteResponse(id interface{}, result json.RawMessage, errResp *transport.ResponseError) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.Transport.WriteResponse(id, result, errResp); err != nil {
		logging.Logger.Warn("write response failed", "err", err)
	}
}

func (s *Server) WriteNotification(method string, params json.RawMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.Transport.WriteNotif(method, params); err != nil {
		logging.Logger.Warn("write notification failed", "method", method, "err", err)
	}
}

// WriteRequest sends a server-initiated request and returns the id it
// was assigned, drawn from the Store's counter (spec.md §4.4 "Get
// RequestID") so ids never collide with the client's own counter.
func (s *Server) WriteRequest(method string, params json.RawMessage) int {
	id := s.StoreClient.NextRequestID()
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.Transport.WriteRequest(id, method, params); err != nil {
		logging.Logger.Warn("write request failed", "method", method, "err", err)
	}
	return id
}

// HandleResponse answers actors.ResponseFunc for replies to
// server-initiated requests (e.g. workspace/semanticTokens/refresh);
// MLSP doesn't currently correlate these to any pending state, so it
// only logs a client-reported error.
func (s *Server) HandleResponse(id interface{}, result json.RawMessage, errResp *transport.ResponseError) {
	if errResp != nil {
		logging.Logger.Warn("client rejected server-initiated request", "id", id, "error", errResp.Message)
	}
}
