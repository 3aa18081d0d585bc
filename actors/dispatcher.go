package actors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/carn181/mlsp/store"
)

// ErrUngracefulExit is returned by Run when the client sent "exit"
// without a prior "shutdown" (spec.md §6: exit code 1 in that case).
var ErrUngracefulExit = errors.New("exit received without prior shutdown")

// Dispatcher owns the Store and the four work queues spec.md §5
// describes: notifications, responses, requests, and internal handler
// items feed the Handler in that priority order; a fifth queue feeds
// the Background Worker. It is the only goroutine that ever touches
// its *store.Store directly. Grounded on
// original_source/src/threads/dispatcher.rs's main select loop, with
// crossbeam_channel::Select replaced by a Go select over typed
// channels.
type Dispatcher struct {
	store *store.Store
	ops   chan StoreOp

	inboundNotif     chan Notification
	inboundRequest   chan InboundRequest
	inboundResponse  chan InboundResponse
	inboundCancel    chan CancelRequest
	inboundHandler   chan HandlerItem
	inboundBG        chan BackgroundItem
	exit             chan Exit

	toHandler   chan HandlerItem
	fromHandler chan Done
	handlerBusy bool

	toBackground   chan BackgroundItem
	fromBackground chan Done
	backgroundBusy bool

	notifQ   []Notification
	respQ    []InboundResponse
	reqQ     []InboundRequest
	handlerQ []HandlerItem
	bgQ      []BackgroundItem

	log *slog.Logger
}

// NewDispatcher wires a Dispatcher around s. toHandler/toBackground are
// the send-only ends the Handler and Background Worker goroutines
// receive on; fromHandler/fromBackground are their completion signals.
func NewDispatcher(s *store.Store, toHandler chan HandlerItem, fromHandler chan Done, toBackground chan BackgroundItem, fromBackground chan Done, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:           s,
		ops:             make(chan StoreOp, 8),
		inboundNotif:    make(chan Notification, 32),
		inboundRequest:  make(chan InboundRequest, 32),
		inboundResponse: make(chan InboundResponse, 8),
		inboundCancel:   make(chan CancelRequest, 8),
		inboundHandler:  make(chan HandlerItem, 8),
		inboundBG:       make(chan BackgroundItem, 8),
		exit:            make(chan Exit, 1),
		toHandler:       toHandler,
		fromHandler:     fromHandler,
		toBackground:    toBackground,
		fromBackground:  fromBackground,
		log:             log,
	}
}

// Ops returns the channel StoreClient sends closures on.
func (d *Dispatcher) Ops() chan StoreOp { return d.ops }

func (d *Dispatcher) PostNotification(n Notification)    { d.inboundNotif <- n }
func (d *Dispatcher) PostRequest(r InboundRequest)        { d.inboundRequest <- r }
func (d *Dispatcher) PostResponse(r InboundResponse)      { d.inboundResponse <- r }
func (d *Dispatcher) PostCancel(c CancelRequest)          { d.inboundCancel <- c }
func (d *Dispatcher) PostHandlerItem(h HandlerItem)       { d.inboundHandler <- h }
func (d *Dispatcher) PostScan(b BackgroundItem)           { d.inboundBG <- b }
func (d *Dispatcher) PostExit(e Exit)                     { d.exit <- e }

// Run executes the Dispatcher loop until ctx is cancelled, an
// ungraceful Exit arrives (returning ErrUngracefulExit), or a graceful
// Exit finds the Handler's queues empty and the Handler idle (the
// Background Worker's queue is not waited for). Feeding the Handler and Background
// Worker happens before each blocking select, exactly as
// dispatcher.rs's `try_send_to_handler`/`try_send_to_background` are
// called at the top of every loop iteration.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		// Give a pending Exit priority over ctx cancellation: Main posts
		// Exit and then cancels the shared context right after (server.Loop
		// returning calls stop()), so without this non-blocking check first,
		// select could pick ctx.Done() and silently swallow an ungraceful
		// exit's exit code.
		select {
		case e := <-d.exit:
			if done, err := d.handleExit(e); done {
				return err
			}
		default:
		}

		d.feedHandler()
		d.feedBackground()

		select {
		case <-ctx.Done():
			return nil

		case op := <-d.ops:
			op(d.store)

		case n := <-d.inboundNotif:
			d.notifQ = append(d.notifQ, n)

		case r := <-d.inboundRequest:
			d.reqQ = append(d.reqQ, r)

		case r := <-d.inboundResponse:
			d.respQ = append(d.respQ, r)

		case c := <-d.inboundCancel:
			d.cancel(c.ID)

		case h := <-d.inboundHandler:
			d.handlerQ = append(d.handlerQ, h)

		case b := <-d.inboundBG:
			d.bgQ = append(d.bgQ, b)

		case <-d.fromHandler:
			d.handlerBusy = false

		case <-d.fromBackground:
			d.backgroundBusy = false

		case e := <-d.exit:
			if done, err := d.handleExit(e); done {
				return err
			}
		}
	}
}

// handleExit decides whether e ends Run (and with what error), or
// should be requeued to drain remaining work before a graceful exit.
func (d *Dispatcher) handleExit(e Exit) (done bool, err error) {
	if !e.Graceful {
		return true, ErrUngracefulExit
	}
	if len(d.reqQ)+len(d.notifQ)+len(d.respQ)+len(d.handlerQ) == 0 && !d.handlerBusy {
		return true, nil
	}
	// Drain what's queued before honoring a graceful exit.
	d.exit <- e
	return false, nil
}

// cancel drops id from the request queue only; a request already
// handed to the Handler keeps running to completion (spec.md §5
// "Cancellation").
func (d *Dispatcher) cancel(id interface{}) {
	for i, r := range d.reqQ {
		if r.ID == id {
			d.reqQ = append(d.reqQ[:i], d.reqQ[i+1:]...)
			return
		}
	}
}

func (d *Dispatcher) feedHandler() {
	if d.handlerBusy {
		return
	}
	var item HandlerItem
	switch {
	case len(d.notifQ) > 0:
		n := d.notifQ[0]
		d.notifQ = d.notifQ[1:]
		item = HandlerItem{Notification: &n}
	case len(d.respQ) > 0:
		r := d.respQ[0]
		d.respQ = d.respQ[1:]
		item = HandlerItem{Response: &r}
	case len(d.reqQ) > 0:
		r := d.reqQ[0]
		d.reqQ = d.reqQ[1:]
		item = HandlerItem{Request: &r}
	case len(d.handlerQ) > 0:
		item = d.handlerQ[0]
		d.handlerQ = d.handlerQ[1:]
	default:
		return
	}
	d.handlerBusy = true
	d.toHandler <- item
}

func (d *Dispatcher) feedBackground() {
	if d.backgroundBusy || len(d.bgQ) == 0 {
		return
	}
	item := d.bgQ[0]
	d.bgQ = d.bgQ[1:]
	d.backgroundBusy = true
	d.toBackground <- item
}
