// mlsp is a language server for MATLAB: it tracks an open workspace's
// functions, scripts, and variables well enough to answer go-to-
// definition, references, hover, completion, semantic tokens,
// diagnostics, folding, and rename over the LSP wire protocol.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/carn181/mlsp/actors"
	"github.com/carn181/mlsp/extract"
	"github.com/carn181/mlsp/logging"
	"github.com/carn181/mlsp/parser"
	"github.com/carn181/mlsp/server"
	"github.com/carn181/mlsp/store"
	"github.com/carn181/mlsp/transport"

	"golang.org/x/sync/errgroup"
)

func main() {
	if _, err := logging.Init(); err != nil {
		os.Exit(1)
	}
	logging.Logger.Info("starting mlsp")

	cfg, err := server.ParseConfig(os.Args)
	if err != nil {
		logging.Logger.Error("could not parse flags", "err", err)
		os.Exit(1)
	}

	t := &transport.Transport{Addr: cfg.Addr}
	method := transport.Stdin
	if cfg.Socket {
		method = transport.Socket
	}
	if err := t.Init(transport.Server, method); err != nil {
		logging.Logger.Error("could not start transport", "err", err)
		os.Exit(1)
	}
	defer t.Close()

	p := parser.New()
	st := store.New()

	toHandler := make(chan actors.HandlerItem, 8)
	fromHandler := make(chan actors.Done, 8)
	toBackground := make(chan actors.BackgroundItem, 1)
	fromBackground := make(chan actors.Done, 1)

	dispatcher := actors.NewDispatcher(st, toHandler, fromHandler, toBackground, fromBackground, logging.Logger)
	storeClient := actors.NewStoreClient(dispatcher.Ops())
	extractor := extract.New(p, storeClient)

	srv := server.New(t, p, storeClient, dispatcher, extractor, cfg)

	handler := actors.NewHandler(toHandler, fromHandler, srv.WriteResponse, logging.Logger)
	handler.HandleRequest = srv.HandleRequest
	handler.HandleNotification = srv.HandleNotification
	handler.HandleResponse = srv.HandleResponse

	worker := actors.NewBackgroundWorker(toBackground, fromBackground, srv.RunScanPaths, srv.RunScanWorkspace)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return dispatcher.Run(gctx) })
	g.Go(func() error { handler.Run(gctx); return nil })
	g.Go(func() error { worker.Run(gctx); return nil })
	g.Go(func() error {
		err := srv.Loop(gctx)
		stop()
		return err
	})
	g.Go(func() error {
		srv.WatchClientLiveness(gctx, func() { dispatcher.PostExit(actors.Exit{Graceful: false}) })
		return nil
	})

	// Exit codes (spec.md §6): 0 on client-requested shutdown+exit or on
	// ctx cancellation (signal), 1 when exit arrived without a prior
	// shutdown (actors.ErrUngracefulExit) or on any other actor error.
	if err := g.Wait(); err != nil {
		logging.Logger.Error("mlsp exiting with error", "err", err)
		os.Exit(1)
	}
	logging.Logger.Info("mlsp exiting")
}
