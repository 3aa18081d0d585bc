package server

import (
	"context"
	"testing"

	"github.com/carn181/mlsp/actors"
	"github.com/carn181/mlsp/extract"
	"github.com/carn181/mlsp/parser"
	"github.com/carn181/mlsp/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// newTestServer wires a Server around a live Dispatcher so StoreClient
// calls complete, without a Transport, Handler, or Background Worker:
// enough for query handlers and notification handlers to run.
func newTestServer(t *testing.T) (*Server, context.CancelFunc) {
	t.Helper()
	toHandler := make(chan actors.HandlerItem, 8)
	fromHandler := make(chan actors.Done, 8)
	toBackground := make(chan actors.BackgroundItem, 1)
	fromBackground := make(chan actors.Done, 1)

	d := actors.NewDispatcher(store.New(), toHandler, fromHandler, toBackground, fromBackground, nil)
	sc := actors.NewStoreClient(d.Ops())
	p := parser.New()
	ex := extract.New(p, sc)

	ctx, cancel := context.WithCancel(context.Background())
	go d.Run(ctx)

	s := New(nil, p, sc, d, ex, Config{})
	return s, cancel
}

func TestValidateMethodRequiresInitializeFirst(t *testing.T) {
	s, cancel := newTestServer(t)
	defer cancel()

	assert.Error(t, s.ValidateMethod("textDocument/hover"))
	assert.NoError(t, s.ValidateMethod("initialize"))
}

func TestValidateMethodOnlyAllowsExitAfterShutdown(t *testing.T) {
	s, cancel := newTestServer(t)
	defer cancel()

	s.setStatus(Shutdown)
	assert.Error(t, s.ValidateMethod("textDocument/hover"))
	assert.NoError(t, s.ValidateMethod("exit"))
}

func TestExitRequiresPriorShutdown(t *testing.T) {
	s, cancel := newTestServer(t)
	defer cancel()

	s.setStatus(Running)
	s.Exit(context.Background(), "exit", nil)
	assert.Equal(t, ExitError, s.Status())

	s.setStatus(Shutdown)
	s.Exit(context.Background(), "exit", nil)
	assert.Equal(t, Exit, s.Status())
}

func TestRequestIDDistinguishesNotificationFromRequest(t *testing.T) {
	_, ok := requestID([]byte(`{"jsonrpc":"2.0","method":"textDocument/didChange"}`))
	assert.False(t, ok)

	id, ok := requestID([]byte(`{"jsonrpc":"2.0","id":7,"method":"textDocument/hover"}`))
	require.True(t, ok)
	assert.EqualValues(t, 7, id)

	id, ok = requestID([]byte(`{"jsonrpc":"2.0","id":"abc","method":"textDocument/hover"}`))
	require.True(t, ok)
	assert.Equal(t, "abc", id)
}

func TestPackageFromPathJoinsPrefixedAncestors(t *testing.T) {
	assert.Equal(t, "pkg.sub", packageFromPath("/root", "/root/+pkg/+sub/foo.m"))
	assert.Equal(t, "", packageFromPath("/root", "/root/foo.m"))
}
