package actors

import (
	"context"
	"testing"
	"time"

	"github.com/carn181/mlsp/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestDispatcher(t *testing.T) (*Dispatcher, chan HandlerItem, chan Done, chan BackgroundItem, chan Done) {
	toHandler := make(chan HandlerItem)
	fromHandler := make(chan Done)
	toBackground := make(chan BackgroundItem)
	fromBackground := make(chan Done)
	d := NewDispatcher(store.New(), toHandler, fromHandler, toBackground, fromBackground, nil)
	return d, toHandler, fromHandler, toBackground, fromBackground
}

// Notifications are fed to the Handler ahead of requests, per spec.md
// §5's priority order.
func TestDispatcherPrioritizesNotificationsOverRequests(t *testing.T) {
	d, toHandler, fromHandler, _, _ := newTestDispatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.PostRequest(InboundRequest{ID: 1, Method: "textDocument/hover"})
	d.PostNotification(Notification{Method: "textDocument/didChange"})

	select {
	case item := <-toHandler:
		require.NotNil(t, item.Notification)
		assert.Equal(t, "textDocument/didChange", item.Notification.Method)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for handler item")
	}
	fromHandler <- Done{}

	select {
	case item := <-toHandler:
		require.NotNil(t, item.Request)
		assert.Equal(t, "textDocument/hover", item.Request.Method)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for second handler item")
	}
	fromHandler <- Done{}
}

// Cancelling a request still queued removes it before it ever reaches
// the Handler; a request already in flight is unaffected (spec.md §5).
func TestDispatcherCancelDropsQueuedRequestOnly(t *testing.T) {
	d, toHandler, fromHandler, _, _ := newTestDispatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.PostRequest(InboundRequest{ID: 1, Method: "a"})

	var first HandlerItem
	select {
	case first = <-toHandler:
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
	require.Equal(t, "a", first.Request.Method)

	d.PostRequest(InboundRequest{ID: 2, Method: "b"})
	d.PostCancel(CancelRequest{ID: 2})
	fromHandler <- Done{}

	select {
	case <-toHandler:
		t.Fatal("cancelled request should never reach the handler")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcherFeedsBackgroundWorker(t *testing.T) {
	d, _, _, toBackground, fromBackground := newTestDispatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.PostScan(BackgroundItem{ScanPaths: []string{"/lib"}})

	select {
	case item := <-toBackground:
		assert.Equal(t, []string{"/lib"}, item.ScanPaths)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for background item")
	}
	fromBackground <- Done{}
}

// An ungraceful exit (client sent "exit" with no prior "shutdown")
// surfaces as ErrUngracefulExit so main.go can turn it into exit code 1
// (spec.md §6).
func TestDispatcherRunReturnsErrorOnUngracefulExit(t *testing.T) {
	d, _, _, _, _ := newTestDispatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()

	d.PostExit(Exit{Graceful: false})

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrUngracefulExit)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Run to return")
	}
}

// A graceful exit with nothing queued returns nil immediately, leaving
// the process exit code at 0.
func TestDispatcherRunReturnsNilOnGracefulExit(t *testing.T) {
	d, _, _, _, _ := newTestDispatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()

	d.PostExit(Exit{Graceful: true})

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Run to return")
	}
}

func TestStoreClientRoundTrips(t *testing.T) {
	s := store.New()
	d, toHandler, fromHandler, _, _ := newTestDispatcher(t)
	_ = toHandler
	_ = fromHandler
	_ = s
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	client := NewStoreClient(d.Ops())
	client.SetPackages([]string{"pkg.sub"})
	assert.Equal(t, []string{"pkg.sub"}, client.Packages("pkg"))
}
