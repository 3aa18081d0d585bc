package actors

import (
	"github.com/carn181/mlsp/model"
	"github.com/carn181/mlsp/store"
)

// StoreOp is a closure the Dispatcher runs against its *store.Store on
// its own goroutine. Every Store access from the Handler or Background
// Worker goes through one of these on the shared ops channel, so the
// Store is touched by exactly one goroutine even though StoreClient
// itself is called concurrently from two (spec.md §5: "every read/write
// is a message round-trip; the sender blocks on a reply channel").
type StoreOp func(*store.Store)

// StoreClient is the Handler's and Background Worker's only way to
// reach the Store. It satisfies extract.Lookup directly so the
// extractor runs unmodified against either a *store.Store (in tests)
// or a StoreClient (in the live server).
type StoreClient struct {
	ops chan StoreOp
}

// NewStoreClient wires a client to the channel the Dispatcher drains on
// every iteration of its loop.
func NewStoreClient(ops chan StoreOp) *StoreClient { return &StoreClient{ops: ops} }

func (c *StoreClient) call(fn func(*store.Store)) {
	done := make(chan struct{})
	c.ops <- func(s *store.Store) {
		fn(s)
		close(done)
	}
	<-done
}

func (c *StoreClient) GetParsedFile(path string) (f *model.ParsedFile, ok bool) {
	c.call(func(s *store.Store) { f, ok = s.GetParsedFile(path) })
	return
}

func (c *StoreClient) SetParsedFile(f *model.ParsedFile, w store.Writer) {
	c.call(func(s *store.Store) { s.SetParsedFile(f, w) })
}

func (c *StoreClient) DeleteParsedFile(path string) {
	c.call(func(s *store.Store) { s.DeleteParsedFile(path) })
}

func (c *StoreClient) FetchParsedFiles() (out map[string]*model.ParsedFile) {
	c.call(func(s *store.Store) { out = s.FetchParsedFiles() })
	return
}

func (c *StoreClient) FetchScripts() (out map[string]*model.ParsedFile) {
	c.call(func(s *store.Store) { out = s.FetchScripts() })
	return
}

func (c *StoreClient) Script(name string) (path string, ok bool) {
	c.call(func(s *store.Store) { path, ok = s.Script(name) })
	return
}

func (c *StoreClient) Packages(prefix string) (out []string) {
	c.call(func(s *store.Store) { out = s.Packages(prefix) })
	return
}

func (c *StoreClient) SetPackages(pkgs []string) {
	c.call(func(s *store.Store) { s.SetPackages(pkgs) })
}

func (c *StoreClient) Function(qualifiedName string) (f *model.FunctionDefinition, ok bool) {
	c.call(func(s *store.Store) { f, ok = s.Function(qualifiedName) })
	return
}

func (c *StoreClient) SetFunction(f *model.FunctionDefinition) {
	c.call(func(s *store.Store) { s.SetFunction(f) })
}

func (c *StoreClient) DeleteFunctionsByPath(path string) {
	c.call(func(s *store.Store) { s.DeleteFunctionsByPath(path) })
}

func (c *StoreClient) AllFunctions() (out map[string]*model.FunctionDefinition) {
	c.call(func(s *store.Store) { out = s.AllFunctions() })
	return
}

func (c *StoreClient) NextRequestID() (id int) {
	c.call(func(s *store.Store) { id = s.NextRequestID() })
	return
}
