package actors

import "context"

// BackgroundWorker runs one scan item at a time: a fast scan over
// library roots or a full scan of the workspace (spec.md §4.6). The
// actual traversal and extraction logic lives in crawler/; this type
// only owns the queue-draining loop, mirroring Handler and grounded the
// same way on original_source/src/threads/background_worker.rs.
type BackgroundWorker struct {
	items <-chan BackgroundItem
	done  chan<- Done

	RunScanPaths     func(roots []string)
	RunScanWorkspace func(root string)
}

func NewBackgroundWorker(items <-chan BackgroundItem, done chan<- Done, runScanPaths func([]string), runScanWorkspace func(string)) *BackgroundWorker {
	return &BackgroundWorker{items: items, done: done, RunScanPaths: runScanPaths, RunScanWorkspace: runScanWorkspace}
}

func (w *BackgroundWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-w.items:
			if !ok {
				return
			}
			w.process(item)
			w.done <- Done{}
		}
	}
}

func (w *BackgroundWorker) process(item BackgroundItem) {
	switch {
	case len(item.ScanPaths) > 0:
		w.RunScanPaths(item.ScanPaths)
	case item.ScanWorkspace != "":
		w.RunScanWorkspace(item.ScanWorkspace)
	}
}
