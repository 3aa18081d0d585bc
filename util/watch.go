package util

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/carn181/mlsp/logging"
)

// ChangeKind classifies a filesystem event relevant to workspace
// rescans (spec.md §5 "the crawler must react to out-of-band file
// changes, not just client-driven didOpen/didChange").
type ChangeKind int

const (
	ChangeCreate ChangeKind = iota
	ChangeWrite
	ChangeRemove
	ChangeRename
)

type Change struct {
	Path Path
	Kind ChangeKind
}

// Watcher recursively watches root and reports .m file changes on a
// channel, generalizing the teacher's single-directory replication
// watcher (util.WatchReplicateDir) into a workspace-wide rescan
// trigger: every subdirectory under root gets its own fsnotify watch
// since fsnotify itself isn't recursive, and new directories
// discovered via Create events are added as they appear.
type Watcher struct {
	fsw     *fsnotify.Watcher
	Changes chan Change
}

func NewWatcher(root Path) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fsw: fsw, Changes: make(chan Change, 64)}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		return fsw.Add(path)
	})
	if err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run drains fsnotify events until ctx is cancelled, forwarding MATLAB
// source changes on w.Changes and following new directories into the
// watch set as they're created.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.Changes)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Logger.Warn("watcher error", "err", err)
		case <-ctx.Done():
			w.fsw.Close()
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
			w.fsw.Add(event.Name)
		}
		w.emit(event.Name, ChangeCreate)
	}
	if event.Has(fsnotify.Write) {
		w.emit(event.Name, ChangeWrite)
	}
	if event.Has(fsnotify.Remove) {
		w.emit(event.Name, ChangeRemove)
	}
	if event.Has(fsnotify.Rename) {
		w.emit(event.Name, ChangeRename)
	}
}

func (w *Watcher) emit(path string, kind ChangeKind) {
	if filepath.Ext(path) != ".m" && kind != ChangeRemove {
		// still forward directory events so new +pkg/@class folders get
		// picked up by the crawler's traversal, but skip noise from
		// unrelated non-.m files
		if !isPackageOrClassDir(path) {
			return
		}
	}
	select {
	case w.Changes <- Change{Path: path, Kind: kind}:
	default:
		logging.Logger.Warn("watcher channel full, dropping event", "path", path)
	}
}

func isPackageOrClassDir(path string) bool {
	base := filepath.Base(path)
	return len(base) > 1 && (base[0] == '+' || base[0] == '@')
}
