// Package store is the Dispatcher-owned in-memory index: parsed files,
// function definitions, packages, and scripts (spec.md §4.4). Grounded
// on original_source/src/threads/db.rs's db_* helpers and
// dispatcher.rs's handle_db_transaction, which round-tripped every
// operation through a channel to the dispatcher thread; here the same
// operations are plain methods, since actors.Dispatcher already
// serializes every caller onto one goroutine (spec.md §5: "the Store
// is *not* shared — it is private to the Dispatcher").
package store

import (
	"strings"
	"sync"

	"github.com/carn181/mlsp/model"
)

// Store holds every file, function, and package the server currently
// knows about. The mutex exists only so tests can call methods directly
// without going through the Dispatcher actor; in production exactly one
// goroutine (the Dispatcher) ever calls into a Store.
type Store struct {
	mu sync.Mutex

	parsedFiles map[string]*model.ParsedFile
	functions   map[string]*model.FunctionDefinition // qualified name -> def
	packages    map[string]struct{}
	requestID   int
}

func New() *Store {
	return &Store{
		parsedFiles: make(map[string]*model.ParsedFile),
		functions:   make(map[string]*model.FunctionDefinition),
		packages:    make(map[string]struct{}),
	}
}

// Writer distinguishes the Handler from the Background Worker for the
// freshness check on ParsedFile writes (spec.md §4.4).
type Writer int

const (
	FromHandler Writer = iota
	FromBackgroundWorker
)

// GetParsedFile returns the current entry for path, if any.
func (s *Store) GetParsedFile(path string) (*model.ParsedFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.parsedFiles[path]
	return f, ok
}

// SetParsedFile applies spec.md §4.4's freshness check: a write is
// dropped when an entry already exists and either (a) the stored entry
// is open and the writer is the background worker, or (b) the stored
// entry's timestamp is newer than the incoming one. This is what stops
// a background crawl from clobbering an open, recently edited file.
func (s *Store) SetParsedFile(file *model.ParsedFile, writer Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.parsedFiles[file.Path]; ok {
		if (stored.Open && writer == FromBackgroundWorker) || stored.Timestamp > file.Timestamp {
			return
		}
	}
	s.parsedFiles[file.Path] = file
}

// DeleteParsedFile removes path's entry, used when a file disappears
// from disk and isn't open (spec.md §3 ParsedFile lifecycle).
func (s *Store) DeleteParsedFile(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.parsedFiles, path)
}

// FetchParsedFiles returns every known file, keyed by path.
func (s *Store) FetchParsedFiles() map[string]*model.ParsedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*model.ParsedFile, len(s.parsedFiles))
	for k, v := range s.parsedFiles {
		out[k] = v
	}
	return out
}

// GetScript returns the first parsed file with IsScript == true and a
// matching basename (spec.md §4.4 "Get Script by name").
func (s *Store) GetScript(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for path, f := range s.parsedFiles {
		if f.IsScript && f.Name == name {
			return path, true
		}
	}
	return "", false
}

// FetchScripts returns every known script, keyed by path.
func (s *Store) FetchScripts() map[string]*model.ParsedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*model.ParsedFile)
	for k, v := range s.parsedFiles {
		if v.IsScript {
			out[k] = v
		}
	}
	return out
}

// GetPackages returns every known dotted package name starting with
// prefix; an empty prefix matches everything (spec.md §4.4).
func (s *Store) GetPackages(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for p := range s.packages {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	return out
}

// Packages satisfies extract.Lookup.
func (s *Store) Packages(prefix string) []string { return s.GetPackages(prefix) }

// SetPackages adds pkgs to the known package set.
func (s *Store) SetPackages(pkgs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range pkgs {
		s.packages[p] = struct{}{}
	}
}

// GetFunction looks up a function by its qualified name
// ("package.name", or just "name" with no package).
func (s *Store) GetFunction(qualifiedName string) (*model.FunctionDefinition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.functions[qualifiedName]
	return f, ok
}

// Function satisfies extract.Lookup.
func (s *Store) Function(qualifiedName string) (*model.FunctionDefinition, bool) {
	return s.GetFunction(qualifiedName)
}

// SetFunction inserts or replaces (last-writer-wins, spec.md §3) a
// function definition under its qualified name.
func (s *Store) SetFunction(f *model.FunctionDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.functions[f.QualifiedName()] = f
}

// DeleteFunctionsByPath removes every function whose source file is
// path (spec.md §4.4: used on file close when no on-disk copy exists).
func (s *Store) DeleteFunctionsByPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, f := range s.functions {
		if f.Path == path {
			delete(s.functions, name)
		}
	}
}

// AllFunctions returns every known function, keyed by qualified name.
// Satisfies extract.Lookup.
func (s *Store) AllFunctions() map[string]*model.FunctionDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*model.FunctionDefinition, len(s.functions))
	for k, v := range s.functions {
		out[k] = v
	}
	return out
}

// Script satisfies extract.Lookup.
func (s *Store) Script(name string) (string, bool) { return s.GetScript(name) }

// NextRequestID post-increments the server-initiated LSP request id
// counter (spec.md §4.4 "Get RequestID").
func (s *Store) NextRequestID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.requestID
	s.requestID++
	return id
}
