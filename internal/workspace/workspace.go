// Package workspace owns the scratch files and directories of a single job.
// Every path created for the job is registered before the call that may
// fail, so Cleanup always sees the complete set.
package workspace

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Workspace is the scratch area for one job plus the registry of every
// path created on its behalf
type Workspace struct {
	root  string
	mu    sync.Mutex
	paths []string
}

// New creates a uniquely named scratch directory under rootDir
func New(rootDir, jobID string) (*Workspace, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp root: %v", err)
	}
	root := filepath.Join(rootDir, "job-"+jobID)
	if err := os.Mkdir(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %v", err)
	}
	return &Workspace{root: root}, nil
}

// Root returns the workspace scratch directory
func (w *Workspace) Root() string {
	return w.root
}

// Path returns the location for a named artifact inside the workspace.
// The path is registered so Cleanup removes it even if the producer fails
// halfway through writing it.
func (w *Workspace) Path(name string) string {
	p := filepath.Join(w.root, name)
	w.Register(p)
	return p
}

// Register records a path for cleanup. Safe for concurrent use; parallel
// fetches register their scratch dirs as they go.
func (w *Workspace) Register(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paths = append(w.paths, path)
}

// MkdirScratch creates and registers a named subdirectory, used to give
// each source download its own scratch dir.
func (w *Workspace) MkdirScratch(name string) (string, error) {
	dir := filepath.Join(w.root, name)
	w.Register(dir)
	if err := os.Mkdir(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create scratch dir: %v", err)
	}
	return dir, nil
}

// Registered returns a copy of the registry, newest last
func (w *Workspace) Registered() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.paths))
	copy(out, w.paths)
	return out
}

// Cleanup removes every registered path and the workspace root itself.
// Failures are logged and swallowed; cleanup never changes the outcome of
// a job.
func (w *Workspace) Cleanup() {
	w.mu.Lock()
	paths := make([]string, len(w.paths))
	copy(paths, w.paths)
	w.paths = nil
	w.mu.Unlock()

	for _, path := range paths {
		removePath(path)
	}
	removePath(w.root)
}

func removePath(path string) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		log.Printf("Cleanup warning: cannot stat %s: %v", path, err)
		return
	}
	if info.IsDir() {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		log.Printf("Cleanup warning: failed to remove %s: %v", path, err)
	}
}
