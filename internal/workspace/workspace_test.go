package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestNewCreatesUniqueRoot(t *testing.T) {
	root := t.TempDir()

	ws, err := New(root, "abc123")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	info, err := os.Stat(ws.Root())
	if err != nil {
		t.Fatalf("workspace root missing: %v", err)
	}
	if !info.IsDir() {
		t.Error("workspace root is not a directory")
	}
	if filepath.Base(ws.Root()) != "job-abc123" {
		t.Errorf("root = %q, want job-abc123 suffix", ws.Root())
	}
}

func TestPathRegistersBeforeUse(t *testing.T) {
	ws := mustNew(t)

	p := ws.Path("narration.mp3")
	found := false
	for _, reg := range ws.Registered() {
		if reg == p {
			found = true
		}
	}
	if !found {
		t.Errorf("Path(%q) not registered", p)
	}
}

func TestCleanupRemovesEverything(t *testing.T) {
	root := t.TempDir()
	ws, err := New(root, "job1")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	filePath := ws.Path("narration.mp3")
	if err := os.WriteFile(filePath, []byte("audio"), 0644); err != nil {
		t.Fatal(err)
	}
	scratch, err := ws.MkdirScratch("source-0")
	if err != nil {
		t.Fatalf("MkdirScratch() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(scratch, "video.mp4"), []byte("v"), 0644); err != nil {
		t.Fatal(err)
	}

	ws.Cleanup()

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("reading temp root: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("temp root not empty after cleanup: %v", entries)
	}
}

func TestCleanupToleratesMissingPaths(t *testing.T) {
	ws := mustNew(t)
	ws.Register(filepath.Join(ws.Root(), "never-created.mp4"))
	ws.Cleanup()

	if _, err := os.Stat(ws.Root()); !os.IsNotExist(err) {
		t.Errorf("workspace root still present after cleanup")
	}
}

func TestConcurrentRegister(t *testing.T) {
	ws := mustNew(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ws.Register(filepath.Join(ws.Root(), fmt.Sprintf("part-%d", n)))
		}(i)
	}
	wg.Wait()

	if got := len(ws.Registered()); got != 50 {
		t.Errorf("registered %d paths, want 50", got)
	}
}

func mustNew(t *testing.T) *Workspace {
	t.Helper()
	ws, err := New(t.TempDir(), "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return ws
}
