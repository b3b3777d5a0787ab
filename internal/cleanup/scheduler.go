// Package cleanup sweeps the temp root for workspace directories that
// survived a crash. Live jobs remove their own workspaces; this is the
// backstop for the ones that never got the chance.
package cleanup

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Scheduler handles periodic cleanup of orphaned workspaces
type Scheduler struct {
	tempDir         string
	intervalMinutes int
	maxAgeHours     int
	stopChan        chan struct{}
}

// NewScheduler creates a new cleanup scheduler
func NewScheduler(tempDir string, intervalMinutes, maxAgeHours int) *Scheduler {
	return &Scheduler{
		tempDir:         tempDir,
		intervalMinutes: intervalMinutes,
		maxAgeHours:     maxAgeHours,
		stopChan:        make(chan struct{}),
	}
}

// Start begins the cleanup scheduler
func (s *Scheduler) Start() {
	// Run initial cleanup on startup
	log.Println("Running initial workspace sweep...")
	s.sweepStaleWorkspaces()

	ticker := time.NewTicker(time.Duration(s.intervalMinutes) * time.Minute)

	go func() {
		for {
			select {
			case <-ticker.C:
				s.sweepStaleWorkspaces()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	log.Printf("Cleanup scheduler started (interval: %dm, max age: %dh)",
		s.intervalMinutes, s.maxAgeHours)
}

// Stop stops the cleanup scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	log.Println("Cleanup scheduler stopped")
}

// sweepStaleWorkspaces removes job workspaces older than maxAgeHours
func (s *Scheduler) sweepStaleWorkspaces() {
	cutoff := time.Now().Add(-time.Duration(s.maxAgeHours) * time.Hour)

	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Error during workspace sweep: %v", err)
		}
		return
	}

	var removed int
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "job-") {
			continue
		}

		dirPath := filepath.Join(s.tempDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(dirPath); err != nil {
				log.Printf("Failed to remove stale workspace %s: %v", dirPath, err)
			} else {
				removed++
				log.Printf("Removed stale workspace: %s (age: %s)",
					entry.Name(), time.Since(info.ModTime()).Round(time.Hour))
			}
		}
	}

	if removed > 0 {
		log.Printf("Workspace sweep complete: %d stale workspaces removed", removed)
	}
}

// EnsureTempDirExists creates the temp directory if it doesn't exist
func EnsureTempDirExists(tempDir string) error {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return err
	}
	log.Printf("Temp directory ready: %s", tempDir)
	return nil
}
