package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-vacancy-swipe/internal/logging"
)

// ScreenShotDebugger persists diagnostic captures for operator review
type ScreenShotDebugger struct {
	outputDir string
	log       *logging.Logger
}

func NewScreenShotDebugger(dir string, log *logging.Logger) *ScreenShotDebugger {
	if dir == "" {
		dir = filepath.Join(".", "logs", "screenshots")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Warn("⚠️ Failed to create screenshot directory", "dir", dir, "err", err)
	}
	return &ScreenShotDebugger{
		outputDir: dir,
		log:       log,
	}
}

// Save writes png under a timestamped name and returns the path.
func (s *ScreenShotDebugger) Save(name string, png []byte, message string) (string, error) {
	if len(png) == 0 {
		return "", fmt.Errorf("empty screenshot")
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s_%s.png", name, timestamp, uuid.NewString()[:8])
	path := filepath.Join(s.outputDir, filename)
	s.log.Info("📸 "+message, "path", path)

	if err := os.WriteFile(path, png, 0644); err != nil {
		s.log.Warn("⚠️ Failed to save screenshot", "err", err)
		return "", err
	}
	return path, nil
}

// Prune removes captures older than maxAge and reports how many went.
func (s *ScreenShotDebugger) Prune(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.outputDir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
