package assemble

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Writer emits generated pages, skipping writes whose content is unchanged
// byte-for-byte, and remembers every file intentionally produced so the
// output directory can be purged of orphans afterwards.
type Writer struct {
	logger    *log.Logger
	attempted int
	rewritten int
	produced  map[string]struct{}
}

// NewWriter returns a Writer logging through logger.
func NewWriter(logger *log.Logger) *Writer {
	return &Writer{logger: logger, produced: make(map[string]struct{})}
}

// Write stores contents at path unless the file already holds exactly that
// content. Every call marks path as produced this run.
func (w *Writer) Write(path, contents string) error {
	w.attempted++
	w.produced[filepath.Clean(path)] = struct{}{}
	if existing, err := os.ReadFile(path); err == nil && string(existing) == contents {
		return nil
	}
	w.logger.Info("rewriting", "file", path)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.rewritten++
	return nil
}

// CleanOrphans deletes every file in dir that was not produced this run.
func (w *Writer) CleanOrphans(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("clean %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Clean(filepath.Join(dir, e.Name()))
		if _, ok := w.produced[path]; ok {
			continue
		}
		w.logger.Info("deleting orphan", "file", path)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("clean %s: %w", dir, err)
		}
	}
	return nil
}

// Attempted returns how many files were produced this run.
func (w *Writer) Attempted() int { return w.attempted }

// Rewritten returns how many files actually changed on disk.
func (w *Writer) Rewritten() int { return w.rewritten }
