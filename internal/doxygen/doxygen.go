// Package doxygen decides whether the introspection database needs
// regenerating and invokes the external tool when it does. The decision is
// purely timestamp-based: the tool's exit status is logged but never gates
// the rest of the run.
package doxygen

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Stale reports whether the generated XML predates the newest tracked
// header. A missing or empty XML directory is always stale.
func Stale(headerDir, xmlDir string) bool {
	if _, err := os.Stat(xmlDir); err != nil {
		return true
	}
	newestHeader := newestSource(headerDir)
	oldestXML, ok := oldestGenerated(xmlDir)
	if !ok {
		return true
	}
	return oldestXML.Before(newestHeader)
}

func newestSource(headerDir string) time.Time {
	var newest time.Time
	entries, err := os.ReadDir(headerDir)
	if err != nil {
		return newest
	}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !strings.HasSuffix(e.Name(), ".hpp") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return newest
}

func oldestGenerated(xmlDir string) (time.Time, bool) {
	var oldest time.Time
	found := false
	_ = filepath.WalkDir(xmlDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !found || info.ModTime().Before(oldest) {
			oldest = info.ModTime()
			found = true
		}
		return nil
	})
	return oldest, found
}

// Runner invokes the external introspection tool. The indirection exists so
// tests can stub the subprocess out.
type Runner interface {
	Run(dir string) error
}

// ExecRunner runs the real doxygen binary, blocking until it exits, with its
// output passed through.
type ExecRunner struct {
	// Command is the binary to invoke; "doxygen" when empty.
	Command string
}

func (r *ExecRunner) Run(dir string) error {
	command := r.Command
	if command == "" {
		command = "doxygen"
	}
	cmd := exec.Command(command)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", command, err)
	}
	return nil
}

// TouchAll sets the modification time of every generated file to now, so a
// partial regeneration does not look stale on the next run.
func TouchAll(xmlDir string) error {
	now := time.Now()
	return filepath.WalkDir(xmlDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		return os.Chtimes(path, now, now)
	})
}
