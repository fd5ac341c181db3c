// Package report collects the warning stream of a generation run. One bad
// symbol must never abort the run, so components hand their recoverable
// failures to a Reporter and carry on; the CLI prints the accumulated count
// in the final summary.
package report

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Reporter counts warnings and deduplicates the per-symbol "no documentation
// found" messages so each distinct (file, name, params) key warns once.
type Reporter struct {
	logger   *log.Logger
	warnings int
	seen     map[string]struct{}
}

// New returns a Reporter writing through logger.
func New(logger *log.Logger) *Reporter {
	return &Reporter{logger: logger, seen: make(map[string]struct{})}
}

// Warnf records one warning attributed to a page-specification file.
func (r *Reporter) Warnf(file, format string, args ...any) {
	r.warnings++
	r.logger.Warn(fmt.Sprintf(format, args...), "file", file)
}

// MissingDoc records a missing-documentation warning for the given symbol,
// at most once per distinct (file, name, params) key.
func (r *Reporter) MissingDoc(file, name, params string) {
	key := file + "\x00" + name + "\x00" + params
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	r.Warnf(file, "no doxygen output found for %s%s", name, params)
}

// Warnings returns the number of warnings recorded so far.
func (r *Reporter) Warnings() int { return r.warnings }
