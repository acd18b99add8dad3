// Package persist writes the session's artifacts as one unit. Files are
// first written to temporary siblings, then renamed into place together,
// so a failure partway through a save never leaves taxonomy, rules, and
// ledger inconsistent with each other.
package persist

import (
	"fmt"
	"log/slog"
	"os"
)

type staged struct {
	path    string
	content []byte
}

// Stage accumulates (path, content) pairs for an atomic save.
type Stage struct {
	files []staged
}

// NewStage returns an empty stage.
func NewStage() *Stage {
	return &Stage{}
}

// Add queues content to be written to path at commit time. Adding the
// same path twice keeps the later content.
func (s *Stage) Add(path string, content []byte) {
	for i := range s.files {
		if s.files[i].path == path {
			s.files[i].content = content
			return
		}
	}
	s.files = append(s.files, staged{path: path, content: content})
}

// Len reports the number of staged files.
func (s *Stage) Len() int { return len(s.files) }

// Commit writes every staged file. All temp files are written first; if
// any write fails, the temps are removed and no target is touched. Only
// after every temp exists are they renamed over the targets.
func (s *Stage) Commit() error {
	temps := make([]string, 0, len(s.files))
	cleanup := func() {
		for _, tmp := range temps {
			if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
				slog.Warn("failed to remove temp file", "path", tmp, "error", err)
			}
		}
	}

	for _, f := range s.files {
		tmp := f.path + ".tmp"
		if err := os.WriteFile(tmp, f.content, 0o644); err != nil {
			cleanup()
			return fmt.Errorf("failed to write %s: %w", tmp, err)
		}
		temps = append(temps, tmp)
	}

	for i, f := range s.files {
		if err := os.Rename(temps[i], f.path); err != nil {
			// Renames already performed cannot be taken back, but the
			// write phase above makes this path close to unreachable.
			cleanup()
			return fmt.Errorf("failed to replace %s: %w", f.path, err)
		}
	}
	return nil
}
