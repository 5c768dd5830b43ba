package recon

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreList filters instances out of reconciliation by glob patterns over
// their slash-joined filesystem paths. An ignored instance and its whole
// subtree are excluded from matching and produce no edits.
type IgnoreList struct {
	patterns []string
}

// NewIgnoreList validates the patterns up front so a malformed project file
// fails at load, not mid-reconcile.
func NewIgnoreList(patterns []string) (*IgnoreList, error) {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	return &IgnoreList{patterns: patterns}, nil
}

// Match reports whether the slash-separated path is ignored.
func (l *IgnoreList) Match(fsPath string) bool {
	if l == nil {
		return false
	}
	for _, pattern := range l.patterns {
		if ok, _ := doublestar.Match(pattern, fsPath); ok {
			return true
		}
	}
	return false
}
