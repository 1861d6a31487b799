package owner

import (
	"fmt"
	"sync"
)

// Warning records a non-fatal ingestion problem surfaced to the reporting
// layer.
type Warning struct {
	Path    string
	Message string
}

// BatchState tracks claimed owner identities and accumulated warnings for
// one batch run. It is created at batch start and discarded at batch end;
// there is no process-wide registry. Claims are serialized so identity
// assignment is deterministic for a given entry-discovery order.
type BatchState struct {
	mu       sync.Mutex
	claimed  map[string]map[string]struct{}
	warnings []Warning
}

// NewBatchState returns an empty per-run state.
func NewBatchState() *BatchState {
	return &BatchState{claimed: make(map[string]map[string]struct{})}
}

// Claim reserves name within scope (one scope per modality), appending an
// incrementing " (n)" suffix until the identity is unique. The returned
// identity is permanently reserved for the batch.
func (s *BatchState) Claim(scope, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.claimed[scope]
	if set == nil {
		set = make(map[string]struct{})
		s.claimed[scope] = set
	}

	candidate := name
	for n := 1; ; n++ {
		if _, taken := set[candidate]; !taken {
			set[candidate] = struct{}{}
			return candidate
		}
		candidate = fmt.Sprintf("%s (%d)", name, n)
	}
}

// Warn records a non-fatal problem with one entry.
func (s *BatchState) Warn(path, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, Warning{Path: path, Message: message})
}

// Warnings returns a copy of the accumulated warnings.
func (s *BatchState) Warnings() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Warning(nil), s.warnings...)
}
