package conventions

import (
	"slices"

	"github.com/zjrosen/roster/internal/loader"
)

// Flow is a multi-step interaction. Steps are its exported methods.
type Flow struct {
	artifact
	steps []string
}

// NewFlow builds the flow facade for t. A flow without steps is unavailable.
func NewFlow(t *loader.Type) (*Flow, error) {
	f := &Flow{artifact: newArtifact(t, SuffixFlow), steps: exportedMethods(t)}
	if len(f.steps) == 0 {
		f.available = false
	}
	return f, nil
}

// Steps lists the step names in declaration order.
func (f *Flow) Steps() []string { return slices.Clone(f.steps) }

// Start is the first step, empty for an unavailable flow.
func (f *Flow) Start() string {
	if len(f.steps) == 0 {
		return ""
	}
	return f.steps[0]
}
