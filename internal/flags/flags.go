// Package flags switches optional registry behaviour on and off from the
// config file. A flag the config does not name reads as disabled.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/roster/internal/log"
)

// Known flags.
const (
	// FlagStrictNames fails a build when two artifacts of one role share a key.
	FlagStrictNames = "strict-names"

	// FlagDispatchCache memoizes URI dispatch per build.
	FlagDispatchCache = "dispatch-cache"

	// FlagCatalog records every successful watch build in the SQLite catalog.
	FlagCatalog = "catalog"
)

// Defaults returns the flag values used when the config does not set them.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagStrictNames:   false,
		FlagDispatchCache: true,
		FlagCatalog:       true,
	}
}

// Known reports whether name is one of the flags roster reads.
func Known(name string) bool {
	_, ok := Defaults()[name]
	return ok
}

// Registry is an immutable set of flag values.
type Registry struct {
	flags map[string]bool
}

// New copies values into a Registry. nil means every flag is off.
func New(values map[string]bool) *Registry {
	r := &Registry{flags: maps.Clone(values)}
	if r.flags == nil {
		r.flags = make(map[string]bool)
	}
	log.Debug(log.CatConfig, "feature flags", "flags", r.flags)
	return r
}

// Enabled reports whether name is on. Unknown names and a nil Registry
// read as off.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	return r.flags[name]
}

// All returns a copy of every value, never nil.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return make(map[string]bool)
	}
	return maps.Clone(r.flags)
}

// Names returns the flag names in the registry, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.flags))
}
