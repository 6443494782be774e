package registry

import (
	"errors"
	"fmt"
)

// Registry errors
var (
	ErrInvalidRole         = errors.New("invalid role")
	ErrNilLoader           = errors.New("type loader cannot be nil")
	ErrInvalidConventions  = errors.New("invalid conventions")
	ErrNotHandler          = errors.New("handler constructor returned an artifact without URI mapping")
	ErrNilArtifact         = errors.New("constructor returned no artifact")
	ErrDuplicateDataSource = errors.New("more than one active data source is configured")
	ErrBuildNotFound       = errors.New("build not found")
)

// CompilationError reports a resource that failed to compile.
type CompilationError struct {
	Resource string
	Err      error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("compilation error in resource [%s]: %v", e.Resource, e.Err)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// DuplicateDataSourceError reports a second available data source.
type DuplicateDataSourceError struct {
	Existing    string // full name of the data source adopted first
	Conflicting string // full name of the data source that triggered the failure
}

func (e *DuplicateDataSourceError) Error() string {
	return fmt.Sprintf("%s: %s and %s are both available", ErrDuplicateDataSource, e.Existing, e.Conflicting)
}

// Is matches ErrDuplicateDataSource.
func (e *DuplicateDataSourceError) Is(target error) bool {
	return target == ErrDuplicateDataSource
}

// DuplicateNameError reports a key published twice within one build when
// strict names are enabled.
type DuplicateNameError struct {
	Role        Role
	Key         string
	Existing    string // qualified type name already published under Key
	Conflicting string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate %s name %q: %s conflicts with %s", e.Role, e.Key, e.Conflicting, e.Existing)
}
