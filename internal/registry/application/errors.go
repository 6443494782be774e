package registry

import (
	"errors"

	"github.com/zjrosen/roster/internal/registry/domain"
)

// RegistryService errors
var (
	ErrNotFound        = errors.New("artifact not found")
	ErrNotLoaded       = errors.New("no registry loaded")
	ErrNoSourceDir     = errors.New("source directory not found")
	ErrCatalogDisabled = errors.New("build catalog is disabled")
	ErrInvalidRole     = registry.ErrInvalidRole
)
