// Package registry implements the application layer over the artifact registry.
//
// RegistryService owns the current registry and rebuilds it from the source
// directory on demand or on file changes:
//   - Reload: discover resources, build, swap the current registry on success
//   - Dispatch: resolve a URI to its request handler, memoized per build
//   - Lookup, Current, DataSource: read the current registry
//   - History: read recorded builds from the catalog
//   - Watch, Subscribe: rebuild on change and observe reload events
//
// A failed reload never replaces the current registry. Readers never block
// on a reload in progress.
//
// # Import Aliasing
//
// This package has the same name as the domain registry package. When
// importing both, alias one of them:
//
//	import (
//	    domainreg "github.com/zjrosen/roster/internal/registry/domain"
//	    appreg "github.com/zjrosen/roster/internal/registry/application"
//	)
package registry
