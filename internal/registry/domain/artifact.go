package registry

import "github.com/zjrosen/roster/internal/loader"

// Artifact is a facade over a loaded type, produced by a role constructor.
type Artifact interface {
	// Name is the logical name, e.g. "Book" for BookController.
	Name() string
	// FullName is the natural fully qualified name, e.g. "app.BookController".
	FullName() string
	// Available reports whether the artifact may be published.
	Available() bool
	// Type is the loaded type behind the facade.
	Type() *loader.Type
}

// Handler is a request-handler artifact.
type Handler interface {
	Artifact
	// MapsToURI reports whether the handler serves uri.
	MapsToURI(uri string) bool
	// URIs lists the exact URIs and patterns the handler maps to.
	URIs() []string
}
