// Package loader turns Go source resources into loaded types.
//
// A Resource is one .go file inside an fs.FS. Parsing a resource yields a
// Unit holding the top-level type declarations and the methods declared in
// that file. Units are defined into a Space, an append-only store of types
// that is cumulative across compilations: defining a resource again replaces
// the declarations that came from it, but types from other resources stay.
//
// Directives are doc-comment lines on a type declaration of the form
//
//	//roster:key value
//
// and are exposed on the Type for convention matching.
package loader
