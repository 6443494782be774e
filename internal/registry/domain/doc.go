// Package registry implements the artifact registry: it classifies loaded
// types into roles, wraps them in facades and publishes them through
// per-role lookup tables.
//
// # Construction
//
// Build runs one all-or-nothing pass over a TypeLoader:
//
//  1. compile every resource in input order, failing with *CompilationError;
//  2. enumerate the loaded types;
//  3. domain pass: publish every domain type under its decapitalized name;
//  4. second pass over non-abstract types: the first matching classifier in
//     the Conventions table decides the role (handler, flow, data source,
//     service). Handlers and flows are published only when available, at most
//     one available data source is allowed (*DuplicateDataSourceError), and
//     services are published unconditionally;
//  5. materialize sorted snapshots.
//
// The two passes are independent, so one type can be both a domain artifact
// and one other role. DualRegistered reports those types.
//
// # Queries
//
// A built Registry is immutable and safe for concurrent readers. Lookups
// report absence with a boolean, never an error. DispatchURI scans the
// handler snapshot in order and returns the first handler mapping the URI.
//
// Holder publishes the current registry to readers; a rebuild constructs a
// new Registry and swaps it in.
package registry
