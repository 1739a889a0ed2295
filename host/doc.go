// Package host implements the minimal command runtime that the ensemble
// registry plugs into.
//
// This package contains:
//   - Named commands with client data and delete procs
//   - A namespace tree with ::-qualified paths
//   - Tcl-style list splitting and argument-spec parsing
//   - Stored procedures with a pluggable body evaluator
//   - Interp result state with save/restore for probing lookups
//   - The native ensemble dispatch primitive (mapping table plus
//     unknown handler)
//
// An Interp is single-threaded state: one per execution context,
// never shared across goroutines.
package host
