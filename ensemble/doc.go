// Package ensemble implements hierarchical compound commands for a
// host command runtime: an "ensemble" is a named command whose
// subcommands ("parts") live in a sorted registry supporting lookup by
// unambiguous prefix, nested sub-ensembles, generated usage summaries,
// and a small declarative language for defining an ensemble's parts in
// one shot.
//
// A Registry is bound to a single host.Interp and, like the interp, is
// single-threaded state: callers serialize access per instance.
package ensemble
