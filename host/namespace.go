package host

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Namespace: scoping container for commands
// ---------------------------------------------------------------------------

// Namespace is a node in the interp's namespace tree. The root namespace
// has an empty name and full name "::".
type Namespace struct {
	name     string
	parent   *Namespace
	children map[string]*Namespace
	commands map[string]*Command
}

func newNamespace(name string, parent *Namespace) *Namespace {
	return &Namespace{
		name:     name,
		parent:   parent,
		children: make(map[string]*Namespace),
		commands: make(map[string]*Command),
	}
}

// Name returns the namespace's own (unqualified) name.
func (ns *Namespace) Name() string {
	return ns.name
}

// FullName returns the fully qualified name of the namespace, e.g.
// "::ensembles::3". The root namespace reports "::".
func (ns *Namespace) FullName() string {
	if ns.parent == nil {
		return "::"
	}
	parent := ns.parent.FullName()
	if parent == "::" {
		return "::" + ns.name
	}
	return parent + "::" + ns.name
}

// splitNamespacePath breaks a ::-qualified path into its components.
// A leading "::" anchors the path at the root and is not a component.
func splitNamespacePath(path string) ([]string, error) {
	trimmed := strings.TrimPrefix(path, "::")
	if trimmed == "" {
		return nil, nil
	}
	parts := strings.Split(trimmed, "::")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("malformed namespace path %q", path)
		}
	}
	return parts, nil
}

// GlobalNamespace returns the root namespace of the interp.
func (in *Interp) GlobalNamespace() *Namespace {
	return in.global
}

// FindNamespace resolves a ::-qualified path to a namespace, or nil if
// any component is missing.
func (in *Interp) FindNamespace(path string) *Namespace {
	parts, err := splitNamespacePath(path)
	if err != nil {
		return nil
	}
	ns := in.global
	for _, p := range parts {
		ns = ns.children[p]
		if ns == nil {
			return nil
		}
	}
	return ns
}

// CreateNamespace resolves a ::-qualified path, creating any missing
// components along the way.
func (in *Interp) CreateNamespace(path string) (*Namespace, error) {
	parts, err := splitNamespacePath(path)
	if err != nil {
		return nil, err
	}
	ns := in.global
	for _, p := range parts {
		child := ns.children[p]
		if child == nil {
			child = newNamespace(p, ns)
			ns.children[p] = child
		}
		ns = child
	}
	return ns, nil
}

// DeleteNamespace removes a namespace subtree, deleting every command
// it contains (running their delete procs) and unlinking it from its
// parent. Deleting the root namespace is not allowed.
func (in *Interp) DeleteNamespace(ns *Namespace) error {
	if ns == nil || ns.parent == nil {
		return fmt.Errorf("cannot delete global namespace")
	}
	// Children first so nested commands go before their containers.
	for _, child := range ns.children {
		if err := in.DeleteNamespace(child); err != nil {
			return err
		}
	}
	for name := range ns.commands {
		cmd := ns.commands[name]
		if cmd != nil {
			in.deleteCommand(cmd)
		}
	}
	delete(ns.parent.children, ns.name)
	return nil
}
