// Package transform defines the removal operations emitted by analysis
// passes. Passes never mutate a tree; they describe edits as Operations which
// a later step merges and applies once.
package transform

import (
	"fmt"
	"sort"

	"github.com/panbanda/elide/pkg/ast"
)

// OpKind distinguishes what an Operation removes.
type OpKind uint8

const (
	// OpRemoveNode removes an arbitrary node. Emitted by upstream passes.
	OpRemoveNode OpKind = iota
	// OpRemoveDeclaration removes a whole import declaration.
	OpRemoveDeclaration
	// OpRemoveSpecifier removes one named import specifier.
	OpRemoveSpecifier
	// OpRemoveNamedBindings removes the `{ ... }` container of an import.
	OpRemoveNamedBindings
	// OpRemoveDefaultBinding removes the default binding of an import.
	OpRemoveDefaultBinding
	// OpRemoveNamespaceBinding removes the `* as NS` binding of an import
	// that also has a default binding.
	OpRemoveNamespaceBinding
)

var opKindNames = [...]string{
	OpRemoveNode:             "remove-node",
	OpRemoveDeclaration:      "remove-declaration",
	OpRemoveSpecifier:        "remove-specifier",
	OpRemoveNamedBindings:    "remove-named-bindings",
	OpRemoveDefaultBinding:   "remove-default-binding",
	OpRemoveNamespaceBinding: "remove-namespace-binding",
}

// String returns the kebab-case name of the kind.
func (k OpKind) String() string {
	if int(k) < len(opKindNames) {
		return opKindNames[k]
	}
	return fmt.Sprintf("op(%d)", uint8(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k OpKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsSpecifierLevel reports whether the kind removes part of an import
// declaration rather than all of it.
func (k OpKind) IsSpecifierLevel() bool {
	switch k {
	case OpRemoveSpecifier, OpRemoveNamedBindings, OpRemoveDefaultBinding, OpRemoveNamespaceBinding:
		return true
	}
	return false
}

// Operation is an instruction to remove Target from the tree. Declaration is
// the import declaration the target belongs to, or ast.NoNode for operations
// that are not about imports.
type Operation struct {
	Kind        OpKind
	Target      ast.NodeID
	Declaration ast.NodeID
}

// RemoveNode returns a generic removal of id.
func RemoveNode(id ast.NodeID) Operation {
	return Operation{Kind: OpRemoveNode, Target: id}
}

// RemoveDeclaration returns the removal of a whole import declaration.
func RemoveDeclaration(decl ast.NodeID) Operation {
	return Operation{Kind: OpRemoveDeclaration, Target: decl, Declaration: decl}
}

// RemoveClause returns a partial removal of target from decl.
func RemoveClause(kind OpKind, decl, target ast.NodeID) Operation {
	return Operation{Kind: kind, Target: target, Declaration: decl}
}

func (o Operation) String() string {
	return fmt.Sprintf("%s(%d)", o.Kind, o.Target)
}

// Operations is an ordered list of operations.
type Operations []Operation

// Targets returns the set of nodes the operations remove. It is the
// removed-node set handed to the next pass.
func (ops Operations) Targets() *ast.NodeSet {
	s := ast.NewNodeSet()
	for _, op := range ops {
		s.Add(op.Target)
	}
	return s
}

// Count returns the number of operations of the given kind.
func (ops Operations) Count(kind OpKind) int {
	n := 0
	for _, op := range ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Merge combines operation lists computed against the same tree into the
// single edit list to apply. Operations with the same target are kept once
// (the first wins) and operations whose target lies inside another
// operation's target are dropped. The result is ordered by source offset,
// then by node id.
func Merge(t *ast.Tree, lists ...Operations) Operations {
	var all Operations
	for _, l := range lists {
		all = append(all, l...)
	}
	if len(all) == 0 {
		return nil
	}

	targets := all.Targets()
	seen := ast.NewNodeSet()
	out := make(Operations, 0, len(all))
	for _, op := range all {
		if seen.Contains(op.Target) {
			continue
		}
		if targets.Covers(t, t.Parent(op.Target)) {
			continue
		}
		seen.Add(op.Target)
		out = append(out, op)
	}

	sort.SliceStable(out, func(i, j int) bool {
		si, sj := t.Node(out[i].Target).Span.Start, t.Node(out[j].Target).Span.Start
		if si != sj {
			return si < sj
		}
		return out[i].Target < out[j].Target
	})
	return out
}
