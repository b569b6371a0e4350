// Package semantic resolves identifier-like nodes to the symbols they refer
// to. The elision analyzer consumes resolution through the Resolver
// interface only; Scopes is the lexical-scope implementation used by the
// CLI pipeline.
package semantic

import (
	"github.com/panbanda/elide/pkg/ast"
)

// SymbolID identifies a symbol within one resolver. IDs are dense and start
// at 1, so sets of symbols can be kept as bitmaps.
type SymbolID uint32

// SymbolKind classifies what declared a symbol.
type SymbolKind string

const (
	SymbolImport    SymbolKind = "import"
	SymbolVariable  SymbolKind = "variable"
	SymbolFunction  SymbolKind = "function"
	SymbolClass     SymbolKind = "class"
	SymbolParameter SymbolKind = "parameter"
	SymbolType      SymbolKind = "type"
	SymbolEnum      SymbolKind = "enum"
	SymbolNamespace SymbolKind = "namespace"
)

// DeclaresType reports whether a symbol of kind k can be named in a type
// position. Variables, parameters and functions live in the value space only.
func (k SymbolKind) DeclaresType() bool {
	switch k {
	case SymbolVariable, SymbolParameter, SymbolFunction:
		return false
	}
	return true
}

// Symbol is a declaration site. Every reference resolving to the same
// declaration yields the same *Symbol.
type Symbol struct {
	ID   SymbolID
	Name string
	Kind SymbolKind
	Decl ast.NodeID
}

// Resolver maps an identifier-like node to its symbol. A nil symbol with a
// nil error means the node does not resolve to anything.
type Resolver interface {
	Resolve(id ast.NodeID) (*Symbol, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(id ast.NodeID) (*Symbol, error)

// Resolve calls f(id).
func (f ResolverFunc) Resolve(id ast.NodeID) (*Symbol, error) {
	return f(id)
}
