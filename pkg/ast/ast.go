package ast

import (
	"strings"
)

// NodeID addresses a node within a Tree.
type NodeID uint32

// NoNode is the zero NodeID. It never refers to a real node.
const NoNode NodeID = 0

// Kind classifies a node.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindProgram
	KindImportDeclaration
	KindImportClause
	KindDefaultBinding
	KindNamespaceImport
	KindNamedImports
	KindImportSpecifier
	KindExportDeclaration
	KindExportClause
	KindExportSpecifier
	KindClass
	KindHeritageClause
	KindConstructor
	KindMethod
	KindGetAccessor
	KindSetAccessor
	KindProperty
	KindParameter
	KindDecorator
	KindFunction
	KindVariableDeclarator
	KindBlock
	KindCatchClause
	KindInterface
	KindTypeAlias
	KindEnum
	KindModuleDeclaration
	KindIdentifier
	KindShorthandProperty
	KindTypeReference
	KindTypeNode
	KindOther
)

var kindNames = [...]string{
	KindInvalid:            "invalid",
	KindProgram:            "program",
	KindImportDeclaration:  "import_declaration",
	KindImportClause:       "import_clause",
	KindDefaultBinding:     "default_binding",
	KindNamespaceImport:    "namespace_import",
	KindNamedImports:       "named_imports",
	KindImportSpecifier:    "import_specifier",
	KindExportDeclaration:  "export_declaration",
	KindExportClause:       "export_clause",
	KindExportSpecifier:    "export_specifier",
	KindClass:              "class",
	KindHeritageClause:     "heritage_clause",
	KindConstructor:        "constructor",
	KindMethod:             "method",
	KindGetAccessor:        "get_accessor",
	KindSetAccessor:        "set_accessor",
	KindProperty:           "property",
	KindParameter:          "parameter",
	KindDecorator:          "decorator",
	KindFunction:           "function",
	KindVariableDeclarator: "variable_declarator",
	KindBlock:              "block",
	KindCatchClause:        "catch_clause",
	KindInterface:          "interface",
	KindTypeAlias:          "type_alias",
	KindEnum:               "enum",
	KindModuleDeclaration:  "module_declaration",
	KindIdentifier:         "identifier",
	KindShorthandProperty:  "shorthand_property",
	KindTypeReference:      "type_reference",
	KindTypeNode:           "type",
	KindOther:              "other",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsImportBinding reports whether nodes of this kind bind a local name in an
// import clause.
func (k Kind) IsImportBinding() bool {
	return k == KindDefaultBinding || k == KindNamespaceImport || k == KindImportSpecifier
}

// Flags carry per-node attributes that do not warrant their own Kind.
type Flags uint16

const (
	// FlagBinding marks an identifier that declares a name.
	FlagBinding Flags = 1 << iota
	// FlagVar marks a function-scoped (var) variable declarator.
	FlagVar
	// FlagImplements marks an "implements" heritage clause.
	FlagImplements
	// FlagTypeOnly marks "import type" declarations and specifiers.
	FlagTypeOnly
	// FlagExpression marks class and function expressions.
	FlagExpression
	// FlagReExport marks an export declaration with a "from" clause.
	FlagReExport
	// FlagScope marks nodes that open a lexical scope.
	FlagScope
)

// Has reports whether all bits of flag are set.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// Span locates a node in its source. Start and End are byte offsets; Line
// and Column are 1-based and describe Start.
type Span struct {
	Start  uint32
	End    uint32
	Line   int
	Column int
}

// Node is a single syntax tree node.
//
// Name holds the text relevant to the node's kind: the identifier for
// identifiers and bindings, the local name for import specifiers, the entity
// name ("NS.Foo") for type references, the module specifier for import and
// re-export declarations, and the callee for decorators. Alias holds the
// imported name of an aliased import specifier and the exported name of an
// aliased export specifier.
type Node struct {
	Kind     Kind
	Flags    Flags
	Parent   NodeID
	Children []NodeID
	Name     string
	Alias    string
	Span     Span
}

// Tree is an immutable syntax tree for one source file.
type Tree struct {
	Path   string
	Source []byte
	Nodes  []Node
	Root   NodeID
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.Nodes) - 1
}

// Valid reports whether id refers to a node of t.
func (t *Tree) Valid(id NodeID) bool {
	return id != NoNode && int(id) < len(t.Nodes)
}

// Node returns the node for id. NoNode and out-of-range ids return the
// zero sentinel, whose Kind is KindInvalid.
func (t *Tree) Node(id NodeID) *Node {
	if !t.Valid(id) {
		return &t.Nodes[0]
	}
	return &t.Nodes[id]
}

// Kind returns the kind of id.
func (t *Tree) Kind(id NodeID) Kind {
	return t.Node(id).Kind
}

// Parent returns the parent of id, or NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.Node(id).Parent
}

// Children returns the children of id in source order.
func (t *Tree) Children(id NodeID) []NodeID {
	return t.Node(id).Children
}

// Text returns the source text covered by id. Nodes without a source span
// (for example built by hand) return their Name.
func (t *Tree) Text(id NodeID) string {
	n := t.Node(id)
	if n.Span.End > n.Span.Start && int(n.Span.End) <= len(t.Source) {
		return string(t.Source[n.Span.Start:n.Span.End])
	}
	return n.Name
}

// Position returns the 1-based line and column of id.
func (t *Tree) Position(id NodeID) (line, column int) {
	n := t.Node(id)
	return n.Span.Line, n.Span.Column
}

// ChildOfKind returns the first child of id with the given kind.
func (t *Tree) ChildOfKind(id NodeID, kind Kind) NodeID {
	for _, c := range t.Children(id) {
		if t.Nodes[c].Kind == kind {
			return c
		}
	}
	return NoNode
}

// ChildrenOfKind returns all children of id with the given kind.
func (t *Tree) ChildrenOfKind(id NodeID, kind Kind) []NodeID {
	var out []NodeID
	for _, c := range t.Children(id) {
		if t.Nodes[c].Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Contains reports whether id is ancestor itself or lies in its subtree.
func (t *Tree) Contains(ancestor, id NodeID) bool {
	for cur := id; cur != NoNode; cur = t.Parent(cur) {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// Ancestor returns the nearest strict ancestor of id with the given kind.
func (t *Tree) Ancestor(id NodeID, kind Kind) NodeID {
	for cur := t.Parent(id); cur != NoNode; cur = t.Parent(cur) {
		if t.Nodes[cur].Kind == kind {
			return cur
		}
	}
	return NoNode
}

// ImportClause returns the binding clause of an import declaration, or
// NoNode for side-effect imports such as `import "zone.js"`.
func (t *Tree) ImportClause(decl NodeID) NodeID {
	return t.ChildOfKind(decl, KindImportClause)
}

// DefaultBinding returns the default binding of an import clause.
func (t *Tree) DefaultBinding(clause NodeID) NodeID {
	return t.ChildOfKind(clause, KindDefaultBinding)
}

// NamespaceImport returns the `* as NS` binding of an import clause.
func (t *Tree) NamespaceImport(clause NodeID) NodeID {
	return t.ChildOfKind(clause, KindNamespaceImport)
}

// NamedImports returns the `{ ... }` container of an import clause.
func (t *Tree) NamedImports(clause NodeID) NodeID {
	return t.ChildOfKind(clause, KindNamedImports)
}

// Specifiers returns the import specifiers of a named-imports container.
func (t *Tree) Specifiers(named NodeID) []NodeID {
	return t.ChildrenOfKind(named, KindImportSpecifier)
}

// ImportDeclaration returns the import declaration enclosing id, which may
// be id itself.
func (t *Tree) ImportDeclaration(id NodeID) NodeID {
	if t.Kind(id) == KindImportDeclaration {
		return id
	}
	return t.Ancestor(id, KindImportDeclaration)
}

// Decorators returns the decorators applied to id.
func (t *Tree) Decorators(id NodeID) []NodeID {
	return t.ChildrenOfKind(id, KindDecorator)
}

// IsDecorated reports whether id carries at least one decorator.
func (t *Tree) IsDecorated(id NodeID) bool {
	return t.ChildOfKind(id, KindDecorator) != NoNode
}

// EntityHead returns the first segment of a dotted entity name:
// "NS.Foo" yields "NS".
func EntityHead(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// EntityTail returns the last segment of a dotted entity name.
func EntityTail(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
