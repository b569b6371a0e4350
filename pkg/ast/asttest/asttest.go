// Package asttest builds small syntax trees for tests without going through
// the tree-sitter front end.
package asttest

import (
	"github.com/panbanda/elide/pkg/ast"
)

// Import describes an import declaration to build.
type Import struct {
	Module    string
	Default   string
	Namespace string
	Named     []string
	// Aliases maps a local name in Named to the imported name.
	Aliases map[string]string
	// SideEffect builds `import "module"` with no clause.
	SideEffect bool
}

// ImportNodes are the ids of a built import declaration.
type ImportNodes struct {
	Decl       ast.NodeID
	Clause     ast.NodeID
	Default    ast.NodeID
	Namespace  ast.NodeID
	Named      ast.NodeID
	Specifiers map[string]ast.NodeID
}

// AddImport appends an import declaration under parent.
func AddImport(b *ast.Builder, parent ast.NodeID, imp Import) ImportNodes {
	out := ImportNodes{Specifiers: make(map[string]ast.NodeID)}
	out.Decl = b.Add(parent, ast.KindImportDeclaration, imp.Module)
	if imp.SideEffect {
		return out
	}
	out.Clause = b.Add(out.Decl, ast.KindImportClause, "")
	if imp.Default != "" {
		out.Default = b.Add(out.Clause, ast.KindDefaultBinding, imp.Default)
	}
	if imp.Namespace != "" {
		out.Namespace = b.Add(out.Clause, ast.KindNamespaceImport, imp.Namespace)
	}
	if imp.Named != nil {
		out.Named = b.Add(out.Clause, ast.KindNamedImports, "")
		for _, name := range imp.Named {
			id := b.Add(out.Named, ast.KindImportSpecifier, name)
			if alias, ok := imp.Aliases[name]; ok {
				b.SetAlias(id, alias)
			}
			out.Specifiers[name] = id
		}
	}
	return out
}

// AddStatement appends an expression statement under parent that references
// each of names, and returns the statement.
func AddStatement(b *ast.Builder, parent ast.NodeID, names ...string) ast.NodeID {
	stmt := b.Add(parent, ast.KindOther, "")
	for _, name := range names {
		b.Add(stmt, ast.KindIdentifier, name)
	}
	return stmt
}

// AddDecorator appends a decorator calling name under target.
func AddDecorator(b *ast.Builder, target ast.NodeID, name string) ast.NodeID {
	dec := b.Add(target, ast.KindDecorator, name)
	b.Add(dec, ast.KindIdentifier, name)
	return dec
}

// AddClass appends a class declaration named name under parent.
func AddClass(b *ast.Builder, parent ast.NodeID, name string, decorators ...string) ast.NodeID {
	cls := b.Add(parent, ast.KindClass, "")
	b.SetFlags(cls, ast.FlagScope)
	for _, d := range decorators {
		AddDecorator(b, cls, d)
	}
	nameID := b.Add(cls, ast.KindIdentifier, name)
	b.SetFlags(nameID, ast.FlagBinding)
	return cls
}

// AddMember appends a class member of the given kind with an optional type
// annotation, returning the member and its type reference.
func AddMember(b *ast.Builder, cls ast.NodeID, kind ast.Kind, typeName string, decorators ...string) (member, ref ast.NodeID) {
	member = b.Add(cls, kind, "")
	if kind != ast.KindProperty {
		b.SetFlags(member, ast.FlagScope)
	}
	for _, d := range decorators {
		AddDecorator(b, member, d)
	}
	if typeName != "" {
		ref = b.Add(member, ast.KindTypeReference, typeName)
	}
	return member, ref
}

// AddParameter appends a parameter named name annotated with typeName under
// a function-like member.
func AddParameter(b *ast.Builder, fn ast.NodeID, name, typeName string, decorators ...string) (param, ref ast.NodeID) {
	param = b.Add(fn, ast.KindParameter, "")
	for _, d := range decorators {
		AddDecorator(b, param, d)
	}
	nameID := b.Add(param, ast.KindIdentifier, name)
	b.SetFlags(nameID, ast.FlagBinding)
	if typeName != "" {
		ref = b.Add(param, ast.KindTypeReference, typeName)
	}
	return param, ref
}
