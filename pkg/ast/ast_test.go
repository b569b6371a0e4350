package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildImportTree(t *testing.T) (*Tree, map[string]NodeID) {
	t.Helper()
	src := []byte(`import D, { A, B } from "m";`)
	b := NewBuilder("a.ts", src)
	ids := map[string]NodeID{}
	ids["decl"] = b.Add(b.Root(), KindImportDeclaration, "m")
	ids["clause"] = b.Add(ids["decl"], KindImportClause, "")
	ids["D"] = b.Add(ids["clause"], KindDefaultBinding, "D")
	ids["named"] = b.Add(ids["clause"], KindNamedImports, "")
	ids["A"] = b.Add(ids["named"], KindImportSpecifier, "A")
	ids["B"] = b.Add(ids["named"], KindImportSpecifier, "B")
	b.SetSpan(ids["A"], Span{Start: 12, End: 13, Line: 1, Column: 13})
	return b.Tree(), ids
}

func TestBuilderLinksParentsAndChildren(t *testing.T) {
	tree, ids := buildImportTree(t)

	assert.Equal(t, 6, tree.Len())
	assert.Equal(t, tree.Root, tree.Parent(ids["decl"]))
	assert.Equal(t, []NodeID{ids["A"], ids["B"]}, tree.Children(ids["named"]))
	assert.Equal(t, KindProgram, tree.Kind(tree.Root))
	assert.True(t, tree.Node(tree.Root).Flags.Has(FlagScope))
}

func TestImportAccessors(t *testing.T) {
	tree, ids := buildImportTree(t)

	clause := tree.ImportClause(ids["decl"])
	require.Equal(t, ids["clause"], clause)
	assert.Equal(t, ids["D"], tree.DefaultBinding(clause))
	assert.Equal(t, NoNode, tree.NamespaceImport(clause))
	assert.Equal(t, ids["named"], tree.NamedImports(clause))
	assert.Equal(t, []NodeID{ids["A"], ids["B"]}, tree.Specifiers(ids["named"]))
	assert.Equal(t, ids["decl"], tree.ImportDeclaration(ids["B"]))
	assert.Equal(t, ids["decl"], tree.ImportDeclaration(ids["decl"]))
}

func TestTextAndPosition(t *testing.T) {
	tree, ids := buildImportTree(t)

	assert.Equal(t, "A", tree.Text(ids["A"]))
	// no span: falls back to the name
	assert.Equal(t, "B", tree.Text(ids["B"]))

	line, col := tree.Position(ids["A"])
	assert.Equal(t, 1, line)
	assert.Equal(t, 13, col)
}

func TestInvalidNodes(t *testing.T) {
	tree, _ := buildImportTree(t)

	assert.False(t, tree.Valid(NoNode))
	assert.False(t, tree.Valid(NodeID(999)))
	assert.Equal(t, KindInvalid, tree.Kind(NodeID(999)))
	assert.Nil(t, tree.Children(NoNode))
}

func TestContainsAndAncestor(t *testing.T) {
	tree, ids := buildImportTree(t)

	assert.True(t, tree.Contains(ids["decl"], ids["A"]))
	assert.True(t, tree.Contains(ids["A"], ids["A"]))
	assert.False(t, tree.Contains(ids["A"], ids["decl"]))
	assert.Equal(t, ids["clause"], tree.Ancestor(ids["A"], KindImportClause))
	assert.Equal(t, NoNode, tree.Ancestor(ids["A"], KindClass))
}

func TestInspectOrderAndSkip(t *testing.T) {
	tree, ids := buildImportTree(t)

	var visited []NodeID
	Inspect(tree, tree.Root, func(id NodeID) bool {
		visited = append(visited, id)
		return id != ids["named"]
	})
	assert.Equal(t, []NodeID{tree.Root, ids["decl"], ids["clause"], ids["D"], ids["named"]}, visited)

	specs := FindKind(tree, tree.Root, KindImportSpecifier)
	assert.Equal(t, []NodeID{ids["A"], ids["B"]}, specs)
}

func TestEntityName(t *testing.T) {
	tests := []struct {
		name string
		head string
		tail string
	}{
		{"Foo", "Foo", "Foo"},
		{"NS.Foo", "NS", "Foo"},
		{"a.b.C", "a", "C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.head, EntityHead(tt.name))
			assert.Equal(t, tt.tail, EntityTail(tt.name))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "import_specifier", KindImportSpecifier.String())
	assert.Equal(t, "unknown", Kind(250).String())
	assert.True(t, KindNamespaceImport.IsImportBinding())
	assert.False(t, KindNamedImports.IsImportBinding())
}
