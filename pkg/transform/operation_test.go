package transform

import (
	"testing"

	"github.com/panbanda/elide/pkg/ast"
	"github.com/panbanda/elide/pkg/ast/asttest"
	"github.com/stretchr/testify/assert"
)

func TestOpKindString(t *testing.T) {
	tests := []struct {
		kind OpKind
		want string
	}{
		{OpRemoveNode, "remove-node"},
		{OpRemoveDeclaration, "remove-declaration"},
		{OpRemoveSpecifier, "remove-specifier"},
		{OpRemoveNamedBindings, "remove-named-bindings"},
		{OpRemoveDefaultBinding, "remove-default-binding"},
		{OpRemoveNamespaceBinding, "remove-namespace-binding"},
		{OpKind(42), "op(42)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
			text, err := tt.kind.MarshalText()
			assert.NoError(t, err)
			assert.Equal(t, tt.want, string(text))
		})
	}
}

func TestIsSpecifierLevel(t *testing.T) {
	assert.True(t, OpRemoveSpecifier.IsSpecifierLevel())
	assert.True(t, OpRemoveNamedBindings.IsSpecifierLevel())
	assert.True(t, OpRemoveDefaultBinding.IsSpecifierLevel())
	assert.True(t, OpRemoveNamespaceBinding.IsSpecifierLevel())
	assert.False(t, OpRemoveDeclaration.IsSpecifierLevel())
	assert.False(t, OpRemoveNode.IsSpecifierLevel())
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, Operation{Kind: OpRemoveNode, Target: 4}, RemoveNode(4))
	assert.Equal(t, Operation{Kind: OpRemoveDeclaration, Target: 2, Declaration: 2}, RemoveDeclaration(2))
	assert.Equal(t,
		Operation{Kind: OpRemoveSpecifier, Target: 7, Declaration: 2},
		RemoveClause(OpRemoveSpecifier, 2, 7))
	assert.Equal(t, "remove-specifier(7)", RemoveClause(OpRemoveSpecifier, 2, 7).String())
}

func TestTargetsAndCount(t *testing.T) {
	ops := Operations{RemoveNode(3), RemoveDeclaration(5), RemoveNode(9)}

	assert.Equal(t, []ast.NodeID{3, 5, 9}, ops.Targets().IDs())
	assert.Equal(t, 2, ops.Count(OpRemoveNode))
	assert.Equal(t, 0, ops.Count(OpRemoveSpecifier))
}

func TestMerge(t *testing.T) {
	b := ast.NewBuilder("a.ts", nil)
	imp := asttest.AddImport(b, b.Root(), asttest.Import{Module: "m", Default: "D", Named: []string{"A", "B"}})
	stmt := asttest.AddStatement(b, b.Root(), "x")
	tree := b.Tree()

	a := imp.Specifiers["A"]
	bb := imp.Specifiers["B"]

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, Merge(tree))
		assert.Nil(t, Merge(tree, nil, Operations{}))
	})

	t.Run("drops nested and duplicate targets", func(t *testing.T) {
		elision := Operations{
			RemoveClause(OpRemoveSpecifier, imp.Decl, a),
			RemoveClause(OpRemoveNamedBindings, imp.Decl, imp.Named),
		}
		upstream := Operations{RemoveNode(stmt), RemoveNode(stmt)}

		got := Merge(tree, upstream, elision)
		assert.Equal(t, Operations{
			RemoveClause(OpRemoveNamedBindings, imp.Decl, imp.Named),
			RemoveNode(stmt),
		}, got)
	})

	t.Run("keeps siblings", func(t *testing.T) {
		got := Merge(tree, Operations{
			RemoveClause(OpRemoveSpecifier, imp.Decl, bb),
			RemoveClause(OpRemoveSpecifier, imp.Decl, a),
		})
		// no spans: ordered by node id
		assert.Equal(t, Operations{
			RemoveClause(OpRemoveSpecifier, imp.Decl, a),
			RemoveClause(OpRemoveSpecifier, imp.Decl, bb),
		}, got)
	})

	t.Run("whole declaration absorbs its clauses", func(t *testing.T) {
		got := Merge(tree, Operations{
			RemoveClause(OpRemoveDefaultBinding, imp.Decl, imp.Default),
			RemoveDeclaration(imp.Decl),
		})
		assert.Equal(t, Operations{RemoveDeclaration(imp.Decl)}, got)
	})
}
