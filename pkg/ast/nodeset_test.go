package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilNodeSet(t *testing.T) {
	var s *NodeSet

	assert.True(t, s.IsEmpty())
	assert.False(t, s.Contains(1))
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.IDs())
}

func TestNodeSetMembership(t *testing.T) {
	s := NewNodeSet(5, 2)
	s.Add(9)
	s.Add(2)

	assert.False(t, s.IsEmpty())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains(9))
	assert.False(t, s.Contains(3))
	assert.Equal(t, []NodeID{2, 5, 9}, s.IDs())
}

func TestNodeSetUnion(t *testing.T) {
	a := NewNodeSet(1, 2)
	b := NewNodeSet(2, 3)

	u := a.Union(b)
	assert.Equal(t, []NodeID{1, 2, 3}, u.IDs())
	// inputs untouched
	assert.Equal(t, 2, a.Len())

	var none *NodeSet
	assert.Equal(t, []NodeID{1, 2}, none.Union(a).IDs())
}

func TestNodeSetCovers(t *testing.T) {
	b := NewBuilder("a.ts", nil)
	stmt := b.Add(b.Root(), KindOther, "")
	inner := b.Add(stmt, KindIdentifier, "x")
	other := b.Add(b.Root(), KindIdentifier, "y")
	tree := b.Tree()

	s := NewNodeSet(stmt)
	assert.True(t, s.Covers(tree, stmt))
	assert.True(t, s.Covers(tree, inner))
	assert.False(t, s.Covers(tree, other))
	assert.False(t, NewNodeSet().Covers(tree, inner))
}
