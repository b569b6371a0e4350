package ast

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// NodeSet is a set of node identities backed by a Roaring bitmap.
// A nil *NodeSet is a valid empty set for all read operations.
type NodeSet struct {
	bitmap *roaring.Bitmap
}

// NewNodeSet returns a set holding ids.
func NewNodeSet(ids ...NodeID) *NodeSet {
	s := &NodeSet{bitmap: roaring.New()}
	for _, id := range ids {
		s.bitmap.Add(uint32(id))
	}
	return s
}

// Add inserts id.
func (s *NodeSet) Add(id NodeID) {
	s.bitmap.Add(uint32(id))
}

// Contains reports whether id is in the set.
func (s *NodeSet) Contains(id NodeID) bool {
	if s == nil {
		return false
	}
	return s.bitmap.Contains(uint32(id))
}

// Len returns the number of nodes in the set.
func (s *NodeSet) Len() int {
	if s == nil {
		return 0
	}
	return int(s.bitmap.GetCardinality())
}

// IsEmpty reports whether the set has no members.
func (s *NodeSet) IsEmpty() bool {
	return s == nil || s.bitmap.IsEmpty()
}

// Union returns a new set holding the members of s and o.
func (s *NodeSet) Union(o *NodeSet) *NodeSet {
	out := NewNodeSet()
	if s != nil {
		out.bitmap.Or(s.bitmap)
	}
	if o != nil {
		out.bitmap.Or(o.bitmap)
	}
	return out
}

// IDs returns the members in ascending order.
func (s *NodeSet) IDs() []NodeID {
	if s == nil {
		return nil
	}
	out := make([]NodeID, 0, s.Len())
	it := s.bitmap.Iterator()
	for it.HasNext() {
		out = append(out, NodeID(it.Next()))
	}
	return out
}

// Covers reports whether id or one of its ancestors in t is in the set,
// i.e. whether id lies inside a removed subtree.
func (s *NodeSet) Covers(t *Tree, id NodeID) bool {
	if s.IsEmpty() {
		return false
	}
	for cur := id; cur != NoNode; cur = t.Parent(cur) {
		if s.bitmap.Contains(uint32(cur)) {
			return true
		}
	}
	return false
}
