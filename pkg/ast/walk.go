package ast

// Visitor is called for each node during Inspect. Returning false skips
// the node's children.
type Visitor func(id NodeID) bool

// Inspect traverses the subtree rooted at root depth-first, in source order,
// calling fn for each node before its children.
func Inspect(t *Tree, root NodeID, fn Visitor) {
	if !t.Valid(root) {
		return
	}
	if !fn(root) {
		return
	}
	for _, c := range t.Nodes[root].Children {
		Inspect(t, c, fn)
	}
}

// Find returns every node in the subtree rooted at root matching pred, in
// traversal order.
func Find(t *Tree, root NodeID, pred func(*Node) bool) []NodeID {
	var out []NodeID
	Inspect(t, root, func(id NodeID) bool {
		if pred(&t.Nodes[id]) {
			out = append(out, id)
		}
		return true
	})
	return out
}

// FindKind returns every node of the given kind under root.
func FindKind(t *Tree, root NodeID, kind Kind) []NodeID {
	return Find(t, root, func(n *Node) bool {
		return n.Kind == kind
	})
}
