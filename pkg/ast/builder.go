package ast

// Builder constructs a Tree node by node. Nodes must be added parent first;
// each new node is appended to its parent's children, so children end up in
// the order they were added.
type Builder struct {
	tree *Tree
}

// NewBuilder starts a tree for path whose root is a KindProgram node.
func NewBuilder(path string, source []byte) *Builder {
	t := &Tree{
		Path:   path,
		Source: source,
		Nodes:  make([]Node, 1, 64),
	}
	t.Nodes = append(t.Nodes, Node{Kind: KindProgram, Flags: FlagScope})
	t.Root = 1
	if len(source) > 0 {
		t.Nodes[1].Span = Span{End: uint32(len(source)), Line: 1, Column: 1}
	}
	return &Builder{tree: t}
}

// Root returns the program node.
func (b *Builder) Root() NodeID {
	return b.tree.Root
}

// Add appends a node of the given kind and name under parent.
func (b *Builder) Add(parent NodeID, kind Kind, name string) NodeID {
	return b.AddNode(parent, Node{Kind: kind, Name: name})
}

// AddNode appends n under parent. n.Parent and n.Children are overwritten.
func (b *Builder) AddNode(parent NodeID, n Node) NodeID {
	id := NodeID(len(b.tree.Nodes))
	n.Parent = parent
	n.Children = nil
	b.tree.Nodes = append(b.tree.Nodes, n)
	if parent != NoNode {
		p := &b.tree.Nodes[parent]
		p.Children = append(p.Children, id)
	}
	return id
}

// Node gives mutable access to a node while the tree is being built.
func (b *Builder) Node(id NodeID) *Node {
	return &b.tree.Nodes[id]
}

// SetFlags adds flags to id.
func (b *Builder) SetFlags(id NodeID, flags Flags) {
	b.tree.Nodes[id].Flags |= flags
}

// SetAlias sets the alias of id.
func (b *Builder) SetAlias(id NodeID, alias string) {
	b.tree.Nodes[id].Alias = alias
}

// SetSpan sets the source span of id.
func (b *Builder) SetSpan(id NodeID, span Span) {
	b.tree.Nodes[id].Span = span
}

// Tree returns the built tree. The builder must not be used afterwards.
func (b *Builder) Tree() *Tree {
	t := b.tree
	b.tree = nil
	return t
}
