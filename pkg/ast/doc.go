// Package ast provides the syntax tree the elision pipeline operates on.
//
// A Tree is an arena: every node lives in Tree.Nodes and is addressed by its
// NodeID. Node identity is therefore an index, which lets sets of nodes (such
// as the nodes removed by earlier passes) be stored as compact bitmaps in a
// NodeSet instead of pointer sets.
//
// Trees are produced by the tree-sitter front end in pkg/parser, or built
// directly with a Builder. Once built, a Tree is read-only.
//
// Usage:
//
//	b := ast.NewBuilder("main.ts", src)
//	decl := b.Add(b.Root(), ast.KindImportDeclaration, "rxjs")
//	tree := b.Tree()
//
//	ast.Inspect(tree, tree.Root, func(id ast.NodeID) bool {
//	    fmt.Println(tree.Kind(id))
//	    return true
//	})
package ast
