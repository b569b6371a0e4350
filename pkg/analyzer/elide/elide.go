// Package elide finds import declarations, or parts of them, that became
// dead after earlier passes removed nodes from a tree.
//
// The analyzer never edits the tree. It walks the tree as if the removed
// subtrees were gone, collects the symbols that surviving references reach,
// and returns transform operations for every import binding none of them
// reach. Type-only references count as uses only when decorator metadata
// emission would reflect them at runtime.
package elide

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/panbanda/elide/pkg/ast"
	"github.com/panbanda/elide/pkg/semantic"
	"github.com/panbanda/elide/pkg/transform"
)

// Options configures an analysis.
type Options struct {
	// EmitDecoratorMetadata mirrors the compiler flag of the same name.
	// When false, type references never keep an import alive.
	EmitDecoratorMetadata bool

	// MetadataPolicy decides which type references count when
	// EmitDecoratorMetadata is set. Nil means DecoratedAnnotation.
	MetadataPolicy MetadataPolicy
}

// Option configures an Analyzer.
type Option func(*Options)

// WithDecoratorMetadata sets Options.EmitDecoratorMetadata.
func WithDecoratorMetadata(enabled bool) Option {
	return func(o *Options) {
		o.EmitDecoratorMetadata = enabled
	}
}

// WithMetadataPolicy sets Options.MetadataPolicy.
func WithMetadataPolicy(p MetadataPolicy) Option {
	return func(o *Options) {
		o.MetadataPolicy = p
	}
}

// Analyzer finds dead imports. It holds configuration only and is safe for
// concurrent use.
type Analyzer struct {
	opts Options
}

// New creates an analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(&a.opts)
	}
	if a.opts.MetadataPolicy == nil {
		a.opts.MetadataPolicy = DecoratedAnnotation
	}
	return a
}

// Options returns the analyzer's effective options.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze is shorthand for New with opts followed by Analyzer.Analyze.
func Analyze(tree *ast.Tree, removed *ast.NodeSet, resolver semantic.Resolver, opts Options) (transform.Operations, error) {
	return New(WithDecoratorMetadata(opts.EmitDecoratorMetadata), WithMetadataPolicy(opts.MetadataPolicy)).
		Analyze(tree, removed, resolver)
}

// Analyze returns the operations that remove the imports of tree made dead
// by removing the nodes in removed. The operations are in tree order.
//
// An empty removed set yields no operations. An error from resolver is
// returned as is, with no operations.
func (a *Analyzer) Analyze(tree *ast.Tree, removed *ast.NodeSet, resolver semantic.Resolver) (transform.Operations, error) {
	if removed.IsEmpty() {
		return nil, nil
	}

	w := &walker{
		tree:     tree,
		removed:  removed,
		resolver: resolver,
		opts:     &a.opts,
		used:     roaring.New(),
	}
	ast.Inspect(tree, tree.Root, w.visit)
	if w.err != nil {
		return nil, w.err
	}
	if len(w.imports) == 0 {
		return nil, nil
	}

	c := &classifier{tree: tree, resolver: resolver, used: w.used}
	var ops transform.Operations
	for _, decl := range w.imports {
		declOps, err := c.classify(decl)
		if err != nil {
			return nil, err
		}
		ops = append(ops, declOps...)
	}
	return ops, nil
}

type walker struct {
	tree     *ast.Tree
	removed  *ast.NodeSet
	resolver semantic.Resolver
	opts     *Options

	used    *roaring.Bitmap
	imports []ast.NodeID
	err     error
}

func (w *walker) visit(id ast.NodeID) bool {
	if w.err != nil || w.removed.Contains(id) {
		return false
	}

	n := w.tree.Node(id)
	switch n.Kind {
	case ast.KindHeritageClause:
		// Types named only after `implements` are never emitted.
		return !n.Flags.Has(ast.FlagImplements)

	case ast.KindImportDeclaration:
		w.imports = append(w.imports, id)
		return false

	case ast.KindTypeReference:
		if !w.opts.EmitDecoratorMetadata {
			return false
		}
		if w.opts.MetadataPolicy(MetadataContext{Tree: w.tree, Reference: id}) {
			w.use(id)
		}

	case ast.KindIdentifier, ast.KindExportSpecifier, ast.KindShorthandProperty:
		w.use(id)
	}
	return w.err == nil
}

func (w *walker) use(id ast.NodeID) {
	sym, err := w.resolver.Resolve(id)
	if err != nil {
		w.err = err
		return
	}
	if sym != nil {
		w.used.Add(uint32(sym.ID))
	}
}

type classifier struct {
	tree     *ast.Tree
	resolver semantic.Resolver
	used     *roaring.Bitmap
}

// unused reports whether binding resolves to a symbol no surviving
// reference reached. A binding without a symbol is never unused.
func (c *classifier) unused(binding ast.NodeID) (bool, error) {
	sym, err := c.resolver.Resolve(binding)
	if err != nil || sym == nil {
		return false, err
	}
	return !c.used.Contains(uint32(sym.ID)), nil
}

func (c *classifier) classify(decl ast.NodeID) (transform.Operations, error) {
	t := c.tree
	clause := t.ImportClause(decl)
	if clause == ast.NoNode {
		// import "polyfills";
		return nil, nil
	}

	if ns := t.NamespaceImport(clause); ns != ast.NoNode {
		return c.classifyNamespace(decl, clause, ns)
	}

	var (
		ops     transform.Operations
		clauses int
	)

	if named := t.NamedImports(clause); named != ast.NoNode {
		specs := t.Specifiers(named)
		clauses += len(specs)
		removedSpecs := 0
		for _, spec := range specs {
			dead, err := c.unused(spec)
			if err != nil {
				return nil, err
			}
			if !dead {
				continue
			}
			removedSpecs++
			if removedSpecs == clauses {
				// Removing the last specifier: drop the braces with it.
				ops = append(ops, transform.RemoveClause(transform.OpRemoveNamedBindings, decl, named))
			} else {
				ops = append(ops, transform.RemoveClause(transform.OpRemoveSpecifier, decl, spec))
			}
		}
	}

	if def := t.DefaultBinding(clause); def != ast.NoNode {
		clauses++
		dead, err := c.unused(def)
		if err != nil {
			return nil, err
		}
		if dead {
			ops = append(ops, transform.RemoveClause(transform.OpRemoveDefaultBinding, decl, def))
		}
	}

	switch {
	case clauses == 0:
		// import {} from "m"; binds nothing, kept like a side-effect import.
		return nil, nil
	case len(ops) == clauses:
		return transform.Operations{transform.RemoveDeclaration(decl)}, nil
	default:
		return ops, nil
	}
}

// classifyNamespace handles `import * as NS` and `import D, * as NS`.
func (c *classifier) classifyNamespace(decl, clause, ns ast.NodeID) (transform.Operations, error) {
	nsDead, err := c.unused(ns)
	if err != nil {
		return nil, err
	}

	def := c.tree.DefaultBinding(clause)
	if def == ast.NoNode {
		if nsDead {
			return transform.Operations{transform.RemoveDeclaration(decl)}, nil
		}
		return nil, nil
	}

	defDead, err := c.unused(def)
	if err != nil {
		return nil, err
	}
	switch {
	case nsDead && defDead:
		return transform.Operations{transform.RemoveDeclaration(decl)}, nil
	case nsDead:
		return transform.Operations{transform.RemoveClause(transform.OpRemoveNamespaceBinding, decl, ns)}, nil
	case defDead:
		return transform.Operations{transform.RemoveClause(transform.OpRemoveDefaultBinding, decl, def)}, nil
	}
	return nil, nil
}
