package semantic

import (
	"github.com/panbanda/elide/pkg/ast"
)

const noScope int32 = -1

type scope struct {
	parent   int32
	function bool
	names    map[string]*Symbol
}

// Scopes is a lexical-scope resolver for one tree. It is built once by Bind
// and is safe for concurrent reads afterwards.
//
// Declarations are visible throughout their scope regardless of order. var
// declarations are hoisted to the nearest function (or module) scope; class,
// function, interface and type alias names are declared in the scope that
// encloses them; named class and function expressions see their own name.
type Scopes struct {
	tree     *ast.Tree
	scopes   []scope
	scopeOf  []int32
	declared map[ast.NodeID]*Symbol
	symbols  []*Symbol
}

// Bind builds the scopes of t and declares every binding in it.
func Bind(t *ast.Tree) *Scopes {
	s := &Scopes{
		tree:     t,
		scopeOf:  make([]int32, len(t.Nodes)),
		declared: make(map[ast.NodeID]*Symbol),
	}
	for i := range s.scopeOf {
		s.scopeOf[i] = noScope
	}
	if t.Valid(t.Root) {
		s.visit(t.Root, noScope)
	}
	return s
}

func (s *Scopes) visit(id ast.NodeID, cur int32) {
	n := s.tree.Node(id)
	s.scopeOf[id] = cur

	inner := cur
	if n.Flags.Has(ast.FlagScope) || cur == noScope {
		inner = s.push(cur, opensFunctionScope(n.Kind) || cur == noScope)
	}

	switch {
	case n.Kind.IsImportBinding():
		s.declare(cur, id, n.Name, SymbolImport)
	case n.Kind == ast.KindIdentifier && n.Flags.Has(ast.FlagBinding):
		s.declareBinding(id, cur)
	}

	for _, c := range n.Children {
		s.visit(c, inner)
	}
}

func opensFunctionScope(k ast.Kind) bool {
	switch k {
	case ast.KindProgram, ast.KindFunction, ast.KindMethod, ast.KindConstructor,
		ast.KindGetAccessor, ast.KindSetAccessor:
		return true
	}
	return false
}

func (s *Scopes) push(parent int32, function bool) int32 {
	s.scopes = append(s.scopes, scope{
		parent:   parent,
		function: function,
		names:    make(map[string]*Symbol),
	})
	return int32(len(s.scopes) - 1)
}

// declarer returns the node that declares the binding identifier id,
// skipping destructuring pattern containers.
func (s *Scopes) declarer(id ast.NodeID) ast.NodeID {
	t := s.tree
	owner := t.Parent(id)
	for owner != ast.NoNode && t.Kind(owner) == ast.KindOther && !t.Node(owner).Flags.Has(ast.FlagScope) {
		owner = t.Parent(owner)
	}
	return owner
}

func (s *Scopes) declareBinding(id ast.NodeID, cur int32) {
	t := s.tree
	owner := s.declarer(id)
	on := t.Node(owner)
	target := cur
	kind := SymbolVariable

	switch on.Kind {
	case ast.KindClass:
		kind = SymbolClass
		target = s.outer(on, cur)
	case ast.KindFunction:
		kind = SymbolFunction
		target = s.outer(on, cur)
	case ast.KindInterface, ast.KindTypeAlias:
		kind = SymbolType
		target = s.outer(on, cur)
	case ast.KindVariableDeclarator:
		if on.Flags.Has(ast.FlagVar) {
			target = s.functionScope(cur)
		}
	case ast.KindParameter:
		kind = SymbolParameter
	case ast.KindEnum:
		kind = SymbolEnum
	case ast.KindModuleDeclaration:
		kind = SymbolNamespace
	}

	s.declare(target, id, t.Node(id).Name, kind)
}

// outer returns the scope a declaration's own name belongs to. The name
// node sits inside the scope the declaration opened, so declarations go one
// level out; expressions keep their name to themselves.
func (s *Scopes) outer(owner *ast.Node, cur int32) int32 {
	if owner.Flags.Has(ast.FlagExpression) || !owner.Flags.Has(ast.FlagScope) || cur == noScope {
		return cur
	}
	if p := s.scopes[cur].parent; p != noScope {
		return p
	}
	return cur
}

func (s *Scopes) functionScope(cur int32) int32 {
	for sc := cur; sc != noScope; sc = s.scopes[sc].parent {
		if s.scopes[sc].function {
			return sc
		}
	}
	return cur
}

func (s *Scopes) declare(sc int32, id ast.NodeID, name string, kind SymbolKind) {
	if sc == noScope || name == "" {
		return
	}
	names := s.scopes[sc].names
	if existing, ok := names[name]; ok {
		s.declared[id] = existing
		return
	}
	sym := &Symbol{
		ID:   SymbolID(len(s.symbols) + 1),
		Name: name,
		Kind: kind,
		Decl: id,
	}
	names[name] = sym
	s.symbols = append(s.symbols, sym)
	s.declared[id] = sym
}

func (s *Scopes) lookup(sc int32, name string, types bool) *Symbol {
	for ; sc != noScope; sc = s.scopes[sc].parent {
		if sym, ok := s.scopes[sc].names[name]; ok && (!types || sym.Kind.DeclaresType()) {
			return sym
		}
	}
	return nil
}

// Resolve implements Resolver.
//
// Identifiers and shorthand properties resolve by name, type references by
// the head of their entity name (skipping symbols that only declare values), export specifiers by their local name
// (re-exports have no local target), and binding nodes to the symbol they
// declare. Everything else resolves to nil.
func (s *Scopes) Resolve(id ast.NodeID) (*Symbol, error) {
	t := s.tree
	if !t.Valid(id) {
		return nil, nil
	}
	if sym, ok := s.declared[id]; ok {
		return sym, nil
	}

	n := t.Node(id)
	var name string
	types := false
	switch n.Kind {
	case ast.KindIdentifier, ast.KindShorthandProperty:
		name = n.Name
	case ast.KindTypeReference:
		name = ast.EntityHead(n.Name)
		types = true
	case ast.KindExportSpecifier:
		if decl := t.Ancestor(id, ast.KindExportDeclaration); t.Node(decl).Flags.Has(ast.FlagReExport) {
			return nil, nil
		}
		name = n.Name
	default:
		return nil, nil
	}
	return s.lookup(s.scopeOf[id], name, types), nil
}

// Lookup resolves name in the module scope.
func (s *Scopes) Lookup(name string) *Symbol {
	if len(s.scopes) == 0 {
		return nil
	}
	return s.scopes[0].names[name]
}

// Symbols returns every declared symbol in declaration order.
func (s *Scopes) Symbols() []*Symbol {
	return s.symbols
}
