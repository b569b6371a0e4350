package parser

import (
	"strings"

	"github.com/panbanda/elide/pkg/ast"
	sitter "github.com/smacker/go-tree-sitter"
)

// leafTypes carry nothing the analysis reads; they are dropped.
var leafTypes = map[string]bool{
	"comment":                     true,
	"html_comment":                true,
	"hash_bang_line":              true,
	"property_identifier":         true,
	"private_property_identifier": true,
	"statement_identifier":        true,
	"string":                      true,
	"string_fragment":             true,
	"escape_sequence":             true,
	"number":                      true,
	"regex":                       true,
	"true":                        true,
	"false":                       true,
	"null":                        true,
	"undefined":                   true,
	"this":                        true,
	"super":                       true,
	"this_type":                   true,
	"predefined_type":             true,
	"literal_type":                true,
	"existential_type":            true,
	"accessibility_modifier":      true,
	"override_modifier":           true,
	"meta_property":               true,
	"jsx_text":                    true,
}

// typeNodeTypes are type syntax containers. Their children are converted so
// type references nested inside them stay visible.
var typeNodeTypes = map[string]bool{
	"union_type":            true,
	"intersection_type":     true,
	"array_type":            true,
	"tuple_type":            true,
	"function_type":         true,
	"constructor_type":      true,
	"object_type":           true,
	"parenthesized_type":    true,
	"conditional_type":      true,
	"lookup_type":           true,
	"index_type_query":      true,
	"readonly_type":         true,
	"type_arguments":        true,
	"infer_type":            true,
	"template_literal_type": true,
	"optional_type":         true,
	"rest_type":             true,
	"type_predicate":        true,
	"type_query":            true,
}

// Convert maps a tree-sitter concrete syntax tree onto an ast.Tree.
//
// Type annotations are transparent: the annotated type becomes a direct
// child of the declaration it annotates, so a type reference's parent tells
// which declaration it describes. Decorators that the grammar places beside
// a class member are moved onto that member.
func Convert(root *sitter.Node, source []byte, path string) *ast.Tree {
	c := &converter{src: source, b: ast.NewBuilder(path, source)}
	rootID := c.b.Root()
	if root != nil {
		c.b.SetSpan(rootID, c.span(root))
		c.children(rootID, root)
	}
	return c.b.Tree()
}

type converter struct {
	src []byte
	b   *ast.Builder
}

func (c *converter) text(n *sitter.Node) string {
	return GetNodeText(n, c.src)
}

func (c *converter) span(n *sitter.Node) ast.Span {
	p := n.StartPoint()
	return ast.Span{
		Start:  n.StartByte(),
		End:    n.EndByte(),
		Line:   int(p.Row) + 1,
		Column: int(p.Column) + 1,
	}
}

func (c *converter) add(parent ast.NodeID, kind ast.Kind, n *sitter.Node, name string) ast.NodeID {
	id := c.b.Add(parent, kind, name)
	c.b.SetSpan(id, c.span(n))
	return id
}

func (c *converter) children(parent ast.NodeID, n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c.node(parent, n.NamedChild(i))
	}
}

// same reports whether a and b are the same concrete node.
func same(a, b *sitter.Node) bool {
	return a != nil && b != nil &&
		a.StartByte() == b.StartByte() &&
		a.EndByte() == b.EndByte() &&
		a.Type() == b.Type()
}

// hasToken returns the first of tokens found among n's anonymous children,
// or "" when none is present.
func hasToken(n *sitter.Node, tokens ...string) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		if ch.IsNamed() {
			continue
		}
		for _, tok := range tokens {
			if ch.Type() == tok {
				return tok
			}
		}
	}
	return ""
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func unquote(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}

func (c *converter) node(parent ast.NodeID, n *sitter.Node) {
	if n == nil {
		return
	}
	typ := n.Type()
	if leafTypes[typ] {
		return
	}

	switch typ {
	case "import_statement":
		c.importStatement(parent, n)
	case "export_statement":
		c.exportStatement(parent, n)
	case "import_alias":
		c.importAlias(parent, n)
	case "class_declaration", "abstract_class_declaration", "class":
		c.class(parent, n, nil)
	case "function_declaration", "generator_function_declaration", "function_signature",
		"function_expression", "function", "generator_function", "arrow_function":
		c.function(parent, n)
	case "method_definition", "method_signature", "abstract_method_signature":
		c.method(parent, n, nil)
	case "public_field_definition", "field_definition":
		c.property(parent, n, nil)
	case "formal_parameters":
		c.parameters(parent, n)
	case "required_parameter", "optional_parameter":
		c.parameter(parent, n)
	case "type_annotation", "opting_type_annotation", "omitting_type_annotation", "asserts_annotation":
		c.children(parent, n)
	case "type_identifier", "generic_type", "nested_type_identifier":
		c.typeReference(parent, n)
	case "type_parameter":
		c.typeParameter(parent, n)
	case "variable_declaration", "lexical_declaration":
		c.declarations(parent, n)
	case "variable_declarator":
		c.declarator(parent, n, false)
	case "statement_block", "class_static_block", "switch_body":
		id := c.add(parent, ast.KindBlock, n, "")
		c.b.SetFlags(id, ast.FlagScope)
		c.children(id, n)
	case "for_statement", "for_in_statement":
		c.forStatement(parent, n)
	case "catch_clause":
		c.catchClause(parent, n)
	case "identifier":
		c.add(parent, ast.KindIdentifier, n, c.text(n))
	case "shorthand_property_identifier":
		c.add(parent, ast.KindShorthandProperty, n, c.text(n))
	case "decorator":
		c.decorator(parent, n)
	case "interface_declaration":
		c.interfaceDecl(parent, n)
	case "type_alias_declaration":
		c.named(parent, n, ast.KindTypeAlias, ast.FlagScope)
	case "enum_declaration":
		c.named(parent, n, ast.KindEnum, 0)
	case "internal_module", "module":
		c.namespace(parent, n)
	default:
		kind := ast.KindOther
		if typeNodeTypes[typ] {
			kind = ast.KindTypeNode
		}
		id := c.add(parent, kind, n, "")
		c.children(id, n)
	}
}

func (c *converter) binding(parent ast.NodeID, n *sitter.Node) ast.NodeID {
	id := c.add(parent, ast.KindIdentifier, n, c.text(n))
	c.b.SetFlags(id, ast.FlagBinding)
	return id
}

func (c *converter) importStatement(parent ast.NodeID, n *sitter.Node) {
	var clause, require *sitter.Node
	source := n.ChildByFieldName("source")
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		switch ch.Type() {
		case "import_clause":
			clause = ch
		case "import_require_clause":
			require = ch
		case "string":
			if source == nil {
				source = ch
			}
		}
	}

	if require != nil {
		// import x = require("y") declares a plain binding.
		id := c.add(parent, ast.KindOther, n, "")
		for i := 0; i < int(require.NamedChildCount()); i++ {
			if ch := require.NamedChild(i); ch.Type() == "identifier" {
				c.binding(id, ch)
			}
		}
		return
	}

	decl := c.add(parent, ast.KindImportDeclaration, n, unquote(c.text(source)))
	if hasToken(n, "type", "typeof") != "" {
		c.b.SetFlags(decl, ast.FlagTypeOnly)
	}
	if clause != nil {
		c.importClause(decl, clause)
	}
}

func (c *converter) importClause(decl ast.NodeID, n *sitter.Node) {
	clause := c.add(decl, ast.KindImportClause, n, "")
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		switch ch.Type() {
		case "identifier":
			c.add(clause, ast.KindDefaultBinding, ch, c.text(ch))
		case "namespace_import":
			var name string
			for j := 0; j < int(ch.NamedChildCount()); j++ {
				if id := ch.NamedChild(j); id.Type() == "identifier" {
					name = c.text(id)
				}
			}
			c.add(clause, ast.KindNamespaceImport, ch, name)
		case "named_imports":
			c.namedImports(clause, ch)
		}
	}
}

func (c *converter) namedImports(clause ast.NodeID, n *sitter.Node) {
	named := c.add(clause, ast.KindNamedImports, n, "")
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if ch.Type() != "import_specifier" {
			continue
		}
		name := ch.ChildByFieldName("name")
		alias := ch.ChildByFieldName("alias")
		local := name
		if alias != nil {
			local = alias
		}
		spec := c.add(named, ast.KindImportSpecifier, ch, unquote(c.text(local)))
		if alias != nil {
			c.b.SetAlias(spec, unquote(c.text(name)))
		}
		if hasToken(ch, "type", "typeof") != "" {
			c.b.SetFlags(spec, ast.FlagTypeOnly)
		}
	}
}

func (c *converter) importAlias(parent ast.NodeID, n *sitter.Node) {
	id := c.add(parent, ast.KindOther, n, "")
	bound := false
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if !bound && ch.Type() == "identifier" {
			c.binding(id, ch)
			bound = true
			continue
		}
		c.node(id, ch)
	}
}

func (c *converter) exportStatement(parent ast.NodeID, n *sitter.Node) {
	id := c.add(parent, ast.KindExportDeclaration, n, "")
	source := n.ChildByFieldName("source")
	if source != nil {
		c.b.Node(id).Name = unquote(c.text(source))
		c.b.SetFlags(id, ast.FlagReExport)
	}

	var decorators []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		switch ch.Type() {
		case "decorator":
			decorators = append(decorators, ch)
		case "export_clause":
			c.exportClause(id, ch)
		case "class_declaration", "abstract_class_declaration", "class":
			c.class(id, ch, decorators)
			decorators = nil
		default:
			if same(ch, source) {
				continue
			}
			c.node(id, ch)
		}
	}
	for _, d := range decorators {
		c.decorator(id, d)
	}
}

func (c *converter) exportClause(decl ast.NodeID, n *sitter.Node) {
	clause := c.add(decl, ast.KindExportClause, n, "")
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if ch.Type() != "export_specifier" {
			continue
		}
		spec := c.add(clause, ast.KindExportSpecifier, ch, unquote(c.text(ch.ChildByFieldName("name"))))
		if alias := ch.ChildByFieldName("alias"); alias != nil {
			c.b.SetAlias(spec, unquote(c.text(alias)))
		}
	}
}

func (c *converter) class(parent ast.NodeID, n *sitter.Node, decorators []*sitter.Node) {
	id := c.add(parent, ast.KindClass, n, "")
	flags := ast.FlagScope
	if n.Type() == "class" {
		flags |= ast.FlagExpression
	}
	c.b.SetFlags(id, flags)

	for _, d := range decorators {
		c.decorator(id, d)
	}

	name := n.ChildByFieldName("name")
	if name != nil {
		c.b.Node(id).Name = c.text(name)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		switch {
		case same(ch, name):
			c.binding(id, ch)
		case ch.Type() == "class_heritage":
			c.heritage(id, ch)
		case ch.Type() == "class_body":
			c.classBody(id, ch)
		default:
			c.node(id, ch)
		}
	}
}

func (c *converter) heritage(cls ast.NodeID, n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		switch ch.Type() {
		case "extends_clause":
			h := c.add(cls, ast.KindHeritageClause, ch, "extends")
			c.children(h, ch)
		case "implements_clause":
			h := c.add(cls, ast.KindHeritageClause, ch, "implements")
			c.b.SetFlags(h, ast.FlagImplements)
			c.children(h, ch)
		default:
			// JavaScript: `extends <expression>` without a clause node.
			h := c.add(cls, ast.KindHeritageClause, ch, "extends")
			c.node(h, ch)
		}
	}
}

func (c *converter) classBody(cls ast.NodeID, n *sitter.Node) {
	var pending []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		switch ch.Type() {
		case "decorator":
			pending = append(pending, ch)
		case "method_definition", "method_signature", "abstract_method_signature":
			c.method(cls, ch, pending)
			pending = nil
		case "public_field_definition", "field_definition":
			c.property(cls, ch, pending)
			pending = nil
		default:
			c.node(cls, ch)
		}
	}
	if len(pending) > 0 {
		// Decorators with nothing to decorate (incomplete source).
		holder := c.add(cls, ast.KindOther, n, "")
		for _, d := range pending {
			c.decorator(holder, d)
		}
	}
}

// memberName converts a computed member name, which may reference values,
// and returns the member's name text.
func (c *converter) memberName(id ast.NodeID, name *sitter.Node) string {
	if name == nil {
		return ""
	}
	if name.Type() == "computed_property_name" {
		c.node(id, name)
	}
	return c.text(name)
}

func (c *converter) method(parent ast.NodeID, n *sitter.Node, decorators []*sitter.Node) {
	name := n.ChildByFieldName("name")
	kind := ast.KindMethod
	switch {
	case c.text(name) == "constructor":
		kind = ast.KindConstructor
	case hasToken(n, "get") != "":
		kind = ast.KindGetAccessor
	case hasToken(n, "set") != "":
		kind = ast.KindSetAccessor
	}

	id := c.add(parent, kind, n, "")
	c.b.SetFlags(id, ast.FlagScope)
	for _, d := range decorators {
		c.decorator(id, d)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if same(ch, name) {
			c.b.Node(id).Name = c.memberName(id, ch)
			continue
		}
		c.node(id, ch)
	}
}

func (c *converter) property(parent ast.NodeID, n *sitter.Node, decorators []*sitter.Node) {
	name := n.ChildByFieldName("property")
	if name == nil {
		name = n.ChildByFieldName("name")
	}

	id := c.add(parent, ast.KindProperty, n, "")
	for _, d := range decorators {
		c.decorator(id, d)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if same(ch, name) {
			c.b.Node(id).Name = c.memberName(id, ch)
			continue
		}
		c.node(id, ch)
	}
}

func (c *converter) parameters(fn ast.NodeID, n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		switch ch.Type() {
		case "required_parameter", "optional_parameter":
			c.parameter(fn, ch)
		case "comment":
		default:
			// JavaScript parameters are bare patterns.
			id := c.add(fn, ast.KindParameter, ch, "")
			c.pattern(id, ch)
		}
	}
}

func (c *converter) parameter(fn ast.NodeID, n *sitter.Node) {
	id := c.add(fn, ast.KindParameter, n, "")
	pattern := n.ChildByFieldName("pattern")
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if same(ch, pattern) {
			c.pattern(id, ch)
			if ch.Type() == "identifier" {
				c.b.Node(id).Name = c.text(ch)
			}
			continue
		}
		c.node(id, ch)
	}
}

// pattern converts a binding position: identifiers become bindings, while
// default values and computed keys stay references.
func (c *converter) pattern(parent ast.NodeID, n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		c.binding(parent, n)
	case "object_pattern", "array_pattern", "rest_pattern":
		id := c.add(parent, ast.KindOther, n, "")
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c.pattern(id, n.NamedChild(i))
		}
	case "pair_pattern":
		id := c.add(parent, ast.KindOther, n, "")
		if key := n.ChildByFieldName("key"); key != nil && key.Type() == "computed_property_name" {
			c.node(id, key)
		}
		c.pattern(id, n.ChildByFieldName("value"))
	case "assignment_pattern", "object_assignment_pattern":
		id := c.add(parent, ast.KindOther, n, "")
		c.pattern(id, n.ChildByFieldName("left"))
		c.node(id, n.ChildByFieldName("right"))
	default:
		c.node(parent, n)
	}
}

func (c *converter) declarations(parent ast.NodeID, n *sitter.Node) {
	id := c.add(parent, ast.KindOther, n, "")
	isVar := n.Type() == "variable_declaration"
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if ch.Type() == "variable_declarator" {
			c.declarator(id, ch, isVar)
			continue
		}
		c.node(id, ch)
	}
}

func (c *converter) declarator(parent ast.NodeID, n *sitter.Node, isVar bool) {
	id := c.add(parent, ast.KindVariableDeclarator, n, "")
	if isVar {
		c.b.SetFlags(id, ast.FlagVar)
	}
	name := n.ChildByFieldName("name")
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if same(ch, name) {
			c.pattern(id, ch)
			if ch.Type() == "identifier" {
				c.b.Node(id).Name = c.text(ch)
			}
			continue
		}
		c.node(id, ch)
	}
}

func (c *converter) function(parent ast.NodeID, n *sitter.Node) {
	id := c.add(parent, ast.KindFunction, n, "")
	flags := ast.FlagScope
	switch n.Type() {
	case "function_expression", "function", "generator_function", "arrow_function":
		flags |= ast.FlagExpression
	}
	c.b.SetFlags(id, flags)

	name := n.ChildByFieldName("name")
	param := n.ChildByFieldName("parameter")
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		switch {
		case same(ch, name):
			c.binding(id, ch)
			c.b.Node(id).Name = c.text(ch)
		case same(ch, param):
			// `x => ...`
			p := c.add(id, ast.KindParameter, ch, "")
			c.pattern(p, ch)
		default:
			c.node(id, ch)
		}
	}
}

func (c *converter) forStatement(parent ast.NodeID, n *sitter.Node) {
	id := c.add(parent, ast.KindOther, n, "")
	c.b.SetFlags(id, ast.FlagScope)
	left := n.ChildByFieldName("left")
	declares := hasToken(n, "var", "let", "const") != ""
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if declares && same(ch, left) {
			c.pattern(id, ch)
			continue
		}
		c.node(id, ch)
	}
}

func (c *converter) catchClause(parent ast.NodeID, n *sitter.Node) {
	id := c.add(parent, ast.KindCatchClause, n, "")
	c.b.SetFlags(id, ast.FlagScope)
	param := n.ChildByFieldName("parameter")
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if same(ch, param) {
			c.pattern(id, ch)
			continue
		}
		c.node(id, ch)
	}
}

// decorator records the callee ("Component" for `@Component({...})`,
// "ng.Input" for `@ng.Input()`) as the decorator's name.
func (c *converter) decorator(parent ast.NodeID, n *sitter.Node) {
	var callee string
	if n.NamedChildCount() > 0 {
		expr := n.NamedChild(0)
		if expr.Type() == "call_expression" {
			if fn := expr.ChildByFieldName("function"); fn != nil {
				expr = fn
			}
		}
		callee = compact(c.text(expr))
	}
	id := c.add(parent, ast.KindDecorator, n, callee)
	c.children(id, n)
}

func (c *converter) typeReference(parent ast.NodeID, n *sitter.Node) {
	name := n
	var args *sitter.Node
	if n.Type() == "generic_type" {
		if nm := n.ChildByFieldName("name"); nm != nil {
			name = nm
		}
		args = n.ChildByFieldName("type_arguments")
	}
	id := c.add(parent, ast.KindTypeReference, n, compact(c.text(name)))
	if args != nil {
		c.children(id, args)
	}
}

// typeParameter keeps constraints and defaults. The parameter name is not
// declared; a type parameter shadowing an import leaves the import retained.
func (c *converter) typeParameter(parent ast.NodeID, n *sitter.Node) {
	name := n.ChildByFieldName("name")
	id := c.add(parent, ast.KindOther, n, c.text(name))
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if ch := n.NamedChild(i); !same(ch, name) {
			c.node(id, ch)
		}
	}
}

// named converts a declaration whose name field binds a name, such as a
// type alias or an enum.
func (c *converter) named(parent ast.NodeID, n *sitter.Node, kind ast.Kind, flags ast.Flags) ast.NodeID {
	id := c.add(parent, kind, n, "")
	c.b.SetFlags(id, flags)
	name := n.ChildByFieldName("name")
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if same(ch, name) {
			c.binding(id, ch)
			c.b.Node(id).Name = c.text(ch)
			continue
		}
		c.node(id, ch)
	}
	return id
}

func (c *converter) interfaceDecl(parent ast.NodeID, n *sitter.Node) {
	id := c.add(parent, ast.KindInterface, n, "")
	c.b.SetFlags(id, ast.FlagScope)
	name := n.ChildByFieldName("name")
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		switch {
		case same(ch, name):
			c.binding(id, ch)
			c.b.Node(id).Name = c.text(ch)
		case ch.Type() == "extends_type_clause" || ch.Type() == "extends_clause":
			c.interfaceHeritage(id, ch)
		default:
			c.node(id, ch)
		}
	}
}

// interfaceHeritage converts `interface X extends A, B.C<D>`. The extended
// names are expressions with type arguments, so they count as references.
func (c *converter) interfaceHeritage(parent ast.NodeID, n *sitter.Node) {
	h := c.add(parent, ast.KindHeritageClause, n, "extends")
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		name := ch
		var args *sitter.Node
		if ch.Type() == "generic_type" {
			if nm := ch.ChildByFieldName("name"); nm != nil {
				name = nm
			}
			args = ch.ChildByFieldName("type_arguments")
		}
		switch name.Type() {
		case "type_identifier", "nested_type_identifier", "identifier", "member_expression", "nested_identifier":
			c.add(h, ast.KindIdentifier, name, ast.EntityHead(compact(c.text(name))))
			if args != nil {
				c.children(h, args)
			}
		default:
			c.node(h, ch)
		}
	}
}

func (c *converter) namespace(parent ast.NodeID, n *sitter.Node) {
	id := c.add(parent, ast.KindModuleDeclaration, n, "")
	name := n.ChildByFieldName("name")
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if same(ch, name) {
			c.b.Node(id).Name = unquote(c.text(ch))
			if ch.Type() == "identifier" {
				c.binding(id, ch)
			}
			continue
		}
		c.node(id, ch)
	}
}
