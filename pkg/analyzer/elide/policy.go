package elide

import (
	"fmt"
	"sort"

	"github.com/panbanda/elide/pkg/ast"
)

// MetadataContext describes a type reference being considered while
// decorator metadata emission is enabled.
type MetadataContext struct {
	Tree      *ast.Tree
	Reference ast.NodeID
}

// Annotated returns the node the type reference annotates.
func (c MetadataContext) Annotated() ast.NodeID {
	return c.Tree.Parent(c.Reference)
}

// MetadataPolicy decides whether a type reference is observable through
// emitted decorator metadata, and therefore keeps its import alive.
type MetadataPolicy func(MetadataContext) bool

// DecoratedAnnotation counts the types that TypeScript's decorator metadata
// reflects: the annotation of a decorated property, method or get accessor,
// and the annotation of a parameter that is decorated, belongs to a
// decorated set accessor, or belongs to a constructor when the constructor
// or its class is decorated.
func DecoratedAnnotation(c MetadataContext) bool {
	t := c.Tree
	parent := c.Annotated()
	switch t.Kind(parent) {
	case ast.KindGetAccessor, ast.KindProperty, ast.KindMethod:
		return t.IsDecorated(parent)
	case ast.KindParameter:
		if t.IsDecorated(parent) {
			return true
		}
		owner := t.Parent(parent)
		switch t.Kind(owner) {
		case ast.KindSetAccessor:
			return t.IsDecorated(owner)
		case ast.KindConstructor:
			return t.IsDecorated(owner) || t.IsDecorated(t.Parent(owner))
		}
	}
	return false
}

// AnyAnnotation counts every type reference.
func AnyAnnotation(MetadataContext) bool { return true }

// NoAnnotation counts no type reference.
func NoAnnotation(MetadataContext) bool { return false }

var policies = map[string]MetadataPolicy{
	"decorated": DecoratedAnnotation,
	"any":       AnyAnnotation,
	"none":      NoAnnotation,
}

// PolicyNames returns the names accepted by PolicyByName.
func PolicyNames() []string {
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PolicyByName returns the built-in policy registered under name. The empty
// name selects DecoratedAnnotation.
func PolicyByName(name string) (MetadataPolicy, error) {
	if name == "" {
		return DecoratedAnnotation, nil
	}
	p, ok := policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown metadata policy %q (valid: %v)", name, PolicyNames())
	}
	return p, nil
}
