// Package passes holds removal passes that run before import elision. Each
// pass reads a tree and returns operations; none mutates the tree.
package passes

import (
	"github.com/panbanda/elide/pkg/ast"
	"github.com/panbanda/elide/pkg/transform"
)

// RemoveDecorators returns a removal for every decorator whose callee is in
// names. A name matches either the full callee ("core.Input") or its last
// segment ("Input"). Decorators inside an already matched decorator are not
// visited.
func RemoveDecorators(t *ast.Tree, names []string) transform.Operations {
	if len(names) == 0 {
		return nil
	}
	match := make(map[string]struct{}, len(names))
	for _, n := range names {
		match[n] = struct{}{}
	}

	var ops transform.Operations
	ast.Inspect(t, t.Root, func(id ast.NodeID) bool {
		n := t.Node(id)
		if n.Kind != ast.KindDecorator {
			return true
		}
		_, full := match[n.Name]
		_, tail := match[ast.EntityTail(n.Name)]
		if full || tail {
			ops = append(ops, transform.RemoveNode(id))
			return false
		}
		return true
	})
	return ops
}
