package traverse

import (
	"fmt"
	"iter"

	"github.com/aretw0/arbor/pkg/domain"
)

// Step is one node visited by Walk.
type Step struct {
	Node   domain.Node
	Depth  int          // 0 for the root
	Index  int          // position among its siblings
	Parent *domain.Menu // nil for the root
}

type walkFrame struct {
	parent   *domain.Menu
	children []domain.Node
	next     int
}

// Walk visits every node of root, menus included, in pre-order.
// Like Iterator it keeps an explicit stack.
func Walk(root domain.Node) iter.Seq[Step] {
	return func(yield func(Step) bool) {
		if root == nil {
			return
		}
		if !yield(Step{Node: root}) {
			return
		}
		m, ok := root.(*domain.Menu)
		if !ok {
			return
		}
		stack := []walkFrame{{parent: m, children: domain.View(m)}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next >= len(top.children) {
				stack = stack[:len(stack)-1]
				continue
			}
			idx := top.next
			child := top.children[idx]
			top.next++

			if !yield(Step{Node: child, Depth: len(stack), Index: idx, Parent: top.parent}) {
				return
			}
			switch n := child.(type) {
			case *domain.Item:
			case *domain.Menu:
				stack = append(stack, walkFrame{parent: n, children: domain.View(n)})
			default:
				panic(fmt.Sprintf("traverse: unknown node type %T", n))
			}
		}
	}
}
