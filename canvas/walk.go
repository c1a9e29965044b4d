package canvas

// Walk returns the subtree under root flattened in pre-order, including root
// itself. Invisible nodes are pruned together with their descendants: hidden
// content is not actionable for QA or bulk edits. pred, when non-nil, filters
// which nodes appear in the result (it does not stop descent).
//
// Traversal uses an explicit stack so depth is bounded by slice growth, not
// goroutine stack, and order is testable independent of the call site.
func Walk(root *Node, pred func(*Node) bool) []*Node {
	if root == nil || !root.Visible {
		return nil
	}

	var out []*Node
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !n.Visible {
			continue
		}
		if pred == nil || pred(n) {
			out = append(out, n)
		}
		if n.Type.Has(CapChildren) {
			// Push children reversed so they pop in document order.
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, n.Children[i])
			}
		}
	}
	return out
}

// Entry is one node of a WalkWithPath result: the node, the chain of display
// names from the walk root down to it, and its depth below the root.
type Entry struct {
	Node  *Node
	Path  []string
	Depth int
}

// WalkWithPath flattens the subtree under root in pre-order with
// reconstructed paths. Paths use DisplayName, so unnamed nodes contribute
// "Unnamed <type>" segments. Invisible subtrees are pruned as in Walk.
func WalkWithPath(root *Node) []Entry {
	if root == nil || !root.Visible {
		return nil
	}

	type item struct {
		node  *Node
		path  []string
		depth int
	}

	var out []Entry
	stack := []item{{node: root, path: []string{root.DisplayName()}}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !it.node.Visible {
			continue
		}
		out = append(out, Entry{Node: it.node, Path: it.path, Depth: it.depth})
		if it.node.Type.Has(CapChildren) {
			for i := len(it.node.Children) - 1; i >= 0; i-- {
				c := it.node.Children[i]
				childPath := make([]string, len(it.path), len(it.path)+1)
				copy(childPath, it.path)
				stack = append(stack, item{
					node:  c,
					path:  append(childPath, c.DisplayName()),
					depth: it.depth + 1,
				})
			}
		}
	}
	return out
}

// TextNodes returns all visible text nodes with non-empty characters under root.
func TextNodes(root *Node) []*Node {
	return Walk(root, func(n *Node) bool {
		return n.Type.Has(CapText) && n.Characters != ""
	})
}
