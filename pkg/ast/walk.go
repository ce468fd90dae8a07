package ast

// WalkFunc is called for each node in pre-order. Returning false skips the
// node's children.
type WalkFunc func(node *Node) bool

// Walk traverses root in document order, parents before children.
func Walk(root *Node, fn WalkFunc) {
	if root == nil || fn == nil {
		return
	}
	if !fn(root) {
		return
	}
	for _, child := range root.Children {
		Walk(child, fn)
	}
}

// Handler receives a visited node.
type Handler func(node *Node)

// Handlers maps a node kind to the callback a rule registered for it.
type Handlers map[Kind]Handler

// Dispatch performs a single pre-order traversal of root and, for every node,
// invokes the matching callback from each table in the order the tables were
// given. Nil tables are skipped.
func Dispatch(root *Node, tables ...Handlers) {
	active := make([]Handlers, 0, len(tables))
	for _, table := range tables {
		if len(table) > 0 {
			active = append(active, table)
		}
	}
	if len(active) == 0 {
		return
	}

	Walk(root, func(node *Node) bool {
		for _, table := range active {
			if handler, ok := table[node.Kind]; ok && handler != nil {
				handler(node)
			}
		}
		return true
	})
}

// Find returns the first node in pre-order for which match returns true.
func Find(root *Node, match func(*Node) bool) *Node {
	var found *Node
	Walk(root, func(node *Node) bool {
		if found != nil {
			return false
		}
		if match(node) {
			found = node
			return false
		}
		return true
	})
	return found
}
