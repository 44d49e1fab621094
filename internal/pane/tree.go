package pane

import (
	"errors"
	"fmt"
)

// Axis is the direction children of a node are laid out along.
type Axis int

const (
	// Row places children side by side.
	Row Axis = iota
	// Column stacks children top to bottom.
	Column
)

func (a Axis) String() string {
	if a == Column {
		return "column"
	}
	return "row"
}

// Node is one pane of the render tree.
type Node struct {
	Pane     Pane
	Focused  bool
	Axis     Axis
	Children []*Node
}

// Leaf reports whether n is a content slot.
func (n *Node) Leaf() bool { return len(n.Children) == 0 }

// Leaves returns the leaf nodes in depth-first order.
func (n *Node) Leaves() []*Node {
	if n == nil {
		return nil
	}
	if n.Leaf() {
		return []*Node{n}
	}
	var out []*Node
	for _, c := range n.Children {
		out = append(out, c.Leaves()...)
	}
	return out
}

// Build derives the render tree rooted at the "root" pane. Children keep
// the order of panes. The first child's direction sets the axis for all of
// its siblings: horizontal stacks them in a column, vertical or unset lays
// them out in a row. Build returns nil when no root pane exists.
func Build(panes []Pane, focusedID string) *Node {
	root := -1
	byID := make(map[string]int, len(panes))
	for i, p := range panes {
		if _, dup := byID[p.ID]; dup {
			continue
		}
		byID[p.ID] = i
		if p.ID == RootID && root < 0 {
			root = i
		}
	}
	if root < 0 {
		return nil
	}

	children := make(map[int][]int, len(panes))
	for i, p := range panes {
		if p.ParentID == nil {
			continue
		}
		if parent, ok := byID[*p.ParentID]; ok {
			children[parent] = append(children[parent], i)
		}
	}

	seen := make([]bool, len(panes))
	var build func(i int) *Node
	build = func(i int) *Node {
		seen[i] = true
		n := &Node{Pane: panes[i], Focused: panes[i].ID == focusedID}
		kids := children[i]
		if len(kids) == 0 {
			return n
		}
		if d := panes[kids[0]].Direction; d != nil && *d == Horizontal {
			n.Axis = Column
		}
		for _, k := range kids {
			if seen[k] {
				continue
			}
			n.Children = append(n.Children, build(k))
		}
		return n
	}
	return build(root)
}

var (
	ErrNoRoot          = errors.New("no root pane")
	ErrRootHasParent   = errors.New("root pane has a parent")
	ErrDuplicateID     = errors.New("duplicate pane id")
	ErrDanglingParent  = errors.New("parent does not exist")
	ErrUnreachablePane = errors.New("pane not reachable from root")
)

// Validate reports every way panes fails to form a tree rooted at "root".
// Panes caught in a parent cycle are reported as unreachable.
func Validate(panes []Pane) error {
	var errs []error
	ids := make(map[string]*Pane, len(panes))
	for i := range panes {
		p := &panes[i]
		if _, dup := ids[p.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateID, p.ID))
			continue
		}
		ids[p.ID] = p
	}

	root, ok := ids[RootID]
	switch {
	case !ok:
		errs = append(errs, ErrNoRoot)
	case root.ParentID != nil:
		errs = append(errs, fmt.Errorf("%w: %s", ErrRootHasParent, *root.ParentID))
	}

	for i := range panes {
		p := &panes[i]
		if p.ID == RootID || p.ParentID == nil {
			if p.ID != RootID {
				errs = append(errs, fmt.Errorf("%w: %s has no parent", ErrUnreachablePane, p.ID))
			}
			continue
		}
		if _, ok := ids[*p.ParentID]; !ok {
			errs = append(errs, fmt.Errorf("%w: %s -> %s", ErrDanglingParent, p.ID, *p.ParentID))
			continue
		}
		if !reachesRoot(ids, p) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnreachablePane, p.ID))
		}
	}
	return errors.Join(errs...)
}

func reachesRoot(ids map[string]*Pane, p *Pane) bool {
	for steps := 0; steps <= len(ids); steps++ {
		if p.ID == RootID {
			return true
		}
		if p.ParentID == nil {
			return false
		}
		next, ok := ids[*p.ParentID]
		if !ok {
			return false
		}
		p = next
	}
	return false
}
