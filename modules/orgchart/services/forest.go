package services

import (
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

type RefKind string

const (
	RefLine  RefKind = "line"
	RefGroup RefKind = "group"
)

// DanglingRef is a parent reference that did not resolve to any node; the
// referencing node is treated as having no parent of that kind.
type DanglingRef struct {
	Identity string  `json:"identity"`
	Kind     RefKind `json:"kind"`
	Ref      string  `json:"ref"`
}

// Forest is the linked hierarchy of one build. Line and group edges are kept
// as separate adjacency lists.
type Forest struct {
	nodes         []domain.Node
	pos           map[string]int
	lineChildren  map[string][]int
	groupChildren map[string][]int
	roots         []int
	cycleRoots    []int
	dangling      []DanglingRef
}

// BuildForest resolves both parent references of every indexed node. Nodes
// without a line parent are roots. Nodes only reachable through a line-parent
// cycle are promoted to roots in input order, so every node is a root or a
// line descendant of one.
func BuildForest(idx *Index) *Forest {
	f := &Forest{
		nodes:         idx.Nodes(),
		pos:           make(map[string]int, idx.Len()),
		lineChildren:  make(map[string][]int),
		groupChildren: make(map[string][]int),
	}
	for i := range f.nodes {
		f.pos[f.nodes[i].Identity] = i
	}

	for i := range f.nodes {
		n := &f.nodes[i]
		if parent, ok := idx.ResolveLine(n.LineManagerRef); ok && parent != n.Identity {
			n.ParentByLine = domain.ParentOf(parent)
			f.lineChildren[parent] = append(f.lineChildren[parent], i)
		} else {
			if n.LineManagerRef != "" && !ok {
				f.dangling = append(f.dangling, DanglingRef{Identity: n.Identity, Kind: RefLine, Ref: n.LineManagerRef})
			}
			f.roots = append(f.roots, i)
		}

		if parent, ok := idx.ResolveGroup(n.GroupRef); ok && parent != n.Identity {
			n.ParentByGroup = domain.ParentOf(parent)
			f.groupChildren[parent] = append(f.groupChildren[parent], i)
		} else if n.GroupRef != "" && !ok {
			f.dangling = append(f.dangling, DanglingRef{Identity: n.Identity, Kind: RefGroup, Ref: n.GroupRef})
		}
	}

	reached := make([]bool, len(f.nodes))
	for _, r := range f.roots {
		f.markLine(r, reached)
	}
	for i := range f.nodes {
		if reached[i] {
			continue
		}
		f.roots = append(f.roots, i)
		f.cycleRoots = append(f.cycleRoots, i)
		f.markLine(i, reached)
	}
	return f
}

func (f *Forest) markLine(start int, reached []bool) {
	stack := []int{start}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[i] {
			continue
		}
		reached[i] = true
		stack = append(stack, f.lineChildren[f.nodes[i].Identity]...)
	}
}

func (f *Forest) Len() int { return len(f.nodes) }

func (f *Forest) AllNodes() []domain.Node {
	out := make([]domain.Node, len(f.nodes))
	copy(out, f.nodes)
	return out
}

func (f *Forest) Roots() []domain.Node { return f.pick(f.roots) }

// CycleRoots lists the roots that were promoted because a line-parent cycle
// hid them from every natural root.
func (f *Forest) CycleRoots() []domain.Node { return f.pick(f.cycleRoots) }

func (f *Forest) Dangling() []DanglingRef {
	out := make([]DanglingRef, len(f.dangling))
	copy(out, f.dangling)
	return out
}

func (f *Forest) Node(identity string) (domain.Node, bool) {
	i, ok := f.pos[identity]
	if !ok {
		return domain.Node{}, false
	}
	return f.nodes[i], true
}

func (f *Forest) LineChildren(identity string) []domain.Node {
	return f.pick(f.lineChildren[identity])
}

func (f *Forest) GroupChildren(identity string) []domain.Node {
	return f.pick(f.groupChildren[identity])
}

func (f *Forest) pick(ix []int) []domain.Node {
	out := make([]domain.Node, 0, len(ix))
	for _, i := range ix {
		out = append(out, f.nodes[i])
	}
	return out
}
