package mappers

import (
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/presentation/viewmodels"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/services"
)

func toTreeNode(n domain.Node, depth int, stats domain.Stats, selected bool) viewmodels.OrgTreeNode {
	lineParent, _ := n.ParentByLine.Identity()
	groupParent, _ := n.ParentByGroup.Identity()
	if stats == nil {
		stats = domain.Stats{}
	}
	return viewmodels.OrgTreeNode{
		Identity:      n.Identity,
		ID:            n.ID,
		Name:          n.DisplayName,
		Title:         n.JobTitle,
		Department:    n.Department,
		Category:      n.EmployeeCategory,
		ParentByLine:  lineParent,
		ParentByGroup: groupParent,
		Depth:         depth,
		Group:         n.IsGroup(),
		Tags:          n.Tags,
		Stats:         stats,
		Selected:      selected,
	}
}

// ForestToTree flattens the line hierarchy of snap in pre-order. Siblings
// keep input order. Depth counts line edges from the root.
func ForestToTree(snap *services.Snapshot, selectedIdentity string) *viewmodels.OrgTree {
	tree := &viewmodels.OrgTree{Nodes: []viewmodels.OrgTreeNode{}}
	if snap == nil {
		return tree
	}
	tree.BuildID = snap.BuildID.String()
	tree.BuiltAt = snap.BuiltAt

	forest := snap.Forest()
	out := make([]viewmodels.OrgTreeNode, 0, forest.Len())
	visited := make(map[string]struct{}, forest.Len())

	var walk func(n domain.Node, depth int)
	walk = func(n domain.Node, depth int) {
		if _, ok := visited[n.Identity]; ok {
			return
		}
		visited[n.Identity] = struct{}{}

		stats, _ := snap.Stats(n.Identity)
		out = append(out, toTreeNode(n, depth, stats, n.Identity == selectedIdentity))
		for _, child := range forest.LineChildren(n.Identity) {
			walk(child, depth+1)
		}
	}

	for _, r := range forest.Roots() {
		walk(r, 0)
	}
	if len(visited) != forest.Len() {
		for _, n := range forest.AllNodes() {
			walk(n, 0)
		}
	}

	tree.Nodes = out
	return tree
}
