package services

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

type CollisionKind string

const (
	CollisionID   CollisionKind = "id"
	CollisionName CollisionKind = "name"
)

// NameCollision records a lookup key claimed by more than one node. Only the
// later node stays reachable as a parent target under that key.
type NameCollision struct {
	Kind     CollisionKind `json:"kind"`
	Key      string        `json:"key"`
	Shadowed string        `json:"shadowed"`
	Winner   string        `json:"winner"`
}

// Index is the per-build identity table. It owns the identity-assigned copy
// of the normalized nodes and must not outlive or be shared across builds.
type Index struct {
	nodes      []domain.Node
	byIdentity map[string]int
	byID       map[string]int
	byName     map[string]int
	collisions []NameCollision
	fold       cases.Caser
}

// BuildIndex assigns a unique identity to every node (explicit id, else the
// trimmed display name, suffixed with #n when already taken) and indexes the
// nodes by identity, explicit id and case-folded display name.
func BuildIndex(nodes []domain.Node) *Index {
	idx := &Index{
		nodes:      make([]domain.Node, len(nodes)),
		byIdentity: make(map[string]int, len(nodes)),
		byID:       make(map[string]int, len(nodes)),
		byName:     make(map[string]int, len(nodes)),
		fold:       cases.Fold(),
	}
	copy(idx.nodes, nodes)

	for i := range idx.nodes {
		n := &idx.nodes[i]
		n.ID = strings.TrimSpace(n.ID)
		n.DisplayName = strings.TrimSpace(n.DisplayName)
		n.ParentByLine = domain.NoParent
		n.ParentByGroup = domain.NoParent

		base := n.ID
		if base == "" {
			base = n.DisplayName
		}
		n.Identity = idx.uniqueIdentity(base, n.Row)
		idx.byIdentity[n.Identity] = i

		if n.ID != "" {
			if prev, ok := idx.byID[n.ID]; ok {
				idx.collisions = append(idx.collisions, NameCollision{
					Kind: CollisionID, Key: n.ID, Shadowed: idx.nodes[prev].Identity, Winner: n.Identity,
				})
			}
			idx.byID[n.ID] = i
		}
		if n.DisplayName != "" {
			key := idx.foldKey(n.DisplayName)
			if prev, ok := idx.byName[key]; ok {
				idx.collisions = append(idx.collisions, NameCollision{
					Kind: CollisionName, Key: n.DisplayName, Shadowed: idx.nodes[prev].Identity, Winner: n.Identity,
				})
			}
			idx.byName[key] = i
		}
	}
	return idx
}

func (idx *Index) uniqueIdentity(base string, row int) string {
	candidate := base
	if candidate == "" {
		candidate = "#" + strconv.Itoa(row+1)
	}
	for n := 2; ; n++ {
		if _, taken := idx.byIdentity[candidate]; !taken {
			return candidate
		}
		candidate = base + "#" + strconv.Itoa(n)
	}
}

func (idx *Index) foldKey(s string) string {
	return idx.fold.String(strings.TrimSpace(s))
}

func (idx *Index) Len() int { return len(idx.nodes) }

// Nodes returns a copy of the identity-assigned nodes in input order.
func (idx *Index) Nodes() []domain.Node {
	out := make([]domain.Node, len(idx.nodes))
	copy(out, idx.nodes)
	return out
}

func (idx *Index) Collisions() []NameCollision {
	out := make([]NameCollision, len(idx.collisions))
	copy(out, idx.collisions)
	return out
}

func (idx *Index) Get(identity string) (domain.Node, bool) {
	i, ok := idx.byIdentity[identity]
	if !ok {
		return domain.Node{}, false
	}
	return idx.nodes[i], true
}

// ResolveLine looks a management-line reference up by explicit id, then by
// identity, then by case-folded display name.
func (idx *Index) ResolveLine(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	if i, ok := idx.byID[ref]; ok {
		return idx.nodes[i].Identity, true
	}
	if i, ok := idx.byIdentity[ref]; ok {
		return idx.nodes[i].Identity, true
	}
	if i, ok := idx.byName[idx.foldKey(ref)]; ok {
		return idx.nodes[i].Identity, true
	}
	return "", false
}

// ResolveGroup looks a group reference up by explicit id only.
func (idx *Index) ResolveGroup(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	i, ok := idx.byID[ref]
	if !ok {
		return "", false
	}
	return idx.nodes[i].Identity, true
}
