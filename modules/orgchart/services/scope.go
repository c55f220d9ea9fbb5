package services

import (
	"strings"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

type ScopeRule string

const (
	ScopeRuleNone            ScopeRule = ""
	ScopeRuleGroupDepartment ScopeRule = "group_department"
	ScopeRuleGroupName       ScopeRule = "group_name"
	ScopeRuleDepartment      ScopeRule = "department"
	ScopeRuleIdentity        ScopeRule = "identity"
)

// scopeRules are tried in order; the first one matching at least one node
// supplies the traversal roots.
var scopeRules = []struct {
	rule  ScopeRule
	match func(n domain.Node, key string) bool
}{
	{ScopeRuleGroupDepartment, func(n domain.Node, key string) bool { return n.IsGroup() && n.Department == key }},
	{ScopeRuleGroupName, func(n domain.Node, key string) bool { return n.IsGroup() && n.DisplayName == key }},
	{ScopeRuleDepartment, func(n domain.Node, key string) bool { return n.Department == key }},
	{ScopeRuleIdentity, func(n domain.Node, key string) bool { return n.Identity == key }},
}

// ResolveScopeTargets returns the indexes of the nodes the scope key selects
// and the rule that selected them.
func ResolveScopeTargets(nodes []domain.Node, scopeKey string) ([]int, ScopeRule) {
	key := strings.TrimSpace(scopeKey)
	if key == "" {
		return nil, ScopeRuleNone
	}
	for _, r := range scopeRules {
		var hits []int
		for i := range nodes {
			if r.match(nodes[i], key) {
				hits = append(hits, i)
			}
		}
		if len(hits) > 0 {
			return hits, r.rule
		}
	}
	return nil, ScopeRuleNone
}

// ExtractScope returns the target nodes of scopeKey plus everything reachable
// from them over line or group edges, deduplicated, in input order. An
// unmatched key yields an empty result. nodes is not modified.
func ExtractScope(nodes []domain.Node, scopeKey string) []domain.Node {
	targets, _ := ResolveScopeTargets(nodes, scopeKey)
	return collectReachable(nodes, targets)
}

// ExtractReports returns the node with the given identity and its transitive
// reports over both edge kinds.
func ExtractReports(nodes []domain.Node, identity string) []domain.Node {
	var targets []int
	for i := range nodes {
		if nodes[i].Identity == identity {
			targets = append(targets, i)
		}
	}
	return collectReachable(nodes, targets)
}

func collectReachable(nodes []domain.Node, targets []int) []domain.Node {
	if len(targets) == 0 {
		return []domain.Node{}
	}

	children := make(map[string][]int, len(nodes))
	for i := range nodes {
		if p, ok := nodes[i].ParentByLine.Identity(); ok {
			children[p] = append(children[p], i)
		}
		if p, ok := nodes[i].ParentByGroup.Identity(); ok && !nodes[i].ParentByLine.Is(p) {
			children[p] = append(children[p], i)
		}
	}

	included := make([]bool, len(nodes))
	queue := make([]int, 0, len(targets))
	for _, t := range targets {
		if !included[t] {
			included[t] = true
			queue = append(queue, t)
		}
	}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		for _, c := range children[nodes[i].Identity] {
			if included[c] {
				continue
			}
			included[c] = true
			queue = append(queue, c)
		}
	}

	out := make([]domain.Node, 0, len(targets))
	for i := range nodes {
		if included[i] {
			out = append(out, nodes[i])
		}
	}
	return out
}
