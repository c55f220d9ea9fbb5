package services

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

const defaultSearchLimit = 20

type SearchHit struct {
	Node     domain.Node `json:"node"`
	Distance int         `json:"distance"`
}

func searchText(n domain.Node) string {
	parts := make([]string, 0, 4)
	for _, s := range []string{n.DisplayName, n.Identity, n.JobTitle, n.Department} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Search ranks nodes whose name, identity, title or department fuzzily
// contain query. Closest matches come first; ties keep input order.
func Search(nodes []domain.Node, query string, limit int) []SearchHit {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchHit{}
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	targets := make([]string, len(nodes))
	for i := range nodes {
		targets[i] = searchText(nodes[i])
	}
	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	if len(ranks) > limit {
		ranks = ranks[:limit]
	}
	out := make([]SearchHit, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, SearchHit{Node: nodes[r.OriginalIndex], Distance: r.Distance})
	}
	return out
}
