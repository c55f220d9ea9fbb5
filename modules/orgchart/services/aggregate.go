package services

import (
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

const (
	walkUnvisited = iota
	walkOnPath
	walkDone
)

// Aggregate computes recursive stats for every node of f over line edges
// only; group containment does not contribute. The result is a fresh map keyed
// by identity and f is left untouched.
//
// For a node N with line children C1..Ck:
//
//	total(N)     = sum(1 + total(Ci))
//	bucket(N, b) = sum([Ci in b] + bucket(Ci, b))
//
// An edge back to a node still on the current walk path is skipped, so
// cyclic input terminates with finite counts.
func Aggregate(f *Forest, c *Classifier) (map[string]domain.Stats, error) {
	if f == nil {
		return nil, ErrForestRequired
	}
	if c == nil {
		return nil, ErrNoBuckets
	}

	keys := c.Keys()
	classes := make([][]string, len(f.nodes))
	for i := range f.nodes {
		classes[i] = c.Classify(f.nodes[i])
	}

	stats := make(map[string]domain.Stats, len(f.nodes))
	state := make([]uint8, len(f.nodes))

	var walk func(i int) domain.Stats
	walk = func(i int) domain.Stats {
		state[i] = walkOnPath
		s := newStats(keys)
		children := f.lineChildren[f.nodes[i].Identity]
		s[domain.StatDirectReports] = len(children)
		for _, ci := range children {
			var cs domain.Stats
			switch state[ci] {
			case walkOnPath:
				continue
			case walkDone:
				cs = stats[f.nodes[ci].Identity]
			default:
				cs = walk(ci)
			}
			s[domain.StatTotalDescendants] += 1 + cs[domain.StatTotalDescendants]
			for _, k := range keys {
				s[k] += cs[k]
			}
			for _, k := range classes[ci] {
				s[k]++
			}
		}
		state[i] = walkDone
		stats[f.nodes[i].Identity] = s
		return s
	}

	for _, r := range f.roots {
		if state[r] == walkUnvisited {
			walk(r)
		}
	}
	for i := range f.nodes {
		if state[i] == walkUnvisited {
			walk(i)
		}
	}
	return stats, nil
}

func newStats(keys []string) domain.Stats {
	s := make(domain.Stats, len(keys)+2)
	s[domain.StatTotalDescendants] = 0
	s[domain.StatDirectReports] = 0
	for _, k := range keys {
		s[k] = 0
	}
	return s
}
