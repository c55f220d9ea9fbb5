package domain

const (
	StatTotalDescendants = "totalDescendants"
	StatDirectReports    = "directReports"
)

// Stats holds recursive counts over a node's line subtree, excluding the node
// itself. Keys are StatTotalDescendants, StatDirectReports and one per
// classification bucket.
type Stats map[string]int

func (s Stats) Get(key string) int { return s[key] }

func (s Stats) TotalDescendants() int { return s[StatTotalDescendants] }

func (s Stats) Clone() Stats {
	out := make(Stats, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
