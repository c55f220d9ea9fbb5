package services

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

const (
	unassignedKey   = "(unassigned)"
	defaultTopSpans = 10
)

type CountShare struct {
	Key   string          `json:"key"`
	Count int             `json:"count"`
	Share decimal.Decimal `json:"share"`
}

type TenureCount struct {
	Bucket TenureBucket    `json:"bucket"`
	Count  int             `json:"count"`
	Share  decimal.Decimal `json:"share"`
}

type SpanOfControl struct {
	Identity      string `json:"identity"`
	DisplayName   string `json:"display_name"`
	JobTitle      string `json:"job_title"`
	Department    string `json:"department"`
	DirectReports int    `json:"direct_reports"`
	Total         int    `json:"total"`
}

// Dashboard is the statistics view over person nodes; group containers are
// only counted in Groups.
type Dashboard struct {
	GeneratedAt    time.Time       `json:"generated_at"`
	Headcount      int             `json:"headcount"`
	Groups         int             `json:"groups"`
	ByDepartment   []CountShare    `json:"by_department"`
	ByCategory     []CountShare    `json:"by_category"`
	ByBusinessUnit []CountShare    `json:"by_business_unit"`
	Tenure         []TenureCount   `json:"tenure"`
	TenureUnknown  int             `json:"tenure_unknown"`
	TopSpans       []SpanOfControl `json:"top_spans"`
}

func BuildDashboard(nodes []domain.Node, stats map[string]domain.Stats, now time.Time, topN int) Dashboard {
	if topN <= 0 {
		topN = defaultTopSpans
	}
	d := Dashboard{GeneratedAt: now.UTC()}

	byDept := map[string]int{}
	byCat := map[string]int{}
	byBU := map[string]int{}
	tenure := make([]int, len(TenureBuckets))
	var spans []SpanOfControl

	for _, n := range nodes {
		if n.IsGroup() {
			d.Groups++
			continue
		}
		d.Headcount++
		byDept[keyOrUnassigned(n.Department)]++
		byCat[keyOrUnassigned(n.EmployeeCategory)]++
		byBU[keyOrUnassigned(n.BusinessUnit)]++

		if _, ok := ParseDateValue(n.JoinDate); ok {
			tenure[TenureBucketFor(MonthsSince(n.JoinDate, now))]++
		} else {
			d.TenureUnknown++
		}

		if s, ok := stats[n.Identity]; ok && s.TotalDescendants() > 0 {
			spans = append(spans, SpanOfControl{
				Identity:      n.Identity,
				DisplayName:   n.DisplayName,
				JobTitle:      n.JobTitle,
				Department:    n.Department,
				DirectReports: s.Get(domain.StatDirectReports),
				Total:         s.TotalDescendants(),
			})
		}
	}

	d.ByDepartment = sortedShares(byDept, d.Headcount)
	d.ByCategory = sortedShares(byCat, d.Headcount)
	d.ByBusinessUnit = sortedShares(byBU, d.Headcount)

	known := d.Headcount - d.TenureUnknown
	d.Tenure = make([]TenureCount, 0, len(TenureBuckets))
	for i, b := range TenureBuckets {
		d.Tenure = append(d.Tenure, TenureCount{Bucket: b, Count: tenure[i], Share: percentOf(tenure[i], known)})
	}

	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Total != spans[j].Total {
			return spans[i].Total > spans[j].Total
		}
		return spans[i].Identity < spans[j].Identity
	})
	if len(spans) > topN {
		spans = spans[:topN]
	}
	d.TopSpans = spans
	return d
}

func keyOrUnassigned(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return unassignedKey
	}
	return s
}

func sortedShares(counts map[string]int, total int) []CountShare {
	out := make([]CountShare, 0, len(counts))
	for k, c := range counts {
		out = append(out, CountShare{Key: k, Count: c, Share: percentOf(c, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func percentOf(part, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}
