package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

var fixedNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func rec(kv ...any) domain.RawRecord {
	r := domain.RawRecord{}
	for i := 0; i+1 < len(kv); i += 2 {
		r[kv[i].(string)] = kv[i+1]
	}
	return r
}

func mustBuild(t *testing.T, records []domain.RawRecord) *Snapshot {
	t.Helper()
	snap, err := Build(records, BuildOptions{Classifier: MustDefaultClassifier(), Now: fixedClock})
	require.NoError(t, err)
	require.NotNil(t, snap)
	return snap
}

func identities(nodes []domain.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Identity)
	}
	return out
}

func annotatedIdentities(nodes []AnnotatedNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Identity)
	}
	return out
}

func serialFor(t time.Time) float64 {
	epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return float64(day.Sub(epoch) / (24 * time.Hour))
}

func aliceBobCarol() []domain.RawRecord {
	return []domain.RawRecord{
		rec("id", "1", "name", "Alice", "title", "Manager"),
		rec("id", "2", "name", "Bob", "title", "Engineer", "lineManager", "Alice"),
		rec("id", "3", "name", "Carol", "title", "Senior Supervisor", "lineManager", "Alice"),
	}
}
