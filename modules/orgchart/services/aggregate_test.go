package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

func aggregateOf(t *testing.T, records ...domain.RawRecord) (*Forest, map[string]domain.Stats) {
	t.Helper()
	f := forestOf(records...)
	stats, err := Aggregate(f, MustDefaultClassifier())
	require.NoError(t, err)
	return f, stats
}

func TestAggregate_AliceBobCarol(t *testing.T) {
	f, stats := aggregateOf(t, aliceBobCarol()...)

	require.Equal(t, []string{"1"}, identities(f.Roots()))
	require.Equal(t, 2, stats["1"].TotalDescendants())
	require.Equal(t, 1, stats["1"].Get("supervisorCount"))
	require.Equal(t, 2, stats["1"].Get(domain.StatDirectReports))
	require.Equal(t, 0, stats["1"].Get("managerCount"))
	require.Equal(t, 0, stats["2"].TotalDescendants())
}

func TestAggregate_LeafHasAllZeroStats(t *testing.T) {
	_, stats := aggregateOf(t, aliceBobCarol()...)

	for k, v := range stats["3"] {
		require.Zero(t, v, k)
	}
	require.Contains(t, stats["3"], "staffCount")
	require.Contains(t, stats["3"], domain.StatTotalDescendants)
}

func TestAggregate_TotalIsSumOverChildren(t *testing.T) {
	f, stats := aggregateOf(t,
		rec("id", "ceo", "title", "Director"),
		rec("id", "a", "lineManager", "ceo", "title", "Manager"),
		rec("id", "b", "lineManager", "ceo", "title", "Team Leader"),
		rec("id", "a1", "lineManager", "a", "Employee Type", "Staff"),
		rec("id", "a2", "lineManager", "a", "Employee Type", "DL"),
		rec("id", "a21", "lineManager", "a2", "Employee Type", "IDL"),
		rec("id", "b1", "lineManager", "b", "title", "Specialist"),
	)

	for _, n := range f.AllNodes() {
		want := 0
		for _, c := range f.LineChildren(n.Identity) {
			want += 1 + stats[c.Identity].TotalDescendants()
		}
		require.Equal(t, want, stats[n.Identity].TotalDescendants(), n.Identity)
	}

	ceo := stats["ceo"]
	require.Equal(t, 6, ceo.TotalDescendants())
	require.Equal(t, 2, ceo.Get(domain.StatDirectReports))
	require.Equal(t, 1, ceo.Get("managerCount"))
	require.Equal(t, 1, ceo.Get("supervisorCount"))
	require.Equal(t, 1, ceo.Get("specialistCount"))
	require.Equal(t, 1, ceo.Get("staffCount"))
	require.Equal(t, 1, ceo.Get("directCount"))
	require.Equal(t, 1, ceo.Get("indirectCount"))

	require.Equal(t, 3, stats["a"].TotalDescendants())
	require.Equal(t, 1, stats["a"].Get("indirectCount"))
}

func TestAggregate_BucketsAreNotExclusive(t *testing.T) {
	_, stats := aggregateOf(t,
		rec("id", "m"),
		rec("id", "s", "lineManager", "m", "title", "Senior Specialist Supervisor"),
	)
	require.Equal(t, 1, stats["m"].Get("specialistCount"))
	require.Equal(t, 1, stats["m"].Get("supervisorCount"))
}

func TestAggregate_CycleTerminatesWithFiniteStats(t *testing.T) {
	f, stats := aggregateOf(t,
		rec("id", "A", "lineManager", "B"),
		rec("id", "B", "lineManager", "A"),
		rec("id", "C", "lineManager", "A"),
	)

	require.Len(t, stats, 3)
	for _, n := range f.AllNodes() {
		s := stats[n.Identity]
		require.NotNil(t, s)
		for k, v := range s {
			require.GreaterOrEqual(t, v, 0, k)
		}
	}
	require.Equal(t, 2, stats["A"].TotalDescendants())
	require.Equal(t, 0, stats["B"].TotalDescendants())
	require.Equal(t, 0, stats["C"].TotalDescendants())
}

func TestAggregate_GroupContainmentDoesNotCount(t *testing.T) {
	_, stats := aggregateOf(t,
		rec("id", "G1", "name", "Finance", "tags", "group"),
		rec("id", "p1", "stpid", "G1", "title", "Supervisor"),
		rec("id", "p2", "stpid", "G1"),
	)
	require.Equal(t, 0, stats["G1"].TotalDescendants())
	require.Equal(t, 0, stats["G1"].Get("supervisorCount"))
}

func TestAggregate_DoesNotTouchForest(t *testing.T) {
	f := forestOf(aliceBobCarol()...)
	before := f.AllNodes()

	_, err := Aggregate(f, MustDefaultClassifier())
	require.NoError(t, err)
	require.Equal(t, before, f.AllNodes())
}

func TestAggregate_InvalidCall(t *testing.T) {
	_, err := Aggregate(nil, MustDefaultClassifier())
	require.ErrorIs(t, err, ErrForestRequired)

	_, err = Aggregate(forestOf(), nil)
	require.ErrorIs(t, err, ErrNoBuckets)
}
