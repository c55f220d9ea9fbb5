package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

func dashboardFixture() []domain.RawRecord {
	return []domain.RawRecord{
		rec("id", "ceo", "name", "Cy", "title", "Director", "Department", "Board", "Employee Type", "Staff", "Joining Date", serialFor(fixedNow.AddDate(-6, 0, 0))),
		rec("id", "g", "name", "Finance", "tags", "group", "lineManager", "ceo"),
		rec("id", "f1", "name", "Fi", "lineManager", "ceo", "Department", "Finance", "Employee Type", "Staff", "Joining Date", "18/08/2026"),
		rec("id", "f2", "name", "Fo", "lineManager", "f1", "Department", "Finance", "Employee Type", "IDL", "Joining Date", "2024-10-18"),
		rec("id", "w1", "name", "Wu", "lineManager", "ceo", "Employee Type", "DL"),
	}
}

func TestBuildDashboard_CountsPersonsOnly(t *testing.T) {
	d := mustBuild(t, dashboardFixture()).Dashboard(fixedNow, 0)

	require.Equal(t, fixedNow, d.GeneratedAt)
	require.Equal(t, 4, d.Headcount)
	require.Equal(t, 1, d.Groups)

	require.Equal(t, "Finance", d.ByDepartment[0].Key)
	require.Equal(t, 2, d.ByDepartment[0].Count)
	require.True(t, decimal.NewFromInt(50).Equal(d.ByDepartment[0].Share))
	require.Equal(t, []string{"Finance", "(unassigned)", "Board"}, []string{
		d.ByDepartment[0].Key, d.ByDepartment[1].Key, d.ByDepartment[2].Key,
	})

	require.Equal(t, "Staff", d.ByCategory[0].Key)
	require.Equal(t, 2, d.ByCategory[0].Count)
	require.Len(t, d.ByBusinessUnit, 1)
	require.Equal(t, "(unassigned)", d.ByBusinessUnit[0].Key)
}

func TestBuildDashboard_TenureDistribution(t *testing.T) {
	d := mustBuild(t, dashboardFixture()).Dashboard(fixedNow, 0)

	require.Equal(t, 1, d.TenureUnknown)
	require.Len(t, d.Tenure, len(TenureBuckets))
	counts := make([]int, 0, len(d.Tenure))
	for _, tc := range d.Tenure {
		counts = append(counts, tc.Count)
	}
	// f1: 2 months, f2: 24 months, ceo: 72 months
	require.Equal(t, []int{1, 0, 0, 1, 0, 1}, counts)
	require.True(t, decimal.RequireFromString("33.33").Equal(d.Tenure[0].Share))
}

func TestBuildDashboard_TopSpans(t *testing.T) {
	d := mustBuild(t, dashboardFixture()).Dashboard(fixedNow, 1)

	require.Len(t, d.TopSpans, 1)
	top := d.TopSpans[0]
	require.Equal(t, "ceo", top.Identity)
	require.Equal(t, 4, top.Total)
	require.Equal(t, 3, top.DirectReports)

	all := mustBuild(t, dashboardFixture()).Dashboard(fixedNow, 10)
	require.Len(t, all.TopSpans, 2)
	require.Equal(t, "f1", all.TopSpans[1].Identity)
}

func TestBuildDashboard_Empty(t *testing.T) {
	d := BuildDashboard(nil, nil, fixedNow, 5)
	require.Zero(t, d.Headcount)
	require.Empty(t, d.ByDepartment)
	require.Empty(t, d.TopSpans)
	for _, tc := range d.Tenure {
		require.True(t, tc.Share.IsZero())
	}
}
