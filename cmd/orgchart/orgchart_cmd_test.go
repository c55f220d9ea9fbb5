package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/presentation/viewmodels"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "org.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func orgFile(t *testing.T) string {
	return writeWorkbook(t, [][]any{
		{"Emp\nID", "FullName ", "Job Title", "Dept", "Line\nManager", "DL/IDL/Staff", "Joining\nDate"},
		{1, "Alice", "Plant Manager", "Ops", nil, "Staff", 45000},
		{2, "Bob", "Supervisor", "Ops", 1, "IDL", 45500},
		{3, "Cam", "Operator", "Ops", 2, "DL", 46000},
		{4, "Dee", "Operator", "Ops", "Ghost", "DL", nil},
	})
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--log-level", "silent"))
	err := cmd.Execute()
	return out.String(), err
}

func TestExitCode(t *testing.T) {
	require.Equal(t, exitOK, exitCode(nil))
	require.Equal(t, 1, exitCode(errors.New("x")))
	require.Equal(t, exitUsage, exitCode(withCode(exitUsage, errors.New("x"))))
	require.NoError(t, withCode(exitStore, nil))
}

func TestBuildCmd_Summary(t *testing.T) {
	out, err := run(t, "build", "--file", orgFile(t))
	require.NoError(t, err)

	var summary buildSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	require.Equal(t, 4, summary.Nodes)
	require.Equal(t, 2, summary.Roots)
	require.Len(t, summary.Dangling, 1)
	require.Equal(t, "Ghost", summary.Dangling[0].Ref)
	require.Empty(t, summary.CycleRoots)
}

func TestBuildCmd_NodesAndTree(t *testing.T) {
	out, err := run(t, "build", "--file", orgFile(t), "--nodes", "--tree")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1+4+1)

	var alice struct {
		Identity string         `json:"identity"`
		Stats    map[string]int `json:"recursive_stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &alice))
	require.Equal(t, "1", alice.Identity)
	require.Equal(t, 2, alice.Stats["totalDescendants"])
	require.Equal(t, 1, alice.Stats["supervisorCount"])
	require.Equal(t, 1, alice.Stats["directCount"])
	require.Equal(t, 1, alice.Stats["indirectCount"])

	var tree viewmodels.OrgTree
	require.NoError(t, json.Unmarshal([]byte(lines[5]), &tree))
	require.Len(t, tree.Nodes, 4)
	require.Equal(t, 2, tree.Nodes[2].Depth)
}

func TestScopeCmd(t *testing.T) {
	path := orgFile(t)

	out, err := run(t, "scope", "--file", path, "--key", "Ops")
	require.NoError(t, err)
	var res viewmodels.ScopeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, 4, res.Total)

	out, err = run(t, "scope", "--file", path, "--key", "2", "--reports")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, 2, res.Total)

	_, err = run(t, "scope", "--file", path)
	require.Equal(t, exitUsage, exitCode(err))
}

func TestSearchCmd(t *testing.T) {
	out, err := run(t, "search", "--file", orgFile(t), "--q", "bob")
	require.NoError(t, err)

	var res viewmodels.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotEmpty(t, res.Hits)
	require.Equal(t, "2", res.Hits[0].Node.Identity)
}

func TestDashboardCmd(t *testing.T) {
	out, err := run(t, "dashboard", "--file", orgFile(t), "--as-of", "2026-10-18", "--top", "1")
	require.NoError(t, err)

	var res struct {
		Headcount     int `json:"headcount"`
		TenureUnknown int `json:"tenure_unknown"`
		TopSpans      []struct {
			Identity string `json:"identity"`
		} `json:"top_spans"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, 4, res.Headcount)
	require.Equal(t, 1, res.TenureUnknown)
	require.Len(t, res.TopSpans, 1)
	require.Equal(t, "1", res.TopSpans[0].Identity)

	_, err = run(t, "dashboard", "--file", orgFile(t), "--as-of", "18/10/2026")
	require.Equal(t, exitUsage, exitCode(err))
}

func TestImportCmd_DryRun(t *testing.T) {
	path := orgFile(t)
	out, err := run(t, "import", "--file", path)
	require.NoError(t, err)

	var res importResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.False(t, res.Applied)
	require.Equal(t, 4, res.Build.Nodes)

	_, err = run(t, "import")
	require.Equal(t, exitUsage, exitCode(err))

	empty := writeWorkbook(t, [][]any{{"id", "name"}})
	_, err = run(t, "import", "--file", empty)
	require.Equal(t, exitValidation, exitCode(err))
}

func TestBuildCmd_BadInputs(t *testing.T) {
	_, err := run(t, "build", "--file", filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Equal(t, exitSource, exitCode(err))

	buckets := filepath.Join(t.TempDir(), "buckets.yaml")
	require.NoError(t, os.WriteFile(buckets, []byte("buckets:\n  - key: totalDescendants\n    field: title\n    keywords: [x]\n"), 0o600))
	_, err = run(t, "build", "--file", orgFile(t), "--buckets", buckets)
	require.Equal(t, exitUsage, exitCode(err))
}

func TestBuildCmd_CustomBuckets(t *testing.T) {
	buckets := filepath.Join(t.TempDir(), "buckets.yaml")
	require.NoError(t, os.WriteFile(buckets, []byte("buckets:\n  - key: operatorCount\n    field: title\n    keywords: [operator]\n"), 0o600))

	out, err := run(t, "build", "--file", orgFile(t), "--buckets", buckets, "--nodes")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")

	var alice struct {
		Stats map[string]int `json:"recursive_stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &alice))
	require.Equal(t, 1, alice.Stats["operatorCount"])
	require.NotContains(t, alice.Stats, "managerCount")
}
