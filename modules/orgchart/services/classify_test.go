package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

func TestClassifier_DefaultBuckets(t *testing.T) {
	c := MustDefaultClassifier()

	cases := []struct {
		node domain.Node
		want []string
	}{
		{domain.Node{JobTitle: "Production Supervisor"}, []string{"supervisorCount"}},
		{domain.Node{JobTitle: "Team Lead"}, []string{"supervisorCount"}},
		{domain.Node{JobTitle: "QA Specialist", EmployeeCategory: "Staff"}, []string{"staffCount", "specialistCount"}},
		{domain.Node{EmployeeCategory: "Indirect Labor"}, []string{"indirectCount"}},
		{domain.Node{EmployeeCategory: "IDL"}, []string{"indirectCount"}},
		{domain.Node{EmployeeCategory: "DL"}, []string{"directCount"}},
		{domain.Node{EmployeeCategory: "Direct"}, []string{"directCount"}},
		{domain.Node{JobTitle: "Head of Finance"}, []string{"managerCount"}},
		{domain.Node{JobTitle: "Operator"}, nil},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, c.Classify(tc.node), "%+v", tc.node)
	}
}

func TestNewClassifier_Validation(t *testing.T) {
	_, err := NewClassifier(nil)
	require.ErrorIs(t, err, ErrNoBuckets)

	_, err = NewClassifier([]Bucket{{Key: " ", Keywords: []string{"x"}}})
	require.ErrorContains(t, err, "key is required")

	_, err = NewClassifier([]Bucket{{Key: domain.StatTotalDescendants, Keywords: []string{"x"}}})
	require.ErrorContains(t, err, "reserved")

	_, err = NewClassifier([]Bucket{{Key: "a", Keywords: []string{"x"}}, {Key: "a", Keywords: []string{"y"}}})
	require.ErrorContains(t, err, "duplicate")

	_, err = NewClassifier([]Bucket{{Key: "a", Field: "salary", Keywords: []string{"x"}}})
	require.ErrorContains(t, err, "unknown field")

	_, err = NewClassifier([]Bucket{{Key: "a"}})
	require.ErrorContains(t, err, "keyword")
}

func TestClassifier_EmptyFieldMatchesEither(t *testing.T) {
	c, err := NewClassifier([]Bucket{{Key: "contractor", Keywords: []string{"CONTRACT"}}})
	require.NoError(t, err)

	require.Equal(t, []string{"contractor"}, c.Classify(domain.Node{JobTitle: "Contract Welder"}))
	require.Equal(t, []string{"contractor"}, c.Classify(domain.Node{EmployeeCategory: "contractor"}))
	require.Empty(t, c.Classify(domain.Node{JobTitle: "Welder"}))
}

const bucketYAML = `
buckets:
  - key: engineerCount
    field: title
    keywords: [engineer, developer]
  - key: seniorCount
    keywords: [senior]
    exclude: [intern]
`

func TestLoadBuckets(t *testing.T) {
	buckets, err := LoadBuckets(strings.NewReader(bucketYAML))
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	require.Equal(t, BucketFieldTitle, buckets[0].Field)
	require.Equal(t, []string{"intern"}, buckets[1].Exclude)

	c, err := NewClassifier(buckets)
	require.NoError(t, err)
	require.Equal(t, []string{"engineerCount", "seniorCount"}, c.Keys())
	require.Equal(t, []string{"engineerCount", "seniorCount"}, c.Classify(domain.Node{JobTitle: "Senior Engineer"}))
	require.Equal(t, []string{"engineerCount"}, c.Classify(domain.Node{JobTitle: "Senior Engineer Intern"}))
}

func TestLoadBuckets_RejectsUnknownFields(t *testing.T) {
	_, err := LoadBuckets(strings.NewReader("buckets:\n  - key: a\n    words: [x]\n"))
	require.Error(t, err)

	_, err = LoadBuckets(strings.NewReader("buckets: []\n"))
	require.ErrorIs(t, err, ErrNoBuckets)
}

func TestLoadBucketsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buckets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(bucketYAML), 0o600))

	buckets, err := LoadBucketsFile(path)
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	_, err = LoadBucketsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestBuild_CustomBucketsFlowIntoStats(t *testing.T) {
	buckets, err := LoadBuckets(strings.NewReader(bucketYAML))
	require.NoError(t, err)
	c, err := NewClassifier(buckets)
	require.NoError(t, err)

	snap, err := Build([]domain.RawRecord{
		rec("id", "lead"),
		rec("id", "e1", "lineManager", "lead", "title", "Developer"),
	}, BuildOptions{Classifier: c})
	require.NoError(t, err)

	st, ok := snap.Stats("lead")
	require.True(t, ok)
	require.Equal(t, 1, st.Get("engineerCount"))
	require.NotContains(t, st, "supervisorCount")
}
