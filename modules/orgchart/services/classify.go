package services

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

type BucketField string

const (
	BucketFieldTitle    BucketField = "title"
	BucketFieldCategory BucketField = "category"
	BucketFieldAny      BucketField = "any"
)

// Bucket is one row of the classification table. A node belongs to the
// bucket when the selected text contains any keyword and no exclude term,
// compared case-insensitively. Buckets are independent of each other.
type Bucket struct {
	Key      string      `yaml:"key" json:"key"`
	Field    BucketField `yaml:"field" json:"field"`
	Keywords []string    `yaml:"keywords" json:"keywords"`
	Exclude  []string    `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

func DefaultBuckets() []Bucket {
	return []Bucket{
		{Key: "staffCount", Field: BucketFieldCategory, Keywords: []string{"staff"}},
		{Key: "indirectCount", Field: BucketFieldCategory, Keywords: []string{"indirect", "idl"}},
		{Key: "directCount", Field: BucketFieldCategory, Keywords: []string{"direct", "dl"}, Exclude: []string{"indirect", "idl"}},
		{Key: "supervisorCount", Field: BucketFieldTitle, Keywords: []string{"supervisor", "team leader", "team lead"}},
		{Key: "specialistCount", Field: BucketFieldTitle, Keywords: []string{"specialist"}},
		{Key: "managerCount", Field: BucketFieldTitle, Keywords: []string{"manager", "director", "head of"}},
	}
}

type Classifier struct {
	buckets []Bucket
}

func NewClassifier(buckets []Bucket) (*Classifier, error) {
	if len(buckets) == 0 {
		return nil, ErrNoBuckets
	}
	seen := make(map[string]struct{}, len(buckets))
	out := make([]Bucket, 0, len(buckets))
	for i, b := range buckets {
		key := strings.TrimSpace(b.Key)
		if key == "" {
			return nil, fmt.Errorf("bucket %d: key is required", i)
		}
		if key == domain.StatTotalDescendants || key == domain.StatDirectReports {
			return nil, fmt.Errorf("bucket %d: key %q is reserved", i, key)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("bucket %d: duplicate key %q", i, key)
		}
		seen[key] = struct{}{}

		switch b.Field {
		case BucketFieldTitle, BucketFieldCategory, BucketFieldAny:
		case "":
			b.Field = BucketFieldAny
		default:
			return nil, fmt.Errorf("bucket %q: unknown field %q", key, b.Field)
		}
		if len(b.Keywords) == 0 {
			return nil, fmt.Errorf("bucket %q: at least one keyword is required", key)
		}
		out = append(out, Bucket{
			Key:      key,
			Field:    b.Field,
			Keywords: lowerAll(b.Keywords),
			Exclude:  lowerAll(b.Exclude),
		})
	}
	return &Classifier{buckets: out}, nil
}

func MustDefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultBuckets())
	if err != nil {
		panic(err)
	}
	return c
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Classifier) Keys() []string {
	keys := make([]string, 0, len(c.buckets))
	for _, b := range c.buckets {
		keys = append(keys, b.Key)
	}
	return keys
}

// Classify returns the keys of every bucket n falls into.
func (c *Classifier) Classify(n domain.Node) []string {
	title := strings.ToLower(n.JobTitle)
	category := strings.ToLower(n.EmployeeCategory)

	var out []string
	for _, b := range c.buckets {
		var text string
		switch b.Field {
		case BucketFieldTitle:
			text = title
		case BucketFieldCategory:
			text = category
		default:
			text = title + "\n" + category
		}
		if containsAny(text, b.Exclude) {
			continue
		}
		if containsAny(text, b.Keywords) {
			out = append(out, b.Key)
		}
	}
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

type bucketFile struct {
	Buckets []Bucket `yaml:"buckets"`
}

// LoadBuckets reads a bucket table in the form
//
//	buckets:
//	  - key: supervisorCount
//	    field: title
//	    keywords: [supervisor, team leader]
func LoadBuckets(r io.Reader) ([]Bucket, error) {
	var f bucketFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode bucket table: %w", err)
	}
	if len(f.Buckets) == 0 {
		return nil, ErrNoBuckets
	}
	return f.Buckets, nil
}

func LoadBucketsFile(path string) ([]Bucket, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()
	return LoadBuckets(fh)
}
