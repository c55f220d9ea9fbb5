package domain

import (
	"encoding/json"
	"sort"
	"strings"
)

// RawRecord is one source row as delivered by spreadsheet ingestion or the
// document store. Keys are header spellings; values are scalars or nil.
type RawRecord map[string]any

const (
	TagGroup  = "group"
	TagPerson = "person"

	tagDepartment = "department"
)

// ParentRef is an optional reference to another node's identity. The zero
// value means "no parent".
type ParentRef struct {
	identity string
	present  bool
}

var NoParent = ParentRef{}

func ParentOf(identity string) ParentRef {
	return ParentRef{identity: identity, present: true}
}

func (r ParentRef) Identity() (string, bool) { return r.identity, r.present }
func (r ParentRef) IsSet() bool              { return r.present }

// Is reports whether r points at identity. A missing reference never matches.
func (r ParentRef) Is(identity string) bool {
	return r.present && r.identity == identity
}

func (r ParentRef) MarshalJSON() ([]byte, error) {
	if !r.present {
		return []byte("null"), nil
	}
	return json.Marshal(r.identity)
}

func (r *ParentRef) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = NoParent
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*r = ParentOf(s)
	return nil
}

// Tags is a sorted set of lower-cased node kind markers.
type Tags []string

func NewTags(values ...string) Tags {
	seen := make(map[string]struct{}, len(values))
	out := make(Tags, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (t Tags) Has(tag string) bool {
	for _, v := range t {
		if strings.EqualFold(v, tag) {
			return true
		}
	}
	return false
}

// IsGroup reports whether the tags mark a department/group container.
func (t Tags) IsGroup() bool {
	return t.Has(TagGroup) || t.Has(tagDepartment)
}

// Node is the canonical unit of the hierarchy. Built nodes are handed out by
// value and must be treated as read-only.
type Node struct {
	Identity         string    `json:"identity"`
	ID               string    `json:"id"`
	DisplayName      string    `json:"display_name"`
	JobTitle         string    `json:"job_title"`
	Department       string    `json:"department"`
	BusinessUnit     string    `json:"business_unit"`
	EmployeeCategory string    `json:"employee_category"`
	LineManagerRef   string    `json:"line_manager_ref,omitempty"`
	GroupRef         string    `json:"group_ref,omitempty"`
	ParentByLine     ParentRef `json:"parent_by_line"`
	ParentByGroup    ParentRef `json:"parent_by_group"`
	Tags             Tags      `json:"tags"`
	JoinDate         DateValue `json:"join_date"`
	Row              int       `json:"row"`
}

func (n Node) IsGroup() bool { return n.Tags.IsGroup() }
