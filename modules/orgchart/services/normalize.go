package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

type Field string

const (
	FieldID           Field = "id"
	FieldName         Field = "name"
	FieldTitle        Field = "title"
	FieldDepartment   Field = "department"
	FieldBusinessUnit Field = "business_unit"
	FieldCategory     Field = "category"
	FieldLineManager  Field = "line_manager"
	FieldGroup        Field = "group"
	FieldTags         Field = "tags"
	FieldJoinDate     Field = "join_date"
)

// FieldAliases lists the accepted header spellings per logical field, in
// priority order. Spreadsheet exports put line breaks inside some headers.
var FieldAliases = map[Field][]string{
	FieldID:           {"id", "ID", "Id", "Emp ID", "Emp\nID", "EmpID", "Employee ID", "Employee Code", "Emp Code"},
	FieldName:         {"name", "Name", "FullName ", "FullName", "Full Name", "Full\nName", "Employee Name"},
	FieldTitle:        {"title", "Title", "Job Title", "Job\nTitle", "Position", "Designation"},
	FieldDepartment:   {"dept", "Dept", "Dept.", "Department", "department"},
	FieldBusinessUnit: {"BU", "bu", "Business Unit", "businessUnit"},
	FieldCategory:     {"Employee Type", "Employee\nType", "DL/IDL/Staff", "Staff/IDL/DL", "Category", "employeeCategory", "Type"},
	FieldLineManager:  {"Line Manager", "Line\nManager", "lineManager", "Manager", "Reports To", "Reporting To", "pid"},
	FieldGroup:        {"stpid", "Group ID", "groupId", "Department ID", "parentGroup"},
	FieldTags:         {"tags", "Tags"},
	FieldJoinDate:     {"Joining\r\nDate", "Joining\nDate", "Joining Date", "Join Date", "joinDate", "Date of Joining", "DOJ"},
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func relaxHeader(h string) string {
	h = strings.ToLower(h)
	return whitespaceRe.ReplaceAllString(h, "")
}

type recordView struct {
	raw     domain.RawRecord
	relaxed map[string]string
}

func newRecordView(raw domain.RawRecord) recordView {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	relaxed := make(map[string]string, len(keys))
	for _, k := range keys {
		rk := relaxHeader(k)
		if _, ok := relaxed[rk]; !ok {
			relaxed[rk] = k
		}
	}
	return recordView{raw: raw, relaxed: relaxed}
}

// lookup returns the first usable value for field: exact alias hits win over
// relaxed (case/whitespace-insensitive) hits.
func (v recordView) lookup(field Field) (any, bool) {
	aliases := FieldAliases[field]
	for _, alias := range aliases {
		if val, ok := v.raw[alias]; ok && !isBlank(val) {
			return val, true
		}
	}
	for _, alias := range aliases {
		key, ok := v.relaxed[relaxHeader(alias)]
		if !ok {
			continue
		}
		if val := v.raw[key]; !isBlank(val) {
			return val, true
		}
	}
	return nil, false
}

func (v recordView) str(field Field) string {
	val, ok := v.lookup(field)
	if !ok {
		return ""
	}
	return toString(val)
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func toDate(v any) domain.DateValue {
	switch x := v.(type) {
	case float64:
		return domain.DateFromSerial(x)
	case float32:
		return domain.DateFromSerial(float64(x))
	case int:
		return domain.DateFromSerial(float64(x))
	case int64:
		return domain.DateFromSerial(float64(x))
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return domain.DateFromSerial(f)
		}
		return domain.DateFromText(x.String())
	case string:
		s := strings.TrimSpace(x)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return domain.DateFromSerial(f)
		}
		return domain.DateFromText(s)
	default:
		return domain.DateFromText(toString(v))
	}
}

func splitTags(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})
}

// Normalize maps one raw row onto the canonical node shape. Identity and
// parent references are left for BuildIndex and BuildForest.
func Normalize(raw domain.RawRecord, row int) domain.Node {
	v := newRecordView(raw)
	n := domain.Node{
		ID:               v.str(FieldID),
		DisplayName:      v.str(FieldName),
		JobTitle:         v.str(FieldTitle),
		Department:       v.str(FieldDepartment),
		BusinessUnit:     v.str(FieldBusinessUnit),
		EmployeeCategory: v.str(FieldCategory),
		LineManagerRef:   v.str(FieldLineManager),
		GroupRef:         v.str(FieldGroup),
		Tags:             domain.NewTags(splitTags(v.str(FieldTags))...),
		Row:              row,
	}
	if val, ok := v.lookup(FieldJoinDate); ok {
		n.JoinDate = toDate(val)
	}
	return n
}

func NormalizeAll(records []domain.RawRecord) []domain.Node {
	out := make([]domain.Node, 0, len(records))
	for i, r := range records {
		out = append(out, Normalize(r, i))
	}
	return out
}
