package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

var textDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
}

// ParseDateValue interprets a join date. Serials count days from 1899-12-30;
// slash strings are day/month/year (year/month/day when the first part has
// four digits); anything else is tried against textDateLayouts.
func ParseDateValue(v domain.DateValue) (time.Time, bool) {
	if serial, ok := v.Serial(); ok {
		return parseSerial(serial)
	}
	text, ok := v.Text()
	if !ok {
		return time.Time{}, false
	}
	if strings.Contains(text, "/") {
		return parseSlashDate(text)
	}
	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseSerial(serial float64) (time.Time, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 1 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func parseSlashDate(text string) (time.Time, bool) {
	if i := strings.IndexAny(text, " T"); i > 0 {
		text = text[:i]
	}
	parts := strings.Split(text, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return time.Time{}, false
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]
	if len(strings.TrimSpace(parts[0])) == 4 {
		year, month, day = nums[0], nums[1], nums[2]
	}
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// MonthsSince returns the whole months elapsed from v to now. Unparseable
// input and dates after now yield 0.
func MonthsSince(v domain.DateValue, now time.Time) int {
	from, ok := ParseDateValue(v)
	if !ok {
		return 0
	}
	fy, fm, fd := from.Date()
	ny, nm, nd := now.Date()
	months := (ny-fy)*12 + int(nm-fm)
	if nd < fd {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

func MonthsSinceNow(v domain.DateValue) int {
	return MonthsSince(v, time.Now())
}

// TenureBucket is a half-open month range [Min, Max). Max < 0 means no upper
// bound.
type TenureBucket struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
}

func (b TenureBucket) Contains(months int) bool {
	if months < b.Min {
		return false
	}
	return b.Max < 0 || months < b.Max
}

var TenureBuckets = []TenureBucket{
	{Label: "0-3 months", Min: 0, Max: 3},
	{Label: "3-6 months", Min: 3, Max: 6},
	{Label: "6-12 months", Min: 6, Max: 12},
	{Label: "1-3 years", Min: 12, Max: 36},
	{Label: "3-5 years", Min: 36, Max: 60},
	{Label: "5+ years", Min: 60, Max: -1},
}

// TenureBucketFor returns the index into TenureBuckets for months.
func TenureBucketFor(months int) int {
	for i, b := range TenureBuckets {
		if b.Contains(months) {
			return i
		}
	}
	return 0
}
