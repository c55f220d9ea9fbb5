package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

type dateKind uint8

const (
	dateEmpty dateKind = iota
	dateSerial
	dateText
)

// DateValue keeps a join date in the encoding it arrived in: a spreadsheet
// day serial or free text. Interpretation happens in services.MonthsSince.
type DateValue struct {
	kind   dateKind
	serial float64
	text   string
}

func DateFromSerial(serial float64) DateValue {
	return DateValue{kind: dateSerial, serial: serial}
}

func DateFromText(text string) DateValue {
	text = strings.TrimSpace(text)
	if text == "" {
		return DateValue{}
	}
	return DateValue{kind: dateText, text: text}
}

func (d DateValue) IsZero() bool { return d.kind == dateEmpty }

func (d DateValue) Serial() (float64, bool) {
	return d.serial, d.kind == dateSerial
}

func (d DateValue) Text() (string, bool) {
	return d.text, d.kind == dateText
}

func (d DateValue) String() string {
	switch d.kind {
	case dateSerial:
		return strconv.FormatFloat(d.serial, 'f', -1, 64)
	case dateText:
		return d.text
	default:
		return ""
	}
}

func (d DateValue) MarshalJSON() ([]byte, error) {
	switch d.kind {
	case dateSerial:
		return json.Marshal(d.serial)
	case dateText:
		return json.Marshal(d.text)
	default:
		return []byte("null"), nil
	}
}

func (d *DateValue) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*d = DateFromSerial(x)
	case string:
		*d = DateFromText(x)
	default:
		*d = DateValue{}
	}
	return nil
}
