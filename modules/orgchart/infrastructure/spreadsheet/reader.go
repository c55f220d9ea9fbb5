package spreadsheet

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

const maxXLSRows = 100000

var (
	ErrNoWorksheet    = fmt.Errorf("no worksheet found")
	ErrEmptyWorksheet = fmt.Errorf("worksheet is empty")

	ErrMultipleWorksheets = fmt.Errorf("multiple worksheets found; legacy .xls uploads must have a single sheet")
)

// ReadRows returns the cell text of the first worksheet. Legacy .xls files
// go through extrame/xls and must hold a single sheet; everything else is
// opened as OOXML. xlsx cells are read raw so date cells keep their day
// serial.
func ReadRows(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		if workbook == nil || workbook.NumSheets() == 0 {
			return nil, ErrNoWorksheet
		}
		if workbook.NumSheets() > 1 {
			return nil, ErrMultipleWorksheets
		}
		rows := workbook.ReadAllCells(maxXLSRows)
		if len(rows) == 0 {
			return nil, ErrEmptyWorksheet
		}
		return rows, nil
	default:
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, ErrNoWorksheet
		}
		rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, ErrEmptyWorksheet
		}
		return rows, nil
	}
}

// RecordsFromRows turns the first non-empty row into headers and every later
// non-empty row into a record. Blank cells are left out of the record so the
// normalizer can fall through to the next header alias.
func RecordsFromRows(rows [][]string) []domain.RawRecord {
	headerAt := -1
	for i, row := range rows {
		if !isEmptyRow(row) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return []domain.RawRecord{}
	}
	headers := rows[headerAt]

	out := make([]domain.RawRecord, 0, len(rows)-headerAt-1)
	for _, row := range rows[headerAt+1:] {
		if isEmptyRow(row) {
			continue
		}
		rec := make(domain.RawRecord, len(headers))
		for c, h := range headers {
			if strings.TrimSpace(h) == "" || c >= len(row) {
				continue
			}
			if v := strings.TrimSpace(row[c]); v != "" {
				rec[h] = v
			}
		}
		out = append(out, rec)
	}
	return out
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func ReadRecords(reader io.Reader, filename string) ([]domain.RawRecord, error) {
	rows, err := ReadRows(reader, filename)
	if err != nil {
		return nil, err
	}
	return RecordsFromRows(rows), nil
}

// FileSource serves records from a spreadsheet on disk, re-read on every
// fetch.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) FetchRecords(ctx context.Context) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadRecords(f, s.Path)
}
