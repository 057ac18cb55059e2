package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads one worksheet of an Excel workbook. An empty sheet name
// selects the first sheet. Leading blank rows are skipped and the first
// non-blank row is the header; short rows are padded because Excel drops
// trailing empty cells.
func ReadXLSX(name string, r io.Reader, sheet string, nf NumberFormat) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Name: name, Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}
	if sheet == "" {
		sheet = sheets[0]
	} else {
		found := false
		for _, s := range sheets {
			if strings.EqualFold(s, sheet) {
				sheet, found = s, true
				break
			}
		}
		if !found {
			return nil, &ParseError{Name: name, Err: fmt.Errorf("sheet %q not found; available: %s", sheet, strings.Join(sheets, ", "))}
		}
	}
	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Name: name, Err: fmt.Errorf("read sheet %s: %w", sheet, err)}
	}

	start := 0
	for start < len(all) && blankRow(all[start]) {
		start++
	}
	if start == len(all) {
		return nil, ErrEmpty
	}
	header := all[start]
	var rows [][]string
	for i, row := range all[start+1:] {
		if blankRow(row) {
			continue
		}
		if len(row) > len(header) {
			return nil, &ParseError{
				Name: name,
				Line: start + i + 2,
				Err:  fmt.Errorf("row has %d cells but the header has %d", len(row), len(header)),
			}
		}
		padded := make([]string, len(header))
		copy(padded, row)
		rows = append(rows, padded)
	}
	return FromRecords(name, header, rows, nf)
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
