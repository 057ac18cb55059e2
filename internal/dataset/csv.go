package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CSVOptions controls delimited text reading.
type CSVOptions struct {
	// Delimiter for fields. If 0, it is chosen from the file name: tab for
	// .tsv/.tab, comma otherwise.
	Delimiter rune
	Number    NumberFormat
}

// ReadCSV reads delimited text with a header row. Rows whose field count
// differs from the header are rejected with a *ParseError rather than padded.
func ReadCSV(name string, r io.Reader, opt CSVOptions) (*Dataset, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name)
	}
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = 0
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, csvError(name, err)
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, csvError(name, err)
		}
		rows = append(rows, rec)
	}
	return FromRecords(name, header, rows, opt.Number)
}

// WriteCSV writes the dataset with its header.
func WriteCSV(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(ds.Records()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func csvError(name string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Name: name, Line: pe.Line, Column: pe.Column, Err: pe.Err}
	}
	return fmt.Errorf("read %s: %w", name, err)
}

func sniffDelimiter(name string) rune {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".tsv") || strings.HasSuffix(lower, ".tab") {
		return '\t'
	}
	return ','
}
