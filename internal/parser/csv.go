package parser

import (
	"bytes"
	"strings"

	"github.com/vincentngwk/GIT-ML-DS/internal/dataset"
)

type csvParser struct{}

func (csvParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".tab")
}

func (csvParser) Parse(name string, data []byte, opt Options) (*dataset.Dataset, error) {
	return dataset.ReadCSV(name, bytes.NewReader(data), dataset.CSVOptions{Number: opt.Number})
}
