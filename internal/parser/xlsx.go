package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/vincentngwk/GIT-ML-DS/internal/dataset"
)

type xlsxParser struct{}

func (xlsxParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}

func (xlsxParser) Parse(name string, data []byte, opt Options) (*dataset.Dataset, error) {
	ds, err := dataset.ReadXLSX(name, bytes.NewReader(data), opt.Sheet, opt.Number)
	if err != nil {
		return nil, err
	}
	if opt.Sheet != "" {
		ds.Name = fmt.Sprintf("%s (sheet: %s)", name, opt.Sheet)
	}
	return ds, nil
}
