package parser

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vincentngwk/GIT-ML-DS/internal/dataset"
	"github.com/vincentngwk/GIT-ML-DS/internal/utils"
)

// Options tune how uploaded bytes are read.
type Options struct {
	// Sheet selects the worksheet of a workbook; empty means the first one.
	Sheet  string
	Number dataset.NumberFormat
}

// Parser defines a tabular format implementation.
type Parser interface {
	CanParse(filename string) bool
	Parse(name string, data []byte, opt Options) (*dataset.Dataset, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrUnsupported indicates a format is not supported yet.
var ErrUnsupported = errors.New("unsupported file format")

// Parse selects a parser based on name and returns the dataset. The dataset
// ID is the content hash of data, so identical uploads share an identity.
func Parse(name string, data []byte) (*dataset.Dataset, error) {
	return ParseWith(name, data, Options{})
}

// ParseWith is Parse with explicit options.
func ParseWith(name string, data []byte, opt Options) (*dataset.Dataset, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, dataset.ErrEmpty
	}
	p, err := lookup(name)
	if err != nil {
		return nil, err
	}
	ds, err := p.Parse(name, data, opt)
	if err != nil {
		return nil, err
	}
	ds.ID = utils.ContentHash(data)
	return ds, nil
}

// ParseFile reads path from disk and parses it.
func ParseFile(path string, opt Options) (*dataset.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseWith(filepath.Base(path), data, opt)
}

func lookup(name string) (Parser, error) {
	for _, p := range registry {
		if p.CanParse(name) {
			return p, nil
		}
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xls", ".ods", ".parquet", ".json":
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(name))
	}
	// Browsers may send uploads without an extension; read them as CSV.
	return csvParser{}, nil
}

func init() {
	// Register default parsers
	Register(csvParser{})
	Register(xlsxParser{})
}
