package table

import (
	"path/filepath"
	"strings"
)

// Loader reads one file format into a Table.
type Loader interface {
	CanLoad(path string) bool
	Load(path, sheet string, opt LoadOptions) (*Table, error)
}

var loaders []Loader

// RegisterLoader adds a format ahead of the delimited-text fallback.
func RegisterLoader(l Loader) {
	loaders = append(loaders, l)
}

// Open picks a loader by file extension. Paths no loader claims are read as
// delimited text. sheet only applies to workbook formats.
func Open(path, sheet string, opt LoadOptions) (*Table, error) {
	for _, l := range loaders {
		if l.CanLoad(path) {
			return l.Load(path, sheet, opt)
		}
	}
	return LoadCSV(path, opt)
}

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(path string) bool { return IsWorkbook(path) }

func (xlsxLoader) Load(path, sheet string, opt LoadOptions) (*Table, error) {
	return LoadXLSX(path, sheet, opt)
}

type csvLoader struct{}

func (csvLoader) CanLoad(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return true
	}
	return false
}

func (csvLoader) Load(path, _ string, opt LoadOptions) (*Table, error) {
	return LoadCSV(path, opt)
}

func init() {
	RegisterLoader(xlsxLoader{})
	RegisterLoader(csvLoader{})
}
