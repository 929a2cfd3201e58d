package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// LoadOptions controls how a delimited file is read.
type LoadOptions struct {
	// Delimiter for the file. If 0, '\t' for .tsv paths and ',' otherwise.
	Delimiter rune
	// MissingMarkers are cell texts (after trimming) read as missing.
	// Nil means DefaultMissingMarkers.
	MissingMarkers []string
	// Numeric names columns that must parse as numbers; a cell that does
	// not is a ParseError instead of demoting the column to categorical.
	Numeric []string
}

// DefaultMissingMarkers are the cell texts treated as missing by default.
var DefaultMissingMarkers = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None"}

// DefaultLoadOptions returns the options used by the CLI unless overridden.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{}
}

// LoadCSV opens path and reads it with ReadCSV.
func LoadCSV(path string, opt LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	t, err := ReadCSV(f, opt)
	if err != nil {
		var empty *EmptyInputError
		if errors.As(err, &empty) {
			empty.Path = path
		}
		return nil, err
	}
	return t, nil
}

// ReadCSV parses a delimited stream with a header row into a Table,
// inferring each column's kind from its non-missing cells.
func ReadCSV(r io.Reader, opt LoadOptions) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	// Leading-space trimming would swallow whitespace delimiters.
	cr.TrimLeadingSpace = !unicode.IsSpace(cr.Comma)
	return build(cr, opt)
}

// recordReader yields one record per call and io.EOF after the last one.
// *csv.Reader satisfies it.
type recordReader interface {
	Read() ([]string, error)
}

// build reads a header record followed by data records from src.
func build(src recordReader, opt LoadOptions) (*Table, error) {
	markers := opt.MissingMarkers
	if markers == nil {
		markers = DefaultMissingMarkers
	}
	isMissing := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		isMissing[m] = struct{}{}
	}

	header, err := src.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &EmptyInputError{}
		}
		return nil, csvError(err)
	}
	names := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		n := strings.TrimSpace(h)
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		if _, dup := seen[n]; dup {
			return nil, &ParseError{Line: 1, Column: n, Msg: "duplicate column name"}
		}
		seen[n] = struct{}{}
		names[i] = n
	}

	// cells[j][i] is row i of column j; nil marks a missing cell.
	cells := make([][]*string, len(names))
	line := 1
	for {
		rec, err := src.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, csvError(err)
		}
		line++
		if len(rec) != len(names) {
			return nil, &ParseError{Line: line, Msg: fmt.Sprintf("expected %d fields, got %d", len(names), len(rec))}
		}
		for j, raw := range rec {
			v := strings.TrimSpace(raw)
			if _, miss := isMissing[v]; miss {
				cells[j] = append(cells[j], nil)
				continue
			}
			cells[j] = append(cells[j], &v)
		}
	}
	if line == 1 {
		return nil, &EmptyInputError{}
	}

	declared := make(map[string]struct{}, len(opt.Numeric))
	for _, n := range opt.Numeric {
		declared[n] = struct{}{}
	}
	cols := make([]*Column, len(names))
	for j, name := range names {
		_, mustBeNumeric := declared[name]
		c, err := inferColumn(name, cells[j], mustBeNumeric)
		if err != nil {
			return nil, err
		}
		cols[j] = c
	}
	return New(cols...)
}

func inferColumn(name string, cells []*string, mustBeNumeric bool) (*Column, error) {
	nums := make([]Value, len(cells))
	numeric := true
	for i, s := range cells {
		if s == nil {
			continue
		}
		f, err := strconv.ParseFloat(*s, 64)
		if err != nil {
			if mustBeNumeric {
				return nil, &ParseError{Line: i + 2, Column: name, Msg: fmt.Sprintf("not a number: %q", *s)}
			}
			numeric = false
			break
		}
		nums[i] = Num(f)
	}
	if numeric {
		return &Column{name: name, kind: Numeric, vals: nums}, nil
	}

	bools := make([]Value, len(cells))
	boolean := true
	for i, s := range cells {
		if s == nil {
			continue
		}
		switch strings.ToLower(*s) {
		case "true":
			bools[i] = Bool(true)
		case "false":
			bools[i] = Bool(false)
		default:
			boolean = false
		}
		if !boolean {
			break
		}
	}
	if boolean {
		return &Column{name: name, kind: Boolean, vals: bools}, nil
	}

	strs := make([]Value, len(cells))
	for i, s := range cells {
		if s != nil {
			strs[i] = Str(*s)
		}
	}
	return &Column{name: name, kind: Categorical, vals: strs}, nil
}

func csvError(err error) error {
	var own *ParseError
	if errors.As(err, &own) {
		return own
	}
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.Line, Err: pe.Err}
	}
	return &ParseError{Err: err}
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
