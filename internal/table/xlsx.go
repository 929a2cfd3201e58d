package table

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"
)

// LoadXLSX reads one worksheet of an .xlsx workbook into a Table. The first
// row is the header. sheet selects a worksheet by name; empty means the
// first sheet in the workbook. Cells go through the same missing-marker
// and kind inference as LoadCSV.
func LoadXLSX(p, sheet string, opt LoadOptions) (*Table, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: p, Err: err}
		}
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, &ParseError{Msg: "not an xlsx workbook", Err: err}
	}
	target, err := resolveSheet(zr, sheet)
	if err != nil {
		return nil, err
	}
	data := zipEntry(zr, target)
	if data == nil {
		return nil, &ParseError{Msg: fmt.Sprintf("worksheet %s missing from workbook", target)}
	}
	rows := &sheetRows{dec: xml.NewDecoder(bytes.NewReader(data)), shared: sharedStrings(zipEntry(zr, "xl/sharedStrings.xml"))}
	t, err := build(rows, opt)
	if err != nil {
		var empty *EmptyInputError
		if errors.As(err, &empty) {
			empty.Path = p
		}
		return nil, err
	}
	return t, nil
}

// IsWorkbook reports whether p names an .xlsx file.
func IsWorkbook(p string) bool {
	return strings.EqualFold(path.Ext(p), ".xlsx")
}

type wbSheet struct {
	name, rid string
}

func resolveSheet(zr *zip.Reader, name string) (string, error) {
	var sheets []wbSheet
	scanStart(zipEntry(zr, "xl/workbook.xml"), "sheet", func(se xml.StartElement) {
		var s wbSheet
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				s.name = a.Value
			case "id":
				s.rid = a.Value
			}
		}
		sheets = append(sheets, s)
	})
	rels := map[string]string{}
	scanStart(zipEntry(zr, "xl/_rels/workbook.xml.rels"), "Relationship", func(se xml.StartElement) {
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			rels[id] = target
		}
	})
	if len(sheets) == 0 {
		if name != "" {
			return "", &ParseError{Msg: fmt.Sprintf("sheet %q not found: workbook lists no sheets", name)}
		}
		return "xl/worksheets/sheet1.xml", nil
	}
	pick := sheets[0]
	if name != "" {
		found := false
		avail := make([]string, len(sheets))
		for i, s := range sheets {
			avail[i] = s.name
			if !found && strings.EqualFold(s.name, name) {
				pick, found = s, true
			}
		}
		if !found {
			return "", &ParseError{Msg: fmt.Sprintf("sheet %q not found; available: %s", name, strings.Join(avail, ", "))}
		}
	}
	if rel, ok := rels[pick.rid]; ok {
		return relPath(rel), nil
	}
	return "xl/worksheets/sheet1.xml", nil
}

// relPath maps a workbook relationship target to its zip entry name.
// Targets may be absolute ("/xl/worksheets/sheet1.xml") or relative to xl/.
func relPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}

func zipEntry(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return nil
		}
		return b
	}
	return nil
}

func scanStart(data []byte, local string, fn func(xml.StartElement)) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == local {
			fn(se)
		}
	}
}

func sharedStrings(data []byte) []string {
	var out []string
	if len(data) == 0 {
		return out
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var buf strings.Builder
	inT := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	}
}

// sheetRows streams worksheet rows as records. Rows are padded to the
// header width; trailing empty cells past it are dropped.
type sheetRows struct {
	dec    *xml.Decoder
	shared []string
	width  int
	line   int
}

func (r *sheetRows) Read() ([]string, error) {
	var row []string
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, &ParseError{Line: r.line + 1, Msg: "malformed worksheet", Err: err}
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch {
			case se.Name.Local == "row":
				inRow, row = true, nil
			case inRow && se.Name.Local == "c":
				var ref, typ string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				idx := len(row)
				if i := colIndex(ref); i >= 0 {
					idx = i
				}
				if idx >= maxColumns {
					return nil, &ParseError{Line: r.line + 1, Msg: fmt.Sprintf("cell %q is beyond column %d", ref, maxColumns)}
				}
				for len(row) <= idx {
					row = append(row, "")
				}
				v, err := r.cell(typ)
				if err != nil {
					return nil, err
				}
				row[idx] = v
			}
		case xml.EndElement:
			if se.Name.Local != "row" {
				continue
			}
			r.line++
			if r.line == 1 {
				r.width = len(row)
			}
			for len(row) > r.width && strings.TrimSpace(row[len(row)-1]) == "" {
				row = row[:len(row)-1]
			}
			for len(row) < r.width {
				row = append(row, "")
			}
			return row, nil
		}
	}
}

func (r *sheetRows) cell(typ string) (string, error) {
	var val string
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return "", &ParseError{Line: r.line + 1, Msg: "malformed cell", Err: err}
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				var s string
				if err := r.dec.DecodeElement(&s, &se); err != nil {
					return "", &ParseError{Line: r.line + 1, Msg: "malformed cell", Err: err}
				}
				val += s
			}
		case xml.EndElement:
			if se.Name.Local != "c" {
				continue
			}
			switch typ {
			case "s":
				i, err := strconv.Atoi(strings.TrimSpace(val))
				if err != nil || i < 0 || i >= len(r.shared) {
					return "", nil
				}
				return r.shared[i], nil
			case "b":
				if val == "1" {
					return "true", nil
				}
				return "false", nil
			}
			return val, nil
		}
	}
}

// maxColumns is the worksheet width limit (column XFD).
const maxColumns = 16384

// colIndex turns a cell reference such as "C12" into a 0-based column.
func colIndex(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		if idx > maxColumns {
			// saturate; the caller rejects anything past the sheet limit
			idx = maxColumns + 1
		}
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
}
