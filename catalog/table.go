package catalog

import (
	"bytes"
	"encoding/binary"
	"sort"
	"strconv"
)

// CellRef addresses a cell inside a sheet.
type CellRef struct {
	Row    int
	Column int
}

// Location addresses a cell (or a whole row, when Column is WholeRow) across
// the document.
type Location struct {
	Sheet  string
	Row    int
	Column int
}

// WholeRow marks a Location that addresses an entire row, used by
// structural-aware diffs for row insertions and deletions.
const WholeRow = -1

// String renders the location in the familiar A1 notation, e.g. "Sheet1!B3".
func (l Location) String() string {
	if l.Column == WholeRow {
		return l.Sheet + "!row " + strconv.Itoa(l.Row+1)
	}
	return l.Sheet + "!" + columnName(l.Column) + strconv.Itoa(l.Row+1)
}

func columnName(col int) string {
	name := make([]byte, 0, 3)
	for col >= 0 {
		name = append([]byte{byte('A' + col%26)}, name...)
		col = col/26 - 1
	}
	return string(name)
}

func compareLocations(a, b Location) int {
	if a.Sheet != b.Sheet {
		if a.Sheet < b.Sheet {
			return -1
		}
		return 1
	}
	if a.Row != b.Row {
		return a.Row - b.Row
	}
	return a.Column - b.Column
}

// Sheet is a named grid of cells. Cells are keyed by position; absent keys
// are empty cells.
type Sheet struct {
	Name  string
	Cells map[CellRef]Cell
}

func NewSheet(name string) *Sheet {
	return &Sheet{Name: name, Cells: make(map[CellRef]Cell)}
}

// Table is a normalized in-memory table: a set of sheets, each a sparse grid
// of typed cells. This is what the (out of scope) upload parser yields.
type Table struct {
	Sheets map[string]*Sheet
}

func NewTable() *Table {
	return &Table{Sheets: make(map[string]*Sheet)}
}

func (t *Table) Set(sheet string, row, col int, cell Cell) {
	s, ok := t.Sheets[sheet]
	if !ok {
		s = NewSheet(sheet)
		t.Sheets[sheet] = s
	}
	s.Cells[CellRef{Row: row, Column: col}] = cell
}

func (t *Table) Get(sheet string, row, col int) (Cell, bool) {
	s, ok := t.Sheets[sheet]
	if !ok {
		return Cell{}, false
	}
	c, ok := s.Cells[CellRef{Row: row, Column: col}]
	return c, ok
}

func (t *Table) delete(sheet string, row, col int) {
	s, ok := t.Sheets[sheet]
	if !ok {
		return
	}
	delete(s.Cells, CellRef{Row: row, Column: col})
	if len(s.Cells) == 0 {
		delete(t.Sheets, sheet)
	}
}

func (t *Table) clone() *Table {
	clone := NewTable()
	for name, sheet := range t.Sheets {
		s := NewSheet(name)
		for ref, cell := range sheet.Cells {
			s.Cells[ref] = cell
		}
		clone.Sheets[name] = s
	}
	return clone
}

// CellCount returns the total number of cells across all sheets.
func (t *Table) CellCount() int {
	n := 0
	for _, sheet := range t.Sheets {
		n += len(sheet.Cells)
	}
	return n
}

func (t *Table) sheetNames() []string {
	names := make([]string, 0, len(t.Sheets))
	for name := range t.Sheets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedRefs(cells map[CellRef]Cell) []CellRef {
	refs := make([]CellRef, 0, len(cells))
	for ref := range cells {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Row != refs[j].Row {
			return refs[i].Row < refs[j].Row
		}
		return refs[i].Column < refs[j].Column
	})
	return refs
}

// Identity serializes the table into a canonical byte sequence: sheets by
// name, then cells by row and column. Map iteration order never leaks into
// the output, so identical content always produces identical bytes. Every
// string is length-prefixed, which keeps the encoding injective: no choice
// of cell contents can make two different tables serialize alike.
func (t *Table) Identity() []byte {
	var buf bytes.Buffer
	for _, name := range t.sheetNames() {
		sheet := t.Sheets[name]
		writeIdentityString(&buf, name)
		writeVarint(&buf, int64(len(sheet.Cells)))
		for _, ref := range sortedRefs(sheet.Cells) {
			cell := sheet.Cells[ref]
			writeVarint(&buf, int64(ref.Row))
			writeVarint(&buf, int64(ref.Column))
			writeCellIdentity(&buf, cell)
		}
	}
	return buf.Bytes()
}

func writeVarint(buf *bytes.Buffer, v int64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writeIdentityString(buf *bytes.Buffer, s string) {
	writeVarint(buf, int64(len(s)))
	buf.WriteString(s)
}

func writeCellIdentity(buf *bytes.Buffer, cell Cell) {
	buf.WriteByte(byte(cell.Value.Type))
	switch cell.Value.Type {
	case ValueTypeText:
		writeIdentityString(buf, cell.Value.Text)
	case ValueTypeNumber:
		writeIdentityString(buf, strconv.FormatFloat(cell.Value.Number, 'g', -1, 64))
	case ValueTypeBool:
		if cell.Value.Bool {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case ValueTypeFormula:
		writeIdentityString(buf, cell.Value.Formula)
		writeIdentityString(buf, cell.Value.Text)
	}
	writeIdentityString(buf, cell.RawText)
}

// rowIdentity serializes a single row of a sheet, used by the structural diff
// pass to align rows by content.
func rowIdentity(sheet *Sheet, row int) []byte {
	var buf bytes.Buffer
	refs := make([]CellRef, 0)
	for ref := range sheet.Cells {
		if ref.Row == row {
			refs = append(refs, ref)
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Column < refs[j].Column })
	for _, ref := range refs {
		writeVarint(&buf, int64(ref.Column))
		writeCellIdentity(&buf, sheet.Cells[ref])
	}
	return buf.Bytes()
}
