package catalog

import (
	"math"
	"strconv"
	"strings"
)

type ValueType int8

const (
	ValueTypeEmpty ValueType = iota
	ValueTypeText
	ValueTypeNumber
	ValueTypeBool
	ValueTypeFormula
)

func (v ValueType) String() string {
	switch v {
	case ValueTypeEmpty:
		return "empty"
	case ValueTypeText:
		return "text"
	case ValueTypeNumber:
		return "number"
	case ValueTypeBool:
		return "bool"
	case ValueTypeFormula:
		return "formula"
	default:
		return "unknown"
	}
}

// Value is the typed content of a cell. For ValueTypeFormula, Formula holds
// the source expression and the cached result is kept in Text (canonical
// string form) and, when numeric, in Number as well.
type Value struct {
	Type    ValueType
	Text    string
	Number  float64
	Bool    bool
	Formula string
}

// Cell is a value plus the original string form it was parsed from. RawText
// is carried for display and audit; it takes no part in equality, which is
// typed (a numeric 10 and a text "10" are never equal).
type Cell struct {
	Value   Value
	RawText string
}

func TextCell(s string) Cell {
	return Cell{Value: Value{Type: ValueTypeText, Text: s}, RawText: s}
}

func NumberCell(n float64) Cell {
	raw := strconv.FormatFloat(n, 'g', -1, 64)
	return Cell{Value: Value{Type: ValueTypeNumber, Number: n}, RawText: raw}
}

func BoolCell(b bool) Cell {
	return Cell{Value: Value{Type: ValueTypeBool, Bool: b}, RawText: strconv.FormatBool(b)}
}

func EmptyCell() Cell {
	return Cell{Value: Value{Type: ValueTypeEmpty}}
}

func FormulaCell(formula, cachedText string, cachedNumber float64) Cell {
	return Cell{
		Value:   Value{Type: ValueTypeFormula, Formula: formula, Text: cachedText, Number: cachedNumber},
		RawText: formula,
	}
}

func normalizeText(s string, p DiffParams) string {
	if p.IgnoreWhitespace {
		s = strings.Join(strings.Fields(s), " ")
	}
	if p.IgnoreCase {
		s = strings.ToLower(s)
	}
	return s
}

func numbersEqual(a, b, epsilon float64) bool {
	if epsilon <= 0 {
		return a == b
	}
	return math.Abs(a-b) <= epsilon
}

// valuesEqual compares two values under the given options. Types never
// cross-match; numeric cells compare with the configured epsilon (default
// exact); formula cells compare by formula source and cached result.
func valuesEqual(a, b Value, p DiffParams) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case ValueTypeEmpty:
		return true
	case ValueTypeText:
		return normalizeText(a.Text, p) == normalizeText(b.Text, p)
	case ValueTypeNumber:
		return numbersEqual(a.Number, b.Number, p.Epsilon)
	case ValueTypeBool:
		return a.Bool == b.Bool
	case ValueTypeFormula:
		return a.Formula == b.Formula &&
			normalizeText(a.Text, p) == normalizeText(b.Text, p) &&
			numbersEqual(a.Number, b.Number, p.Epsilon)
	default:
		return false
	}
}

func cellsEqual(a, b *Cell, p DiffParams) bool {
	if a == nil || b == nil {
		return a == b
	}
	return valuesEqual(a.Value, b.Value, p)
}

// isNumeric reports whether the cell carries a usable numeric value, counting
// formula cells whose cached result is numeric.
func isNumeric(c *Cell) (float64, bool) {
	if c == nil {
		return 0, false
	}
	switch c.Value.Type {
	case ValueTypeNumber:
		return c.Value.Number, true
	case ValueTypeFormula:
		if _, err := strconv.ParseFloat(strings.TrimSpace(c.Value.Text), 64); err == nil {
			return c.Value.Number, true
		}
		return 0, false
	default:
		return 0, false
	}
}
