package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValuesEqual_Typed(t *testing.T) {
	p := DiffParams{}

	// typed equality: numeric 10 and text "10" differ
	assert.False(t, valuesEqual(NumberCell(10).Value, TextCell("10").Value, p))
	assert.True(t, valuesEqual(NumberCell(10).Value, NumberCell(10).Value, p))
	assert.True(t, valuesEqual(BoolCell(true).Value, BoolCell(true).Value, p))
	assert.False(t, valuesEqual(BoolCell(true).Value, BoolCell(false).Value, p))
	assert.True(t, valuesEqual(EmptyCell().Value, EmptyCell().Value, p))
}

func TestValuesEqual_TextOptions(t *testing.T) {
	assert.False(t, valuesEqual(TextCell("Lab  Result").Value, TextCell("lab result").Value, DiffParams{}))
	assert.True(t, valuesEqual(TextCell("Lab  Result").Value, TextCell("lab result").Value, DiffParams{
		IgnoreWhitespace: true,
		IgnoreCase:       true,
	}))
	assert.True(t, valuesEqual(TextCell("  padded  ").Value, TextCell("padded").Value, DiffParams{
		IgnoreWhitespace: true,
	}))
	// whitespace option alone does not fold case
	assert.False(t, valuesEqual(TextCell("Padded").Value, TextCell("padded").Value, DiffParams{
		IgnoreWhitespace: true,
	}))
}

func TestValuesEqual_NumericEpsilon(t *testing.T) {
	assert.False(t, valuesEqual(NumberCell(1.0).Value, NumberCell(1.0001).Value, DiffParams{}))
	assert.True(t, valuesEqual(NumberCell(1.0).Value, NumberCell(1.0001).Value, DiffParams{Epsilon: 0.001}))
	assert.False(t, valuesEqual(NumberCell(1.0).Value, NumberCell(1.01).Value, DiffParams{Epsilon: 0.001}))
}

func TestValuesEqual_Formula(t *testing.T) {
	p := DiffParams{}

	a := FormulaCell("=SUM(A1:A3)", "30", 30)
	b := FormulaCell("=SUM(A1:A3)", "30", 30)
	assert.True(t, valuesEqual(a.Value, b.Value, p))

	// same cached result, different expression
	c := FormulaCell("=A1+A2+A3", "30", 30)
	assert.False(t, valuesEqual(a.Value, c.Value, p))

	// same expression, stale cached result
	d := FormulaCell("=SUM(A1:A3)", "40", 40)
	assert.False(t, valuesEqual(a.Value, d.Value, p))

	// a formula cell never equals the plain value it computes
	assert.False(t, valuesEqual(a.Value, NumberCell(30).Value, p))
}

func TestCellsEqual_RawTextExcluded(t *testing.T) {
	a := Cell{Value: Value{Type: ValueTypeNumber, Number: 2.5}, RawText: "2.5"}
	b := Cell{Value: Value{Type: ValueTypeNumber, Number: 2.5}, RawText: "2.50"}
	assert.True(t, cellsEqual(&a, &b, DiffParams{}))
}

func TestCellsEqual_Nil(t *testing.T) {
	cell := NumberCell(1)
	assert.True(t, cellsEqual(nil, nil, DiffParams{}))
	assert.False(t, cellsEqual(&cell, nil, DiffParams{}))
	assert.False(t, cellsEqual(nil, &cell, DiffParams{}))
}

func TestLocationString(t *testing.T) {
	assert.Equal(t, "Sheet1!A1", Location{Sheet: "Sheet1", Row: 0, Column: 0}.String())
	assert.Equal(t, "Sheet1!B3", Location{Sheet: "Sheet1", Row: 2, Column: 1}.String())
	assert.Equal(t, "Data!AA10", Location{Sheet: "Data", Row: 9, Column: 26}.String())
	assert.Equal(t, "Data!row 4", Location{Sheet: "Data", Row: 3, Column: WholeRow}.String())
}
