package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wideTable builds a single-sheet table with enough cells for the comparison
// loops to hit their cancellation checkpoints.
func wideTable(rows, columns int, fill func(row, col int) Cell) *Table {
	table := NewTable()
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			table.Set("Sheet1", row, col, fill(row, col))
		}
	}
	return table
}

func TestDiffTables_Canceled(t *testing.T) {
	from := wideTable(60, 40, func(row, col int) Cell {
		return NumberCell(float64(row*40 + col))
	})
	to := wideTable(60, 40, func(row, col int) Cell {
		return NumberCell(float64(row*40 + col + 1))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	diffs, err := diffTables(ctx, from, to, DiffParams{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "expected context.Canceled, got %v", err)
	assert.Nil(t, diffs)

	// the same comparison runs to completion on a live context
	diffs, err = diffTables(context.Background(), from, to, DiffParams{})
	require.NoError(t, err)
	assert.Len(t, diffs, 60*40)
}

func TestDiffTablesStructural_Canceled(t *testing.T) {
	from := wideTable(60, 40, func(row, col int) Cell {
		return TextCell("before")
	})
	to := wideTable(60, 40, func(row, col int) Cell {
		return TextCell("after")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	diffs, err := diffTablesStructural(ctx, from, to, DiffParams{StructuralAware: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "expected context.Canceled, got %v", err)
	assert.Nil(t, diffs)
}

func TestResolveDecisions_Canceled(t *testing.T) {
	base := wideTable(60, 40, func(row, col int) Cell {
		return NumberCell(0)
	})
	left := wideTable(60, 40, func(row, col int) Cell {
		return NumberCell(1)
	})
	right := wideTable(60, 40, func(row, col int) Cell {
		return NumberCell(2)
	})
	input := &mergeInput{
		base:  &VersionData{Table: base},
		left:  &VersionData{Table: left},
		right: &VersionData{Table: right},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	decisions, err := resolveDecisions(ctx, input, ResolveParams{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "expected context.Canceled, got %v", err)
	assert.Nil(t, decisions)
}
