package catalog

import (
	"context"
	"sort"
)

// diffTablesStructural runs the alignment-aware diff: per sheet, rows are
// matched by the longest common subsequence of their content hashes. Matched
// rows are identical and contribute nothing; leftover rows are paired in
// order and diffed cell by cell, and any excess is reported as whole-row
// insertion or deletion instead of a cascade of shifted-cell changes.
func diffTablesStructural(ctx context.Context, from, to *Table, params DiffParams) (Differences, error) {
	diffs := make(Differences, 0)
	counter := 0

	sheets := make(map[string]struct{})
	for name := range from.Sheets {
		sheets[name] = struct{}{}
	}
	for name := range to.Sheets {
		sheets[name] = struct{}{}
	}

	for name := range sheets {
		fromSheet, fromOK := from.Sheets[name]
		toSheet, toOK := to.Sheets[name]
		if !fromOK || !toOK {
			// the whole sheet is one-sided, positional semantics already
			// describe it exactly
			oneSided, err := diffOneSidedSheet(ctx, name, fromSheet, toSheet, &counter)
			if err != nil {
				return nil, err
			}
			diffs = append(diffs, oneSided...)
			continue
		}
		sheetDiffs, err := diffSheetStructural(ctx, name, fromSheet, toSheet, params, &counter)
		if err != nil {
			return nil, err
		}
		diffs = append(diffs, sheetDiffs...)
	}
	sortDifferences(diffs)
	return diffs, nil
}

func diffOneSidedSheet(ctx context.Context, name string, fromSheet, toSheet *Sheet, counter *int) (Differences, error) {
	diffs := make(Differences, 0)
	if fromSheet != nil {
		for ref, cell := range fromSheet.Cells {
			if err := checkCancel(ctx, counter); err != nil {
				return nil, err
			}
			cell := cell
			diffs = append(diffs, Difference{
				Location: Location{Sheet: name, Row: ref.Row, Column: ref.Column},
				Type:     DifferenceTypeRemoved,
				OldValue: &cell,
			})
		}
	}
	if toSheet != nil {
		for ref, cell := range toSheet.Cells {
			if err := checkCancel(ctx, counter); err != nil {
				return nil, err
			}
			cell := cell
			diffs = append(diffs, Difference{
				Location: Location{Sheet: name, Row: ref.Row, Column: ref.Column},
				Type:     DifferenceTypeAdded,
				NewValue: &cell,
			})
		}
	}
	return diffs, nil
}

func diffSheetStructural(ctx context.Context, name string, fromSheet, toSheet *Sheet, params DiffParams, counter *int) (Differences, error) {
	fromRows := sheetRows(fromSheet)
	toRows := sheetRows(toSheet)
	fromHashes := rowHashes(fromSheet, fromRows)
	toHashes := rowHashes(toSheet, toRows)

	pairs := lcsMatch(fromHashes, toHashes)
	matchedFrom := make(map[int]int, len(pairs))
	matchedTo := make(map[int]struct{}, len(pairs))
	for _, p := range pairs {
		matchedFrom[p.from] = p.to
		matchedTo[p.to] = struct{}{}
	}

	diffs := make(Differences, 0)

	if params.IncludeUnchanged {
		// a matched row may have moved, so it is reported at its position on
		// the to side, the same coordinate convention diffRowPair uses
		for i, row := range fromRows {
			j, ok := matchedFrom[i]
			if !ok {
				continue
			}
			toRow := toRows[j]
			for _, ref := range rowRefs(fromSheet, row) {
				cell := fromSheet.Cells[ref]
				diffs = append(diffs, Difference{
					Location: Location{Sheet: name, Row: toRow, Column: ref.Column},
					Type:     DifferenceTypeUnchanged,
					OldValue: &cell,
					NewValue: &cell,
				})
			}
		}
	}

	var leftoverFrom, leftoverTo []int
	for i, row := range fromRows {
		if _, ok := matchedFrom[i]; !ok {
			leftoverFrom = append(leftoverFrom, row)
		}
	}
	for j, row := range toRows {
		if _, ok := matchedTo[j]; !ok {
			leftoverTo = append(leftoverTo, row)
		}
	}

	// pair leftover rows in order: these are genuinely changed rows
	paired := len(leftoverFrom)
	if len(leftoverTo) < paired {
		paired = len(leftoverTo)
	}
	for k := 0; k < paired; k++ {
		rowDiffs, err := diffRowPair(ctx, name, fromSheet, leftoverFrom[k], toSheet, leftoverTo[k], params, counter)
		if err != nil {
			return nil, err
		}
		diffs = append(diffs, rowDiffs...)
	}

	// excess rows are whole-row deletions/insertions
	for _, row := range leftoverFrom[paired:] {
		diffs = append(diffs, Difference{
			Location: Location{Sheet: name, Row: row, Column: WholeRow},
			Type:     DifferenceTypeRowDeleted,
		})
	}
	for _, row := range leftoverTo[paired:] {
		diffs = append(diffs, Difference{
			Location: Location{Sheet: name, Row: row, Column: WholeRow},
			Type:     DifferenceTypeRowInserted,
		})
	}
	return diffs, nil
}

// diffRowPair compares two aligned rows column by column, reporting at the
// to-side row coordinate.
func diffRowPair(ctx context.Context, name string, fromSheet *Sheet, fromRow int, toSheet *Sheet, toRow int, params DiffParams, counter *int) (Differences, error) {
	columns := make(map[int]struct{})
	for ref := range fromSheet.Cells {
		if ref.Row == fromRow {
			columns[ref.Column] = struct{}{}
		}
	}
	for ref := range toSheet.Cells {
		if ref.Row == toRow {
			columns[ref.Column] = struct{}{}
		}
	}
	diffs := make(Differences, 0)
	for col := range columns {
		if err := checkCancel(ctx, counter); err != nil {
			return nil, err
		}
		loc := Location{Sheet: name, Row: toRow, Column: col}
		fromCell, fromOK := fromSheet.Cells[CellRef{Row: fromRow, Column: col}]
		toCell, toOK := toSheet.Cells[CellRef{Row: toRow, Column: col}]
		switch {
		case !fromOK && toOK:
			diffs = append(diffs, Difference{Location: loc, Type: DifferenceTypeAdded, NewValue: &toCell})
		case fromOK && !toOK:
			diffs = append(diffs, Difference{Location: loc, Type: DifferenceTypeRemoved, OldValue: &fromCell})
		case !valuesEqual(fromCell.Value, toCell.Value, params):
			diffs = append(diffs, Difference{Location: loc, Type: DifferenceTypeChanged, OldValue: &fromCell, NewValue: &toCell})
		default:
			if params.IncludeUnchanged {
				diffs = append(diffs, Difference{Location: loc, Type: DifferenceTypeUnchanged, OldValue: &fromCell, NewValue: &toCell})
			}
		}
	}
	return diffs, nil
}

func sheetRows(sheet *Sheet) []int {
	seen := make(map[int]struct{})
	for ref := range sheet.Cells {
		seen[ref.Row] = struct{}{}
	}
	rows := make([]int, 0, len(seen))
	for row := range seen {
		rows = append(rows, row)
	}
	sort.Ints(rows)
	return rows
}

func rowRefs(sheet *Sheet, row int) []CellRef {
	refs := make([]CellRef, 0)
	for ref := range sheet.Cells {
		if ref.Row == row {
			refs = append(refs, ref)
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Column < refs[j].Column })
	return refs
}

func rowHashes(sheet *Sheet, rows []int) []string {
	hashes := make([]string, len(rows))
	for i, row := range rows {
		hashes[i] = string(rowIdentity(sheet, row))
	}
	return hashes
}

type lcsPair struct {
	from, to int
}

// lcsMatch computes the longest common subsequence of two hash sequences and
// returns the matched index pairs in order.
func lcsMatch(a, b []string) []lcsPair {
	n, m := len(a), len(b)
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else if dp[i+1][j] >= dp[i][j+1] {
				dp[i][j] = dp[i+1][j]
			} else {
				dp[i][j] = dp[i][j+1]
			}
		}
	}
	var pairs []lcsPair
	for i, j := 0, 0; i < n && j < m; {
		switch {
		case a[i] == b[j]:
			pairs = append(pairs, lcsPair{from: i, to: j})
			i++
			j++
		case dp[i+1][j] >= dp[i][j+1]:
			i++
		default:
			j++
		}
	}
	return pairs
}
