package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/benchwise/gridvault/db"
)

type diffCacheKey struct {
	From   uuid.UUID
	To     uuid.UUID
	Params DiffParams
}

// Diff computes the cell-level differences between two versions of the same
// document. Comparison is by absolute (sheet, row, column) position: a row
// inserted mid-sheet shows up as cell-level changes for every shifted row
// below it. That keeps the cost O(cells) and the output deterministic;
// callers that need alignment-aware output set params.StructuralAware, which
// re-expresses whole-row insertions and deletions found by aligning row
// content hashes.
func (c *cataloger) Diff(ctx context.Context, fromVersionID, toVersionID uuid.UUID, params DiffParams) (Differences, error) {
	// versions are immutable, so a computed diff never goes stale
	v, err := c.diffCache.GetOrSet(diffCacheKey{From: fromVersionID, To: toVersionID, Params: params}, func() (interface{}, error) {
		return c.computeDiff(ctx, fromVersionID, toVersionID, params)
	})
	if err != nil {
		return nil, err
	}
	return v.(Differences), nil
}

func (c *cataloger) computeDiff(ctx context.Context, fromVersionID, toVersionID uuid.UUID, params DiffParams) (Differences, error) {
	res, err := c.db.Transact(func(tx db.Tx) (interface{}, error) {
		from, err := getVersionData(tx, fromVersionID)
		if err != nil {
			return nil, err
		}
		to, err := getVersionData(tx, toVersionID)
		if err != nil {
			return nil, err
		}
		if from.Version.DocumentID != to.Version.DocumentID {
			return nil, ErrCrossDocument
		}
		return &versionPair{from: from, to: to}, nil
	}, c.txOpts(ctx, db.ReadOnly())...)
	if err != nil {
		return nil, err
	}
	pair := res.(*versionPair)
	// comparison is CPU-bound, keep it outside the transaction
	if params.StructuralAware {
		return diffTablesStructural(ctx, pair.from.Table, pair.to.Table, params)
	}
	return diffTables(ctx, pair.from.Table, pair.to.Table, params)
}

type versionPair struct {
	from *VersionData
	to   *VersionData
}

// diffTables compares two tables by absolute position over the union of
// their cell locations.
func diffTables(ctx context.Context, from, to *Table, params DiffParams) (Differences, error) {
	locations := unionLocations(from, to)
	diffs := make(Differences, 0)
	counter := 0
	for _, loc := range locations {
		if err := checkCancel(ctx, &counter); err != nil {
			return nil, err
		}
		d, ok := classifyLocation(from, to, loc, params)
		if !ok {
			continue
		}
		diffs = append(diffs, d)
	}
	sortDifferences(diffs)
	return diffs, nil
}

func unionLocations(from, to *Table) []Location {
	seen := make(map[Location]struct{})
	for _, t := range []*Table{from, to} {
		for name, sheet := range t.Sheets {
			for ref := range sheet.Cells {
				seen[Location{Sheet: name, Row: ref.Row, Column: ref.Column}] = struct{}{}
			}
		}
	}
	locations := make([]Location, 0, len(seen))
	for loc := range seen {
		locations = append(locations, loc)
	}
	return locations
}

// classifyLocation returns the difference at loc, and whether it should be
// reported under the given params.
func classifyLocation(from, to *Table, loc Location, params DiffParams) (Difference, bool) {
	fromCell, fromOK := from.Get(loc.Sheet, loc.Row, loc.Column)
	toCell, toOK := to.Get(loc.Sheet, loc.Row, loc.Column)
	switch {
	case !fromOK && toOK:
		return Difference{Location: loc, Type: DifferenceTypeAdded, NewValue: &toCell}, true
	case fromOK && !toOK:
		return Difference{Location: loc, Type: DifferenceTypeRemoved, OldValue: &fromCell}, true
	case !valuesEqual(fromCell.Value, toCell.Value, params):
		return Difference{Location: loc, Type: DifferenceTypeChanged, OldValue: &fromCell, NewValue: &toCell}, true
	default:
		if params.IncludeUnchanged {
			return Difference{Location: loc, Type: DifferenceTypeUnchanged, OldValue: &fromCell, NewValue: &toCell}, true
		}
		return Difference{}, false
	}
}
