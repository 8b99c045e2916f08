package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/go-test/deep"

	"github.com/benchwise/gridvault/testutil"
)

func TestCataloger_Diff(t *testing.T) {
	ctx := context.Background()
	c := testCataloger(t)
	doc := testDocument(t, ctx, c, "diff")

	from := testVersion(t, ctx, c, doc.ID, nil, testTable("Sheet1", map[CellRef]Cell{
		{Row: 0, Column: 0}: TextCell("assay"),
		{Row: 0, Column: 1}: NumberCell(10),
		{Row: 1, Column: 0}: TextCell("gone"),
	}), "alice")
	fromID := from.ID
	to := testVersion(t, ctx, c, doc.ID, &fromID, testTable("Sheet1", map[CellRef]Cell{
		{Row: 0, Column: 0}: TextCell("assay"),
		{Row: 0, Column: 1}: NumberCell(20),
		{Row: 2, Column: 0}: TextCell("new"),
	}), "alice")

	diffs, err := c.Diff(ctx, from.ID, to.ID, DiffParams{})
	testutil.MustDo(t, "diff versions", err)

	expected := []string{
		"~ Sheet1!B1",
		"- Sheet1!A2",
		"+ Sheet1!A3",
	}
	var got []string
	for _, d := range diffs {
		got = append(got, d.String())
	}
	if diff := deep.Equal(got, expected); diff != nil {
		t.Error("unexpected differences:", diff)
	}

	counts := diffs.CountByType()
	if counts[DifferenceTypeChanged] != 1 || counts[DifferenceTypeAdded] != 1 || counts[DifferenceTypeRemoved] != 1 {
		t.Errorf("unexpected summary counts: %v", counts)
	}

	// unchanged entries only on request
	diffs, err = c.Diff(ctx, from.ID, to.ID, DiffParams{IncludeUnchanged: true})
	testutil.MustDo(t, "diff with unchanged", err)
	if diffs.CountByType()[DifferenceTypeUnchanged] != 1 {
		t.Errorf("expected one unchanged entry, got %v", diffs.CountByType())
	}
}

func TestCataloger_Diff_Directional(t *testing.T) {
	ctx := context.Background()
	c := testCataloger(t)
	doc := testDocument(t, ctx, c, "diff-directional")

	v1 := testVersion(t, ctx, c, doc.ID, nil, testTable("Sheet1", map[CellRef]Cell{
		{Row: 0, Column: 0}: NumberCell(1),
	}), "alice")
	v1ID := v1.ID
	v2 := testVersion(t, ctx, c, doc.ID, &v1ID, testTable("Sheet1", map[CellRef]Cell{
		{Row: 0, Column: 0}: NumberCell(1),
		{Row: 1, Column: 0}: NumberCell(2),
	}), "alice")

	forward, err := c.Diff(ctx, v1.ID, v2.ID, DiffParams{})
	testutil.MustDo(t, "forward diff", err)
	backward, err := c.Diff(ctx, v2.ID, v1.ID, DiffParams{})
	testutil.MustDo(t, "backward diff", err)

	if len(forward) != 1 || forward[0].Type != DifferenceTypeAdded {
		t.Errorf("forward diff = %v, expected single added", forward)
	}
	if len(backward) != 1 || backward[0].Type != DifferenceTypeRemoved {
		t.Errorf("backward diff = %v, expected single removed", backward)
	}
}

func TestCataloger_Diff_SameVersion(t *testing.T) {
	ctx := context.Background()
	c := testCataloger(t)
	doc := testDocument(t, ctx, c, "diff-same")

	v := testVersion(t, ctx, c, doc.ID, nil, testTable("Sheet1", map[CellRef]Cell{
		{Row: 0, Column: 0}: NumberCell(1),
	}), "alice")

	diffs, err := c.Diff(ctx, v.ID, v.ID, DiffParams{})
	testutil.MustDo(t, "diff version against itself", err)
	if len(diffs) != 0 {
		t.Errorf("self diff = %v, expected empty", diffs)
	}
}

func TestCataloger_Diff_Options(t *testing.T) {
	ctx := context.Background()
	c := testCataloger(t)
	doc := testDocument(t, ctx, c, "diff-options")

	v1 := testVersion(t, ctx, c, doc.ID, nil, testTable("Sheet1", map[CellRef]Cell{
		{Row: 0, Column: 0}: TextCell("Lab  Result"),
		{Row: 0, Column: 1}: NumberCell(1.0),
	}), "alice")
	v1ID := v1.ID
	v2 := testVersion(t, ctx, c, doc.ID, &v1ID, testTable("Sheet1", map[CellRef]Cell{
		{Row: 0, Column: 0}: TextCell("lab result"),
		{Row: 0, Column: 1}: NumberCell(1.0001),
	}), "alice")

	strict, err := c.Diff(ctx, v1.ID, v2.ID, DiffParams{})
	testutil.MustDo(t, "strict diff", err)
	if len(strict) != 2 {
		t.Errorf("strict diff reported %d changes, expected 2: %v", len(strict), strict)
	}

	lenient, err := c.Diff(ctx, v1.ID, v2.ID, DiffParams{
		IgnoreWhitespace: true,
		IgnoreCase:       true,
		Epsilon:          0.001,
	})
	testutil.MustDo(t, "lenient diff", err)
	if len(lenient) != 0 {
		t.Errorf("lenient diff reported %v, expected no changes", lenient)
	}
}

func TestCataloger_Diff_CrossDocument(t *testing.T) {
	ctx := context.Background()
	c := testCataloger(t)
	doc1 := testDocument(t, ctx, c, "diff-cross-1")
	doc2 := testDocument(t, ctx, c, "diff-cross-2")

	v1 := testVersion(t, ctx, c, doc1.ID, nil, testTable("Sheet1", map[CellRef]Cell{
		{Row: 0, Column: 0}: NumberCell(1),
	}), "alice")
	v2 := testVersion(t, ctx, c, doc2.ID, nil, testTable("Sheet1", map[CellRef]Cell{
		{Row: 0, Column: 0}: NumberCell(2),
	}), "alice")

	_, err := c.Diff(ctx, v1.ID, v2.ID, DiffParams{})
	if !errors.Is(err, ErrCrossDocument) {
		t.Errorf("expected ErrCrossDocument, got %v", err)
	}
}

func TestCataloger_Diff_Structural(t *testing.T) {
	ctx := context.Background()
	c := testCataloger(t)
	doc := testDocument(t, ctx, c, "diff-structural")

	v1 := testVersion(t, ctx, c, doc.ID, nil, testTable("Sheet1", map[CellRef]Cell{
		{Row: 0, Column: 0}: TextCell("header"),
		{Row: 1, Column: 0}: TextCell("first"),
		{Row: 2, Column: 0}: TextCell("second"),
	}), "alice")
	v1ID := v1.ID
	// a row inserted between header and first shifts everything below
	v2 := testVersion(t, ctx, c, doc.ID, &v1ID, testTable("Sheet1", map[CellRef]Cell{
		{Row: 0, Column: 0}: TextCell("header"),
		{Row: 1, Column: 0}: TextCell("inserted"),
		{Row: 2, Column: 0}: TextCell("first"),
		{Row: 3, Column: 0}: TextCell("second"),
	}), "alice")

	// positional diff reports the shift cell by cell
	positional, err := c.Diff(ctx, v1.ID, v2.ID, DiffParams{})
	testutil.MustDo(t, "positional diff", err)
	counts := positional.CountByType()
	if counts[DifferenceTypeChanged] != 2 || counts[DifferenceTypeAdded] != 1 {
		t.Errorf("positional diff counts = %v, expected 2 changed and 1 added", counts)
	}

	// structural diff recognizes the single inserted row
	structural, err := c.Diff(ctx, v1.ID, v2.ID, DiffParams{StructuralAware: true})
	testutil.MustDo(t, "structural diff", err)
	counts = structural.CountByType()
	if counts[DifferenceTypeRowInserted] != 1 {
		t.Errorf("structural diff counts = %v, expected one row-inserted", counts)
	}
	if counts[DifferenceTypeChanged] != 0 {
		t.Errorf("structural diff counts = %v, expected no changed cells", counts)
	}
}
