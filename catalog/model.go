package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Document is the stable logical identity that groups all versions of the
// same uploaded table over time. It is only ever referenced, never mutated.
type Document struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// Version is an immutable snapshot of a document's full tabular content.
type Version struct {
	ID              uuid.UUID  `db:"id"`
	DocumentID      uuid.UUID  `db:"document_id"`
	VersionNumber   int        `db:"version_number"`
	ParentVersionID *uuid.UUID `db:"parent_version_id"`
	ContentHash     string     `db:"content_hash"`
	CreatedAt       time.Time  `db:"created_at"`
	CreatedBy       string     `db:"created_by"`
}

// VersionData is a version together with its full cell set.
type VersionData struct {
	Version Version
	Table   *Table
}

// cellRow is the persisted form of a single cell.
type cellRow struct {
	SheetName   string  `db:"sheet_name"`
	RowIndex    int     `db:"row_index"`
	ColumnIndex int     `db:"column_index"`
	ValueType   int16   `db:"value_type"`
	TextValue   string  `db:"text_value"`
	NumberValue float64 `db:"number_value"`
	BoolValue   bool    `db:"bool_value"`
	RawText     string  `db:"raw_text"`
	Formula     string  `db:"formula"`
}

type ResolutionType int

const (
	ResolutionUnresolved ResolutionType = iota
	ResolutionAutoResolved
)

func (r ResolutionType) String() string {
	switch r {
	case ResolutionUnresolved:
		return "unresolved"
	case ResolutionAutoResolved:
		return "auto-resolved"
	default:
		return "unknown"
	}
}

type MergeSide int

const (
	MergeSideNone MergeSide = iota
	MergeSideLeft
	MergeSideRight
)

func (s MergeSide) String() string {
	switch s {
	case MergeSideLeft:
		return "left"
	case MergeSideRight:
		return "right"
	default:
		return "none"
	}
}

// Conflict is a location changed differently by left and right relative to
// base. Both the winning and the rejected values are always retained so that
// auto-resolution never silently discards information.
type Conflict struct {
	Location      Location
	BaseValue     *Cell
	LeftValue     *Cell
	RightValue    *Cell
	Resolution    ResolutionType
	ResolvedValue *Cell
	WinningSide   MergeSide
	Confidence    float64
	Reason        string
}

type DecisionType int

const (
	// DecisionAutoApply - only one side touched the location, or both sides
	// made the identical edit.
	DecisionAutoApply DecisionType = iota
	// DecisionAutoResolved - both sides diverged and the confidence heuristic
	// cleared the auto-resolve threshold.
	DecisionAutoResolved
	// DecisionConflict - both sides diverged and the location needs manual
	// review.
	DecisionConflict
)

// Decision is the per-location outcome of a three-way resolution pass.
// Value is the cell to place in the merged table; nil means the location is
// removed. Conflict is set for DecisionAutoResolved and DecisionConflict.
type Decision struct {
	Location   Location
	Type       DecisionType
	Value      *Cell
	Confidence float64
	Conflict   *Conflict
}

// MergeResult summarizes a three-way merge. MergedVersionID is set only when
// every conflict was resolved, or the caller explicitly accepted a partial
// merge.
type MergeResult struct {
	MergedVersionID   *uuid.UUID
	AutoResolvedCount int
	Conflicts         []Conflict
	ConfidenceScore   float64
	Summary           map[DifferenceType]int
}
