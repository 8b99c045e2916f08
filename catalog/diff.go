package catalog

import "sort"

type DifferenceType int

const (
	DifferenceTypeAdded DifferenceType = iota
	DifferenceTypeRemoved
	DifferenceTypeChanged
	DifferenceTypeUnchanged
	DifferenceTypeRowInserted
	DifferenceTypeRowDeleted
)

func (t DifferenceType) String() string {
	switch t {
	case DifferenceTypeAdded:
		return "added"
	case DifferenceTypeRemoved:
		return "removed"
	case DifferenceTypeChanged:
		return "changed"
	case DifferenceTypeUnchanged:
		return "unchanged"
	case DifferenceTypeRowInserted:
		return "row-inserted"
	case DifferenceTypeRowDeleted:
		return "row-deleted"
	default:
		return "unknown"
	}
}

// DiffParams controls value comparison and output shape.
type DiffParams struct {
	// IgnoreWhitespace collapses runs of whitespace in text before comparing.
	IgnoreWhitespace bool
	// IgnoreCase lowercases text before comparing.
	IgnoreCase bool
	// IncludeUnchanged reports equal locations too. Off by default so output
	// stays proportional to actual change volume.
	IncludeUnchanged bool
	// StructuralAware runs a secondary pass that detects whole-row insertion
	// and deletion by aligning rows on their content hashes.
	StructuralAware bool
	// Epsilon is the tolerance for numeric comparison. Zero means exact.
	Epsilon float64
}

type Difference struct {
	Location Location
	Type     DifferenceType
	OldValue *Cell
	NewValue *Cell
}

func (d Difference) String() string {
	var symbol string
	switch d.Type {
	case DifferenceTypeAdded:
		symbol = "+"
	case DifferenceTypeRemoved:
		symbol = "-"
	case DifferenceTypeChanged:
		symbol = "~"
	case DifferenceTypeRowInserted:
		symbol = ">>"
	case DifferenceTypeRowDeleted:
		symbol = "<<"
	default:
		symbol = "="
	}
	return symbol + " " + d.Location.String()
}

type Differences []Difference

func (d Differences) CountByType() map[DifferenceType]int {
	result := make(map[DifferenceType]int)
	for i := range d {
		result[d[i].Type]++
	}
	return result
}

func (d Differences) Equal(other Differences) bool {
	if len(d) != len(other) {
		return false
	}
	for _, item := range d {
		m := false
		for _, otherItem := range other {
			if otherItem.Location == item.Location {
				m = otherItem.Type == item.Type
				break
			}
		}
		if !m {
			return false
		}
	}
	return true
}

// sortDifferences orders entries by (sheet, row, column) ascending, so output
// is deterministic regardless of internal storage order.
func sortDifferences(d Differences) {
	sort.Slice(d, func(i, j int) bool {
		return compareLocations(d[i].Location, d[j].Location) < 0
	})
}
