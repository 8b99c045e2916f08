package catalog

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/benchwise/gridvault/db"
)

// Resolve classifies every location touched by either side of a three-way
// merge as auto-mergeable or conflicting. It mutates nothing: its only
// non-input dependency is the read of persisted actor preference weights.
func (c *cataloger) Resolve(ctx context.Context, baseVersionID, leftVersionID, rightVersionID uuid.UUID, params ResolveParams) ([]Decision, error) {
	res, err := c.db.Transact(func(tx db.Tx) (interface{}, error) {
		return loadMergeInput(tx, baseVersionID, leftVersionID, rightVersionID)
	}, c.txOpts(ctx, db.ReadOnly())...)
	if err != nil {
		return nil, err
	}
	input := res.(*mergeInput)
	return resolveDecisions(ctx, input, params)
}

type mergeInput struct {
	base        *VersionData
	left        *VersionData
	right       *VersionData
	leftWeight  float64
	rightWeight float64
}

func loadMergeInput(tx db.Tx, baseVersionID, leftVersionID, rightVersionID uuid.UUID) (*mergeInput, error) {
	base, err := getVersionData(tx, baseVersionID)
	if err != nil {
		return nil, err
	}
	left, err := getVersionData(tx, leftVersionID)
	if err != nil {
		return nil, err
	}
	right, err := getVersionData(tx, rightVersionID)
	if err != nil {
		return nil, err
	}
	if base.Version.DocumentID != left.Version.DocumentID ||
		base.Version.DocumentID != right.Version.DocumentID {
		return nil, ErrCrossDocument
	}
	leftWeight, err := getActorWeight(tx, base.Version.DocumentID, left.Version.CreatedBy)
	if err != nil {
		return nil, err
	}
	rightWeight, err := getActorWeight(tx, base.Version.DocumentID, right.Version.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &mergeInput{
		base:        base,
		left:        left,
		right:       right,
		leftWeight:  leftWeight,
		rightWeight: rightWeight,
	}, nil
}

// resolveDecisions runs the three-way classification over the base→left and
// base→right diffs. Identical independent edits are never conflicts; a
// divergent edit becomes a conflict unless the confidence heuristic clears
// the auto-resolve threshold, and either way both values are retained.
func resolveDecisions(ctx context.Context, input *mergeInput, params ResolveParams) ([]Decision, error) {
	threshold := params.AutoResolveThreshold
	if threshold <= 0 {
		threshold = DefaultAutoResolveThreshold
	}
	diffParams := params.DiffParams
	diffParams.IncludeUnchanged = false
	diffParams.StructuralAware = false

	diffLeft, err := diffTables(ctx, input.base.Table, input.left.Table, diffParams)
	if err != nil {
		return nil, err
	}
	diffRight, err := diffTables(ctx, input.base.Table, input.right.Table, diffParams)
	if err != nil {
		return nil, err
	}

	leftByLoc := make(map[Location]Difference, len(diffLeft))
	for _, d := range diffLeft {
		leftByLoc[d.Location] = d
	}
	rightByLoc := make(map[Location]Difference, len(diffRight))
	for _, d := range diffRight {
		rightByLoc[d.Location] = d
	}

	touched := make([]Location, 0, len(leftByLoc)+len(rightByLoc))
	for loc := range leftByLoc {
		touched = append(touched, loc)
	}
	for loc := range rightByLoc {
		if _, ok := leftByLoc[loc]; !ok {
			touched = append(touched, loc)
		}
	}
	sort.Slice(touched, func(i, j int) bool {
		return compareLocations(touched[i], touched[j]) < 0
	})

	decisions := make([]Decision, 0, len(touched))
	counter := 0
	for _, loc := range touched {
		if err := checkCancel(ctx, &counter); err != nil {
			return nil, err
		}
		leftDiff, leftTouched := leftByLoc[loc]
		rightDiff, rightTouched := rightByLoc[loc]
		switch {
		case leftTouched && !rightTouched:
			decisions = append(decisions, Decision{
				Location: loc,
				Type:     DecisionAutoApply,
				Value:    leftDiff.NewValue,
			})
		case rightTouched && !leftTouched:
			decisions = append(decisions, Decision{
				Location: loc,
				Type:     DecisionAutoApply,
				Value:    rightDiff.NewValue,
			})
		case cellsEqual(leftDiff.NewValue, rightDiff.NewValue, diffParams):
			// identical independent edits (or identical removals)
			decisions = append(decisions, Decision{
				Location: loc,
				Type:     DecisionAutoApply,
				Value:    leftDiff.NewValue,
			})
		default:
			decisions = append(decisions, decideConflict(loc, input, leftDiff, rightDiff, threshold))
		}
	}
	return decisions, nil
}

func decideConflict(loc Location, input *mergeInput, leftDiff, rightDiff Difference, threshold float64) Decision {
	baseValue := leftDiff.OldValue
	if baseValue == nil {
		baseValue = rightDiff.OldValue
	}
	scored := scoreConflict(baseValue, leftDiff.NewValue, rightDiff.NewValue, input.leftWeight, input.rightWeight)

	conflict := &Conflict{
		Location:    loc,
		BaseValue:   baseValue,
		LeftValue:   leftDiff.NewValue,
		RightValue:  rightDiff.NewValue,
		Resolution:  ResolutionUnresolved,
		WinningSide: MergeSideNone,
		Confidence:  scored.Score,
		Reason:      scored.Reason,
	}
	if scored.Score >= threshold && scored.Winner != MergeSideNone {
		conflict.Resolution = ResolutionAutoResolved
		conflict.WinningSide = scored.Winner
		if scored.Winner == MergeSideLeft {
			conflict.ResolvedValue = leftDiff.NewValue
		} else {
			conflict.ResolvedValue = rightDiff.NewValue
		}
		return Decision{
			Location:   loc,
			Type:       DecisionAutoResolved,
			Value:      conflict.ResolvedValue,
			Confidence: scored.Score,
			Conflict:   conflict,
		}
	}
	return Decision{
		Location:   loc,
		Type:       DecisionConflict,
		Confidence: scored.Score,
		Conflict:   conflict,
	}
}
