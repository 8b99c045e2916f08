package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/benchwise/gridvault/db"
	"github.com/benchwise/gridvault/ident"
	"github.com/benchwise/gridvault/logging"
)

// Merge performs a three-way merge of left and right against their common
// base and, when every conflict is resolved (or params.AllowPartial), records
// the merged table as a new version with left as its parent. Conflict
// classification, version creation and the actor weight updates all ride the
// same serializable transaction, so a merge either fully happens or leaves no
// trace.
func (c *cataloger) Merge(ctx context.Context, baseVersionID, leftVersionID, rightVersionID uuid.UUID, actor string, params MergeParams) (*MergeResult, error) {
	if err := Validate(ValidateFields{
		"actor": ValidateActor(actor),
	}); err != nil {
		return nil, err
	}
	res, err := c.db.Transact(func(tx db.Tx) (interface{}, error) {
		input, err := loadMergeInput(tx, baseVersionID, leftVersionID, rightVersionID)
		if err != nil {
			return nil, err
		}
		decisions, err := resolveDecisions(ctx, input, params.ResolveParams)
		if err != nil {
			return nil, err
		}
		return c.applyMerge(tx, input, decisions, actor, params)
	}, c.txOpts(ctx)...)
	if err != nil {
		return nil, err
	}
	result := res.(*MergeResult)
	logFields := logging.Fields{
		"base":          baseVersionID,
		"left":          leftVersionID,
		"right":         rightVersionID,
		"actor":         actor,
		"auto_resolved": result.AutoResolvedCount,
		"conflicts":     len(result.Conflicts),
		"confidence":    result.ConfidenceScore,
	}
	if result.MergedVersionID != nil {
		logFields["version"] = *result.MergedVersionID
		c.log.WithContext(ctx).WithFields(logFields).Info("merge completed")
	} else {
		c.log.WithContext(ctx).WithFields(logFields).Info("merge blocked on conflicts")
	}
	return result, nil
}

func (c *cataloger) applyMerge(tx db.Tx, input *mergeInput, decisions []Decision, actor string, params MergeParams) (*MergeResult, error) {
	result := &MergeResult{
		Summary: map[DifferenceType]int{},
	}
	unresolved := 0
	for i := range decisions {
		d := &decisions[i]
		if d.Conflict != nil {
			result.Conflicts = append(result.Conflicts, *d.Conflict)
		}
		switch d.Type {
		case DecisionAutoResolved:
			result.AutoResolvedCount++
		case DecisionConflict:
			unresolved++
		}
	}
	result.ConfidenceScore = mergeConfidence(result.AutoResolvedCount, unresolved)

	if unresolved > 0 && !params.AllowPartial {
		return result, nil
	}

	merged := input.left.Table.clone()
	for _, d := range decisions {
		if d.Type == DecisionConflict {
			// partial merge keeps left's value at unresolved locations
			continue
		}
		if d.Value == nil {
			merged.delete(d.Location.Sheet, d.Location.Row, d.Location.Column)
		} else {
			merged.Set(d.Location.Sheet, d.Location.Row, d.Location.Column, *d.Value)
		}
		result.Summary[d.summaryType(input.left.Table)]++
	}

	leftID := input.left.Version.ID
	version, err := insertVersion(tx, versionSpec{
		DocumentID:      input.base.Version.DocumentID,
		ParentVersionID: &leftID,
		ContentHash:     ident.Hash(merged),
		Table:           merged,
		Actor:           actor,
		CreatedAt:       c.Clock.Now(),
	})
	if err != nil {
		// merging sides that converged on the same content dedups to the
		// version that already holds it
		var dup *DuplicateVersionError
		if !errors.As(err, &dup) {
			return nil, err
		}
		result.MergedVersionID = &dup.ExistingVersionID
	} else {
		result.MergedVersionID = &version.ID
	}

	if err := c.updateActorWeights(tx, input, decisions); err != nil {
		return nil, err
	}
	return result, nil
}

// summaryType classifies an applied decision relative to the left table the
// merged version was built from.
func (d Decision) summaryType(left *Table) DifferenceType {
	_, existed := left.Get(d.Location.Sheet, d.Location.Row, d.Location.Column)
	switch {
	case d.Value == nil:
		return DifferenceTypeRemoved
	case existed:
		return DifferenceTypeChanged
	default:
		return DifferenceTypeAdded
	}
}

// mergeConfidence is the share of divergences that resolved without human
// input. A merge with no divergent edits at all is fully confident.
func mergeConfidence(autoResolved, unresolved int) float64 {
	total := autoResolved + unresolved
	if total == 0 {
		return 1.0
	}
	return float64(autoResolved) / float64(total)
}

// updateActorWeights nudges the per-document preference weights of the two
// contributing actors after each auto-resolved conflict: the winning side's
// author gains, the losing side's loses. Weights move a fixed fraction toward
// their bound, so they stay in (0, 1) and later conflicts dominate earlier
// ones.
func (c *cataloger) updateActorWeights(tx db.Tx, input *mergeInput, decisions []Decision) error {
	leftActor := input.left.Version.CreatedBy
	rightActor := input.right.Version.CreatedBy
	if leftActor == rightActor {
		return nil
	}
	leftWeight, rightWeight := input.leftWeight, input.rightWeight
	changed := false
	for _, d := range decisions {
		if d.Type != DecisionAutoResolved || d.Conflict == nil {
			continue
		}
		switch d.Conflict.WinningSide {
		case MergeSideLeft:
			leftWeight = rewardActor(leftWeight)
			rightWeight = penalizeActor(rightWeight)
		case MergeSideRight:
			rightWeight = rewardActor(rightWeight)
			leftWeight = penalizeActor(leftWeight)
		default:
			continue
		}
		changed = true
	}
	if !changed {
		return nil
	}
	documentID := input.base.Version.DocumentID
	now := c.Clock.Now()
	if err := setActorWeight(tx, documentID, leftActor, leftWeight, now); err != nil {
		return err
	}
	return setActorWeight(tx, documentID, rightActor, rightWeight, now)
}
