package catalog

import (
	"fmt"
	"math"
)

// Weighted combination of the explainable signals behind auto-resolution.
// The ceiling without history dominance is typeWeight+deltaWeight = 0.60,
// deliberately below the default threshold: with no dominant actor history a
// divergent edit always stays an unresolved conflict.
const (
	typeWeight    = 0.25
	deltaWeight   = 0.35
	historyWeight = 0.40
)

// DefaultActorWeight is assumed for actors with no recorded merge history.
const DefaultActorWeight = 0.5

type confidenceResult struct {
	Score  float64
	Winner MergeSide
	Reason string
}

// scoreConflict estimates how safe it is to pick a winner between two
// divergent edits of the same location, from three signals: value type
// agreement, the numeric distance of the two edits relative to base, and the
// dominance of one actor's accepted-edit history over the other's.
func scoreConflict(base, left, right *Cell, leftWeight, rightWeight float64) confidenceResult {
	// an add and a removal at the same location are never auto-resolvable
	if left == nil || right == nil {
		return confidenceResult{
			Score:  0,
			Winner: MergeSideNone,
			Reason: removalReason(left, right),
		}
	}

	typeScore := 0.2
	if left.Value.Type == right.Value.Type {
		typeScore = 1.0
	}

	deltaScore := 0.0
	deltaPct := -1.0
	leftNum, leftOK := isNumeric(left)
	rightNum, rightOK := isNumeric(right)
	baseNum, baseOK := isNumeric(base)
	if leftOK && rightOK && baseOK {
		denom := math.Max(math.Abs(baseNum), 1)
		rel := math.Abs(leftNum-rightNum) / denom
		deltaPct = rel * 100
		deltaScore = 1 - math.Min(rel, 1)
	}

	dominance := math.Abs(leftWeight - rightWeight)
	winner := MergeSideNone
	switch {
	case leftWeight > rightWeight:
		winner = MergeSideLeft
	case rightWeight > leftWeight:
		winner = MergeSideRight
	}

	score := typeWeight*typeScore + deltaWeight*deltaScore + historyWeight*dominance
	score = math.Max(0, math.Min(1, score))

	return confidenceResult{
		Score:  score,
		Winner: winner,
		Reason: conflictReason(left, right, deltaPct, winner),
	}
}

func removalReason(left, right *Cell) string {
	switch {
	case left == nil && right == nil:
		return "both sides removed the cell"
	case left == nil:
		return "left removed the cell while right changed it"
	default:
		return "right removed the cell while left changed it"
	}
}

func conflictReason(left, right *Cell, deltaPct float64, winner MergeSide) string {
	if left.Value.Type != right.Value.Type {
		return fmt.Sprintf("value types diverge (%s vs %s)", left.Value.Type, right.Value.Type)
	}
	if deltaPct >= 0 {
		if winner == MergeSideNone {
			return fmt.Sprintf("numeric values diverge by %.0f%%, no dominant history", deltaPct)
		}
		return fmt.Sprintf("numeric values diverge by %.0f%%, history favors %s", deltaPct, winner)
	}
	if winner == MergeSideNone {
		return "both sides changed to different values, no dominant history"
	}
	return fmt.Sprintf("both sides changed to different values, history favors %s", winner)
}
