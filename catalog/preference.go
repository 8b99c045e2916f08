package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/benchwise/gridvault/db"
)

// Actor preference weights are the persisted record of how often each
// actor's edits won past merges of a document. They live in their own table
// rather than in-memory state so they survive restarts and stay visible to
// concurrent merges; writers rely on the serializable transaction they run
// inside to avoid lost updates.

// weightLearningRate controls how far a weight moves toward 1 (win) or 0
// (loss) per resolved conflict batch.
const weightLearningRate = 0.1

func getActorWeight(tx db.Tx, documentID uuid.UUID, actor string) (float64, error) {
	var weight float64
	err := tx.Get(&weight, `SELECT weight FROM actor_preference_weights WHERE document_id = $1 AND actor_id = $2`,
		documentID, actor)
	if errors.Is(err, db.ErrNotFound) {
		return DefaultActorWeight, nil
	}
	if err != nil {
		return 0, err
	}
	return weight, nil
}

func setActorWeight(tx db.Tx, documentID uuid.UUID, actor string, weight float64, now time.Time) error {
	_, err := tx.Exec(`INSERT INTO actor_preference_weights (document_id, actor_id, weight, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (document_id, actor_id) DO UPDATE SET weight = EXCLUDED.weight, updated_at = EXCLUDED.updated_at`,
		documentID, actor, weight, now)
	return err
}

func rewardActor(weight float64) float64 {
	return weight + weightLearningRate*(1-weight)
}

func penalizeActor(weight float64) float64 {
	return weight - weightLearningRate*weight
}
