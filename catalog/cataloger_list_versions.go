package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/benchwise/gridvault/db"
)

// ListVersions returns a document's version metadata ordered by version
// number ascending, restartable from the `after` cursor.
func (c *cataloger) ListVersions(ctx context.Context, documentID uuid.UUID, limit int, after int) ([]*Version, bool, error) {
	if limit < 0 || limit > ListVersionsMaxLimit {
		limit = ListVersionsMaxLimit
	}
	res, err := c.db.Transact(func(tx db.Tx) (interface{}, error) {
		if _, err := getDocument(tx, documentID); err != nil {
			return nil, err
		}
		var versions []*Version
		err := tx.Select(&versions, `SELECT id, document_id, version_number, parent_version_id, content_hash, created_at, created_by
			FROM versions WHERE document_id = $1 AND version_number > $2
			ORDER BY version_number LIMIT $3`, documentID, after, limit+1)
		if err != nil {
			return nil, err
		}
		return versions, nil
	}, c.txOpts(ctx, db.ReadOnly())...)
	if err != nil {
		return nil, false, err
	}
	versions := res.([]*Version)
	hasMore := false
	if len(versions) > limit {
		versions = versions[:limit]
		hasMore = true
	}
	return versions, hasMore, nil
}
