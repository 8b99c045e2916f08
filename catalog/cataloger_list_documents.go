package catalog

import (
	"context"

	"github.com/benchwise/gridvault/db"
)

func (c *cataloger) ListDocuments(ctx context.Context, limit int, after string) ([]*Document, bool, error) {
	if limit < 0 || limit > ListDocumentsMaxLimit {
		limit = ListDocumentsMaxLimit
	}
	res, err := c.db.Transact(func(tx db.Tx) (interface{}, error) {
		var docs []*Document
		// request one extra to tell the caller whether more are available
		err := tx.Select(&docs, `SELECT id, name, created_at FROM documents
			WHERE name > $1 ORDER BY name LIMIT $2`, after, limit+1)
		if err != nil {
			return nil, err
		}
		return docs, nil
	}, c.txOpts(ctx, db.ReadOnly())...)
	if err != nil {
		return nil, false, err
	}
	docs := res.([]*Document)
	hasMore := false
	if len(docs) > limit {
		docs = docs[:limit]
		hasMore = true
	}
	return docs, hasMore, nil
}
