package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/benchwise/gridvault/db"
)

func (c *cataloger) GetDocument(ctx context.Context, documentID uuid.UUID) (*Document, error) {
	res, err := c.db.Transact(func(tx db.Tx) (interface{}, error) {
		return getDocument(tx, documentID)
	}, c.txOpts(ctx, db.ReadOnly())...)
	if err != nil {
		return nil, err
	}
	return res.(*Document), nil
}

func getDocument(tx db.Tx, documentID uuid.UUID) (*Document, error) {
	var doc Document
	err := tx.Get(&doc, `SELECT id, name, created_at FROM documents WHERE id = $1`, documentID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
