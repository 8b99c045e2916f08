package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/benchwise/gridvault/db"
	"github.com/benchwise/gridvault/logging"
)

func (c *cataloger) CreateDocument(ctx context.Context, name string) (*Document, error) {
	if err := Validate(ValidateFields{
		"name": ValidateDocumentName(name),
	}); err != nil {
		return nil, err
	}
	res, err := c.db.Transact(func(tx db.Tx) (interface{}, error) {
		doc := &Document{
			ID:        uuid.New(),
			Name:      name,
			CreatedAt: c.Clock.Now(),
		}
		_, err := tx.Exec(`INSERT INTO documents (id, name, created_at) VALUES ($1, $2, $3)`,
			doc.ID, doc.Name, doc.CreatedAt)
		if err != nil {
			return nil, err
		}
		return doc, nil
	}, c.txOpts(ctx)...)
	if err != nil {
		return nil, err
	}
	doc := res.(*Document)
	c.log.WithContext(ctx).WithFields(logging.Fields{
		"document": doc.ID,
		"name":     doc.Name,
	}).Debug("document created")
	return doc, nil
}
