package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/benchwise/gridvault/db"
)

// GetVersion returns a version and its full cell set. Versions are immutable
// once written, so results are safe to cache and share.
func (c *cataloger) GetVersion(ctx context.Context, versionID uuid.UUID) (*VersionData, error) {
	v, err := c.versionCache.GetOrSet(versionID, func() (interface{}, error) {
		res, err := c.db.Transact(func(tx db.Tx) (interface{}, error) {
			return getVersionData(tx, versionID)
		}, c.txOpts(ctx, db.ReadOnly())...)
		if err != nil {
			return nil, err
		}
		return res.(*VersionData), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*VersionData), nil
}

func getVersion(tx db.Tx, versionID uuid.UUID) (*Version, error) {
	var version Version
	err := tx.Get(&version, `SELECT id, document_id, version_number, parent_version_id, content_hash, created_at, created_by
		FROM versions WHERE id = $1`, versionID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrVersionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func getVersionData(tx db.Tx, versionID uuid.UUID) (*VersionData, error) {
	version, err := getVersion(tx, versionID)
	if err != nil {
		return nil, err
	}
	var rows []cellRow
	err = tx.Select(&rows, `SELECT sheet_name, row_index, column_index, value_type, text_value, number_value, bool_value, raw_text, formula
		FROM cell_values WHERE version_id = $1`, versionID)
	if err != nil {
		return nil, err
	}
	table := NewTable()
	for _, row := range rows {
		table.Set(row.SheetName, row.RowIndex, row.ColumnIndex, Cell{
			Value: Value{
				Type:    ValueType(row.ValueType),
				Text:    row.TextValue,
				Number:  row.NumberValue,
				Bool:    row.BoolValue,
				Formula: row.Formula,
			},
			RawText: row.RawText,
		})
	}
	return &VersionData{Version: *version, Table: table}, nil
}
