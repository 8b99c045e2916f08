package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/benchwise/gridvault/db"
	"github.com/benchwise/gridvault/ident"
	"github.com/benchwise/gridvault/logging"
)

// cellInsertChunkSize keeps multi-row inserts well under the Postgres
// bind-parameter limit (9 columns per row).
const cellInsertChunkSize = 500

// versionNumberRetryMaxAttempts bounds retries of the version number
// assignment race. Concurrent creates normally fail with a serialization
// error the transaction layer retries on its own, but the collision can
// also surface as a unique violation on the version number constraint
// (Postgres reports the btree conflict before the SSI one), which has to be
// retried here.
const versionNumberRetryMaxAttempts = db.SerializationRetryMaxAttempts

// CreateVersion records table as a new immutable version of the document.
// Content is deduplicated by fingerprint: re-uploading identical content
// returns DuplicateVersionError carrying the existing version id. Version
// numbers are assigned inside a serializable transaction, so concurrent
// creates for the same document can never produce duplicates or gaps.
func (c *cataloger) CreateVersion(ctx context.Context, documentID uuid.UUID, parentVersionID *uuid.UUID, table *Table, actor string) (*Version, error) {
	if err := Validate(ValidateFields{
		"table": ValidateTable(table),
		"actor": ValidateActor(actor),
	}); err != nil {
		return nil, err
	}
	contentHash := ident.Hash(table)
	var res interface{}
	var err error
	for attempt := 0; ; attempt++ {
		res, err = c.db.Transact(func(tx db.Tx) (interface{}, error) {
			if _, err := getDocument(tx, documentID); err != nil {
				return nil, err
			}
			return insertVersion(tx, versionSpec{
				DocumentID:      documentID,
				ParentVersionID: parentVersionID,
				ContentHash:     contentHash,
				Table:           table,
				Actor:           actor,
				CreatedAt:       c.Clock.Now(),
			})
		}, c.txOpts(ctx)...)
		if err == nil {
			break
		}
		// a concurrent create can slip past the in-transaction reads and
		// surface as a unique violation: on the content hash it means the
		// identical content already exists, on the version number it is the
		// assignment race and the transaction is simply re-run
		switch db.UniqueConstraintName(err) {
		case "versions_document_hash_uq":
			if existing, lookupErr := c.lookupVersionByHash(ctx, documentID, contentHash); lookupErr == nil {
				return nil, &DuplicateVersionError{ExistingVersionID: existing}
			}
			return nil, err
		case "versions_document_number_uq":
			if attempt < versionNumberRetryMaxAttempts {
				continue
			}
			return nil, err
		default:
			return nil, err
		}
	}
	version := res.(*Version)
	c.log.WithContext(ctx).WithFields(logging.Fields{
		"document":       documentID,
		"version":        version.ID,
		"version_number": version.VersionNumber,
		"actor":          actor,
		"cells":          table.CellCount(),
	}).Debug("version created")
	return version, nil
}

type versionSpec struct {
	DocumentID      uuid.UUID
	ParentVersionID *uuid.UUID
	ContentHash     string
	Table           *Table
	Actor           string
	CreatedAt       time.Time
}

// insertVersion performs the dedup check, parent validation, version number
// assignment and cell writes of a single version, all on the caller's
// transaction so the version and its cells become visible atomically.
func insertVersion(tx db.Tx, spec versionSpec) (*Version, error) {
	var existingID uuid.UUID
	err := tx.Get(&existingID, `SELECT id FROM versions WHERE document_id = $1 AND content_hash = $2`,
		spec.DocumentID, spec.ContentHash)
	if err == nil {
		return nil, &DuplicateVersionError{ExistingVersionID: existingID}
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	if spec.ParentVersionID != nil {
		var parentDocumentID uuid.UUID
		err := tx.Get(&parentDocumentID, `SELECT document_id FROM versions WHERE id = $1`, *spec.ParentVersionID)
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidParent
		}
		if err != nil {
			return nil, err
		}
		if parentDocumentID != spec.DocumentID {
			return nil, ErrInvalidParent
		}
	}

	var nextNumber int
	err = tx.Get(&nextNumber, `SELECT COALESCE(MAX(version_number), 0) + 1 FROM versions WHERE document_id = $1`,
		spec.DocumentID)
	if err != nil {
		return nil, err
	}

	version := &Version{
		ID:              uuid.New(),
		DocumentID:      spec.DocumentID,
		VersionNumber:   nextNumber,
		ParentVersionID: spec.ParentVersionID,
		ContentHash:     spec.ContentHash,
		CreatedAt:       spec.CreatedAt,
		CreatedBy:       spec.Actor,
	}
	_, err = tx.Exec(`INSERT INTO versions (id, document_id, version_number, parent_version_id, content_hash, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		version.ID, version.DocumentID, version.VersionNumber, version.ParentVersionID,
		version.ContentHash, version.CreatedAt, version.CreatedBy)
	if err != nil {
		return nil, err
	}

	if err := insertCells(tx, version.ID, spec.Table); err != nil {
		return nil, err
	}
	return version, nil
}

func insertCells(tx db.Tx, versionID uuid.UUID, table *Table) error {
	rows := make([]cellRow, 0, table.CellCount())
	for _, name := range table.sheetNames() {
		sheet := table.Sheets[name]
		for _, ref := range sortedRefs(sheet.Cells) {
			cell := sheet.Cells[ref]
			rows = append(rows, cellRow{
				SheetName:   name,
				RowIndex:    ref.Row,
				ColumnIndex: ref.Column,
				ValueType:   int16(cell.Value.Type),
				TextValue:   cell.Value.Text,
				NumberValue: cell.Value.Number,
				BoolValue:   cell.Value.Bool,
				RawText:     cell.RawText,
				Formula:     cell.Value.Formula,
			})
		}
	}
	for start := 0; start < len(rows); start += cellInsertChunkSize {
		end := start + cellInsertChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := insertCellChunk(tx, versionID, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func insertCellChunk(tx db.Tx, versionID uuid.UUID, rows []cellRow) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO cell_values (version_id, sheet_name, row_index, column_index, value_type, text_value, number_value, bool_value, raw_text, formula) VALUES `)
	args := make([]interface{}, 0, len(rows)*10)
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 10
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10))
		args = append(args, versionID, row.SheetName, row.RowIndex, row.ColumnIndex,
			row.ValueType, row.TextValue, row.NumberValue, row.BoolValue, row.RawText, row.Formula)
	}
	_, err := tx.Exec(sb.String(), args...)
	return err
}

func (c *cataloger) lookupVersionByHash(ctx context.Context, documentID uuid.UUID, contentHash string) (uuid.UUID, error) {
	res, err := c.db.Transact(func(tx db.Tx) (interface{}, error) {
		var id uuid.UUID
		err := tx.Get(&id, `SELECT id FROM versions WHERE document_id = $1 AND content_hash = $2`,
			documentID, contentHash)
		if err != nil {
			return nil, err
		}
		return id, nil
	}, c.txOpts(ctx, db.ReadOnly())...)
	if err != nil {
		return uuid.Nil, err
	}
	return res.(uuid.UUID), nil
}
