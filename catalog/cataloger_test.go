package catalog

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"

	"github.com/benchwise/gridvault/db"
	"github.com/benchwise/gridvault/logging"
	"github.com/benchwise/gridvault/testutil"
)

var (
	pool        *dockertest.Pool
	databaseURI string
)

func TestMain(m *testing.M) {
	var err error
	var closer func()
	pool, err = dockertest.NewPool("")
	if err != nil {
		logging.Default().Fatalf("Could not connect to Docker: %s", err)
	}
	databaseURI, closer = testutil.GetDBInstance(pool)
	code := m.Run()
	closer() // cleanup
	os.Exit(code)
}

func testCataloger(t *testing.T) Cataloger {
	c, _ := testCatalogerAndDB(t)
	return c
}

func testCatalogerAndDB(t *testing.T) (Cataloger, db.Database) {
	cdb, _ := testutil.GetDB(t, databaseURI)
	return NewCataloger(cdb), cdb
}

func testDocument(t *testing.T, ctx context.Context, c Cataloger, prefix string) *Document {
	name := prefix + "-" + uuid.New().String()[0:8]
	doc, err := c.CreateDocument(ctx, name)
	if err != nil {
		t.Fatalf("create document %s failed: %s", name, err)
	}
	return doc
}

func testVersion(t *testing.T, ctx context.Context, c Cataloger, documentID uuid.UUID, parent *uuid.UUID, table *Table, actor string) *Version {
	version, err := c.CreateVersion(ctx, documentID, parent, table, actor)
	if err != nil {
		t.Fatalf("create version on document %s by %s failed: %s", documentID, actor, err)
	}
	return version
}

// testTable builds a single-sheet table from cells keyed by (row, col).
func testTable(sheet string, cells map[CellRef]Cell) *Table {
	table := NewTable()
	for ref, cell := range cells {
		table.Set(sheet, ref.Row, ref.Column, cell)
	}
	return table
}
