package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/benchwise/gridvault/testutil"
)

func TestCataloger_CreateDocument(t *testing.T) {
	ctx := context.Background()
	c := testCataloger(t)

	doc, err := c.CreateDocument(ctx, "experiment-results")
	testutil.MustDo(t, "create document", err)
	if doc.ID == uuid.Nil {
		t.Error("expected a generated document id")
	}
	if doc.Name != "experiment-results" {
		t.Errorf("document name = %s, expected experiment-results", doc.Name)
	}

	got, err := c.GetDocument(ctx, doc.ID)
	testutil.MustDo(t, "get document", err)
	if got.Name != doc.Name {
		t.Errorf("get returned name %s, expected %s", got.Name, doc.Name)
	}

	_, err = c.GetDocument(ctx, uuid.New())
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestCataloger_CreateDocument_InvalidName(t *testing.T) {
	ctx := context.Background()
	c := testCataloger(t)

	for _, name := range []string{"", "has spaces", "Ähm"} {
		if _, err := c.CreateDocument(ctx, name); err == nil {
			t.Errorf("expected error creating document with name %q", name)
		}
	}
}

func TestCataloger_ListDocuments(t *testing.T) {
	ctx := context.Background()
	c := testCataloger(t)

	for i := 0; i < 5; i++ {
		_, err := c.CreateDocument(ctx, fmt.Sprintf("list-doc-%02d", i))
		testutil.MustDo(t, "create document for list", err)
	}

	var got []string
	after := ""
	for {
		docs, hasMore, err := c.ListDocuments(ctx, 2, after)
		testutil.MustDo(t, "list documents", err)
		for _, doc := range docs {
			got = append(got, doc.Name)
		}
		if !hasMore {
			break
		}
		after = docs[len(docs)-1].Name
	}
	if len(got) != 5 {
		t.Fatalf("paged listing returned %d documents, expected 5: %v", len(got), got)
	}
	for i, name := range got {
		expected := fmt.Sprintf("list-doc-%02d", i)
		if name != expected {
			t.Errorf("document[%d] = %s, expected %s", i, name, expected)
		}
	}
}
