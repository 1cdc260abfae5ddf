// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package assembly_test

import (
	"context"
	"math/rand/v2"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookworm/internal/core/assembly"
	"github.com/taibuivan/bookworm/internal/core/blob"
	"github.com/taibuivan/bookworm/internal/platform/apperr"
	"github.com/taibuivan/bookworm/internal/platform/pdftest"
	"github.com/taibuivan/bookworm/internal/platform/sec"
)

// recordingMerger joins page ids so tests can check the merge order.
type recordingMerger struct {
	mu    sync.Mutex
	calls [][]string
}

func (merger *recordingMerger) Merge(_ context.Context, pages []assembly.Page) ([]byte, error) {
	ids := make([]string, len(pages))
	for i, page := range pages {
		ids[i] = page.ID
	}

	merger.mu.Lock()
	merger.calls = append(merger.calls, ids)
	merger.mu.Unlock()

	return []byte(strings.Join(ids, "|")), nil
}

// jitterStore delays downloads randomly so completion order differs from input order.
type jitterStore struct {
	*blob.FileStore
}

func (store jitterStore) Download(ctx context.Context, path string) ([]byte, error) {
	time.Sleep(time.Duration(rand.IntN(5)) * time.Millisecond)
	return store.FileStore.Download(ctx, path)
}

func setup(t *testing.T) (*blob.FileStore, *sec.LinkSigner) {
	t.Helper()
	signer, err := sec.NewLinkSigner("test-secret", "bookworm.app", "http://localhost:8080")
	require.NoError(t, err)
	return blob.NewFileStore(afero.NewMemMapFs(), signer), signer
}

/*
TestAssemble_Empty verifies that an empty request fails without writing anything.
*/
func TestAssemble_Empty(t *testing.T) {
	store, _ := setup(t)
	merger := &recordingMerger{}
	assembler := assembly.NewAssembler(store, merger, time.Hour, nil)

	_, err := assembler.Assemble(context.Background(), nil, "book-1/assembled/empty.pdf")

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeEmptyDocumentRequest))
	assert.Empty(t, merger.calls)

	exists, err := store.Exists(context.Background(), "book-1/assembled/empty.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}

/*
TestAssemble_MissingPage verifies that one missing page aborts the whole document.
*/
func TestAssemble_MissingPage(t *testing.T) {
	ctx := context.Background()
	store, _ := setup(t)
	require.NoError(t, store.Save(ctx, "book-1/page1.pdf", []byte("1"), "application/pdf"))
	require.NoError(t, store.Save(ctx, "book-1/page3.pdf", []byte("3"), "application/pdf"))

	merger := &recordingMerger{}
	assembler := assembly.NewAssembler(store, merger, time.Hour, nil)

	_, err := assembler.Assemble(ctx, []string{"book-1/page1.pdf", "book-1/page2.pdf", "book-1/page3.pdf"}, "book-1/assembled/pages-1-3.pdf")

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodePageNotFound))
	assert.Contains(t, err.Error(), "book-1/page2.pdf")
	assert.Empty(t, merger.calls)

	exists, err := store.Exists(ctx, "book-1/assembled/pages-1-3.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}

/*
TestAssemble_PreservesOrder verifies input order wins over completion order.
*/
func TestAssemble_PreservesOrder(t *testing.T) {
	ctx := context.Background()
	store, signer := setup(t)

	ids := []string{"book-1/page5.pdf", "book-1/page1.pdf", "book-1/page4.pdf", "book-1/page2.pdf", "book-1/page3.pdf"}
	for _, id := range ids {
		require.NoError(t, store.Save(ctx, id, []byte(id), "application/pdf"))
	}

	merger := &recordingMerger{}
	assembler := assembly.NewAssembler(jitterStore{store}, merger, time.Hour, nil)

	for range 5 {
		link, err := assembler.Assemble(ctx, ids, "book-1/assembled/custom.pdf")
		require.NoError(t, err)

		parsed, err := url.Parse(link)
		require.NoError(t, err)
		claims, err := signer.Verify(parsed.Query().Get("token"))
		require.NoError(t, err)
		assert.Equal(t, "book-1/assembled/custom.pdf", claims.Subject)
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
	}

	for _, call := range merger.calls {
		assert.Equal(t, ids, call)
	}

	stored, err := store.Download(ctx, "book-1/assembled/custom.pdf")
	require.NoError(t, err)
	assert.Equal(t, strings.Join(ids, "|"), string(stored))
}

/*
TestAssemble_PDFPageOrder runs a real merge: the stored document holds every page of
every input file, in request order.
*/
func TestAssemble_PDFPageOrder(t *testing.T) {
	ctx := context.Background()
	store, _ := setup(t)

	require.NoError(t, store.Save(ctx, "book-1/page1.pdf", pdftest.Generate(2, 600), "application/pdf"))
	require.NoError(t, store.Save(ctx, "book-1/page2.pdf", pdftest.Generate(3, 700), "application/pdf"))
	require.NoError(t, store.Save(ctx, "book-1/page3.pdf", pdftest.Generate(1, 800), "application/pdf"))

	assembler := assembly.NewAssembler(jitterStore{store}, assembly.NewPDFMerger(), time.Hour, nil)

	_, err := assembler.Assemble(ctx, []string{"book-1/page3.pdf", "book-1/page1.pdf", "book-1/page2.pdf"}, "book-1/assembled/custom.pdf")
	require.NoError(t, err)

	stored, err := store.Download(ctx, "book-1/assembled/custom.pdf")
	require.NoError(t, err)
	assert.Equal(t, []float64{800, 600, 601, 700, 701, 702}, pageWidths(t, stored))
}

/*
TestOutputID verifies deterministic and order-sensitive naming.
*/
func TestOutputID(t *testing.T) {
	assert.Equal(t, "book-1/assembled/pages-3-7.pdf", assembly.OutputID("book-1", []int{3, 4, 5, 6, 7}))
	assert.Equal(t, "book-1/assembled/pages-9-9.pdf", assembly.OutputID("book-1", []int{9}))

	shuffled := assembly.OutputID("book-1", []int{1, 3, 2})
	assert.True(t, strings.HasPrefix(shuffled, "book-1/assembled/pages-"))
	assert.Equal(t, shuffled, assembly.OutputID("book-1", []int{1, 3, 2}))
	assert.NotEqual(t, shuffled, assembly.OutputID("book-1", []int{3, 2, 1}))
	assert.NotEqual(t, shuffled, assembly.OutputID("book-2", []int{1, 3, 2}))
}
