// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package assembly_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookworm/internal/core/assembly"
	"github.com/taibuivan/bookworm/internal/platform/apperr"
	"github.com/taibuivan/bookworm/internal/platform/pdftest"
)

// pageWidths reads back the width of every page; generated fixtures give each page its own width.
func pageWidths(t *testing.T, data []byte) []float64 {
	t.Helper()
	api.DisableConfigDir()

	dims, err := api.PageDims(bytes.NewReader(data), model.NewDefaultConfiguration())
	require.NoError(t, err)

	widths := make([]float64, len(dims))
	for i, dim := range dims {
		widths[i] = dim.Width
	}
	return widths
}

/*
TestPDFMerger_PageOrder verifies that a 2-page and a 3-page file merge into 5 pages,
the first file's pages before the second's, each in its own internal order.
*/
func TestPDFMerger_PageOrder(t *testing.T) {
	merger := assembly.NewPDFMerger()

	merged, err := merger.Merge(context.Background(), []assembly.Page{
		{ID: "book-1/page1.pdf", Data: pdftest.Generate(2, 600)},
		{ID: "book-1/page2.pdf", Data: pdftest.Generate(3, 700)},
	})
	require.NoError(t, err)

	count, err := assembly.PageCount(merged)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	assert.Equal(t, []float64{600, 601, 700, 701, 702}, pageWidths(t, merged))
}

/*
TestPDFMerger_Single verifies that one input is passed through.
*/
func TestPDFMerger_Single(t *testing.T) {
	page := pdftest.Generate(1, 600)

	merged, err := assembly.NewPDFMerger().Merge(context.Background(), []assembly.Page{{ID: "book-1/page1.pdf", Data: page}})
	require.NoError(t, err)
	assert.Equal(t, page, merged)
}

/*
TestPDFMerger_Corrupt verifies that an unparsable page is named in the error.
*/
func TestPDFMerger_Corrupt(t *testing.T) {
	_, err := assembly.NewPDFMerger().Merge(context.Background(), []assembly.Page{
		{ID: "book-1/page1.pdf", Data: pdftest.Generate(1, 600)},
		{ID: "book-1/page2.pdf", Data: []byte("not a pdf")},
	})

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeCorruptRecord))
	assert.Contains(t, err.Error(), "book-1/page2.pdf")
}

/*
TestSplitPages verifies that splitting yields one single-page document per page.
*/
func TestSplitPages(t *testing.T) {
	pages, err := assembly.SplitPages(pdftest.Generate(3, 600))
	require.NoError(t, err)
	require.Len(t, pages, 3)

	for _, page := range pages {
		count, err := assembly.PageCount(page)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	}

	_, err = assembly.SplitPages([]byte("not a pdf"))
	assert.Error(t, err)
}
