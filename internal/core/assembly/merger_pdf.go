// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package assembly

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/taibuivan/bookworm/internal/platform/apperr"
)

// PDFMerger implements [Merger] with pdfcpu.
type PDFMerger struct{}

// NewPDFMerger constructs a pdfcpu backed merger. pdfcpu's on-disk
// configuration directory is disabled for the whole process.
func NewPDFMerger() *PDFMerger {
	api.DisableConfigDir()
	return &PDFMerger{}
}

// configuration returns a fresh relaxed configuration; pdfcpu mutates it per call.
func configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

/*
Merge appends every page of every input, inputs in slice order.

Description: Each input is parsed on its own first so that a malformed page file
is reported by id instead of failing the merge anonymously.

Returns:
  - []byte: The serialized composite PDF
  - error: CORRUPT_RECORD naming the first unparsable page file, or merge errors
*/
func (merger *PDFMerger) Merge(context context.Context, pages []Page) ([]byte, error) {
	readers := make([]io.ReadSeeker, len(pages))
	for i, page := range pages {
		if err := context.Err(); err != nil {
			return nil, err
		}

		if _, err := api.PageCount(bytes.NewReader(page.Data), configuration()); err != nil {
			return nil, apperr.CorruptRecord("Page file "+page.ID, err)
		}
		readers[i] = bytes.NewReader(page.Data)
	}

	if len(pages) == 1 {
		return pages[0].Data, nil
	}

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, configuration()); err != nil {
		return nil, fmt.Errorf("assembly: merge %d page files: %w", len(pages), err)
	}
	return out.Bytes(), nil
}

// PageCount reports the number of pages in a PDF.
func PageCount(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), configuration())
}

/*
SplitPages cuts a PDF into single-page documents.

Returns:
  - [][]byte: One serialized PDF per page, index 0 holding page 1
  - error: When the input is unparsable or a page cannot be extracted
*/
func SplitPages(data []byte) ([][]byte, error) {
	count, err := PageCount(data)
	if err != nil {
		return nil, fmt.Errorf("assembly: count pages: %w", err)
	}

	pages := make([][]byte, count)
	for n := 1; n <= count; n++ {
		var out bytes.Buffer
		if err := api.Trim(bytes.NewReader(data), &out, []string{strconv.Itoa(n)}, configuration()); err != nil {
			return nil, fmt.Errorf("assembly: extract page %d: %w", n, err)
		}
		pages[n-1] = out.Bytes()
	}
	return pages, nil
}
