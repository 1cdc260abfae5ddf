// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package assembly merges single-page files into one deliverable document.

Pages are fetched concurrently and merged strictly in the order requested. The
result is stored under a name derived from the namespace and page list, so the
same request always overwrites the same object, and a time-limited link to it
is returned.
*/
package assembly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/bookworm/internal/core/blob"
	"github.com/taibuivan/bookworm/internal/platform/apperr"
	"github.com/taibuivan/bookworm/internal/platform/constants"
	"github.com/taibuivan/bookworm/internal/platform/ctxutil"
	"github.com/taibuivan/bookworm/pkg/uuid"
)

// # Types

// Page is one downloaded page file.
type Page struct {
	ID   string
	Data []byte
}

// Merger concatenates page files, keeping each file's internal page order.
type Merger interface {
	Merge(context context.Context, pages []Page) ([]byte, error)
}

// # Assembler

// Assembler turns page-file ids into a stored, linkable document.
type Assembler struct {
	blobs   blob.Store
	merger  Merger
	linkTTL time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// NewAssembler constructs an [Assembler] whose links live for linkTTL.
func NewAssembler(blobs blob.Store, merger Merger, linkTTL time.Duration, logger *slog.Logger) *Assembler {
	return &Assembler{
		blobs:   blobs,
		merger:  merger,
		linkTTL: linkTTL,
		now:     time.Now,
		logger:  logger,
	}
}

/*
Assemble merges pageFileIDs in order, stores the result under outputID and
returns a signed link to it.

Description: Page files are checked and downloaded concurrently; the results
are gathered by index. A single missing page aborts the whole assembly and
nothing is written.

Parameters:
  - context: context.Context
  - pageFileIDs: []string (authoritative order)
  - outputID: string (blob path of the merged document)

Returns:
  - string: Signed URL valid for the configured link lifetime
  - error: EMPTY_DOCUMENT_REQUEST, PAGE_NOT_FOUND, CORRUPT_RECORD or storage errors
*/
func (assembler *Assembler) Assemble(context context.Context, pageFileIDs []string, outputID string) (string, error) {
	if len(pageFileIDs) == 0 {
		return "", apperr.EmptyDocumentRequest()
	}

	pages, err := assembler.fetchPages(context, pageFileIDs)
	if err != nil {
		return "", err
	}

	merged, err := assembler.merger.Merge(context, pages)
	if err != nil {
		return "", err
	}

	if err := assembler.blobs.Save(context, outputID, merged, constants.ContentTypePDF); err != nil {
		return "", fmt.Errorf("assembly: save %s: %w", outputID, err)
	}

	url, err := assembler.blobs.SignedURL(context, outputID, assembler.now().Add(assembler.linkTTL))
	if err != nil {
		return "", fmt.Errorf("assembly: sign %s: %w", outputID, err)
	}

	ctxutil.LoggerOr(context, assembler.logger).Info("document_assembled",
		slog.String("output_id", outputID),
		slog.Int("page_files", len(pages)),
		slog.Int("bytes", len(merged)),
	)

	return url, nil
}

// fetchPages downloads every page concurrently, keeping input order.
func (assembler *Assembler) fetchPages(context context.Context, pageFileIDs []string) ([]Page, error) {
	pages := make([]Page, len(pageFileIDs))

	group, groupContext := errgroup.WithContext(context)
	for i, id := range pageFileIDs {
		group.Go(func() error {
			exists, err := assembler.blobs.Exists(groupContext, id)
			if err != nil {
				return fmt.Errorf("assembly: check %s: %w", id, err)
			}
			if !exists {
				return apperr.PageNotFound(id)
			}

			data, err := assembler.blobs.Download(groupContext, id)
			if err != nil {
				if errors.Is(err, blob.ErrNotFound) {
					return apperr.PageNotFound(id)
				}
				return fmt.Errorf("assembly: download %s: %w", id, err)
			}

			pages[i] = Page{ID: id, Data: data}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

// # Output Naming

/*
OutputID derives the blob path of an assembled document.

Description: A contiguous ascending run is named by its bounds,
"{namespace}/assembled/pages-{first}-{last}.pdf". Any other list is named by
a name-based UUID of the exact sequence, so [1,3,2] and [1,2,3] differ.
*/
func OutputID(namespace string, pages []int) string {
	if len(pages) > 0 && isRun(pages) {
		return fmt.Sprintf("%s/assembled/pages-%d-%d.pdf", namespace, pages[0], pages[len(pages)-1])
	}

	parts := make([]string, len(pages))
	for i, page := range pages {
		parts[i] = strconv.Itoa(page)
	}
	return fmt.Sprintf("%s/assembled/pages-%s.pdf", namespace, uuid.Named(namespace, strings.Join(parts, ",")))
}

// isRun reports whether pages ascend by exactly one.
func isRun(pages []int) bool {
	for i := 1; i < len(pages); i++ {
		if pages[i] != pages[0]+i {
			return false
		}
	}
	return true
}
