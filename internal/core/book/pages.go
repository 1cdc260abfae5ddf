// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/taibuivan/bookworm/internal/platform/apperr"
	"github.com/taibuivan/bookworm/internal/platform/constants"
	"github.com/taibuivan/bookworm/internal/platform/validate"
)

// FieldPages is the query parameter carrying a page specification.
const FieldPages = "pages"

// # Page Lists

// PageList is the ordered set of pages a chapter spans inside a namespace.
type PageList struct {
	Namespace string
	Pages     []int
}

// PageFileID names a single-page file: "{namespace}/page{n}.pdf".
func PageFileID(namespace string, page int) string {
	return fmt.Sprintf("%s/page%d.pdf", namespace, page)
}

// FileIDs maps every page to its page-file id, preserving order.
func (list PageList) FileIDs() []string {
	ids := make([]string, len(list.Pages))
	for i, page := range list.Pages {
		ids[i] = PageFileID(list.Namespace, page)
	}
	return ids
}

// # Page Range Resolution

// PageResolver turns a chapter's declared range into a page list.
type PageResolver struct {
	fetcher Fetcher
	limit   int
}

// NewPageResolver constructs a resolver enforcing [constants.MaxAssemblyPages].
func NewPageResolver(fetcher Fetcher) *PageResolver {
	return &PageResolver{fetcher: fetcher, limit: constants.MaxAssemblyPages}
}

/*
ResolvePageList computes the pages of a chapter.

Description: Exactly one store call is made. A range longer than the page
ceiling fails before the namespace is even inspected.

Parameters:
  - context: context.Context
  - chapterID: string

Returns:
  - PageList: Namespace from metadata.book and pages first..last
  - error: KIND_MISMATCH, NOT_FOUND, CORRUPT_RECORD or TOO_MANY_PAGES
*/
func (resolver *PageResolver) ResolvePageList(context context.Context, chapterID string) (PageList, error) {
	chapter, err := fetchChapter(context, resolver.fetcher, chapterID)
	if err != nil {
		return PageList{}, err
	}

	first, last, err := chapter.PageRange()
	if err != nil {
		return PageList{}, apperr.CorruptRecord("Chapter "+chapterID, err)
	}

	if length := last - first + 1; length > resolver.limit {
		return PageList{}, apperr.TooManyPages(length, resolver.limit)
	}

	namespace, err := chapter.Namespace()
	if err != nil {
		return PageList{}, apperr.CorruptRecord("Chapter "+chapterID, err)
	}

	pages := make([]int, 0, last-first+1)
	for page := first; page <= last; page++ {
		pages = append(pages, page)
	}

	return PageList{Namespace: namespace, Pages: pages}, nil
}

// # Page Specifications

/*
ParsePageSpec parses "a-b" (inclusive range) or "a,b,c" (explicit list).

Description: Page numbers are positive integers. A list keeps the caller's order
and may repeat pages. More than limit pages fails with TOO_MANY_PAGES before any
slice is allocated for a range.
*/
func ParsePageSpec(spec string, limit int) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, validate.RequiredError(FieldPages, "This query parameter is required")
	}

	if start, end, isRange := strings.Cut(spec, "-"); isRange {
		first, err := parsePage(start)
		if err != nil {
			return nil, err
		}
		last, err := parsePage(end)
		if err != nil {
			return nil, err
		}
		if first > last {
			return nil, validate.RequiredError(FieldPages, "Range start must not exceed range end")
		}
		if length := last - first + 1; length > limit {
			return nil, apperr.TooManyPages(length, limit)
		}

		pages := make([]int, 0, last-first+1)
		for page := first; page <= last; page++ {
			pages = append(pages, page)
		}
		return pages, nil
	}

	parts := strings.Split(spec, ",")
	if len(parts) > limit {
		return nil, apperr.TooManyPages(len(parts), limit)
	}

	pages := make([]int, 0, len(parts))
	for _, part := range parts {
		page, err := parsePage(part)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func parsePage(text string) (int, error) {
	page, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || page < 1 {
		return 0, validate.RequiredError(FieldPages, fmt.Sprintf("%q is not a positive page number", strings.TrimSpace(text)))
	}
	return page, nil
}
