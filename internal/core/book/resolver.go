// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/bookworm/internal/platform/apperr"
	"github.com/taibuivan/bookworm/internal/platform/constants"
)

// # Tree Resolution

// TreeResolver walks chapter references recursively into resolved views.
type TreeResolver struct {
	fetcher  Fetcher
	maxDepth int
}

// NewTreeResolver constructs a resolver capped at [constants.MaxTreeDepth] levels.
func NewTreeResolver(fetcher Fetcher) *TreeResolver {
	return &TreeResolver{fetcher: fetcher, maxDepth: constants.MaxTreeDepth}
}

/*
ResolveBookTree fetches a book and resolves every chapter concurrently.

Description: Results are placed by index, so chapterInfo mirrors the order of
book.chapters regardless of which fetch completes first. The first failure
cancels all outstanding fetches and no partial tree is returned.

Parameters:
  - context: context.Context
  - bookID: string

Returns:
  - *BookTree: The book with chapterInfo populated
  - error: KIND_MISMATCH, NOT_FOUND, CORRUPT_RECORD or GRAPH_CYCLE_DETECTED
*/
func (resolver *TreeResolver) ResolveBookTree(context context.Context, bookID string) (*BookTree, error) {
	book, err := fetchBook(context, resolver.fetcher, bookID)
	if err != nil {
		return nil, err
	}

	children, err := resolver.resolveAll(context, book.Chapters, nil)
	if err != nil {
		return nil, err
	}

	return &BookTree{Book: *book, ChapterInfo: children}, nil
}

/*
ResolveChapterTree fetches a chapter and, when it declares subchapters, resolves
them recursively. A chapter without subchapters is returned as a leaf.

Parameters:
  - context: context.Context
  - chapterID: string

Returns:
  - *ChapterTree: The resolved chapter
  - error: KIND_MISMATCH, NOT_FOUND, CORRUPT_RECORD or GRAPH_CYCLE_DETECTED
*/
func (resolver *TreeResolver) ResolveChapterTree(context context.Context, chapterID string) (*ChapterTree, error) {
	return resolver.resolveChapter(context, chapterID, nil)
}

// resolveChapter carries the ancestor path so that a chapter appearing below
// itself is reported instead of recursing forever. A chapter shared by two
// different parents is not a cycle.
func (resolver *TreeResolver) resolveChapter(context context.Context, chapterID string, ancestors []string) (*ChapterTree, error) {
	if slices.Contains(ancestors, chapterID) {
		return nil, apperr.GraphCycleDetected(ancestors, chapterID)
	}

	if len(ancestors) >= resolver.maxDepth {
		return nil, apperr.CorruptRecord("Chapter "+chapterID,
			fmt.Errorf("chapter tree deeper than %d levels below %s", resolver.maxDepth, ancestors[0]))
	}

	chapter, err := fetchChapter(context, resolver.fetcher, chapterID)
	if err != nil {
		return nil, err
	}

	tree := &ChapterTree{Chapter: *chapter}
	if len(chapter.Subchapters) == 0 {
		return tree, nil
	}

	path := append(slices.Clone(ancestors), chapterID)
	tree.SubchapterInfo, err = resolver.resolveAll(context, chapter.SubchapterIDs(), path)
	if err != nil {
		return nil, err
	}

	return tree, nil
}

// resolveAll resolves sibling chapters concurrently and gathers them by index.
func (resolver *TreeResolver) resolveAll(context context.Context, chapterIDs []string, ancestors []string) ([]*ChapterTree, error) {
	results := make([]*ChapterTree, len(chapterIDs))

	group, groupContext := errgroup.WithContext(context)
	for i, chapterID := range chapterIDs {
		group.Go(func() error {
			tree, err := resolver.resolveChapter(groupContext, chapterID, ancestors)
			if err != nil {
				return err
			}
			results[i] = tree
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
