// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ident classifies opaque entity identifiers by their prefix.

Every book, chapter and user id carries its kind in a fixed prefix
("book-8Q7HM3", "chapter-1a", "user-42"). Lookups assert the expected kind before
touching a collection so that a chapter id sent to the book collection fails with a
clear [apperr.CodeKindMismatch] instead of a confusing not-found.
*/
package ident

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/taibuivan/bookworm/internal/platform/apperr"
)

// # Kinds

// Kind is the entity type encoded in an identifier prefix.
type Kind string

const (
	Chapter Kind = "chapter"
	Book    Kind = "book"
	User    Kind = "user"
	Unknown Kind = "unknown"
)

// Collection names in the document store, one per kind.
const (
	CollectionChapters = "chapterInfo"
	CollectionBooks    = "bookInfo"
	CollectionUsers    = "userInfo"
)

// prefixes is ordered; the first match wins.
var prefixes = []Kind{Chapter, Book, User}

// Prefix returns the identifier prefix for k, including the trailing hyphen.
func (k Kind) Prefix() string {
	if k == Unknown {
		return ""
	}
	return string(k) + "-"
}

// Collection returns the document collection holding entities of kind k,
// or the empty string for [Unknown].
func (k Kind) Collection() string {
	switch k {
	case Chapter:
		return CollectionChapters
	case Book:
		return CollectionBooks
	case User:
		return CollectionUsers
	default:
		return ""
	}
}

// Title is the capitalised kind used in client-facing messages.
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// # Classification

// Classify maps id to its [Kind] by prefix. Anything unrecognised is [Unknown].
func Classify(id string) Kind {
	for _, kind := range prefixes {
		if strings.HasPrefix(id, kind.Prefix()) {
			return kind
		}
	}
	return Unknown
}

// AssertKind fails with a KIND_MISMATCH [apperr.AppError] carrying both the
// expected and the actual kind when id is not of the expected kind.
func AssertKind(id string, expected Kind) error {
	if actual := Classify(id); actual != expected {
		return apperr.KindMismatch(id, string(expected), string(actual))
	}
	return nil
}

// KindOfCollection is the inverse of [Kind.Collection].
func KindOfCollection(collection string) Kind {
	for _, kind := range prefixes {
		if kind.Collection() == collection {
			return kind
		}
	}
	return Unknown
}

// # Generation

// Generate mints a new identifier of kind k using NanoID.
//
// Format: prefix-nanoid (e.g. "book-V1StGXR8_Z5jdHi6B-myT").
func Generate(k Kind) (string, error) {
	if k == Unknown {
		return "", fmt.Errorf("ident: cannot generate an id of kind %s", k)
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("ident: generate nanoid: %w", err)
	}

	return k.Prefix() + id, nil
}
