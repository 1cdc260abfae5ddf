// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package blob stores page files and assembled documents and hands out signed links.

Objects are addressed by slash-separated relative paths such as
"book-8Q7HM3/page12.pdf". Each object keeps its content type next to it. Reading
through a link requires only the link token; see [sec.LinkSigner].
*/
package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/taibuivan/bookworm/internal/platform/apperr"
)

// ErrNotFound is returned when no object exists at a path.
var ErrNotFound = errors.New("blob: object not found")

// metaSuffix names the sidecar holding an object's attributes.
const metaSuffix = ".meta"

// # Store Contract

// Object is an open blob ready to be served.
type Object struct {
	Content     io.ReadSeekCloser
	ContentType string
	Size        int64
	ModTime     time.Time
}

// Store defines blob persistence and link issuance.
type Store interface {
	Exists(context context.Context, path string) (bool, error)
	Download(context context.Context, path string) ([]byte, error)
	Save(context context.Context, path string, data []byte, contentType string) error
	SignedURL(context context.Context, path string, expiresAt time.Time) (string, error)
	Open(context context.Context, path string) (*Object, error)
	Ping(context context.Context) error
}

// # Path Hygiene

// CleanPath validates an object path: relative, slash-separated, without empty,
// "." or ".." segments and not naming a sidecar.
func CleanPath(path string) (string, error) {
	if path == "" || strings.HasPrefix(path, "/") || strings.Contains(path, "\\") {
		return "", invalidPath(path)
	}

	for _, segment := range strings.Split(path, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return "", invalidPath(path)
		}
	}

	if strings.HasSuffix(path, metaSuffix) {
		return "", invalidPath(path)
	}

	return path, nil
}

func invalidPath(path string) error {
	return apperr.ValidationError("Invalid blob path", apperr.FieldError{Field: "path", Message: "Not a valid object path: " + path})
}
