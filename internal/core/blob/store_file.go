// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	pathpkg "path"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/taibuivan/bookworm/internal/platform/sec"
	"github.com/taibuivan/bookworm/pkg/slug"
)

// objectMeta is the JSON sidecar stored at {path}.meta.
type objectMeta struct {
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FileStore implements [Store] on an [afero.Fs].
//
// Production roots an OS filesystem at BLOB_ROOT; tests use an in-memory one.
type FileStore struct {
	fs     afero.Fs
	signer *sec.LinkSigner
}

// NewFileStore builds a store over fsys.
func NewFileStore(fsys afero.Fs, signer *sec.LinkSigner) *FileStore {
	return &FileStore{fs: fsys, signer: signer}
}

// NewOSFileStore builds a store rooted at dir on the local disk, creating it if needed.
func NewOSFileStore(dir string, signer *sec.LinkSigner) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create root %s: %w", dir, err)
	}
	return NewFileStore(afero.NewBasePathFs(afero.NewOsFs(), dir), signer), nil
}

// Exists implements [Store].
func (store *FileStore) Exists(_ context.Context, path string) (bool, error) {
	name, err := store.resolve(path)
	if err != nil {
		return false, err
	}

	exists, err := afero.Exists(store.fs, name)
	if err != nil {
		return false, fmt.Errorf("blob: stat %s: %w", path, err)
	}
	return exists, nil
}

// Download implements [Store].
func (store *FileStore) Download(_ context.Context, path string) ([]byte, error) {
	name, err := store.resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(store.fs, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("blob: read %s: %w", path, err)
	}
	return data, nil
}

/*
Save writes data to path, replacing any existing object.

Description: The content and its sidecar are each written to a uniquely named
temporary sibling and renamed into place. Readers never observe a half-written
object and concurrent writers of the same path each commit a complete copy.
*/
func (store *FileStore) Save(_ context.Context, path string, data []byte, contentType string) error {
	name, err := store.resolve(path)
	if err != nil {
		return err
	}

	if err := store.fs.MkdirAll(pathpkg.Dir(name), 0o755); err != nil {
		return fmt.Errorf("blob: create directory for %s: %w", path, err)
	}

	if err := store.writeAtomic(name, data); err != nil {
		return fmt.Errorf("blob: commit %s: %w", path, err)
	}

	meta, err := json.Marshal(objectMeta{ContentType: contentType, Size: int64(len(data)), UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("blob: encode metadata for %s: %w", path, err)
	}
	if err := store.writeAtomic(name+metaSuffix, meta); err != nil {
		return fmt.Errorf("blob: commit metadata for %s: %w", path, err)
	}
	return nil
}

// writeAtomic writes data to a fresh temp file next to name and renames it over name.
func (store *FileStore) writeAtomic(name string, data []byte) error {
	temp, err := afero.TempFile(store.fs, pathpkg.Dir(name), pathpkg.Base(name)+".*.tmp")
	if err != nil {
		return err
	}
	tempName := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = store.fs.Remove(tempName)
		return err
	}
	if err := temp.Close(); err != nil {
		_ = store.fs.Remove(tempName)
		return err
	}

	if err := store.fs.Rename(tempName, name); err != nil {
		_ = store.fs.Remove(tempName)
		return err
	}
	return nil
}

// SignedURL implements [Store]. The link suggests a download name derived from the path.
func (store *FileStore) SignedURL(_ context.Context, path string, expiresAt time.Time) (string, error) {
	if _, err := CleanPath(path); err != nil {
		return "", err
	}

	ext := pathpkg.Ext(path)
	return store.signer.URL(path, slug.Filename(strings.TrimSuffix(path, ext), ext), expiresAt)
}

// Open implements [Store]. The caller must close the returned content.
func (store *FileStore) Open(_ context.Context, path string) (*Object, error) {
	name, err := store.resolve(path)
	if err != nil {
		return nil, err
	}

	file, err := store.fs.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("blob: open %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("blob: stat %s: %w", path, err)
	}

	object := &Object{
		Content:     file,
		ContentType: "application/octet-stream",
		Size:        info.Size(),
		ModTime:     info.ModTime(),
	}

	if raw, err := afero.ReadFile(store.fs, name+metaSuffix); err == nil {
		var meta objectMeta
		if json.Unmarshal(raw, &meta) == nil && meta.ContentType != "" {
			object.ContentType = meta.ContentType
		}
	}

	return object, nil
}

// Ping verifies the root is reachable.
func (store *FileStore) Ping(context.Context) error {
	if _, err := store.fs.Stat("/"); err != nil {
		return fmt.Errorf("blob: root unavailable: %w", err)
	}
	return nil
}

// resolve maps a validated object path to its filesystem name.
func (store *FileStore) resolve(path string) (string, error) {
	clean, err := CleanPath(path)
	if err != nil {
		return "", err
	}
	return "/" + clean, nil
}
