// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookworm/internal/platform/sec"
)

func newSigner(t *testing.T, secret string) *sec.LinkSigner {
	t.Helper()
	signer, err := sec.NewLinkSigner(secret, "bookworm.app", "https://api.example.com/")
	require.NoError(t, err)
	return signer
}

/*
TestLinkSigner_RoundTrip verifies that a signed token carries its path and name.
*/
func TestLinkSigner_RoundTrip(t *testing.T) {
	signer := newSigner(t, "secret")

	token, err := signer.Sign("book-1/assembled/pages-1-5.pdf", "calculus.pdf", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "book-1/assembled/pages-1-5.pdf", claims.Subject)
	assert.Equal(t, "calculus.pdf", claims.Name)
	assert.Equal(t, "bookworm.app", claims.Issuer)
}

/*
TestLinkSigner_URL verifies the public URL shape.
*/
func TestLinkSigner_URL(t *testing.T) {
	signer := newSigner(t, "secret")

	link, err := signer.URL("book-1/page1.pdf", "", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://api.example.com/api/v1/blobs?token="))

	parsed, err := url.Parse(link)
	require.NoError(t, err)

	claims, err := signer.Verify(parsed.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, "book-1/page1.pdf", claims.Subject)
}

/*
TestLinkSigner_Expired verifies that links stop working after their expiry.
*/
func TestLinkSigner_Expired(t *testing.T) {
	signer := newSigner(t, "secret")
	issued := time.Now()

	token, err := signer.Sign("book-1/page1.pdf", "", issued.Add(time.Hour))
	require.NoError(t, err)

	later := signer.WithClock(func() time.Time { return issued.Add(2 * time.Hour) })
	_, err = later.Verify(token)
	assert.ErrorIs(t, err, sec.ErrInvalidLink)
}

/*
TestLinkSigner_ForeignSecret verifies that tokens from another key are rejected.
*/
func TestLinkSigner_ForeignSecret(t *testing.T) {
	token, err := newSigner(t, "one").Sign("book-1/page1.pdf", "", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = newSigner(t, "two").Verify(token)
	assert.ErrorIs(t, err, sec.ErrInvalidLink)

	_, err = newSigner(t, "one").Verify(token + "x")
	assert.ErrorIs(t, err, sec.ErrInvalidLink)
}

/*
TestNewLinkSigner_EmptySecret verifies that an empty secret is refused.
*/
func TestNewLinkSigner_EmptySecret(t *testing.T) {
	_, err := sec.NewLinkSigner("", "bookworm.app", "http://localhost")
	assert.Error(t, err)
}
