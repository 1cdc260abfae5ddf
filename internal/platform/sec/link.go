// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives for capability links.
//
// # Architecture
//
// A signed link grants read access to one blob-store object until it expires,
// without any other authentication. The capability is an HS256 JWT whose subject
// is the object path. The signing key is derived from the configured secret with
// HKDF so that the raw secret is never used as a MAC key directly.
package sec

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// hkdfInfo binds derived keys to their purpose.
const hkdfInfo = "bookworm blob link v1"

// ErrInvalidLink is returned for malformed, tampered or expired link tokens.
var ErrInvalidLink = errors.New("sec: invalid link token")

// LinkClaims is the payload of a link token.
type LinkClaims struct {
	jwt.RegisteredClaims

	// Name is the suggested download filename.
	Name string `json:"nam,omitempty"`
}

// LinkSigner issues and verifies link tokens and renders them as URLs.
type LinkSigner struct {
	key     []byte
	issuer  string
	baseURL string
	now     func() time.Time
}

// NewLinkSigner derives a signing key from secret and builds a signer whose
// URLs point at {baseURL}/api/v1/blobs.
func NewLinkSigner(secret, issuer, baseURL string) (*LinkSigner, error) {
	if secret == "" {
		return nil, errors.New("sec: link secret must not be empty")
	}

	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("sec: derive link key: %w", err)
	}

	return &LinkSigner{
		key:     key,
		issuer:  issuer,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}, nil
}

// Sign creates a token for path valid until expiresAt.
func (signer *LinkSigner) Sign(path, name string, expiresAt time.Time) (string, error) {
	claims := LinkClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   path,
			Issuer:    signer.issuer,
			IssuedAt:  jwt.NewNumericDate(signer.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Name: name,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signer.key)
	if err != nil {
		return "", fmt.Errorf("sec: sign link: %w", err)
	}
	return token, nil
}

// URL signs path and returns the public retrieval URL.
func (signer *LinkSigner) URL(path, name string, expiresAt time.Time) (string, error) {
	token, err := signer.Sign(path, name, expiresAt)
	if err != nil {
		return "", err
	}
	return signer.baseURL + "/api/v1/blobs?token=" + url.QueryEscape(token), nil
}

// Verify checks the signature, issuer and expiry of a token and returns its claims.
func (signer *LinkSigner) Verify(token string) (*LinkClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &LinkClaims{}, func(token *jwt.Token) (interface{}, error) {
		return signer.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(signer.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(signer.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLink, err)
	}

	claims, ok := parsed.Claims.(*LinkClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidLink
	}
	return claims, nil
}

// WithClock replaces the signer's time source. Used by tests.
func (signer *LinkSigner) WithClock(now func() time.Time) *LinkSigner {
	clone := *signer
	clone.now = now
	return &clone
}
