// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides deterministic identifiers for derived artifacts.

It wraps the standard UUID library to generate Version 5 (name-based, SHA-1)
values: the same namespace and name always yield the same UUID.

Usage:

  - Assembled documents: the output name of a merged page list is stable across
    requests so that re-assembly overwrites instead of accumulating copies.
*/
package uuid

import "github.com/google/uuid"

// artifactSpace scopes every derived identifier of the platform.
var artifactSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://bookworm.app/artifacts"))

// # Generators

// Named returns the Version 5 UUID of name inside namespace.
func Named(namespace, name string) string {
	scope := uuid.NewSHA1(artifactSpace, []byte(namespace))
	return uuid.NewSHA1(scope, []byte(name)).String()
}
