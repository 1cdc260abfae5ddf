// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"testing"

	googleuuid "github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookworm/pkg/uuid"
)

/*
TestNamed verifies determinism, version and namespace separation.
*/
func TestNamed(t *testing.T) {
	first := uuid.Named("book-1", "1,3,2")

	assert.Equal(t, first, uuid.Named("book-1", "1,3,2"))
	assert.NotEqual(t, first, uuid.Named("book-2", "1,3,2"))
	assert.NotEqual(t, first, uuid.Named("book-1", "1,2,3"))

	parsed, err := googleuuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, googleuuid.Version(5), parsed.Version())
}
