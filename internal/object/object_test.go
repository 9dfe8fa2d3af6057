package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObject_Equal_IgnoresStorageFields(t *testing.T) {
	t.Parallel()

	a := Object{ID: "a/b", Size: 10, LastModified: 100, LocalPath: "/tmp/a/b"}
	b := Object{ID: "a/b", Size: 10, LastModified: 100, Bucket: "some-bucket"}

	assert.True(t, a.Equal(b))
}

func TestObject_Equal_DiffersOnSizeOrMtime(t *testing.T) {
	t.Parallel()

	base := Object{ID: "a/b", Size: 10, LastModified: 100}

	assert.False(t, base.Equal(Object{ID: "a/b", Size: 11, LastModified: 100}))
	assert.False(t, base.Equal(Object{ID: "a/b", Size: 10, LastModified: 101}))
	assert.False(t, base.Equal(Object{ID: "a/c", Size: 10, LastModified: 100}))
}
