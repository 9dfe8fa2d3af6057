package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelocate_Corpus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		id           string
		sourcePrefix string
		targetPrefix string
		want         string
	}{
		{"empty source prefix prepends target prefix", "a/b/c", "", "x", "x/a/b/c"},
		{"strip prefix to empty target", "a/b/c", "a", "", "b/c"},
		{"self relocation is identity", "a/b/c", "a/b/c", "", "a/b/c"},
		{"multi-segment prefix both sides", "a/b/c", "a/b", "x/y", "x/y/c"},
		{"empty id, empty prefixes", "", "", "", ""},
		{"no match, unrelated prefix", "a/b/c", "z", "x", "a/b/c"},
		{"source prefix without trailing boundary does not match", "abc/def", "ab", "x", "abc/def"},
		{"id equal to multi-segment source prefix is unchanged", "a/b", "a/b", "", "a/b"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Relocate(tt.id, tt.sourcePrefix, tt.targetPrefix))
		})
	}
}

func TestRelocate_Identity(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"", "a", "a/b/c", "deeply/nested/path/to/object"} {
		assert.Equal(t, id, Relocate(id, "", ""), "id=%q", id)
	}
}

func TestRelocate_FixedPoint(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"a", "a/b/c", "x"} {
		assert.Equal(t, id, Relocate(id, id, ""), "id=%q", id)
	}
}

func TestRelocate_CompositionOnSuffix(t *testing.T) {
	t.Parallel()

	const src = "a/b"
	const tail = "c/d"
	id := src + "/" + tail

	assert.Equal(t, tail, Relocate(id, src, ""))
	assert.Equal(t, "x/y/"+tail, Relocate(id, src, "x/y"))
}

func TestRules_Apply_FirstMatchWins(t *testing.T) {
	t.Parallel()

	rules := Rules{
		{SourcePrefix: "def/jkl", TargetPrefix: "relocated-bis/folder"},
		{SourcePrefix: "", TargetPrefix: "catch-all"},
	}

	assert.Equal(t, "relocated-bis/folder/xmoj", rules.Apply("def/jkl/xmoj"))
	assert.Equal(t, "catch-all/other/path", rules.Apply("other/path"))
}

func TestRules_Apply_EmptyRulesIsIdentity(t *testing.T) {
	t.Parallel()

	var rules Rules
	assert.Equal(t, "a/b/c", rules.Apply("a/b/c"))
}
