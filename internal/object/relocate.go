package object

import "strings"

// Rule is a single (sourcePrefix, targetPrefix) relocation rewrite.
type Rule struct {
	SourcePrefix string
	TargetPrefix string
}

// Rules is an ordered list of relocation rules; the first matching rule
// applies. An empty Rules value relocates every id to itself.
type Rules []Rule

// Apply relocates id through the rule list, returning the first match's
// result, or id unchanged if no rule matches.
func (rs Rules) Apply(id string) string {
	for _, r := range rs {
		if relocated, matched := tryRelocate(id, r.SourcePrefix, r.TargetPrefix); matched {
			return relocated
		}
	}

	return id
}

// Relocate rewrites a single id under one (sourcePrefix, targetPrefix) rule.
// See spec §4.1 for the three-step definition this implements:
//
//  1. id == sourcePrefix returns id unchanged (a prefix cannot be relocated
//     onto itself at the object level).
//  2. Otherwise the suffix of id after sourcePrefix is computed; no match
//     returns id unchanged.
//  3. targetPrefix and the suffix are joined with "/", omitting either side
//     (and the separator) when empty.
func Relocate(id, sourcePrefix, targetPrefix string) string {
	relocated, _ := tryRelocate(id, sourcePrefix, targetPrefix)
	return relocated
}

func tryRelocate(id, sourcePrefix, targetPrefix string) (string, bool) {
	if id == sourcePrefix {
		return id, true
	}

	suffix, ok := suffixAfterPrefix(id, sourcePrefix)
	if !ok {
		return id, false
	}

	return joinNonEmpty(targetPrefix, suffix), true
}

// suffixAfterPrefix returns the portion of id after sourcePrefix, and
// whether id is actually rooted at sourcePrefix.
func suffixAfterPrefix(id, sourcePrefix string) (string, bool) {
	if sourcePrefix == "" {
		return id, true
	}

	if rest, found := strings.CutPrefix(id, sourcePrefix+"/"); found {
		return rest, true
	}

	return "", false
}

// joinNonEmpty joins a and b with "/", omitting either side (and the
// separator) when it is empty.
func joinNonEmpty(a, b string) string {
	switch {
	case a == "" && b == "":
		return ""
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "/" + b
	}
}
