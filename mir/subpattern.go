package mir

import (
	"fmt"
	"regexp"
	"strings"
)

// subpatternRef matches a named subpattern reference, e.g. (?&ident).
var subpatternRef = regexp.MustCompile(`\(\?&([A-Za-z_][A-Za-z0-9_]*)\)`)

// ExpandSubpatterns replaces every (?&name) reference in pattern with a
// non-capturing group wrapping the expansion of defs[name], recursively.
// A name that (directly or transitively) references itself fails with
// ErrSubpatternCycle; a name with no entry in defs fails with
// ErrUnknownSubpattern. This runs as a textual pre-pass before regexp/syntax
// ever sees the pattern, since (?&name) is not a construct the standard
// regex grammar understands.
func ExpandSubpatterns(pattern string, defs map[string]string) (string, error) {
	visiting := make(map[string]bool)
	memo := make(map[string]string, len(defs))
	return expandRefs(pattern, defs, visiting, memo)
}

func expandRefs(text string, defs map[string]string, visiting map[string]bool, memo map[string]string) (string, error) {
	matches := subpatternRef.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		name := text[m[2]:m[3]]

		expanded, err := expandNamed(name, defs, visiting, memo)
		if err != nil {
			return "", err
		}

		b.WriteString(text[last:start])
		b.WriteString("(?:")
		b.WriteString(expanded)
		b.WriteString(")")
		last = end
	}
	b.WriteString(text[last:])
	return b.String(), nil
}

func expandNamed(name string, defs map[string]string, visiting map[string]bool, memo map[string]string) (string, error) {
	if v, ok := memo[name]; ok {
		return v, nil
	}
	if visiting[name] {
		return "", fmt.Errorf("%w: %s", ErrSubpatternCycle, name)
	}
	def, ok := defs[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSubpattern, name)
	}

	visiting[name] = true
	expanded, err := expandRefs(def, defs, visiting, memo)
	delete(visiting, name)
	if err != nil {
		return "", err
	}

	memo[name] = expanded
	return expanded, nil
}
