// Package pattern compiles the dynamic-route pattern language spec §4.2
// describes — slash-segmented paths with literal and {name} placeholder
// segments — into anchored regular expressions with named capture
// groups, the "clearest encoding of segment-typed path parameters with
// ordered extraction" the spec asks for.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern is a compiled dynamic route pattern: the original string, the
// matcher derived from it, and the ordered parameter names the matcher
// produces on a successful match.
type Pattern struct {
	Source     string
	ParamNames []string
	re         *regexp.Regexp
}

// placeholderGroup matches one path segment's worth of non-slash bytes.
// [^/]+ guarantees each parameter is a non-empty run, per spec P3, and
// that a slash always terminates a capture — there is no backtracking
// across segments.
const placeholderGroup = `[^/]+`

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Compile parses pattern into a segment list (literal or placeholder),
// validates it, and builds the anchored matcher. It rejects:
//   - unbalanced braces in any segment
//   - an empty segment (e.g. "/a//b")
//   - a placeholder whose name isn't a valid identifier
//   - a pattern with a duplicate parameter name
func Compile(pattern string) (*Pattern, error) {
	if pattern == "" || pattern[0] != '/' {
		return nil, fmt.Errorf("pattern: %q must start with '/'", pattern)
	}

	segments := strings.Split(pattern, "/")[1:] // drop the leading empty segment
	var b strings.Builder
	b.WriteString(`^/`)

	var paramNames []string
	seen := make(map[string]bool, len(segments))

	for i, seg := range segments {
		if i > 0 {
			b.WriteString(`/`)
		}
		if seg == "" {
			return nil, fmt.Errorf("pattern: %q has an empty segment", pattern)
		}

		openBrace := strings.IndexByte(seg, '{')
		closeBrace := strings.IndexByte(seg, '}')
		switch {
		case openBrace == -1 && closeBrace == -1:
			b.WriteString(regexp.QuoteMeta(seg))
		case openBrace == 0 && closeBrace == len(seg)-1 && closeBrace > openBrace:
			name := seg[1:closeBrace]
			if !identifierRe.MatchString(name) {
				return nil, fmt.Errorf("pattern: %q has an invalid parameter name %q", pattern, name)
			}
			if seen[name] {
				return nil, fmt.Errorf("pattern: %q has a duplicate parameter name %q", pattern, name)
			}
			seen[name] = true
			paramNames = append(paramNames, name)
			b.WriteString(`(?P<` + name + `>` + placeholderGroup + `)`)
		default:
			return nil, fmt.Errorf("pattern: %q has unbalanced braces in segment %q", pattern, seg)
		}
	}
	b.WriteString(`$`)

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("pattern: %q failed to compile: %w", pattern, err)
	}

	return &Pattern{Source: pattern, ParamNames: paramNames, re: re}, nil
}

// Match attempts a full-string match against path (already stripped of
// any query string). On success it returns the extracted parameter
// values in pattern order (matching Pattern.ParamNames) and true.
func (p *Pattern) Match(path string) ([]string, bool) {
	m := p.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	if len(p.ParamNames) == 0 {
		return nil, true
	}
	// m[0] is the whole match; named groups follow in the order they
	// appear in the expression, which is the order we appended them in.
	return m[1:], true
}

// IsStatic reports whether pattern contains no {name} placeholders, in
// which case it belongs in the static or literal-dynamic population
// rather than requiring regex matching at all.
func IsStatic(pattern string) bool {
	return !strings.ContainsAny(pattern, "{}")
}
