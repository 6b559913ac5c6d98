package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileAndMatch(t *testing.T) {
	p, err := Compile("/users/{id}/posts/{postId}")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "postId"}, p.ParamNames)

	values, ok := p.Match("/users/42/posts/7")
	require.True(t, ok)
	assert.Equal(t, []string{"42", "7"}, values)

	_, ok = p.Match("/users/42/posts/")
	assert.False(t, ok)

	_, ok = p.Match("/users/42")
	assert.False(t, ok)
}

func TestCompileLiteralOnly(t *testing.T) {
	p, err := Compile("/ping")
	require.NoError(t, err)
	assert.Empty(t, p.ParamNames)

	values, ok := p.Match("/ping")
	require.True(t, ok)
	assert.Nil(t, values)

	_, ok = p.Match("/pingx")
	assert.False(t, ok)
}

func TestCompileRejectsMalformedPatterns(t *testing.T) {
	cases := []string{
		"/a//b",              // empty segment
		"/a/{b",              // unbalanced braces
		"/a/b}",              // unbalanced braces
		"/a/{1bad}",          // invalid identifier
		"/a/{x}/{x}",         // duplicate parameter name
		"no-leading-slash",   // must start with '/'
	}
	for _, pat := range cases {
		_, err := Compile(pat)
		assert.Errorf(t, err, "expected %q to be rejected", pat)
	}
}

func TestMatchAnchorsBothEnds(t *testing.T) {
	p, err := Compile("/a/{b}")
	require.NoError(t, err)

	_, ok := p.Match("/x/a/1")
	assert.False(t, ok, "no partial match from the left")

	_, ok = p.Match("/a/1/x")
	assert.False(t, ok, "no partial match from the right")
}

func TestIsStatic(t *testing.T) {
	assert.True(t, IsStatic("/ping"))
	assert.False(t, IsStatic("/users/{id}"))
}
