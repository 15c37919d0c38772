package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeHelpers(t *testing.T) {
	assert.Equal(t, "a &lt;b&gt; &amp; c", Escape("a <b> & c"))
	assert.Equal(t, "<b>x&lt;y</b>", Bold("x<y"))
	assert.Equal(t, "<code>id</code>", Code("id"))
	assert.Equal(t, "<i>&#34;q&#34;</i>", Italic(`"q"`))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 5))
	assert.Equal(t, "hel…", Truncate("hello", 4))
	assert.Equal(t, "привет", Truncate("привет", 0))
	assert.Equal(t, "пр…", Truncate("привет", 3))
}

func TestLinesAndDeref(t *testing.T) {
	assert.Equal(t, "a\nc", Lines("a", "", "c"))
	s, empty := "v", ""
	assert.Equal(t, "v", Deref(&s, "-"))
	assert.Equal(t, "-", Deref(nil, "-"))
	assert.Equal(t, "-", Deref(&empty, "-"))
	n := int64(7)
	assert.Equal(t, int64(7), Deref(&n, -1))
}
