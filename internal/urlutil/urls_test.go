package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("strips fragment and trailing slash", func(tt *testing.T) {
		assert.Equal(tt, "https://example.com/about", Normalize("https://example.com/about/#team"))
		assert.Equal(tt, "https://example.com/about", Normalize("https://example.com/about/"))
	})

	t.Run("is idempotent", func(tt *testing.T) {
		inputs := []string{
			"https://example.com/",
			"https://example.com/a/b/#x",
			"https://example.com/a?q=1#frag",
			"not a url at all///",
		}
		for _, in := range inputs {
			once := Normalize(in)
			assert.Equal(tt, once, Normalize(once))
		}
	})

	t.Run("preserves query strings", func(tt *testing.T) {
		assert.Equal(tt, "https://example.com/search?q=go", Normalize("https://example.com/search?q=go#top"))
	})
}

func TestSameDomain(t *testing.T) {
	t.Run("matches exact host", func(tt *testing.T) {
		assert.True(tt, SameDomain("https://example.com", "https://example.com/page"))
		assert.True(tt, SameDomain("https://example.com", "http://example.com/page"))
	})

	t.Run("rejects subdomains and other hosts", func(tt *testing.T) {
		assert.False(tt, SameDomain("https://example.com", "https://blog.example.com/post"))
		assert.False(tt, SameDomain("https://example.com", "https://other.com"))
	})

	t.Run("rejects relative and empty hosts", func(tt *testing.T) {
		assert.False(tt, SameDomain("/relative", "/also-relative"))
	})
}
