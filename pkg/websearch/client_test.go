package websearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResultsPage = `<html><body>
<div class="serp__results">
  <div class="result results_links results_links_deep web-result">
    <a class="result__a" href="https://go.dev/doc/effective_go">Effective Go</a>
    <a class="result__snippet" href="https://go.dev/doc/effective_go">Tips for writing clear, idiomatic Go code.</a>
  </div>
  <div class="result results_links results_links_deep web-result">
    <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgobyexample.com%2F&amp;rut=abc">Go by Example</a>
    <a class="result__snippet" href="#">Hands-on introduction using annotated programs.</a>
  </div>
  <div class="result results_links results_links_deep web-result">
    <a class="result__a" href="https://example.com/three">Third Result</a>
  </div>
</div>
</body></html>`

func TestParseResults(t *testing.T) {
	snippets, err := parseResults(sampleResultsPage, 10)

	require.NoError(t, err)
	require.Len(t, snippets, 3)

	assert.Equal(t, "Effective Go", snippets[0].Title)
	assert.Equal(t, "https://go.dev/doc/effective_go", snippets[0].URL)
	assert.Equal(t, "Tips for writing clear, idiomatic Go code.", snippets[0].Text)

	// redirect URLs are unwrapped to the destination
	assert.Equal(t, "Go by Example", snippets[1].Title)
	assert.Equal(t, "https://gobyexample.com/", snippets[1].URL)

	assert.Equal(t, "Third Result", snippets[2].Title)
	assert.Empty(t, snippets[2].Text)
}

func TestParseResultsHonorsMaxResults(t *testing.T) {
	snippets, err := parseResults(sampleResultsPage, 1)

	require.NoError(t, err)
	require.Len(t, snippets, 1)
	assert.Equal(t, "Effective Go", snippets[0].Title)
}

func TestParseResultsEmptyPage(t *testing.T) {
	snippets, err := parseResults("<html><body><p>no results</p></body></html>", 5)

	require.NoError(t, err)
	assert.Empty(t, snippets)
}
