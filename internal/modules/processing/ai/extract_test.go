package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPayload(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"json fence", "Sure!\n```json\n{\"a\":1}\n```\nBye", `{"a":1}`},
		{"bare fence", "```\n{\"a\":2}\n```", `{"a":2}`},
		{"html fence", "```html\n<p>x</p>\n```", "<p>x</p>"},
		{"first fence wins", "```json\n{\"a\":1}\n```\n```json\n{\"b\":2}\n```", `{"a":1}`},
		{"unfenced", `{"a":3}`, `{"a":3}`},
		{"unknown language tag", "```python\nx\n```", "```python\nx\n```"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractPayload(tc.in))
		})
	}
}

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument("```json\n{\"recommendations\":[\"a\"],\"benefits\":[\"b\"]}\n```")
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, doc["recommendations"])

	doc, err = ParseDocument(`{"title":"Deck"}`)
	require.NoError(t, err)
	assert.Equal(t, "Deck", doc.String("title"))
	assert.Equal(t, "", doc.String("missing"))

	_, err = ParseDocument("```json\n{not json\n```")
	assert.ErrorIs(t, err, ErrUnparseableResponse)

	_, err = ParseDocument(`["array", "not", "object"]`)
	assert.ErrorIs(t, err, ErrUnparseableResponse)

	_, err = ParseDocument("null")
	assert.ErrorIs(t, err, ErrUnparseableResponse)

	_, err = ParseDocument("   ")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
