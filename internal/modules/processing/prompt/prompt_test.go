package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsight(t *testing.T) {
	b := MustDefault()

	p := b.Insight("")
	assert.Contains(t, p, "Return everything in one JSON with schema: {")
	assert.Contains(t, p, `"recommendations"`)
	assert.Contains(t, p, `"benefits"`)
	assert.NotContains(t, p, "User style preferences")

	p = b.Insight("minimalist, earth tones")
	assert.True(t, strings.HasSuffix(p, " User style preferences: minimalist, earth tones."))
}

func TestPresentation(t *testing.T) {
	b := MustDefault()

	p := b.Presentation("Solar energy", 7, "")
	assert.Contains(t, p, "Solar energy")
	assert.Contains(t, p, "exactly 7 slides")
	assert.Contains(t, p, `"slides"`)
	assert.NotContains(t, p, "research notes")

	p = b.Presentation("Solar energy", 7, "- costs fell 90% since 2010")
	assert.Contains(t, p, "research notes")
	assert.Contains(t, p, "costs fell 90%")
}

func TestTranslate(t *testing.T) {
	assert.Equal(t, "Translate sentences in brackets [] into English:\n[abrigo rojo]\n", Translate("abrigo rojo"))
}

func TestLoad_OverrideDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, outfitSchemaFile), []byte(`{ "custom": "string" }`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, presentationSchemaFile), []byte(`{"slides": []}`), 0o600))

	b, err := Load(dir)
	require.NoError(t, err)
	assert.Contains(t, b.Insight(""), `{"custom":"string"}`)
}

func TestLoad_MissingOrInvalidSchemaFails(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, outfitSchemaFile), []byte(`{broken`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, presentationSchemaFile), []byte(`{}`), 0o600))
	_, err = Load(dir)
	assert.ErrorContains(t, err, "not valid JSON")
}
