package assets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylescanner/server/internal/modules/processing/ai"
)

type fakeTranslator struct {
	out   string
	err   error
	calls int
}

func (f *fakeTranslator) Translate(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.out, f.err
}

func unsplashServer(t *testing.T, status int, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "/search/photos", r.URL.Path)
		assert.Equal(t, "landscape", r.URL.Query().Get("orientation"))
		assert.Equal(t, "Client-ID key", r.Header.Get("Authorization"))
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		q := r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"results":[{"urls":{"small":"https://img.example/%d-small.jpg"}},{"urls":{"small":"https://img.example/other.jpg"}}]}`, len(q))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func googleServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "isch", r.URL.Query().Get("tbm"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, `<html><body>
			<img src="https://logo.example/not-a-result.png">
			<div class="x H8Rx8c"><a><img data-src="https://g.example/first.jpg" src="data:image/gif;base64,R0l"></a></div>
			<div class="H8Rx8c"><img src="https://g.example/second.jpg"></div>
		</body></html>`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newUnsplash(endpoint string) *Unsplash {
	u := NewUnsplash(endpoint, "key", http.DefaultClient)
	u.pick = func(int) int { return 0 }
	return u
}

func newGoogle(endpoint string) *GoogleImages {
	g := NewGoogleImages(endpoint, http.DefaultClient)
	g.pick = func(int) int { return 0 }
	return g
}

func deck(contents ...string) ai.Document {
	elements := make([]any, 0, len(contents))
	for _, c := range contents {
		elements = append(elements, map[string]any{"type": "graphic", "content": c})
	}
	return ai.Document{
		"title":  "Deck",
		"slides": []any{map[string]any{"layout": "image-left", "title": "One", "elements": elements}},
	}
}

func elementContents(doc ai.Document) []string {
	var out []string
	for _, s := range doc["slides"].([]any) {
		for _, e := range s.(map[string]any)["elements"].([]any) {
			out = append(out, e.(map[string]any)["content"].(string))
		}
	}
	return out
}

func TestResolve_NoPlaceholdersUnchanged(t *testing.T) {
	var hits int32
	srv := unsplashServer(t, http.StatusOK, &hits)
	r := NewResolver(Options{Unsplash: newUnsplash(srv.URL)})

	doc := ai.Document{
		"title":    "Plain",
		"benefits": []any{"no pictures here", "![done](https://cdn.example/x.png)"},
		"slides": []any{map[string]any{"elements": []any{
			map[string]any{"type": "text", "content": "hello"},
			map[string]any{"type": "image", "content": "https://already.example/a.jpg"},
		}}},
	}
	out := r.Resolve(context.Background(), doc, SourceUnsplash)

	assert.Equal(t, "![done](https://cdn.example/x.png)", out["benefits"].([]any)[1])
	assert.Equal(t, []string{"hello", "https://already.example/a.jpg"}, elementContents(out))
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestResolve_DuplicatePlaceholdersShareOneLookup(t *testing.T) {
	var hits int32
	srv := unsplashServer(t, http.StatusOK, &hits)
	r := NewResolver(Options{Unsplash: newUnsplash(srv.URL)})

	doc := deck("red wool coat", "red wool coat", "white sneakers")
	doc["recommendations"] = []any{"Try this ![red wool coat](placeholder)", "and ![red wool coat](placeholder)"}

	out := r.Resolve(context.Background(), doc, SourceUnsplash)
	contents := elementContents(out)

	assert.Equal(t, contents[0], contents[1])
	assert.NotEqual(t, contents[0], contents[2])
	assert.Equal(t, "https://img.example/13-small.jpg", contents[0])

	recs := out["recommendations"].([]any)
	assert.Equal(t, "Try this ![red wool coat](https://img.example/13-small.jpg)", recs[0])
	assert.Equal(t, "and ![red wool coat](https://img.example/13-small.jpg)", recs[1])
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestResolve_FallsBackToGoogle(t *testing.T) {
	var uHits, gHits int32
	u := unsplashServer(t, http.StatusForbidden, &uHits)
	g := googleServer(t, &gHits)
	r := NewResolver(Options{Unsplash: newUnsplash(u.URL), Google: newGoogle(g.URL)})

	out := r.Resolve(context.Background(), deck("mountain lake"), SourceUnsplash)
	assert.Equal(t, []string{"https://g.example/first.jpg"}, elementContents(out))
	assert.EqualValues(t, 1, atomic.LoadInt32(&uHits))
	assert.EqualValues(t, 1, atomic.LoadInt32(&gHits))
}

func TestResolve_GoogleSourceSkipsUnsplash(t *testing.T) {
	var uHits, gHits int32
	u := unsplashServer(t, http.StatusOK, &uHits)
	g := googleServer(t, &gHits)
	r := NewResolver(Options{Unsplash: newUnsplash(u.URL), Google: newGoogle(g.URL)})

	r.Resolve(context.Background(), deck("city skyline"), SourceGoogle)
	assert.Zero(t, atomic.LoadInt32(&uHits))
	assert.EqualValues(t, 1, atomic.LoadInt32(&gHits))
}

func TestResolve_AllSearchesFailLeavesPlaceholder(t *testing.T) {
	var hits int32
	u := unsplashServer(t, http.StatusInternalServerError, &hits)
	r := NewResolver(Options{Unsplash: newUnsplash(u.URL)})

	doc := deck("desert at dusk")
	doc["summary"] = "See ![desert at dusk](placeholder)"
	out := r.Resolve(context.Background(), doc, SourceUnsplash)

	assert.Equal(t, []string{"desert at dusk"}, elementContents(out))
	assert.Equal(t, "See ![desert at dusk](placeholder)", out["summary"])
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestResolve_TranslatesNonASCIIQueries(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Query().Get("query")
		fmt.Fprint(w, `{"results":[{"urls":{"small":"https://img.example/coat.jpg"}}]}`)
	}))
	defer srv.Close()

	tr := &fakeTranslator{out: "red coat"}
	r := NewResolver(Options{Unsplash: newUnsplash(srv.URL), Translator: tr})
	r.Resolve(context.Background(), deck("abrigo rojo de lã"), SourceUnsplash)
	assert.Equal(t, "red coat", seen)
	assert.Equal(t, 1, tr.calls)

	tr = &fakeTranslator{err: errors.New("model down")}
	r = NewResolver(Options{Unsplash: newUnsplash(srv.URL), Translator: tr})
	r.Resolve(context.Background(), deck("café crème"), SourceUnsplash)
	assert.Equal(t, "café crème", seen)

	r.Resolve(context.Background(), deck("plain english"), SourceUnsplash)
	assert.Equal(t, 1, tr.calls)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, SourceGoogle, ParseSource(" Google "))
	assert.Equal(t, SourceUnsplash, ParseSource(""))
	assert.Equal(t, SourceUnsplash, ParseSource("bing"))

	long := "ééééééééééééééééééééééééééééééééééééééééééééééééééééééééééé"
	require.Greater(t, len([]rune(long)), maxQueryRunes)
	assert.Len(t, []rune(truncateRunes(long, maxQueryRunes)), maxQueryRunes)

	assert.True(t, hasNonASCIILetter("naïve"))
	assert.False(t, hasNonASCIILetter("plain 123 → arrows"))
}
