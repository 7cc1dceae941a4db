package assets

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/stylescanner/server/internal/modules/processing/ai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var markdownImageRe = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]*)\)`)

// Resolver replaces descriptive image placeholders in a model document with image URLs.
type Resolver struct {
	unsplash   Searcher
	google     Searcher
	translator Translator
	limiter    *rate.Limiter
	logger     *zap.Logger
}

type Options struct {
	Unsplash   Searcher
	Google     Searcher
	Translator Translator
	// RequestsPerSecond paces outbound searches; <= 0 disables pacing.
	RequestsPerSecond float64
	Logger            *zap.Logger
}

func NewResolver(opts Options) *Resolver {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		unsplash:   opts.Unsplash,
		google:     opts.Google,
		translator: opts.Translator,
		limiter:    limiter,
		logger:     logger,
	}
}

// resolution memoises one Resolve call.
type resolution struct {
	r      *Resolver
	ctx    context.Context
	source Source
	cache  map[string]string
}

// Resolve rewrites doc in place and returns it. Unresolvable placeholders are left as they are.
func (r *Resolver) Resolve(ctx context.Context, doc ai.Document, source Source) ai.Document {
	if doc == nil {
		return doc
	}
	res := &resolution{r: r, ctx: ctx, source: source, cache: map[string]string{}}

	if slides, ok := doc["slides"].([]any); ok {
		for _, s := range slides {
			slide, ok := s.(map[string]any)
			if !ok {
				continue
			}
			elements, _ := slide["elements"].([]any)
			for _, e := range elements {
				res.resolveElement(e)
			}
		}
	}

	for k, v := range doc {
		doc[k] = res.rewriteMarkdown(v)
	}
	return doc
}

func (res *resolution) resolveElement(e any) {
	el, ok := e.(map[string]any)
	if !ok {
		return
	}
	kind, _ := el["type"].(string)
	if kind != "graphic" && kind != "image" {
		return
	}
	content, _ := el["content"].(string)
	content = strings.TrimSpace(content)
	if content == "" || isHTTPURL(content) {
		return
	}
	if link := res.lookup(content); link != "" {
		el["content"] = link
	}
}

func (res *resolution) rewriteMarkdown(v any) any {
	switch t := v.(type) {
	case string:
		if !strings.Contains(t, "![") {
			return t
		}
		return markdownImageRe.ReplaceAllStringFunc(t, func(match string) string {
			m := markdownImageRe.FindStringSubmatch(match)
			alt, target := m[1], m[2]
			if isHTTPURL(target) {
				return match
			}
			query := alt
			if strings.TrimSpace(query) == "" {
				query = target
			}
			link := res.lookup(strings.TrimSpace(query))
			if link == "" {
				return match
			}
			return "![" + alt + "](" + link + ")"
		})
	case map[string]any:
		for k, inner := range t {
			t[k] = res.rewriteMarkdown(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = res.rewriteMarkdown(inner)
		}
		return t
	default:
		return v
	}
}

func (res *resolution) lookup(placeholder string) string {
	if placeholder == "" {
		return ""
	}
	if link, ok := res.cache[placeholder]; ok {
		return link
	}
	link := res.r.search(res.ctx, placeholder, res.source)
	res.cache[placeholder] = link
	return link
}

func (r *Resolver) search(ctx context.Context, placeholder string, source Source) string {
	query := truncateRunes(placeholder, maxQueryRunes)
	if r.translator != nil && hasNonASCIILetter(query) {
		if translated, err := r.translator.Translate(ctx, query); err != nil {
			r.logger.Warn("query translation failed", zap.String("query", query), zap.Error(err))
		} else if translated = strings.TrimSpace(translated); translated != "" {
			query = truncateRunes(translated, maxQueryRunes)
		}
	}

	searchers := []Searcher{r.unsplash, r.google}
	if source == SourceGoogle {
		searchers = []Searcher{r.google}
	}
	for _, s := range searchers {
		if s == nil {
			continue
		}
		if err := r.limiter.Wait(ctx); err != nil {
			return ""
		}
		link, err := s.Search(ctx, query)
		if err == nil && link != "" {
			return link
		}
		r.logger.Debug("image search miss", zap.String("query", query), zap.Error(err))
	}
	r.logger.Info("placeholder left unresolved", zap.String("query", query))
	return ""
}

func isHTTPURL(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func hasNonASCIILetter(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII && unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
