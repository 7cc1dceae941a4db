package docs

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stylescanner/server/internal/modules/processing/markdown"
	"github.com/stylescanner/server/internal/pkg/response"
	"go.uber.org/zap"
)

const defaultCategory = "general"

var separatorRun = regexp.MustCompile(`[_-]+`)

// Doc is one file from the docs directory.
type Doc struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Content  string `json:"content"`
	HTML     string `json:"html"`
	Filename string `json:"filename"`
}

type Service struct {
	dir string
}

func NewService(dir string) *Service { return &Service{dir: dir} }

// List reads every regular file in the docs directory, filtered by category and search.
// A category of "all" disables the category filter.
func (s *Service) List(search, category string) ([]Doc, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	search = strings.ToLower(strings.TrimSpace(search))
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "all" {
		category = ""
	}

	docs := make([]Doc, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		doc := Doc{
			Title:    titleFromFilename(e.Name()),
			Category: defaultCategory,
			Content:  string(raw),
			Filename: e.Name(),
		}
		if category != "" &&
			!strings.Contains(strings.ToLower(doc.Category), category) &&
			!strings.Contains(strings.ToLower(doc.Filename), category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(doc.Title), search) &&
			!strings.Contains(strings.ToLower(doc.Content), search) {
			continue
		}
		doc.HTML = markdown.Render(doc.Content)
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Filename < docs[j].Filename })
	return docs, nil
}

func titleFromFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return separatorRun.ReplaceAllString(base, " ")
}

func RegisterRoutes(rg *gin.RouterGroup, svc *Service, logger *zap.Logger) {
	// GET /docs?search=&category=
	rg.GET("/docs", func(c *gin.Context) {
		docs, err := svc.List(c.Query("search"), c.Query("category"))
		if err != nil {
			logger.Error("list docs failed", zap.Error(err))
			response.InternalError(c, err)
			return
		}
		response.OK(c, docs)
	})
}
