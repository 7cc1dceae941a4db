package insight

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylescanner/server/internal/database/dbtest"
	"github.com/stylescanner/server/internal/middleware"
	"github.com/stylescanner/server/internal/models"
	"github.com/stylescanner/server/internal/modules/processing/ai/aitest"
	"github.com/stylescanner/server/internal/modules/processing/assets"
	"github.com/stylescanner/server/internal/modules/processing/prompt"
	"github.com/stylescanner/server/internal/modules/quota"
	"github.com/stylescanner/server/internal/pkg/jwt"
	"go.uber.org/zap"
)

const placeholderReply = "```json\n" +
	`{"outfitAnalysis":"Clean chinos","styleScore":70,` +
	`"recommendations":["Try ![navy loafers](placeholder)","Pair ![navy loafers](placeholder) with no-show socks"],` +
	`"benefits":["Polished feet"]}` +
	"\n```"

func TestGenerate_ResolvesImagePlaceholders(t *testing.T) {
	searches := 0
	unsplash := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		searches++
		fmt.Fprintf(w, `{"results":[{"urls":{"small":"https://img.example/%s.jpg"}}]}`,
			strings.ReplaceAll(r.URL.Query().Get("query"), " ", "-"))
	}))
	t.Cleanup(unsplash.Close)

	db := dbtest.New(t)
	fake := &aitest.Fake{Reply: placeholderReply}
	svc := NewService(Options{
		DB:         db,
		Dispatcher: aitest.Dispatcher(fake),
		Prompts:    prompt.MustDefault(),
		Resolver:   assets.NewResolver(assets.Options{Unsplash: assets.NewUnsplash(unsplash.URL, "key", unsplash.Client())}),
		Logger:     zap.NewNop(),
	})
	gate := quota.NewService(db, time.UTC, map[quota.Family]int{quota.FamilyInsight: 13})
	r := gin.New()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(r.Group("/api"),
		middleware.Auth(), middleware.OptionalAuth(), gate.Gate(quota.FamilyInsight, zap.NewNop()))

	u := dbtest.CreateUser(t, db, "loafers@example.com", models.SubscriptionFree)
	token, err := jwt.Sign(u.ID, u.Email, time.Hour)
	require.NoError(t, err)
	e := &env{db: db, router: r, fake: fake, user: u, token: token}

	w := e.do(http.MethodPost, "/api/generate-insight", token, gin.H{"imageSource": jpegBase64(t, 48, 48)})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	want := []any{
		"Try ![navy loafers](https://img.example/navy-loafers.jpg)",
		"Pair ![navy loafers](https://img.example/navy-loafers.jpg) with no-show socks",
	}
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, want, body["recommendations"])
	assert.Equal(t, 1, searches)

	var row models.Insight
	require.NoError(t, db.First(&row, "id = ?", body["_id"]).Error)
	assert.Equal(t, models.StringArray{want[0].(string), want[1].(string)}, row.Recommendations)
	assert.NotContains(t, string(row.Analysis), "(placeholder)")
}
