package insight

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
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
	"github.com/stylescanner/server/internal/modules/processing/imagenorm"
	"github.com/stylescanner/server/internal/modules/processing/prompt"
	"github.com/stylescanner/server/internal/modules/quota"
	"github.com/stylescanner/server/internal/pkg/jwt"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const goodReply = "Here you go:\n```json\n" +
	`{"outfitAnalysis":"Relaxed denim look","styleScore":78,` +
	`"recommendations":["Swap sneakers for loafers","Add a belt"],` +
	`"benefits":["Sharper silhouette"]}` +
	"\n```"

func init() {
	gin.SetMode(gin.TestMode)
	jwt.SetSecret("insight-test")
}

type fakeStore struct {
	keys []string
	err  error
}

func (f *fakeStore) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://cdn.example/" + key, nil
}

type env struct {
	db     *gorm.DB
	router *gin.Engine
	fake   *aitest.Fake
	user   *models.User
	token  string
}

func setup(t *testing.T, store *fakeStore) *env {
	t.Helper()
	db := dbtest.New(t)
	fake := &aitest.Fake{Reply: goodReply}
	opts := Options{DB: db, Dispatcher: aitest.Dispatcher(fake), Prompts: prompt.MustDefault(), Logger: zap.NewNop()}
	if store != nil {
		opts.Photos = store
	}
	svc := NewService(opts)
	gate := quota.NewService(db, time.UTC, map[quota.Family]int{quota.FamilyInsight: 13})

	r := gin.New()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(r.Group("/api"),
		middleware.Auth(), middleware.OptionalAuth(), gate.Gate(quota.FamilyInsight, zap.NewNop()))

	u := dbtest.CreateUser(t, db, "style@example.com", models.SubscriptionFree)
	token, err := jwt.Sign(u.ID, u.Email, time.Hour)
	require.NoError(t, err)
	return &env{db: db, router: r, fake: fake, user: u, token: token}
}

func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) count(t *testing.T) int64 {
	var n int64
	require.NoError(t, e.db.Model(&models.Insight{}).Count(&n).Error)
	return n
}

func jpegBase64(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += 7 {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 90, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestGenerate_LargeJPEG(t *testing.T) {
	e := setup(t, nil)

	w := e.do(http.MethodPost, "/api/generate-insight", e.token, gin.H{
		"imageSource":      jpegBase64(t, 1000, 1000),
		"stylePreferences": "smart casual",
		"model":            "gpt-4o-mini",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []any{"Swap sneakers for loafers", "Add a belt"}, body["recommendations"])
	assert.Equal(t, []any{"Sharper silhouette"}, body["benefits"])
	assert.NotEmpty(t, body["_id"])

	var row models.Insight
	require.NoError(t, e.db.First(&row, "id = ?", body["_id"]).Error)
	assert.Equal(t, "Fashion Insight", row.Title)
	assert.Equal(t, e.user.ID, row.UserID)
	assert.Equal(t, "gpt-4o-mini", row.Model)
	assert.Equal(t, models.StringArray{"Swap sneakers for loafers", "Add a belt"}, row.Recommendations)
	assert.InDelta(t, 78, row.StyleScore, 0.001)
	assert.True(t, strings.HasPrefix(row.Photo, "data:image/jpeg;base64,"))

	calls := e.fake.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "User style preferences: smart casual.")
	cfg, _, err := image.DecodeConfig(bytes.NewReader(calls[0].Image))
	require.NoError(t, err)
	assert.LessOrEqual(t, cfg.Width*cfg.Height, imagenorm.MaxPixels)
	assert.Equal(t, cfg.Width, cfg.Height)

	var u models.User
	require.NoError(t, e.db.First(&u, "id = ?", e.user.ID).Error)
	assert.Equal(t, 1, u.AIRequestCount)
}

func TestGenerate_UnsupportedModel(t *testing.T) {
	e := setup(t, nil)
	w := e.do(http.MethodPost, "/api/generate-insight", e.token, gin.H{
		"imageSource": jpegBase64(t, 64, 64),
		"model":       "unsupported-model",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Invalid model specified"}`, w.Body.String())
	assert.Zero(t, e.count(t))
	assert.Empty(t, e.fake.Calls())
}

func TestGenerate_MalformedModelOutput(t *testing.T) {
	e := setup(t, nil)
	e.fake.Reply = "```json\n{\"recommendations\": [oops\n```"

	w := e.do(http.MethodPost, "/api/generate-insight", e.token, gin.H{"imageSource": jpegBase64(t, 64, 64)})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to parse AI response as JSON, please try again"}`, w.Body.String())
	assert.Zero(t, e.count(t))
}

func TestGenerate_EmptyAndFailingModel(t *testing.T) {
	e := setup(t, nil)
	e.fake.Reply = ""
	w := e.do(http.MethodPost, "/api/generate-insight", e.token, gin.H{"imageSource": jpegBase64(t, 32, 32)})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "No response from model")

	e.fake.Err = errors.New("upstream timeout")
	w = e.do(http.MethodPost, "/api/generate-insight", e.token, gin.H{"imageSource": jpegBase64(t, 32, 32)})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "upstream timeout")
	assert.Zero(t, e.count(t))
}

func TestGenerate_BadInput(t *testing.T) {
	e := setup(t, nil)

	w := e.do(http.MethodPost, "/api/generate-insight", e.token, gin.H{"stylePreferences": "boho"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Image source is required"}`, w.Body.String())

	w = e.do(http.MethodPost, "/api/generate-insight", e.token, gin.H{"imageSource": "bm90IGFuIGltYWdl"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/generate-insight", "", gin.H{"imageSource": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGenerate_StoresPhotoInObjectStorage(t *testing.T) {
	store := &fakeStore{}
	e := setup(t, store)

	w := e.do(http.MethodPost, "/api/generate-insight", e.token, gin.H{"imageSource": jpegBase64(t, 40, 30)})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, store.keys, 1)

	var row models.Insight
	require.NoError(t, e.db.First(&row).Error)
	assert.Equal(t, "https://cdn.example/"+store.keys[0], row.Photo)
}

func TestGenerate_DailyLimit(t *testing.T) {
	e := setup(t, nil)
	img := jpegBase64(t, 16, 16)
	for i := 0; i < 13; i++ {
		w := e.do(http.MethodPost, "/api/generate-insight", e.token, gin.H{"imageSource": img})
		require.Equal(t, http.StatusCreated, w.Code, "call %d", i+1)
	}
	w := e.do(http.MethodPost, "/api/generate-insight", e.token, gin.H{"imageSource": img})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Daily AI request limit reached, please upgrade")
	assert.EqualValues(t, 13, e.count(t))
}

func TestReadUpdateDelete(t *testing.T) {
	e := setup(t, nil)
	other := dbtest.CreateUser(t, e.db, "other@example.com", models.SubscriptionFree)
	otherToken, err := jwt.Sign(other.ID, other.Email, time.Hour)
	require.NoError(t, err)

	rows := []models.Insight{
		{Title: "Autumn layers", UserID: e.user.ID, Recommendations: models.StringArray{"wool scarf"}},
		{Title: "Beach day", UserID: e.user.ID, IsPrivate: true},
	}
	require.NoError(t, e.db.Create(&rows).Error)

	w := e.do(http.MethodGet, "/api/myinsights?search=SCARF", e.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Autumn layers", list[0]["title"])

	w = e.do(http.MethodGet, "/api/myinsights", otherToken, nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	private := "/api/insights/" + rows[1].ID
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, private, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, private, otherToken, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, private, e.token, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/insights/"+rows[0].ID, "", nil).Code)

	w = e.do(http.MethodGet, "/api/insights/missing", "", nil)
	assert.JSONEq(t, `{"error":"Insight not found"}`, w.Body.String())

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPut, private, otherToken, gin.H{"isPrivate": false}).Code)
	w = e.do(http.MethodPut, private, e.token, gin.H{"isPrivate": false, "title": "Beach"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, private, "", nil).Code)

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodDelete, private, otherToken, nil).Code)
	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, private, e.token, nil).Code)
	assert.EqualValues(t, 1, e.count(t))
}
