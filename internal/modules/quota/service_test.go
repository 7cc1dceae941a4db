package quota

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylescanner/server/internal/database/dbtest"
	"github.com/stylescanner/server/internal/middleware"
	"github.com/stylescanner/server/internal/models"
	"go.uber.org/zap"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestService(t *testing.T) (*Service, *clock, func(status models.SubscriptionStatus) *models.User) {
	t.Helper()
	db := dbtest.New(t)
	clk := &clock{t: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
	svc := NewService(db, time.UTC, map[Family]int{FamilyInsight: 3, FamilyPresentation: 1}).WithClock(clk.now)
	n := 0
	mk := func(status models.SubscriptionStatus) *models.User {
		n++
		return dbtest.CreateUser(t, db, "user"+string(rune('a'+n))+"@example.com", status)
	}
	return svc, clk, mk
}

func TestConsume_CeilingThenReject(t *testing.T) {
	svc, _, mk := newTestService(t)
	u := mk(models.SubscriptionFree)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Consume(ctx, u.ID, FamilyInsight), "call %d", i+1)
	}
	assert.ErrorIs(t, svc.Consume(ctx, u.ID, FamilyInsight), ErrLimitReached)

	usage, err := svc.Usage(ctx, u.ID, FamilyInsight)
	require.NoError(t, err)
	assert.Equal(t, 3, usage.Count)
	assert.Equal(t, "2025-03-14", usage.Day)
}

func TestConsume_NewDayResets(t *testing.T) {
	svc, clk, mk := newTestService(t)
	u := mk(models.SubscriptionPastDue)
	ctx := context.Background()

	require.NoError(t, svc.Consume(ctx, u.ID, FamilyPresentation))
	assert.ErrorIs(t, svc.Consume(ctx, u.ID, FamilyPresentation), ErrLimitReached)

	clk.advance(24 * time.Hour)
	require.NoError(t, svc.Consume(ctx, u.ID, FamilyPresentation))

	usage, err := svc.Usage(ctx, u.ID, FamilyPresentation)
	require.NoError(t, err)
	assert.Equal(t, 1, usage.Count)
	assert.Equal(t, "2025-03-15", usage.Day)
}

func TestConsume_DayFollowsConfiguredZone(t *testing.T) {
	db := dbtest.New(t)
	tokyo := time.FixedZone("JST", 9*3600)
	clk := &clock{t: time.Date(2025, 3, 14, 14, 30, 0, 0, time.UTC)}
	svc := NewService(db, tokyo, map[Family]int{FamilyInsight: 1}).WithClock(clk.now)
	u := dbtest.CreateUser(t, db, "zone@example.com", models.SubscriptionFree)

	require.NoError(t, svc.Consume(context.Background(), u.ID, FamilyInsight))
	usage, err := svc.Usage(context.Background(), u.ID, FamilyInsight)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14", usage.Day)

	// 23:30 JST, then 00:30 JST next day.
	clk.advance(9 * time.Hour)
	assert.ErrorIs(t, svc.Consume(context.Background(), u.ID, FamilyInsight), ErrLimitReached)
	clk.advance(time.Hour)
	require.NoError(t, svc.Consume(context.Background(), u.ID, FamilyInsight))
}

func TestConsume_PayingNeverLimited(t *testing.T) {
	svc, _, mk := newTestService(t)
	ctx := context.Background()
	for _, status := range []models.SubscriptionStatus{models.SubscriptionActive, models.SubscriptionTrialing} {
		u := mk(status)
		for i := 0; i < 10; i++ {
			require.NoError(t, svc.Consume(ctx, u.ID, FamilyPresentation))
		}
		usage, err := svc.Usage(ctx, u.ID, FamilyPresentation)
		require.NoError(t, err)
		assert.True(t, usage.Unlimited)
		assert.Zero(t, usage.Count)
	}
}

func TestConsume_ConcurrentCallsRespectCeiling(t *testing.T) {
	svc, _, mk := newTestService(t)
	u := mk(models.SubscriptionFree)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.Consume(context.Background(), u.ID, FamilyInsight); err == nil {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, allowed)
}

func TestGate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _, mk := newTestService(t)
	u := mk(models.SubscriptionFree)

	r := gin.New()
	r.POST("/gen", func(c *gin.Context) {
		if id := c.GetHeader("X-User"); id != "" {
			c.Set(middleware.ContextKeyUserID, id)
		}
		c.Next()
	}, svc.Gate(FamilyPresentation, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	do := func(user string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/gen", nil)
		req.Header.Set("X-User", user)
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, do(u.ID).Code)
	w := do(u.ID)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Daily AI request limit reached, please upgrade"}`, w.Body.String())

	assert.Equal(t, http.StatusForbidden, do("missing-user").Code)
	assert.Equal(t, http.StatusUnauthorized, do("").Code)
}

func TestResetStale(t *testing.T) {
	svc, clk, mk := newTestService(t)
	stale, fresh := mk(models.SubscriptionFree), mk(models.SubscriptionFree)
	ctx := context.Background()

	require.NoError(t, svc.Consume(ctx, stale.ID, FamilyInsight))
	clk.advance(24 * time.Hour)
	require.NoError(t, svc.Consume(ctx, fresh.ID, FamilyInsight))

	n, err := svc.ResetStale(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var got models.User
	require.NoError(t, svc.db.First(&got, "id = ?", stale.ID).Error)
	assert.Zero(t, got.AIRequestCount)
	require.NoError(t, svc.db.First(&got, "id = ?", fresh.ID).Error)
	assert.Equal(t, 1, got.AIRequestCount)
}
