package admin

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/stylescanner/server/internal/models"
	"github.com/stylescanner/server/internal/pkg/pagination"
	"github.com/stylescanner/server/internal/pkg/response"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewService(db *gorm.DB, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{db: db, loc: loc, now: time.Now}
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	var d Dashboard

	if err := db.Model(&models.User{}).Count(&d.Stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("subscription_status = ?", models.SubscriptionActive).
		Count(&d.Stats.PremiumUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("subscription_status = ?", models.SubscriptionTrialing).
		Count(&d.Stats.TrialingUsers).Error; err != nil {
		return nil, err
	}
	d.Stats.ConversionRate = "0.00"
	if d.Stats.TotalUsers > 0 {
		d.Stats.ConversionRate = fmt.Sprintf("%.2f", float64(d.Stats.PremiumUsers)/float64(d.Stats.TotalUsers)*100)
	}

	if err := db.Model(&models.Insight{}).Count(&d.InsightsStats.TotalInsights).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Presentation{}).Count(&d.InsightsStats.TotalPresentations).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Feedback{}).Count(&d.InsightsStats.TotalFeedbacks).Error; err != nil {
		return nil, err
	}

	var err error
	if d.UserGrowth, err = s.growth(ctx, &models.User{}); err != nil {
		return nil, err
	}
	if d.InsightsStats.InsightGrowth, err = s.growth(ctx, &models.Insight{}); err != nil {
		return nil, err
	}
	return &d, nil
}

// growth buckets rows created in the last growthDays by local calendar day, oldest first.
func (s *Service) growth(ctx context.Context, model any) ([]DayCount, error) {
	since := s.now().In(s.loc).AddDate(0, 0, -growthDays)
	var stamps []time.Time
	if err := s.db.WithContext(ctx).Model(model).
		Where("created_at >= ?", since).
		Pluck("created_at", &stamps).Error; err != nil {
		return nil, err
	}

	counts := map[string]int64{}
	for _, ts := range stamps {
		counts[ts.In(s.loc).Format(time.DateOnly)]++
	}
	out := make([]DayCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, DayCount{Day: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func (s *Service) Users(ctx context.Context, q pagination.Query) ([]models.User, response.Pagination, error) {
	tx := s.db.WithContext(ctx).Model(&models.User{}).Order("created_at DESC")
	var users []models.User
	pag, err := pagination.Paginate(tx, q, &users)
	return users, pag, err
}

func (s *Service) Feedbacks(ctx context.Context, q pagination.Query) ([]models.Feedback, response.Pagination, error) {
	tx := s.db.WithContext(ctx).Model(&models.Feedback{}).
		Preload("User", selectEmail).
		Order("created_at DESC")
	var items []models.Feedback
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

func (s *Service) Insights(ctx context.Context, q pagination.Query) ([]models.Insight, response.Pagination, error) {
	tx := s.db.WithContext(ctx).Model(&models.Insight{}).
		Preload("User", selectEmail).
		Order("created_at DESC")
	var items []models.Insight
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

func (s *Service) Presentations(ctx context.Context, q pagination.Query) ([]models.Presentation, response.Pagination, error) {
	tx := s.db.WithContext(ctx).Model(&models.Presentation{}).
		Preload("User", selectEmail).
		Order("created_at DESC")
	var items []models.Presentation
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

func (s *Service) InsightModelStats(ctx context.Context) ([]ModelCount, error) {
	var out []ModelCount
	err := s.db.WithContext(ctx).Model(&models.Insight{}).
		Select("model, COUNT(*) AS count").
		Group("model").
		Order("count DESC").
		Scan(&out).Error
	if out == nil {
		out = []ModelCount{}
	}
	return out, err
}

// DeleteUser removes the account together with its insights, presentations and feedback.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.Insight{}, &models.Presentation{}, &models.Feedback{}} {
			if err := tx.Unscoped().Where("user_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		res := tx.Unscoped().Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errUserNotFound
		}
		return nil
	})
}

func (s *Service) DeleteFeedback(ctx context.Context, id string) error {
	return s.deleteOne(ctx, &models.Feedback{}, id, errFeedbackNotFound)
}

func (s *Service) DeleteInsight(ctx context.Context, id string) error {
	return s.deleteOne(ctx, &models.Insight{}, id, errInsightNotFound)
}

func (s *Service) DeletePresentation(ctx context.Context, id string) error {
	return s.deleteOne(ctx, &models.Presentation{}, id, errPresentationNotFound)
}

func (s *Service) SetSubscription(ctx context.Context, id string, status models.SubscriptionStatus) error {
	if !status.Valid() {
		return errInvalidSubscription
	}
	return s.updateOne(ctx, &models.User{}, id, "subscription_status", status, errUserNotFound)
}

func (s *Service) SetInsightPrivacy(ctx context.Context, id string, private bool) error {
	return s.updateOne(ctx, &models.Insight{}, id, "is_private", private, errInsightNotFound)
}

func (s *Service) SetPresentationPrivacy(ctx context.Context, id string, private bool) error {
	return s.updateOne(ctx, &models.Presentation{}, id, "is_private", private, errPresentationNotFound)
}

func (s *Service) deleteOne(ctx context.Context, model any, id string, notFound error) error {
	res := s.db.WithContext(ctx).Unscoped().Delete(model, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound
	}
	return nil
}

func (s *Service) updateOne(ctx context.Context, model any, id, column string, value any, notFound error) error {
	res := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound
	}
	return nil
}

func selectEmail(tx *gorm.DB) *gorm.DB {
	return tx.Select("id", "email")
}
