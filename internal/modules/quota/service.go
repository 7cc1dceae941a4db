package quota

import (
	"context"
	"errors"
	"time"

	"github.com/stylescanner/server/internal/models"
	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	loc      *time.Location
	ceilings map[Family]int
	now      func() time.Time
}

func NewService(db *gorm.DB, loc *time.Location, ceilings map[Family]int) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{db: db, loc: loc, ceilings: ceilings, now: time.Now}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Ceiling(f Family) int { return s.ceilings[f] }

// Consume records one generation for userID, or returns ErrLimitReached when
// today's count already reached the family ceiling. Paying subscribers are never counted.
func (s *Service) Consume(ctx context.Context, userID string, family Family) error {
	var u models.User
	err := s.db.WithContext(ctx).Select("id, subscription_status").First(&u, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errUserNotFound
		}
		return err
	}
	if u.SubscriptionStatus.Paying() {
		return nil
	}

	now := s.now().In(s.loc)
	today := now.Format(dayLayout)
	ceiling := s.ceilings[family]

	// Counter and day are written in one statement guarded by the ceiling,
	// so concurrent requests can never push the count past it.
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Where("(last_ai_request_day IS NULL OR last_ai_request_day <> ? OR ai_request_count < ?)", today, ceiling).
		Updates(map[string]interface{}{
			"ai_request_count":     gorm.Expr("CASE WHEN last_ai_request_day = ? THEN ai_request_count + 1 ELSE 1 END", today),
			"last_ai_request_day":  today,
			"last_ai_request_time": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLimitReached
	}
	return nil
}

// Usage reports the caller's counter for family without consuming.
func (s *Service) Usage(ctx context.Context, userID string, family Family) (*Usage, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	today := s.now().In(s.loc).Format(dayLayout)
	usage := &Usage{Day: today, Limit: s.ceilings[family], Unlimited: u.SubscriptionStatus.Paying()}
	if u.LastAIRequestDay == today {
		usage.Count = u.AIRequestCount
	}
	return usage, nil
}

// ResetStale zeroes counters left over from earlier days so stored values match
// what Consume would see. It never touches a row already counted today.
func (s *Service) ResetStale(ctx context.Context) (int64, error) {
	today := s.now().In(s.loc).Format(dayLayout)
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("ai_request_count > 0").
		Where("(last_ai_request_day IS NULL OR last_ai_request_day <> ?)", today).
		Update("ai_request_count", 0)
	return res.RowsAffected, res.Error
}
