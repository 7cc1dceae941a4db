// Package legacyimport copies the MongoDB collections of the previous
// deployment into the SQL schema. Document ObjectIDs are kept as row ids,
// so the import can be re-run: rows that already exist are skipped.
package legacyimport

import (
	"context"
	"fmt"
	"time"

	"github.com/stylescanner/server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultInsightTitle = "Fashion Insight"

// Collections in import order; owners before the rows that reference them.
var Collections = []string{"users", "insights", "presentations", "feedbacks"}

type Counts struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type Report map[string]*Counts

type Importer struct {
	db     *gorm.DB
	src    Source
	loc    *time.Location
	logger *zap.Logger
	users  map[string]bool
}

func New(db *gorm.DB, src Source, loc *time.Location, logger *zap.Logger) *Importer {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{db: db, src: src, loc: loc, logger: logger}
}

func (im *Importer) Run(ctx context.Context) (Report, error) {
	report := Report{}
	for _, name := range Collections {
		counts := &Counts{}
		report[name] = counts
		if name != "users" && im.users == nil {
			if err := im.loadUserIDs(ctx); err != nil {
				return report, err
			}
		}
		convert := im.converter(name)
		err := im.src.Each(ctx, name, func(doc bson.M) error {
			row, ok := convert(doc)
			if !ok {
				counts.Skipped++
				return nil
			}
			res := im.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
			if res.Error != nil {
				return fmt.Errorf("%s %v: %w", name, plain(doc["_id"]), res.Error)
			}
			if res.RowsAffected == 0 {
				counts.Skipped++
				return nil
			}
			counts.Imported++
			return nil
		})
		if err != nil {
			return report, err
		}
		im.logger.Info("collection imported",
			zap.String("collection", name), zap.Int("imported", counts.Imported), zap.Int("skipped", counts.Skipped))
	}
	return report, nil
}

func (im *Importer) loadUserIDs(ctx context.Context) error {
	var ids []string
	if err := im.db.WithContext(ctx).Model(&models.User{}).Pluck("id", &ids).Error; err != nil {
		return err
	}
	im.users = make(map[string]bool, len(ids))
	for _, id := range ids {
		im.users[id] = true
	}
	return nil
}

func (im *Importer) converter(collection string) func(bson.M) (any, bool) {
	switch collection {
	case "users":
		return im.user
	case "insights":
		return im.insight
	case "presentations":
		return im.presentation
	default:
		return im.feedback
	}
}

func (im *Importer) base(doc bson.M) (models.Base, bool) {
	b := models.Base{ID: str(doc, "_id")}
	if b.ID == "" {
		return b, false
	}
	if ts, ok := timestamp(doc["createdAt"]); ok {
		b.CreatedAt = ts
	}
	if ts, ok := timestamp(doc["updatedAt"]); ok {
		b.UpdatedAt = ts
	}
	return b, true
}

func (im *Importer) user(doc bson.M) (any, bool) {
	b, ok := im.base(doc)
	email, password := str(doc, "email"), str(doc, "password")
	if !ok || email == "" || password == "" {
		return nil, false
	}
	u := &models.User{
		Base:               b,
		Email:              email,
		Password:           password,
		FirstName:          str(doc, "firstName"),
		LastName:           str(doc, "lastName"),
		ProfilePicture:     str(doc, "profilePicture"),
		SubscriptionStatus: models.SubscriptionStatus(str(doc, "subscriptionStatus")),
		SubscriptionID:     str(doc, "subscriptionId"),
		EmailVerified:      boolean(doc, "emailVerified"),
		IsAdmin:            boolean(doc, "isAdmin"),
	}
	if !u.SubscriptionStatus.Valid() {
		u.SubscriptionStatus = models.SubscriptionFree
	}
	if raw, err := jsonValue(doc, "preferences"); err == nil && raw != nil {
		u.Preferences = datatypes.JSON(raw)
	}
	if raw, err := jsonValue(doc, "fashionAIProps"); err == nil && raw != nil {
		u.FashionAIProps = datatypes.JSON(raw)
	}
	if ts, ok := timestamp(doc["lastAiRequestTime"]); ok {
		u.LastAIRequestTime = &ts
		u.LastAIRequestDay = ts.In(im.loc).Format(time.DateOnly)
		u.AIRequestCount = int(number(doc, "aiRequestCount"))
	}
	return u, true
}

func (im *Importer) owner(doc bson.M) (string, bool) {
	id := str(doc, "userId")
	return id, id != "" && im.users[id]
}

func (im *Importer) insight(doc bson.M) (any, bool) {
	b, ok := im.base(doc)
	userID, owned := im.owner(doc)
	if !ok || !owned {
		return nil, false
	}
	in := &models.Insight{
		Base:            b,
		Title:           str(doc, "title"),
		Photo:           str(doc, "photo"),
		Recommendations: models.StringArrayFrom(plain(doc["recommendations"])),
		Benefits:        models.StringArrayFrom(plain(doc["benefits"])),
		StyleScore:      number(doc, "styleScore"),
		IsPrivate:       boolean(doc, "isPrivate"),
		Model:           str(doc, "model"),
		UserID:          userID,
	}
	if in.Title == "" {
		in.Title = defaultInsightTitle
	}
	if raw, err := jsonValue(doc, "analysis"); err == nil && raw != nil {
		in.Analysis = datatypes.JSON(raw)
	}
	return in, true
}

func (im *Importer) presentation(doc bson.M) (any, bool) {
	b, ok := im.base(doc)
	userID, owned := im.owner(doc)
	if !ok || !owned {
		return nil, false
	}
	p := &models.Presentation{
		Base:      b,
		Title:     str(doc, "title"),
		Slug:      str(doc, "slug"),
		Topic:     str(doc, "topic"),
		Summary:   str(doc, "summary"),
		Benefits:  models.StringArrayFrom(plain(doc["benefits"])),
		IsPrivate: boolean(doc, "isPrivate"),
		Model:     str(doc, "model"),
		UserID:    userID,
	}
	if p.Slug == "" {
		p.Slug = b.ID
	}
	if raw, err := jsonValue(doc, "slides"); err == nil && raw != nil {
		p.Slides = datatypes.JSON(raw)
	}
	return p, true
}

func (im *Importer) feedback(doc bson.M) (any, bool) {
	b, ok := im.base(doc)
	msg := str(doc, "message")
	if !ok || msg == "" {
		return nil, false
	}
	fb := &models.Feedback{Base: b, Message: msg, Type: str(doc, "type")}
	if userID, owned := im.owner(doc); owned {
		fb.UserID = &userID
	}
	return fb, true
}
