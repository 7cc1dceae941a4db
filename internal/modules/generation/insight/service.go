package insight

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/stylescanner/server/internal/database"
	"github.com/stylescanner/server/internal/models"
	"github.com/stylescanner/server/internal/modules/processing/ai"
	"github.com/stylescanner/server/internal/modules/processing/assets"
	"github.com/stylescanner/server/internal/modules/processing/imagenorm"
	"github.com/stylescanner/server/internal/modules/processing/prompt"
	"github.com/stylescanner/server/internal/modules/storage/photo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db           *gorm.DB
	dispatcher   *ai.Dispatcher
	prompts      *prompt.Builder
	photos       photo.Store
	resolver     *assets.Resolver
	defaultModel ai.Model
	logger       *zap.Logger
}

type Options struct {
	DB           *gorm.DB
	Dispatcher   *ai.Dispatcher
	Prompts      *prompt.Builder
	Photos       photo.Store
	Resolver     *assets.Resolver
	DefaultModel ai.Model
	Logger       *zap.Logger
}

func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	model := opts.DefaultModel
	if model == "" {
		model = ai.ModelGPT4oMini
	}
	return &Service{
		db:           opts.DB,
		dispatcher:   opts.Dispatcher,
		prompts:      opts.Prompts,
		photos:       opts.Photos,
		resolver:     opts.Resolver,
		defaultModel: model,
		logger:       logger,
	}
}

// Generate runs the outfit analysis pipeline for userID and persists the result.
// It returns the parsed model document alongside the stored row.
func (s *Service) Generate(ctx context.Context, userID string, dto *GenerateDTO) (ai.Document, *models.Insight, error) {
	if dto.ImageSource == "" {
		return nil, nil, errImageRequired
	}

	raw, _, err := imagenorm.DecodeBase64(dto.ImageSource)
	if err != nil {
		return nil, nil, errInvalidImage
	}
	img, err := imagenorm.NormalizeBytes(raw)
	if err != nil {
		return nil, nil, errInvalidImage
	}

	model := s.defaultModel
	if dto.Model != "" {
		if model, err = ai.ParseModel(dto.Model); err != nil {
			return nil, nil, err
		}
	}
	req := ai.Request{
		Model:     model,
		Prompt:    s.prompts.Insight(dto.StylePreferences),
		Image:     img.Data,
		ImageMIME: img.MIMEType,
	}
	if dto.Temperature != nil {
		req.Temperature = *dto.Temperature
	}

	text, err := s.dispatcher.Generate(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	doc, err := ai.ParseDocument(text)
	if err != nil {
		s.logger.Warn("unparseable insight response", zap.String("model", model.String()), zap.Int("length", len(text)))
		return nil, nil, err
	}
	// Recommendations may embed ![description](placeholder) images.
	if s.resolver != nil {
		doc = s.resolver.Resolve(ctx, doc, assets.SourceUnsplash)
	}

	analysis, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, err
	}
	row := &models.Insight{
		Title:           defaultTitle,
		Photo:           s.storePhoto(ctx, userID, img),
		Recommendations: models.StringArrayFrom(doc["recommendations"]),
		Benefits:        models.StringArrayFrom(doc["benefits"]),
		Analysis:        datatypes.JSON(analysis),
		StyleScore:      styleScore(doc["styleScore"]),
		Model:           model.String(),
		UserID:          userID,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, nil, err
	}
	return doc, row, nil
}

// storePhoto uploads to object storage when configured, otherwise keeps a data URL inline.
func (s *Service) storePhoto(ctx context.Context, userID string, img imagenorm.Result) string {
	if s.photos != nil {
		link, err := s.photos.Put(ctx, photo.InsightKey(userID, img.Format, time.Now()), img.Data, img.MIMEType)
		if err == nil {
			return link
		}
		s.logger.Warn("photo upload failed, storing inline", zap.String("user_id", userID), zap.Error(err))
	}
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Insight, error) {
	var in models.Insight
	if err := s.db.WithContext(ctx).First(&in, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &in, nil
}

// ListByOwner returns the owner's insights, newest first, filtered by search.
func (s *Service) ListByOwner(ctx context.Context, userID, search string) ([]models.Insight, error) {
	var items []models.Insight
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Scopes(database.ContainsFold(search, "title", "recommendations", "analysis")).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (s *Service) Update(ctx context.Context, in *models.Insight, dto *UpdateDTO) (*models.Insight, error) {
	updates := map[string]interface{}{}
	if dto.Title != nil {
		updates["title"] = *dto.Title
		in.Title = *dto.Title
	}
	if dto.IsPrivate != nil {
		updates["is_private"] = *dto.IsPrivate
		in.IsPrivate = *dto.IsPrivate
	}
	if len(updates) == 0 {
		return in, nil
	}
	return in, s.db.WithContext(ctx).Model(in).Updates(updates).Error
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Unscoped().Delete(&models.Insight{}, "id = ?", id).Error
}
