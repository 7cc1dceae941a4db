package presentation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/stylescanner/server/internal/database"
	"github.com/stylescanner/server/internal/models"
	"github.com/stylescanner/server/internal/modules/processing/ai"
	"github.com/stylescanner/server/internal/modules/processing/assets"
	"github.com/stylescanner/server/internal/modules/processing/prompt"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const slugAttempts = 4

type Service struct {
	db           *gorm.DB
	dispatcher   *ai.Dispatcher
	prompts      *prompt.Builder
	resolver     *assets.Resolver
	defaultModel ai.Model
	logger       *zap.Logger
}

type Options struct {
	DB           *gorm.DB
	Dispatcher   *ai.Dispatcher
	Prompts      *prompt.Builder
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
		resolver:     opts.Resolver,
		defaultModel: model,
		logger:       logger,
	}
}

// Generate builds a slide deck about dto.Topic and persists it for userID.
func (s *Service) Generate(ctx context.Context, userID string, dto *GenerateDTO) (*models.Presentation, error) {
	topic := strings.TrimSpace(dto.Topic)
	if topic == "" {
		return nil, errTopicRequired
	}
	model := s.defaultModel
	if dto.Model != "" {
		var err error
		if model, err = ai.ParseModel(dto.Model); err != nil {
			return nil, err
		}
	}
	slides := clampSlides(dto.NumSlides)
	source := assets.ParseSource(dto.ImageSource)

	var research string
	if dto.DeepResearch {
		research = s.research(ctx, model, topic)
	}

	req := ai.Request{Model: model, Prompt: s.prompts.Presentation(topic, slides, research)}
	if dto.Temperature != nil {
		req.Temperature = *dto.Temperature
	}
	text, err := s.dispatcher.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	doc, err := ai.ParseDocument(text)
	if err != nil {
		s.logger.Warn("unparseable presentation response", zap.String("model", model.String()), zap.Int("length", len(text)))
		return nil, err
	}
	if s.resolver != nil {
		doc = s.resolver.Resolve(ctx, doc, source)
	}

	slidesJSON, err := json.Marshal(slidesOf(doc))
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(doc.String("title"))
	if title == "" {
		title = topic
	}
	row := &models.Presentation{
		Title:        title,
		Topic:        topic,
		Summary:      doc.String("summary"),
		Slides:       datatypes.JSON(slidesJSON),
		Benefits:     models.StringArrayFrom(doc["benefits"]),
		ImageSource:  string(source),
		DeepResearch: dto.DeepResearch,
		Temperature:  req.Temperature,
		Model:        model.String(),
		UserID:       userID,
	}
	if err := s.create(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// research asks a search-grounded model for background notes. Gemini is preferred
// since its sessions carry the Google Search tool; failures only drop the notes.
func (s *Service) research(ctx context.Context, model ai.Model, topic string) string {
	researchModel := model
	if model.Vendor() != ai.VendorGemini && s.dispatcher.Configured(ai.ModelGeminiFlash) {
		researchModel = ai.ModelGeminiFlash
	}
	notes, err := s.dispatcher.GenerateText(ctx, researchModel, prompt.Research(topic))
	if err != nil {
		s.logger.Warn("deep research skipped", zap.String("model", researchModel.String()), zap.Error(err))
		return ""
	}
	return notes
}

// create inserts row under a unique slug, suffixing it on collision.
func (s *Service) create(ctx context.Context, row *models.Presentation) error {
	base := slugify(row.Title)
	row.Slug = base
	var err error
	for attempt := 0; attempt < slugAttempts; attempt++ {
		if attempt > 0 {
			row.ID = ""
			row.Slug = base + "-" + randomSuffix()
		} else if s.slugTaken(ctx, base) {
			continue
		}
		if err = s.db.WithContext(ctx).Create(row).Error; err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) && !isUniqueViolation(err) {
			return err
		}
	}
	return err
}

func (s *Service) slugTaken(ctx context.Context, slug string) bool {
	var n int64
	s.db.WithContext(ctx).Unscoped().Model(&models.Presentation{}).Where("slug = ?", slug).Count(&n)
	return n > 0
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func slidesOf(doc ai.Document) []any {
	if slides, ok := doc["slides"].([]any); ok {
		return slides
	}
	return []any{}
}

// GetByIdentifier looks a presentation up by id, then by slug.
func (s *Service) GetByIdentifier(ctx context.Context, identifier string) (*models.Presentation, error) {
	var p models.Presentation
	err := s.db.WithContext(ctx).Where("id = ? OR slug = ?", identifier, identifier).
		Order("created_at").First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ListByOwner returns the owner's decks, newest first, filtered by search.
func (s *Service) ListByOwner(ctx context.Context, userID, search string) ([]models.Presentation, error) {
	var items []models.Presentation
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Scopes(database.ContainsFold(search, "title", "summary", "topic")).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (s *Service) Update(ctx context.Context, p *models.Presentation, dto *UpdateDTO) (*models.Presentation, error) {
	updates := map[string]interface{}{}
	if dto.Title != nil {
		updates["title"] = *dto.Title
		p.Title = *dto.Title
	}
	if dto.Summary != nil {
		updates["summary"] = *dto.Summary
		p.Summary = *dto.Summary
	}
	if dto.IsPrivate != nil {
		updates["is_private"] = *dto.IsPrivate
		p.IsPrivate = *dto.IsPrivate
	}
	if len(dto.Slides) > 0 && string(dto.Slides) != "null" {
		var slides []any
		if err := json.Unmarshal(dto.Slides, &slides); err != nil {
			return nil, errInvalidSlides
		}
		updates["slides"] = datatypes.JSON(dto.Slides)
		p.Slides = datatypes.JSON(dto.Slides)
	}
	if len(updates) == 0 {
		return p, nil
	}
	return p, s.db.WithContext(ctx).Model(p).Updates(updates).Error
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Unscoped().Delete(&models.Presentation{}, "id = ?", id).Error
}
