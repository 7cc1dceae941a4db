package user

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/stylescanner/server/internal/models"
	"github.com/stylescanner/server/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "email = ?", models.NormalizeEmail(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) Register(ctx context.Context, dto *RegisterDTO) (string, *models.User, error) {
	existing, err := s.GetByEmail(ctx, dto.Email)
	if err != nil {
		return "", nil, err
	}
	if existing != nil {
		return "", nil, errUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}
	u := models.User{
		Email:     dto.Email,
		Password:  string(hash),
		FirstName: strings.TrimSpace(dto.FirstName),
		LastName:  strings.TrimSpace(dto.LastName),
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return "", nil, err
	}
	token, err := jwt.Sign(u.ID, u.Email, jwt.DefaultTTL)
	return token, &u, err
}

func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		return "", nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, errInvalidCredentials
	}
	token, err := jwt.Sign(u.ID, u.Email, jwt.DefaultTTL)
	return token, u, err
}

// Refresh issues a new token for an already authenticated user.
func (s *Service) Refresh(u *models.User) (string, error) {
	return jwt.Sign(u.ID, u.Email, jwt.DefaultTTL)
}

func (s *Service) UpdateProfile(ctx context.Context, id string, dto *UpdateProfileDTO) (*models.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil || u == nil {
		return u, err
	}
	updates := map[string]interface{}{}
	if dto.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*dto.FirstName)
		u.FirstName = strings.TrimSpace(*dto.FirstName)
	}
	if dto.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*dto.LastName)
		u.LastName = strings.TrimSpace(*dto.LastName)
	}
	if dto.ProfilePicture != nil {
		updates["profile_picture"] = *dto.ProfilePicture
		u.ProfilePicture = *dto.ProfilePicture
	}
	if present(dto.Preferences) {
		if !json.Valid(dto.Preferences) {
			return nil, errInvalidJSON
		}
		updates["preferences"] = datatypes.JSON(dto.Preferences)
		u.Preferences = datatypes.JSON(dto.Preferences)
	}
	if present(dto.FashionAIProps) {
		if !json.Valid(dto.FashionAIProps) {
			return nil, errInvalidJSON
		}
		updates["fashion_ai_props"] = datatypes.JSON(dto.FashionAIProps)
		u.FashionAIProps = datatypes.JSON(dto.FashionAIProps)
	}
	if len(updates) == 0 {
		return u, nil
	}
	return u, s.db.WithContext(ctx).Model(u).Updates(updates).Error
}

func (s *Service) ChangePassword(ctx context.Context, id, oldPwd, newPwd string) error {
	var u models.User
	if err := s.db.WithContext(ctx).Select("id, password").First(&u, "id = ?", id).Error; err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPwd)); err != nil {
		return errWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(newPwd)); err == nil {
		return errPasswordSameAsOld
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&u).Update("password", string(hash)).Error
}
