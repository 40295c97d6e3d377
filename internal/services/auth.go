package services

import (
	"errors"
	"time"

	"task-tracker/backend/internal/apperrors"
	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/models"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

type AuthService interface {
	LoginUser(db *gorm.DB, email, password string) (*models.User, error)
	GenerateTokens(db *gorm.DB, user *models.User) (TokenPair, error)
	RefreshTokens(db *gorm.DB, refreshToken string) (TokenPair, error)
	ParseAccessToken(tokenStr string) (models.Caller, error)
}

type AuthServiceImpl struct {
	cfg config.AuthConfig
}

func NewAuthService(cfg config.AuthConfig) *AuthServiceImpl {
	return &AuthServiceImpl{cfg: cfg}
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword)) == nil
}

func (s *AuthServiceImpl) LoginUser(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *AuthServiceImpl) secret() []byte {
	if s.cfg.JWTSecret != "" {
		return []byte(s.cfg.JWTSecret)
	}
	return []byte("development_secret")
}

func (s *AuthServiceImpl) GenerateTokens(db *gorm.DB, user *models.User) (TokenPair, error) {
	ttl := s.cfg.AccessTokenTTL
	if ttl == 0 {
		ttl = time.Hour
	}

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret())
	if err != nil {
		return TokenPair{}, err
	}

	refreshUUID, err := uuid.NewV4()
	if err != nil {
		return TokenPair{}, err
	}

	refreshTTL := s.cfg.RefreshTokenTTL
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	token := models.Token{
		UserID:       user.ID,
		RefreshToken: refreshUUID,
		ExpiresAt:    time.Now().Add(refreshTTL),
	}
	if err := db.Create(&token).Error; err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshUUID.String(),
		ExpiresIn:    int64(ttl.Seconds()),
	}, nil
}

// RefreshTokens rotates a refresh token: the presented one is consumed and a
// fresh pair is issued.
func (s *AuthServiceImpl) RefreshTokens(db *gorm.DB, refreshToken string) (TokenPair, error) {
	parsed, err := uuid.FromString(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	var token models.Token
	err = db.Where("refresh_token = ? AND expires_at > ?", parsed, time.Now()).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return TokenPair{}, err
	}

	var user models.User
	if err := db.First(&user, token.UserID).Error; err != nil {
		return TokenPair{}, err
	}
	if !user.IsActive {
		return TokenPair{}, apperrors.Wrap(apperrors.ErrForbidden, "account disabled")
	}

	if err := db.Delete(&token).Error; err != nil {
		return TokenPair{}, err
	}
	return s.GenerateTokens(db, &user)
}

// ParseAccessToken validates a bearer token and returns the caller identity
// embedded in it. The middleware still re-checks the user row for existence
// and the active flag.
func (s *AuthServiceImpl) ParseAccessToken(tokenStr string) (models.Caller, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret(), nil
	})
	if err != nil || !token.Valid {
		return models.Caller{}, ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Caller{}, ErrInvalidCredentials
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return models.Caller{}, ErrInvalidCredentials
	}
	role, _ := claims["role"].(string)
	if !models.Role(role).Valid() {
		return models.Caller{}, ErrInvalidCredentials
	}

	return models.Caller{ID: uint(sub), Role: models.Role(role)}, nil
}
