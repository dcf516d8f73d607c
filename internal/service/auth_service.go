package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-progress-api/internal/chat"
	"github.com/noah-isme/course-progress-api/internal/models"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
)

const sessionKeyPrefix = "session:"

type authGateway interface {
	Login(ctx context.Context, email, password string) (*models.UpstreamLoginResponse, error)
	Logout(ctx context.Context) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService authenticates against the course backend and issues session tokens. The
// session role lives in the key-value store so logout revokes it immediately.
type AuthService struct {
	gateway   authGateway
	store     chat.Store
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(gateway authGateway, store chat.Store, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{gateway: gateway, store: store, validator: validate, logger: logger, config: config, now: time.Now}
}

// Login proxies credentials to the backend, records the session and returns a token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	upstream, err := s.gateway.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, appErrors.ErrInvalidCredentials) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		s.logger.Error("upstream login failed", zap.Error(err))
		return nil, err
	}

	user := upstream.User
	if user.Email == "" {
		user.Email = req.Email
	}
	role := upstream.Role
	if role == "" {
		role = models.UserRole(user.Role)
	}
	session := models.Session{
		ID:     uuid.NewString(),
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   role,
	}
	encoded, err := json.Marshal(session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode session")
	}
	if err := s.store.Set(ctx, sessionKeyPrefix+session.ID, encoded, s.config.AccessTokenExpiry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}

	token, err := s.generateAccessToken(session, user.Name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	return &models.LoginResponse{
		Success:     true,
		Role:        role,
		User:        user,
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
	}, nil
}

// ValidateToken parses a token and resolves the live session. The stored role is
// authoritative over the role embedded in the token.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	session, err := s.loadSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	claims.Role = session.Role
	return claims, nil
}

// Logout notifies the backend, revokes the session and deletes every stored chat log
// of the user. Local cleanup runs even when the backend call fails.
func (s *AuthService) Logout(ctx context.Context, claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if err := s.gateway.Logout(ctx); err != nil {
		s.logger.Warn("upstream logout failed", zap.String("user", claims.Identity()), zap.Error(err))
	}

	var errs []error
	if err := s.store.Remove(ctx, sessionKeyPrefix+claims.SessionID); err != nil {
		errs = append(errs, fmt.Errorf("remove session: %w", err))
	}
	if err := chat.ClearAll(ctx, s.store, claims.Identity()); err != nil {
		errs = append(errs, fmt.Errorf("clear chat history: %w", err))
	}
	if len(errs) > 0 {
		return appErrors.Wrap(errors.Join(errs...), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session state")
	}
	return nil
}

func (s *AuthService) loadSession(ctx context.Context, id string) (*models.Session, error) {
	raw, err := s.store.Get(ctx, sessionKeyPrefix+id)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session is corrupt")
	}
	return &session, nil
}

func (s *AuthService) generateAccessToken(session models.Session, name string) (string, error) {
	issuedAt := s.now().UTC()
	claims := &models.JWTClaims{
		UserID:    session.UserID,
		Email:     session.Email,
		Name:      name,
		Role:      session.Role,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   session.Email,
			ID:        session.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
}
