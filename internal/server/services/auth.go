package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// LoginResult is a fresh token pair plus the account it was issued for.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Email        string
	Role         models.Role
}

// AuthService checks passwords and issues JWTs.
type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	log                          logging.Logger
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.JWTSecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		log:                          log.With("module", "auth"),
	}
}

// Login returns common.ErrInvalidCredentials for both an unknown email and a
// wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.BurnPasswordCheck(password)
			return nil, common.ErrInvalidCredentials
		}
		s.log.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if !cryptox.CheckPassword(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	id := auth.Identity{
		Subject: strconv.FormatInt(user.ID, 10),
		Role:    string(user.Role),
		Email:   user.Email,
	}

	access, err := auth.GenerateToken(id, auth.TokenTypeAccess, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := auth.GenerateToken(id, auth.TokenTypeRefresh, s.jwtSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Email:        user.Email,
		Role:         user.Role,
	}, nil
}

// Refresh mints a new access token from a valid refresh token. The new token
// keeps the subject, role and email of the refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	id, err := auth.ParseToken(refreshToken, s.jwtSecret, auth.TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	access, err := auth.GenerateToken(*id, auth.TokenTypeAccess, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return access, nil
}

// ParseAccessToken verifies an access token for the authorization gate.
func (s *AuthService) ParseAccessToken(token string) (*auth.Identity, error) {
	return auth.ParseToken(token, s.jwtSecret, auth.TokenTypeAccess)
}

// ParseRefreshToken verifies a refresh token for the authorization gate.
func (s *AuthService) ParseRefreshToken(token string) (*auth.Identity, error) {
	return auth.ParseToken(token, s.jwtSecret, auth.TokenTypeRefresh)
}
