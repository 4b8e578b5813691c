package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"prmhub_backend/internal/auth/password"
	"prmhub_backend/internal/auth/repository"
	"prmhub_backend/internal/auth/token"
	"prmhub_backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrTokenExpired = errors.New("token expired")
var ErrTokenInvalid = errors.New("token invalid")

const accessTokenType = "access"

// Store is the persistence surface the auth service needs.
type Store interface {
	CreateOrganization(ctx context.Context, name string) (uuid.UUID, error)
	CreateUser(ctx context.Context, organizationID uuid.UUID, email, passwordHash, name string) (repository.User, error)
	GetUserByEmail(ctx context.Context, email string) (repository.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (repository.User, error)
	GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
	SetUserRoles(ctx context.Context, userID uuid.UUID, roles []string) error
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, time.Time, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

type Service struct {
	repo Store
	cfg  *config.Config
}

func New(repo Store, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// SignUp creates a new organization with its first admin user.
func (s *Service) SignUp(ctx context.Context, organizationName, name, email, plainPassword string) error {
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return err
	}

	orgID, err := s.repo.CreateOrganization(ctx, strings.TrimSpace(organizationName))
	if err != nil {
		return err
	}

	user, err := s.repo.CreateUser(ctx, orgID, normalizeEmail(email), hash, strings.TrimSpace(name))
	if err != nil {
		return err
	}

	return s.repo.SetUserRoles(ctx, user.ID, []string{"admin"})
}

func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (string, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", "", ErrInvalidCredentials
	}

	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return "", "", ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	hash := token.HashSHA256(refreshToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return "", "", ErrTokenInvalid
	}

	if time.Now().After(expiresAt) {
		_ = s.repo.RevokeRefreshToken(ctx, hash)
		return "", "", ErrTokenExpired
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", "", ErrTokenInvalid
	}

	// Rotate on every use.
	_ = s.repo.RevokeRefreshToken(ctx, hash)
	return s.issueTokens(ctx, user)
}

func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	hash := token.HashSHA256(refreshToken)
	return s.repo.RevokeRefreshToken(ctx, hash)
}

func (s *Service) issueTokens(ctx context.Context, user repository.User) (string, string, error) {
	roles, err := s.repo.GetUserRoles(ctx, user.ID)
	if err != nil {
		return "", "", err
	}

	accessToken, err := s.signJWT(user, roles)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := token.GenerateRandomToken(48)
	if err != nil {
		return "", "", err
	}

	hash := token.HashSHA256(refreshToken)
	expiresAt := time.Now().Add(s.cfg.RefreshTokenTTL)
	if err := s.repo.CreateRefreshToken(ctx, user.ID, hash, expiresAt); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *Service) signJWT(user repository.User, roles []string) (string, error) {
	claims := jwt.MapClaims{
		"sub":    user.ID.String(),
		"org_id": user.OrganizationID.String(),
		"type":   accessTokenType,
		"roles":  roles,
		"exp":    time.Now().Add(s.cfg.AccessTokenTTL).Unix(),
		"iat":    time.Now().Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.JWTAccessSecret))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
