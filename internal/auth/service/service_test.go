package service

import (
	"context"
	"testing"
	"time"

	"prmhub_backend/internal/auth/password"
	"prmhub_backend/internal/auth/repository"
	"prmhub_backend/internal/config"
	"prmhub_backend/platform/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type storedRefreshToken struct {
	userID    uuid.UUID
	expiresAt time.Time
	revoked   bool
}

type fakeStore struct {
	usersByEmail map[string]repository.User
	usersByID    map[uuid.UUID]repository.User
	roles        map[uuid.UUID][]string
	tokens       map[string]*storedRefreshToken
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		usersByEmail: make(map[string]repository.User),
		usersByID:    make(map[uuid.UUID]repository.User),
		roles:        make(map[uuid.UUID][]string),
		tokens:       make(map[string]*storedRefreshToken),
	}
}

func (f *fakeStore) CreateOrganization(_ context.Context, _ string) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (f *fakeStore) CreateUser(_ context.Context, organizationID uuid.UUID, email, passwordHash, name string) (repository.User, error) {
	if _, exists := f.usersByEmail[email]; exists {
		return repository.User{}, apperr.Conflict("email already registered")
	}
	user := repository.User{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		Email:          email,
		PasswordHash:   passwordHash,
		Name:           name,
		CreatedAt:      time.Now(),
	}
	f.usersByEmail[email] = user
	f.usersByID[user.ID] = user
	return user, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (repository.User, error) {
	user, ok := f.usersByEmail[email]
	if !ok {
		return repository.User{}, apperr.NotFound("user not found")
	}
	return user, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	user, ok := f.usersByID[id]
	if !ok {
		return repository.User{}, apperr.NotFound("user not found")
	}
	return user, nil
}

func (f *fakeStore) GetUserRoles(_ context.Context, userID uuid.UUID) ([]string, error) {
	return f.roles[userID], nil
}

func (f *fakeStore) SetUserRoles(_ context.Context, userID uuid.UUID, roles []string) error {
	f.roles[userID] = roles
	return nil
}

func (f *fakeStore) CreateRefreshToken(_ context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	f.tokens[tokenHash] = &storedRefreshToken{userID: userID, expiresAt: expiresAt}
	return nil
}

func (f *fakeStore) GetRefreshToken(_ context.Context, tokenHash string) (uuid.UUID, time.Time, error) {
	tok, ok := f.tokens[tokenHash]
	if !ok || tok.revoked {
		return uuid.Nil, time.Time{}, apperr.NotFound("refresh token not found")
	}
	return tok.userID, tok.expiresAt, nil
}

func (f *fakeStore) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	if tok, ok := f.tokens[tokenHash]; ok {
		tok.revoked = true
	}
	return nil
}

func (f *fakeStore) RevokeAllRefreshTokens(_ context.Context, userID uuid.UUID) error {
	for _, tok := range f.tokens {
		if tok.userID == userID {
			tok.revoked = true
		}
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTAccessSecret: "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func signUpUser(t *testing.T, svc *Service) {
	t.Helper()
	if err := svc.SignUp(context.Background(), "Acme BV", "Eva Jansen", "eva@example.com", "secret-pass"); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
}

func TestSignInReturnsTokens(t *testing.T) {
	store := newFakeStore()
	svc := New(store, testConfig())
	signUpUser(t, svc)

	access, refresh, err := svc.SignIn(context.Background(), "eva@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("SignIn() returned empty tokens")
	}
}

func TestSignInAccessTokenClaims(t *testing.T) {
	store := newFakeStore()
	cfg := testConfig()
	svc := New(store, cfg)
	signUpUser(t, svc)

	access, _, err := svc.SignIn(context.Background(), "eva@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}

	parsed, err := jwt.Parse(access, func(t *jwt.Token) (any, error) {
		return []byte(cfg.JWTAccessSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token parse error = %v, valid = %v", err, parsed != nil && parsed.Valid)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["type"] != "access" {
		t.Fatalf("type claim = %v, want access", claims["type"])
	}
	user := store.usersByEmail["eva@example.com"]
	if claims["sub"] != user.ID.String() {
		t.Fatalf("sub claim = %v, want %s", claims["sub"], user.ID)
	}
	if claims["org_id"] != user.OrganizationID.String() {
		t.Fatalf("org_id claim = %v, want %s", claims["org_id"], user.OrganizationID)
	}
}

func TestSignInRejectsWrongPassword(t *testing.T) {
	store := newFakeStore()
	svc := New(store, testConfig())
	signUpUser(t, svc)

	if _, _, err := svc.SignIn(context.Background(), "eva@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.SignIn(context.Background(), "nobody@example.com", "secret-pass"); err != ErrInvalidCredentials {
		t.Fatalf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	store := newFakeStore()
	svc := New(store, testConfig())
	signUpUser(t, svc)

	_, refresh, err := svc.SignIn(context.Background(), "eva@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}

	access2, refresh2, err := svc.Refresh(context.Background(), refresh)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if access2 == "" || refresh2 == "" {
		t.Fatal("Refresh() returned empty tokens")
	}
	if refresh2 == refresh {
		t.Fatal("refresh token was not rotated")
	}

	// The old token is revoked and cannot be reused.
	if _, _, err := svc.Refresh(context.Background(), refresh); err != ErrTokenInvalid {
		t.Fatalf("reuse error = %v, want ErrTokenInvalid", err)
	}
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	store := newFakeStore()
	cfg := testConfig()
	cfg.RefreshTokenTTL = -time.Hour
	svc := New(store, cfg)
	signUpUser(t, svc)

	_, refresh, err := svc.SignIn(context.Background(), "eva@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if _, _, err := svc.Refresh(context.Background(), refresh); err != ErrTokenExpired {
		t.Fatalf("error = %v, want ErrTokenExpired", err)
	}
}

func TestSignUpHashesPassword(t *testing.T) {
	store := newFakeStore()
	svc := New(store, testConfig())
	signUpUser(t, svc)

	user := store.usersByEmail["eva@example.com"]
	if user.PasswordHash == "secret-pass" {
		t.Fatal("password stored in plain text")
	}
	if err := password.Compare(user.PasswordHash, "secret-pass"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if got := store.roles[user.ID]; len(got) != 1 || got[0] != "admin" {
		t.Fatalf("roles = %v, want [admin]", got)
	}
}
