package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/cafeconecta/cafeconecta-backend/pkg/auth"
	"github.com/cafeconecta/cafeconecta-backend/pkg/config"
	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
	pkgerrors "github.com/cafeconecta/cafeconecta-backend/pkg/errors"
	"github.com/cafeconecta/cafeconecta-backend/pkg/security"
)

type stubUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubSessionManager struct {
	tokens     map[string]string
	revoked    []string
	rotateFail error
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{tokens: make(map[string]string)}
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.tokens[accessID] = token
	return token, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateFail != nil {
		return "", "", s.rotateFail
	}
	stored, ok := s.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}
	delete(s.tokens, oldAccessID)
	newID := uuid.NewString()
	token, _ := s.Generate(ctx, newID)
	return newID, token, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	delete(s.tokens, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "cafeconecta", ExpirationMinutes: 30}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func buildTestUser(t *testing.T, password string, role enums.UserRole) *models.User {
	t.Helper()
	return &models.User{
		ID:           uuid.New(),
		Name:         "Ana",
		Email:        "ana@fazenda.br",
		PasswordHash: mustHashPassword(t, password),
		Role:         role,
		Plan:         enums.SubscriptionPlanFree,
	}
}

func buildTestService(t *testing.T, user *models.User) (Service, *stubSessionManager) {
	t.Helper()
	repo := &stubUserRepo{
		byEmail: map[string]*models.User{user.Email: user},
		byID:    map[uuid.UUID]*models.User{user.ID: user},
	}
	sessions := newStubSessionManager()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, sessions
}

func TestServiceLoginMintsPlanAndRoleClaims(t *testing.T) {
	user := buildTestUser(t, "segredo-forte", enums.UserRoleProducer)
	svc, _ := buildTestService(t, user)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "segredo-forte",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.UserRoleProducer {
		t.Fatalf("expected producer role claim, got %s", claims.Role)
	}
	if claims.Plan != enums.SubscriptionPlanFree {
		t.Fatalf("expected free plan claim, got %s", claims.Plan)
	}
	if resp.RefreshToken == "" {
		t.Fatal("expected refresh token to be set")
	}
	if resp.User == nil || resp.User.Email != user.Email {
		t.Fatalf("expected user dto, got %+v", resp.User)
	}
}

func TestServiceLoginRejectsWrongPassword(t *testing.T) {
	user := buildTestUser(t, "segredo-forte", enums.UserRoleBuyer)
	svc, _ := buildTestService(t, user)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "errada",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestServiceLoginRejectsBlockedUser(t *testing.T) {
	user := buildTestUser(t, "segredo-forte", enums.UserRoleBuyer)
	user.IsBlocked = true
	svc, _ := buildTestService(t, user)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "segredo-forte",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for blocked user, got %v", err)
	}
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	user := buildTestUser(t, "segredo-forte", enums.UserRoleProducer)
	svc, sessions := buildTestService(t, user)

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "segredo-forte",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.AccessToken == login.AccessToken {
		t.Fatal("expected a new access token")
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	// old pair must be dead after rotation
	if _, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	}); err == nil {
		t.Fatal("expected old refresh pair to be rejected")
	}
	_ = sessions
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	user := buildTestUser(t, "segredo-forte", enums.UserRoleProducer)
	svc, sessions := buildTestService(t, user)

	if err := svc.Logout(context.Background(), "access-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-1" {
		t.Fatalf("expected revoke call, got %v", sessions.revoked)
	}
}
