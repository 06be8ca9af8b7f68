package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
	pkgerrors "github.com/cafeconecta/cafeconecta-backend/pkg/errors"
)

const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  plan TEXT NOT NULL DEFAULT 'free',
  is_blocked INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`

func newUsersService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(usersSchema).Error)
	t.Cleanup(func() {
		sqlDB, _ := conn.DB()
		_ = sqlDB.Close()
	})

	svc, err := NewService(ServiceParams{Repo: NewRepository(conn)})
	require.NoError(t, err)
	return svc, conn
}

func seedUser(t *testing.T, conn *gorm.DB, role enums.UserRole, plan enums.SubscriptionPlan) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Name:         "Usuário",
		Email:        uuid.NewString() + "@cafe.br",
		PasswordHash: "x",
		Role:         role,
		Plan:         plan,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func TestUpgradePlanForProducer(t *testing.T) {
	svc, conn := newUsersService(t)
	producer := seedUser(t, conn, enums.UserRoleProducer, enums.SubscriptionPlanFree)

	dto, err := svc.UpgradePlan(context.Background(), producer.ID, "pro")
	require.NoError(t, err)
	assert.Equal(t, enums.SubscriptionPlanPro, dto.Plan)

	var stored models.User
	require.NoError(t, conn.First(&stored, "id = ?", producer.ID).Error)
	assert.Equal(t, enums.SubscriptionPlanPro, stored.Plan)
}

func TestUpgradePlanRejectsBuyers(t *testing.T) {
	svc, conn := newUsersService(t)
	buyer := seedUser(t, conn, enums.UserRoleBuyer, enums.SubscriptionPlanFree)

	_, err := svc.UpgradePlan(context.Background(), buyer.ID, "elite")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpgradePlanRejectsUnknownPlan(t *testing.T) {
	svc, conn := newUsersService(t)
	producer := seedUser(t, conn, enums.UserRoleProducer, enums.SubscriptionPlanFree)

	_, err := svc.UpgradePlan(context.Background(), producer.ID, "platinum")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestSetBlockedTogglesFlag(t *testing.T) {
	svc, conn := newUsersService(t)
	buyer := seedUser(t, conn, enums.UserRoleBuyer, enums.SubscriptionPlanFree)

	dto, err := svc.SetBlocked(context.Background(), buyer.ID, true)
	require.NoError(t, err)
	assert.True(t, dto.IsBlocked)

	dto, err = svc.SetBlocked(context.Background(), buyer.ID, false)
	require.NoError(t, err)
	assert.False(t, dto.IsBlocked)
}

func TestSetBlockedProtectsAdmins(t *testing.T) {
	svc, conn := newUsersService(t)
	admin := seedUser(t, conn, enums.UserRoleAdmin, enums.SubscriptionPlanFree)

	_, err := svc.SetBlocked(context.Background(), admin.ID, true)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
