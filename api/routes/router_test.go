package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authsvc "github.com/cafeconecta/cafeconecta-backend/internal/auth"
	interestsvc "github.com/cafeconecta/cafeconecta-backend/internal/interests"
	inventorysvc "github.com/cafeconecta/cafeconecta-backend/internal/inventory"
	lotsvc "github.com/cafeconecta/cafeconecta-backend/internal/lots"
	marketsvc "github.com/cafeconecta/cafeconecta-backend/internal/market"
	negsvc "github.com/cafeconecta/cafeconecta-backend/internal/negotiations"
	tipsvc "github.com/cafeconecta/cafeconecta-backend/internal/tips"
	usersvc "github.com/cafeconecta/cafeconecta-backend/internal/users"
	pkgAuth "github.com/cafeconecta/cafeconecta-backend/pkg/auth"
	"github.com/cafeconecta/cafeconecta-backend/pkg/config"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
	"github.com/cafeconecta/cafeconecta-backend/pkg/logger"
	"github.com/cafeconecta/cafeconecta-backend/pkg/pagination"
)

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) { return true, nil }

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	return &authsvc.LoginResponse{}, nil
}

func (stubAuthService) Refresh(context.Context, authsvc.RefreshRequest) (*authsvc.RefreshResponse, error) {
	return &authsvc.RefreshResponse{}, nil
}

func (stubAuthService) Logout(context.Context, string) error { return nil }

type stubRegisterService struct{}

func (stubRegisterService) Register(context.Context, authsvc.RegisterRequest) (*usersvc.UserDTO, error) {
	return &usersvc.UserDTO{}, nil
}

type stubUsersService struct{}

func (stubUsersService) Get(context.Context, uuid.UUID) (*usersvc.UserDTO, error) {
	return &usersvc.UserDTO{}, nil
}

func (stubUsersService) UpgradePlan(context.Context, uuid.UUID, string) (*usersvc.UserDTO, error) {
	return &usersvc.UserDTO{}, nil
}

func (stubUsersService) SetBlocked(context.Context, uuid.UUID, bool) (*usersvc.UserDTO, error) {
	return &usersvc.UserDTO{}, nil
}

func (stubUsersService) List(context.Context, int) ([]usersvc.UserDTO, error) { return nil, nil }

type stubLotsService struct{}

func (stubLotsService) Create(context.Context, uuid.UUID, enums.SubscriptionPlan, lotsvc.CreateLotRequest) (*lotsvc.LotDTO, error) {
	return &lotsvc.LotDTO{}, nil
}

func (stubLotsService) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (stubLotsService) SetFeatured(context.Context, uuid.UUID, bool) (*lotsvc.LotDTO, error) {
	return &lotsvc.LotDTO{}, nil
}

func (stubLotsService) Transition(context.Context, uuid.UUID, uuid.UUID, enums.LotStatus) (*lotsvc.LotDTO, error) {
	return &lotsvc.LotDTO{}, nil
}

func (stubLotsService) Get(context.Context, uuid.UUID, uuid.UUID) (*lotsvc.LotDTO, error) {
	return &lotsvc.LotDTO{}, nil
}

func (stubLotsService) ListPublic(context.Context, pagination.Params) (*lotsvc.Page, error) {
	return &lotsvc.Page{Items: []lotsvc.LotDTO{}}, nil
}

func (stubLotsService) ListByProducer(context.Context, uuid.UUID, int) ([]lotsvc.LotDTO, error) {
	return nil, nil
}

type stubInterestsService struct{}

func (stubInterestsService) Express(context.Context, uuid.UUID, uuid.UUID) (*interestsvc.InterestDTO, error) {
	return &interestsvc.InterestDTO{}, nil
}

func (stubInterestsService) ListByLot(context.Context, uuid.UUID, uuid.UUID) ([]interestsvc.InterestDTO, error) {
	return nil, nil
}

func (stubInterestsService) ListByBuyer(context.Context, uuid.UUID, int) ([]interestsvc.InterestDTO, error) {
	return nil, nil
}

type stubNegotiationsService struct{}

func (stubNegotiationsService) ListSessions(context.Context, uuid.UUID, int) ([]negsvc.SessionDTO, error) {
	return nil, nil
}

func (stubNegotiationsService) GetSession(context.Context, uuid.UUID, uuid.UUID) (*negsvc.SessionDTO, error) {
	return &negsvc.SessionDTO{}, nil
}

func (stubNegotiationsService) ListMessages(context.Context, uuid.UUID, uuid.UUID) ([]negsvc.MessageDTO, error) {
	return nil, nil
}

func (stubNegotiationsService) SendMessage(context.Context, uuid.UUID, uuid.UUID, negsvc.SendMessageRequest) (*negsvc.MessageDTO, error) {
	return &negsvc.MessageDTO{}, nil
}

func (stubNegotiationsService) CloseDeal(context.Context, uuid.UUID, uuid.UUID) (*negsvc.SessionDTO, error) {
	return &negsvc.SessionDTO{}, nil
}

type stubMarketService struct{}

func (stubMarketService) ListQuotes(context.Context) ([]marketsvc.QuoteDTO, error) { return nil, nil }

func (stubMarketService) UpdateQuote(context.Context, marketsvc.UpdateQuoteRequest) (*marketsvc.QuoteDTO, error) {
	return &marketsvc.QuoteDTO{}, nil
}

func (stubMarketService) CreateAlert(context.Context, uuid.UUID, marketsvc.CreateAlertRequest) (*marketsvc.AlertDTO, error) {
	return &marketsvc.AlertDTO{}, nil
}

func (stubMarketService) DeleteAlert(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (stubMarketService) ListAlerts(context.Context, uuid.UUID) ([]marketsvc.AlertDTO, error) {
	return nil, nil
}

func (stubMarketService) EvaluateAlerts(context.Context) (int, error) { return 0, nil }

func (stubMarketService) Suggestion(context.Context) (*marketsvc.SuggestionDTO, error) {
	return &marketsvc.SuggestionDTO{}, nil
}

func (stubMarketService) Indicator(context.Context) (*marketsvc.IndicatorDTO, error) {
	return &marketsvc.IndicatorDTO{}, nil
}

func (stubMarketService) RefreshIndicator(context.Context) (*marketsvc.IndicatorDTO, error) {
	return &marketsvc.IndicatorDTO{}, nil
}

type stubInventoryService struct{}

func (stubInventoryService) Create(context.Context, uuid.UUID, inventorysvc.CreateItemRequest) (*inventorysvc.ItemDTO, error) {
	return &inventorysvc.ItemDTO{}, nil
}

func (stubInventoryService) Update(context.Context, uuid.UUID, uuid.UUID, inventorysvc.UpdateItemRequest) (*inventorysvc.ItemDTO, error) {
	return &inventorysvc.ItemDTO{}, nil
}

func (stubInventoryService) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (stubInventoryService) List(context.Context, uuid.UUID) ([]inventorysvc.ItemDTO, error) {
	return nil, nil
}

func (stubInventoryService) Valuation(context.Context, uuid.UUID) (*inventorysvc.ValuationDTO, error) {
	return &inventorysvc.ValuationDTO{}, nil
}

type stubTipsService struct{}

func (stubTipsService) List(context.Context, string) ([]tipsvc.TipDTO, error) { return nil, nil }

func (stubTipsService) Create(context.Context, tipsvc.CreateTipRequest) (*tipsvc.TipDTO, error) {
	return &tipsvc.TipDTO{}, nil
}

func testRouter(t *testing.T) (http.Handler, config.JWTConfig) {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "secret", Issuer: "cafeconecta", ExpirationMinutes: 10}

	router := NewRouter(RouterParams{
		Config:         cfg,
		Logger:         logger.New(logger.Options{ServiceName: "router-test"}),
		SessionChecker: stubSessionChecker{},
		Auth:           stubAuthService{},
		Register:       stubRegisterService{},
		Users:          stubUsersService{},
		Lots:           stubLotsService{},
		Interests:      stubInterestsService{},
		Negotiations:   stubNegotiationsService{},
		Market:         stubMarketService{},
		Inventory:      stubInventoryService{},
		Tips:           stubTipsService{},
	})
	return router, cfg.JWT
}

func mintToken(t *testing.T, cfg config.JWTConfig, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		Plan:   enums.SubscriptionPlanFree,
	})
	require.NoError(t, err)
	return token
}

func do(router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPublicRoutesNeedNoToken(t *testing.T) {
	router, _ := testRouter(t)

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/public/ping", "").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/public/v1/lots", "").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/public/v1/market/quotes", "").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/public/v1/tips", "").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/health/live", "").Code)
}

func TestPrivateRoutesRejectMissingToken(t *testing.T) {
	router, _ := testRouter(t)

	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, "/api/ping", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, "/api/v1/negotiations", "").Code)
}

func TestProducerRoutesRejectBuyers(t *testing.T) {
	router, jwtCfg := testRouter(t)
	buyer := mintToken(t, jwtCfg, enums.UserRoleBuyer)

	assert.Equal(t, http.StatusForbidden, do(router, http.MethodGet, "/api/v1/lots/mine", buyer).Code)
	assert.Equal(t, http.StatusForbidden, do(router, http.MethodGet, "/api/v1/inventory/", buyer).Code)
	assert.Equal(t, http.StatusForbidden, do(router, http.MethodGet, "/api/v1/market/alerts", buyer).Code)
}

func TestBuyerRoutesRejectProducers(t *testing.T) {
	router, jwtCfg := testRouter(t)
	producer := mintToken(t, jwtCfg, enums.UserRoleProducer)

	assert.Equal(t, http.StatusForbidden, do(router, http.MethodGet, "/api/v1/interests", producer).Code)
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	router, jwtCfg := testRouter(t)
	producer := mintToken(t, jwtCfg, enums.UserRoleProducer)
	admin := mintToken(t, jwtCfg, enums.UserRoleAdmin)

	assert.Equal(t, http.StatusForbidden, do(router, http.MethodGet, "/api/admin/v1/users", producer).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/admin/v1/users", admin).Code)
	assert.Equal(t, http.StatusForbidden, do(router, http.MethodPost, "/api/admin/v1/lots/"+uuid.NewString()+"/featured", producer).Code)
}

func TestAuthenticatedProducerReachesOwnedRoutes(t *testing.T) {
	router, jwtCfg := testRouter(t)
	producer := mintToken(t, jwtCfg, enums.UserRoleProducer)

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/ping", producer).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/v1/lots/mine", producer).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/v1/users/me", producer).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/v1/market/suggestion", producer).Code)
}
