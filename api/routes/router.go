package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cafeconecta/cafeconecta-backend/api/controllers"
	"github.com/cafeconecta/cafeconecta-backend/api/middleware"
	authsvc "github.com/cafeconecta/cafeconecta-backend/internal/auth"
	interestsvc "github.com/cafeconecta/cafeconecta-backend/internal/interests"
	inventorysvc "github.com/cafeconecta/cafeconecta-backend/internal/inventory"
	lotsvc "github.com/cafeconecta/cafeconecta-backend/internal/lots"
	marketsvc "github.com/cafeconecta/cafeconecta-backend/internal/market"
	negsvc "github.com/cafeconecta/cafeconecta-backend/internal/negotiations"
	tipsvc "github.com/cafeconecta/cafeconecta-backend/internal/tips"
	usersvc "github.com/cafeconecta/cafeconecta-backend/internal/users"
	"github.com/cafeconecta/cafeconecta-backend/pkg/auth/session"
	"github.com/cafeconecta/cafeconecta-backend/pkg/config"
	"github.com/cafeconecta/cafeconecta-backend/pkg/db"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
	"github.com/cafeconecta/cafeconecta-backend/pkg/logger"
	"github.com/cafeconecta/cafeconecta-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP router mounts.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             *db.Client
	Redis          *redis.Client
	SessionChecker session.AccessSessionChecker
	Auth           authsvc.Service
	Register       authsvc.RegisterService
	Users          usersvc.Service
	Lots           lotsvc.Service
	Interests      interestsvc.Service
	Negotiations   negsvc.Service
	Market         marketsvc.Service
	Inventory      inventorysvc.Service
	Tips           tipsvc.Service
}

// NewRouter assembles the chi router with the full middleware chain and all
// marketplace endpoints.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.DB, p.Redis, logg))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/v1/lots", controllers.ListPublicLots(p.Lots, logg))
		r.Get("/v1/market/quotes", controllers.ListQuotes(p.Market, logg))
		r.Get("/v1/tips", controllers.ListTips(p.Tips, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(p.Register, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))

		r.Get("/ping", controllers.PrivatePing())
		r.Post("/v1/auth/logout", controllers.AuthLogout(p.Auth, logg))

		r.Route("/v1/users", func(r chi.Router) {
			r.Get("/me", controllers.Me(p.Users, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleProducer), logg)).
				Post("/me/plan", controllers.UpgradePlan(p.Users, logg))
		})

		r.Route("/v1/lots", func(r chi.Router) {
			r.Get("/{lotId}", controllers.GetLot(p.Lots, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.UserRoleProducer), logg))
				r.Post("/", controllers.CreateLot(p.Lots, logg))
				r.Get("/mine", controllers.ListMyLots(p.Lots, logg))
				r.Delete("/{lotId}", controllers.DeleteLot(p.Lots, logg))
				r.Post("/{lotId}/transition", controllers.TransitionLot(p.Lots, logg))
				r.Get("/{lotId}/interests", controllers.ListLotInterests(p.Interests, logg))
			})

			r.With(middleware.RequireRole(string(enums.UserRoleBuyer), logg)).
				Post("/{lotId}/interest", controllers.ExpressInterest(p.Interests, logg))
		})

		r.With(middleware.RequireRole(string(enums.UserRoleBuyer), logg)).
			Get("/v1/interests", controllers.ListMyInterests(p.Interests, logg))

		r.Route("/v1/negotiations", func(r chi.Router) {
			r.Get("/", controllers.ListSessions(p.Negotiations, logg))
			r.Get("/{sessionId}", controllers.GetSession(p.Negotiations, logg))
			r.Get("/{sessionId}/messages", controllers.ListSessionMessages(p.Negotiations, logg))
			r.Post("/{sessionId}/messages", controllers.SendSessionMessage(p.Negotiations, logg))
			r.Post("/{sessionId}/close", controllers.CloseDeal(p.Negotiations, logg))
		})

		r.Route("/v1/market", func(r chi.Router) {
			r.Get("/suggestion", controllers.MarketSuggestion(p.Market, logg))
			r.Get("/indicator", controllers.MarketIndicator(p.Market, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.UserRoleProducer), logg))
				r.Get("/alerts", controllers.ListAlerts(p.Market, logg))
				r.Post("/alerts", controllers.CreateAlert(p.Market, logg))
				r.Delete("/alerts/{alertId}", controllers.DeleteAlert(p.Market, logg))
			})
		})

		r.Route("/v1/inventory", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleProducer), logg))
			r.Get("/", controllers.ListInventory(p.Inventory, logg))
			r.Post("/", controllers.CreateInventoryItem(p.Inventory, logg))
			r.Patch("/{itemId}", controllers.UpdateInventoryItem(p.Inventory, logg))
			r.Delete("/{itemId}", controllers.DeleteInventoryItem(p.Inventory, logg))
			r.Get("/valuation", controllers.InventoryValuation(p.Inventory, logg))
		})

		r.Route("/admin/v1", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
			r.Get("/users", controllers.AdminListUsers(p.Users, logg))
			r.Post("/users/{userId}/block", controllers.AdminSetBlocked(p.Users, logg))
			r.Post("/lots/{lotId}/featured", controllers.AdminSetFeaturedLot(p.Lots, logg))
			r.Put("/market/quotes", controllers.AdminUpdateQuote(p.Market, logg))
			r.Post("/tips", controllers.AdminCreateTip(p.Tips, logg))
		})
	})

	return r
}
