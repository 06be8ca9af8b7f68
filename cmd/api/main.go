package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/cafeconecta/cafeconecta-backend/api/routes"
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
	"github.com/cafeconecta/cafeconecta-backend/pkg/gemini"
	"github.com/cafeconecta/cafeconecta-backend/pkg/logger"
	"github.com/cafeconecta/cafeconecta-backend/pkg/marketdata"
	"github.com/cafeconecta/cafeconecta-backend/pkg/migrate"
	"github.com/cafeconecta/cafeconecta-backend/pkg/outbox"
	"github.com/cafeconecta/cafeconecta-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	outboxService := outbox.NewService(outbox.NewRepository(conn), logg)
	usersRepo := usersvc.NewRepository(conn)
	lotsRepo := lotsvc.NewRepository(conn)
	negotiationsRepo := negsvc.NewRepository(conn)
	marketRepo := marketsvc.NewRepository(conn)

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := authsvc.NewRegisterService(authsvc.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	usersService, err := usersvc.NewService(usersvc.ServiceParams{Repo: usersRepo, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	lotsService, err := lotsvc.NewService(lotsvc.ServiceParams{
		DB:     dbClient,
		Repo:   lotsRepo,
		Outbox: outboxService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create lots service", err)
		os.Exit(1)
	}

	interestsService, err := interestsvc.NewService(interestsvc.ServiceParams{
		DB:       dbClient,
		Repo:     interestsvc.NewRepository(conn),
		Lots:     lotsRepo,
		Sessions: negotiationsRepo,
		Buyers:   usersRepo,
		Outbox:   outboxService,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create interests service", err)
		os.Exit(1)
	}

	var geminiClient *gemini.Client
	if cfg.Gemini.APIKey != "" {
		geminiClient, err = gemini.NewClient(cfg.Gemini.APIKey,
			gemini.WithBaseURL(cfg.Gemini.BaseURL),
			gemini.WithModel(cfg.Gemini.Model),
			gemini.WithHTTPClient(&http.Client{Timeout: cfg.Gemini.Timeout}),
		)
		if err != nil {
			logg.Error(context.Background(), "failed to create gemini client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "gemini api key missing, chat replies and suggestions fall back to templates")
	}

	scheduler := negsvc.NewScheduler(cfg.Chat.AutoReplyDelay)
	defer scheduler.Stop()

	negotiationsService, err := negsvc.NewService(negsvc.ServiceParams{
		DB:         dbClient,
		Repo:       negotiationsRepo,
		Lots:       lotsRepo,
		Outbox:     outboxService,
		Replier:    negsvc.NewAutoReplier(geminiClient, cfg.Chat.GeneratorTimeout, logg),
		Scheduler:  scheduler,
		ChatConfig: cfg.Chat,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create negotiations service", err)
		os.Exit(1)
	}

	marketParams := marketsvc.ServiceParams{
		DB:           dbClient,
		Repo:         marketRepo,
		Outbox:       outboxService,
		Cache:        redisClient,
		MarketConfig: cfg.Market,
		Logger:       logg,
	}
	if geminiClient != nil {
		marketParams.Generator = geminiClient
	}
	if cfg.Market.TwelveDataAPIKey != "" {
		feed, err := marketdata.NewClient(cfg.Market.TwelveDataAPIKey,
			marketdata.WithBaseURL(cfg.Market.TwelveDataBaseURL),
			marketdata.WithHTTPClient(&http.Client{Timeout: cfg.Market.FeedTimeout}),
		)
		if err != nil {
			logg.Error(context.Background(), "failed to create market feed client", err)
			os.Exit(1)
		}
		marketParams.Feed = feed
	} else {
		logg.Warn(context.Background(), "market feed api key missing, global indicator endpoint degraded")
	}

	marketService, err := marketsvc.NewService(marketParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create market service", err)
		os.Exit(1)
	}

	inventoryService, err := inventorysvc.NewService(inventorysvc.ServiceParams{
		Repo:   inventorysvc.NewRepository(conn),
		Quotes: marketRepo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	tipsService, err := tipsvc.NewService(tipsvc.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create tips service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			SessionChecker: sessionManager,
			Auth:           authService,
			Register:       registerService,
			Users:          usersService,
			Lots:           lotsService,
			Interests:      interestsService,
			Negotiations:   negotiationsService,
			Market:         marketService,
			Inventory:      inventoryService,
			Tips:           tipsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
