package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-api/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-api/internal/catalog"
	"github.com/vasiliy-maslov/ecommerce-api/internal/config"
	"github.com/vasiliy-maslov/ecommerce-api/internal/coupon"
	"github.com/vasiliy-maslov/ecommerce-api/internal/db"
	apiHttp "github.com/vasiliy-maslov/ecommerce-api/internal/handler/http"
	"github.com/vasiliy-maslov/ecommerce-api/internal/order"
	"github.com/vasiliy-maslov/ecommerce-api/internal/product"
	"github.com/vasiliy-maslov/ecommerce-api/internal/ratelimit"
	"github.com/vasiliy-maslov/ecommerce-api/internal/review"
	"github.com/vasiliy-maslov/ecommerce-api/internal/user"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	setupLogger(cfg)
	log.Info().Str("env", cfg.App.Env).Msg("ecommerce-api starting...")

	ctx := context.Background()

	pg, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	if cfg.Postgres.AutoMigrate {
		if err := db.Migrate(pg.Pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	redisClient, err := ratelimit.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	var counter ratelimit.Counter
	if redisClient != nil {
		defer redisClient.Close()
		counter = redisClient
	} else {
		log.Warn().Msg("REDIS_ADDR not set, rate limiting disabled")
	}
	limiter := ratelimit.New(counter, cfg.Redis.RateLimit, cfg.Redis.Window)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	userSvc := user.NewService(user.NewRepository(pg.Pool), cfg.Auth.AdminEmails)
	categorySvc := catalog.NewService(catalog.KindCategory, catalog.NewRepository(pg.Pool, catalog.KindCategory))
	brandSvc := catalog.NewService(catalog.KindBrand, catalog.NewRepository(pg.Pool, catalog.KindBrand))
	colorSvc := catalog.NewService(catalog.KindColor, catalog.NewRepository(pg.Pool, catalog.KindColor))
	productSvc := product.NewService(product.NewRepository(pg.Pool), categorySvc, brandSvc)
	reviewSvc := review.NewService(review.NewRepository(pg.Pool), productSvc)
	couponSvc := coupon.NewService(coupon.NewRepository(pg.Pool))
	orderSvc := order.NewService(order.NewRepository(pg.Pool), userSvc, productSvc, couponSvc)

	router := apiHttp.NewRouter(apiHttp.Handlers{
		Users:      apiHttp.NewUserHandler(userSvc, orderSvc, tokens),
		Products:   apiHttp.NewProductHandler(productSvc, reviewSvc),
		Categories: apiHttp.NewCatalogHandler(categorySvc),
		Brands:     apiHttp.NewCatalogHandler(brandSvc),
		Colors:     apiHttp.NewCatalogHandler(colorSvc),
		Reviews:    apiHttp.NewReviewHandler(reviewSvc),
		Orders:     apiHttp.NewOrderHandler(orderSvc),
		Coupons:    apiHttp.NewCouponHandler(couponSvc),
		Health:     pg.Pool,
	}, apiHttp.NewAuthenticator(tokens, userSvc), limiter.Middleware("auth"))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(router)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      corsHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("ecommerce-api stopped gracefully")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.App.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", cfg.App.Name).Logger()
}
