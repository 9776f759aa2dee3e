package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Mauthecat/tienda-sub000/internal/backend"
	"github.com/Mauthecat/tienda-sub000/internal/cache"
	h "github.com/Mauthecat/tienda-sub000/internal/http"
	"github.com/Mauthecat/tienda-sub000/internal/poller"
	"github.com/Mauthecat/tienda-sub000/internal/repository"
	s "github.com/Mauthecat/tienda-sub000/internal/service"
	"github.com/Mauthecat/tienda-sub000/internal/session"
	"github.com/Mauthecat/tienda-sub000/pkg/logger"
)

type Config struct {
	HTTPPort        string
	Env             string
	BackendAPIURL   string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	RequestTimeout  time.Duration
	BackendTimeout  time.Duration
	SessionTTL      time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		Env:             getEnv("APP_ENV", "dev"),
		BackendAPIURL:   getEnv("BACKEND_API_URL", "http://localhost:8000"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "storefront"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		RequestTimeout:  30 * time.Second,
		BackendTimeout:  15 * time.Second,
		SessionTTL:      7 * 24 * time.Hour,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	zlog, err := logger.New("storefront", cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	ctx := context.Background()

	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		zlog.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	repo := repository.NewMongoRepository(mongoDB)
	zlog.Info("connected to MongoDB", zap.String("uri", cfg.MongoURI))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		zlog.Fatal("redis connection failed", zap.Error(err))
	}
	zlog.Info("redis ping succeeded")

	api := backend.NewClient(cfg.BackendAPIURL, cfg.BackendTimeout)

	cartCache := cache.NewRedisCache(redisClient)
	carts := s.NewCartService(repo, cartCache)
	sessions := session.NewStore(redisClient, api, cfg.SessionTTL)
	checkout := s.NewCheckoutService(carts, sessions, api)
	tracking := s.NewTrackingService(sessions, api)
	favorites := s.NewFavoritesService(redisClient, api)
	catalog := s.NewCatalogService(redisClient, api)

	cartHandler := h.NewCartHandler(carts, cfg.RequestTimeout)
	sessionHandler := h.NewSessionHandler(sessions, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(checkout, cfg.RequestTimeout)
	trackingHandler := h.NewTrackingHandler(tracking, cfg.RequestTimeout)
	favoritesHandler := h.NewFavoritesHandler(favorites, sessions, cfg.RequestTimeout)
	catalogHandler := h.NewCatalogHandler(catalog, api, sessions, sessions, cfg.RequestTimeout)

	// payment confirmations clear carts even when the browser never
	// returns from the payment page
	confirmPoller := poller.NewPoller(repo, cartCache, cfg.KafkaBrokers...)
	pollerCtx, stopPoller := context.WithCancel(ctx)
	go confirmPoller.Run(pollerCtx)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestLogger(zlog))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", catalogHandler.Products)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
		})

		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.Current)
			r.Post("/login", sessionHandler.Login)
			r.Post("/register", sessionHandler.Register)
			r.Post("/logout", sessionHandler.Logout)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/quote", checkoutHandler.Quote)
			r.Get("/prefill", checkoutHandler.Prefill)
			r.Post("/", checkoutHandler.Submit)
			r.Post("/confirm", checkoutHandler.Confirm)
		})

		r.Get("/shipping/regions", checkoutHandler.Regions)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", catalogHandler.Orders)
			r.Get("/track", trackingHandler.Track)
			r.Post("/retry-payment", trackingHandler.RetryPayment)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", favoritesHandler.List)
			r.Post("/toggle", favoritesHandler.Toggle)
		})

		r.Get("/profile", catalogHandler.Profile)
		r.Post("/profile", catalogHandler.UpdateProfile)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zlog.Info("storefront listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down storefront...")
	stopPoller()
	confirmPoller.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}

	if err := mongoDB.Client().Disconnect(ctx); err != nil {
		zlog.Warn("mongo disconnect failed", zap.Error(err))
	}
	zlog.Info("storefront stopped")
}
