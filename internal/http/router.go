package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/searchhub/searchhub/internal/auth"
	"github.com/searchhub/searchhub/internal/cache"
	"github.com/searchhub/searchhub/internal/config"
	"github.com/searchhub/searchhub/internal/domain/history"
	"github.com/searchhub/searchhub/internal/domain/user"
	"github.com/searchhub/searchhub/internal/http/handlers"
	"github.com/searchhub/searchhub/internal/http/middlewares"
	"github.com/searchhub/searchhub/internal/observability"
	"github.com/searchhub/searchhub/internal/redisclient"
	"github.com/searchhub/searchhub/internal/search"
)

// UsersStore is what the router needs from a users repository; both the
// postgres and the in-memory implementations satisfy it.
type UsersStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
}

type HistoryStore interface {
	Append(ctx context.Context, owner, query string, ts time.Time) error
	ListByOwner(ctx context.Context, owner string) ([]history.Entry, error)
	Clear(ctx context.Context, owner string) error
	ListAll(ctx context.Context) ([]history.Entry, error)
}

// Deps carries everything the router wires together. Users and History are
// required; the rest degrade gracefully when nil (no metrics route without
// a Registry, no tracing middleware without Tracing, memory rate-limit
// counters without Redis, provider built from config when Provider is nil).
type Deps struct {
	Cfg config.Config
	Log *slog.Logger

	Users   UsersStore
	History HistoryStore

	// Provider overrides the Google client; tests inject fakes here.
	Provider search.Provider

	Prom     *observability.Prom
	Registry *prometheus.Registry
	Tracing  bool

	Pool  *pgxpool.Pool
	Redis *redisclient.Client
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.RequireJSON())

	if d.Tracing {
		r.Use(otelgin.Middleware("searchhub"))
	}

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	// health + readiness

	pings := map[string]func(ctx context.Context) error{}

	if d.Pool != nil {
		pool := d.Pool
		pings["postgres"] = func(ctx context.Context) error { return pool.Ping(ctx) }
	}

	if d.Redis != nil {
		rdb := d.Redis
		pings["redis"] = rdb.Ping
	}

	healthHandler := handlers.NewHealthHandler(pings)
	r.GET("/readyz", healthHandler.Readyz)

	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	// upstream provider chain

	provider := d.Provider

	if provider == nil {
		provider = search.NewProtectedProvider(
			search.NewGoogleClient(d.Cfg.GoogleAPIKey, d.Cfg.GoogleCSEID, d.Cfg.UpstreamTimeout),
			search.ProtectedProviderConfig{Timeout: d.Cfg.UpstreamTimeout},
		)
	}

	if d.Prom != nil {
		provider = search.NewInstrumentedProvider(provider, d.Prom)
	}

	searchService := search.NewService(provider, d.History, cache.New(30*time.Second))

	// auth + rate limiting

	jwtManager := auth.NewManager(d.Cfg.JWTSecret, d.Cfg.UserTokenTTL, d.Cfg.AdminTokenTTL)
	authMiddleware := middlewares.NewAuthMiddleware(jwtManager)

	var counterStore middlewares.CounterStore
	if d.Redis != nil {
		counterStore = middlewares.NewRedisCounterStore(d.Redis.Raw())
	}

	limiter := middlewares.NewRateLimiter(d.Cfg.RateLimitMax, d.Cfg.RateLimitWindow, counterStore)

	if d.Prom != nil {
		prom := d.Prom
		limiter.OnReject(func(route string) {
			prom.RateLimitedTotal.WithLabelValues(route).Inc()
		})
	}

	limited := limiter.Middleware(middlewares.KeyByIP)

	// handlers

	authHandler := handlers.NewAuthHandler(d.Users, jwtManager)
	searchHandler := handlers.NewSearchHandler(searchService)
	historyHandler := handlers.NewHistoryHandler(d.History)
	adminHandler := handlers.NewAdminUsersHandler(d.Users, d.History)

	api := r.Group("/api")

	api.GET("/health", healthHandler.Healthz)

	// limiter covers login and search only
	api.POST("/login", limited, authHandler.Login)
	api.POST("/admin/login", authHandler.AdminLogin)
	api.POST("/search", limited, authMiddleware.RequireAuth(), searchHandler.Search)

	api.GET("/history", authMiddleware.RequireAuth(), historyHandler.List)
	api.DELETE("/history", authMiddleware.RequireAuth(), historyHandler.Clear)

	api.GET("/admin/users",
		authMiddleware.RequireAuth(),
		authMiddleware.RequireRole(auth.RoleAdmin),
		adminHandler.List,
	)

	return r
}
