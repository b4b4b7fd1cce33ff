package app

import (
	"errors"
	"log/slog"
	"net/http"

	"schoolauth/internal/config"
	"schoolauth/internal/middleware"
	"schoolauth/internal/modules/auth"
	jwtsvc "schoolauth/internal/pkg/jwt"
	"schoolauth/internal/repository"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var ErrRedisRequired = errors.New("refresh store is redis but no redis client was provided")

// Deps are the connections the process opened at startup.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  redis.UniversalClient
	Logger *slog.Logger
}

// App holds the wired services and the HTTP router.
type App struct {
	Router  *gin.Engine
	Auth    *auth.Service
	Refresh *auth.RefreshTokenService
}

func New(deps Deps) (*App, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	jwtService, err := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	if err != nil {
		return nil, err
	}

	tokenRepo, err := refreshTokenRepository(deps)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(deps.DB)
	refreshService := auth.NewRefreshTokenService(tokenRepo, cfg.RefreshTTL, cfg.RefreshTokenPepper)
	authService := auth.NewService(userRepo, jwtService, refreshService)
	authHandler := auth.NewHandler(authService, logger)

	r := gin.New()
	r.Use(requestid.New(requestid.WithCustomHeaderStrKey("X-Request-Id")))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler.RegisterPublicRoutes(r, middleware.OptionalAuth(jwtService, userRepo))

	protected := r.Group("")
	protected.Use(middleware.JWTAuth(jwtService, userRepo))
	{
		authHandler.RegisterProtectedRoutes(protected)
	}

	return &App{
		Router:  r,
		Auth:    authService,
		Refresh: refreshService,
	}, nil
}

func refreshTokenRepository(deps Deps) (auth.RefreshTokenRepository, error) {
	if deps.Config.RefreshStore == config.RefreshStoreRedis {
		if deps.Redis == nil {
			return nil, ErrRedisRequired
		}
		return repository.NewRedisRefreshTokenRepository(deps.Redis, deps.Config.RedisPrefix), nil
	}
	return repository.NewRefreshTokenRepository(deps.DB), nil
}
