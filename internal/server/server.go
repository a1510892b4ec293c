// Package server exposes the Warbler operations over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "warbler/docs" // swagger docs
	"warbler/internal/authz"
	"warbler/internal/cache"
	"warbler/internal/config"
	"warbler/internal/featureflags"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/repository"
	"warbler/internal/service"
	"warbler/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config              *config.Config
	db                  *gorm.DB
	redis               *redis.Client
	app                 *fiber.App
	promMiddleware      *fiberprometheus.FiberPrometheus
	sessions            *fibersession.Store
	resolver            *session.Resolver
	tokens              *session.TokenManager
	featureFlags        *featureflags.Manager
	userService         *service.UserService
	messageService      *service.MessageService
	relationshipService *service.RelationshipService
}

// NewServerWithDeps creates a Server from initialized dependencies.
// redisClient may be nil: sessions then live in memory and tokens cannot be
// revoked.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("config and database are required")
	}

	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	followRepo := repository.NewFollowRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	feedRepo := repository.NewFeedRepository(db)

	flags := featureflags.NewManager(cfg.FeatureFlags)
	guard := authz.NewGuard(flags)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(observability.ServiceName),
		resolver:       session.NewResolver(userRepo),
		tokens:         session.NewTokenManager(cfg.JWTSecret, redisClient),
		featureFlags:   flags,
		userService:    service.NewUserService(userRepo, messageRepo, guard),
		messageService: service.NewMessageService(messageRepo, guard),
		relationshipService: service.NewRelationshipService(
			userRepo, messageRepo, followRepo, likeRepo, feedRepo, guard, cfg.FeedLimit),
	}
	s.sessions = s.newSessionStore()
	return s, nil
}

func (s *Server) newSessionStore() *fibersession.Store {
	cookieName := s.config.SessionCookieName
	if cookieName == "" {
		cookieName = "warbler_session"
	}
	expiration := time.Duration(s.config.SessionExpirationHours) * time.Hour
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}

	cfg := fibersession.Config{
		Expiration:     expiration,
		KeyLookup:      "cookie:" + cookieName,
		CookieHTTPOnly: true,
		CookieSecure:   s.config.IsProduction(),
		CookieSameSite: "Lax",
	}
	if s.redis != nil {
		cfg.Storage = cache.NewSessionStorage(s.redis)
	}
	return fibersession.New(cfg)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))

	app.Use(s.IdentityMiddleware())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Warbler API Metrics",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)

	api.Get("/feed", s.GetFeed)

	// Static segments are registered before /:id.
	users := api.Group("/users")
	users.Get("/", s.SearchUsers)
	users.Post("/profile", s.UpdateProfile)
	users.Post("/delete", s.DeleteAccount)
	users.Post("/follow/:id", s.FollowUser)
	users.Post("/stop-following/:id", s.StopFollowing)
	users.Post("/add_like/:id", s.ToggleLike)
	users.Get("/:id/following", s.GetFollowing)
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id/likes", s.GetLikes)
	users.Get("/:id", s.GetUser)

	messages := api.Group("/messages")
	messages.Post("/new", middleware.RateLimit(s.redis, 30, time.Minute, "create_message"), s.CreateMessage)
	messages.Post("/:id/delete", s.DeleteMessage)
	messages.Post("/:id/like", s.LikeMessage)
	messages.Delete("/:id/like", s.UnlikeMessage)
	messages.Get("/:id", s.GetMessage)
}

// App builds the Fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "Warbler API",
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code == fiber.StatusNotFound {
			return models.RespondWithError(c, fe.Code, models.NewNotFoundError("Route", c.Path()))
		}
		if fe.Code < fiber.StatusInternalServerError {
			return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
		}
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests and waits for in-flight ones. The
// database and Redis connections belong to the caller.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app == nil {
		return nil
	}
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	middleware.Logger.Info("server shutdown complete")
	return nil
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional, so
// only an unhealthy database makes the server unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	} else if redisStatus != "healthy" {
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"flags": s.featureFlags.Raw(),
		"time":  time.Now(),
	})
}

func bearerToken(c *fiber.Ctx) string {
	scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
	if !ok || scheme != "Bearer" {
		return ""
	}
	return strings.TrimSpace(token)
}
