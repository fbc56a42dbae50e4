package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/likelemba/likelemba/internal/auth"
	"github.com/likelemba/likelemba/internal/circle"
	"github.com/likelemba/likelemba/internal/config"
	"github.com/likelemba/likelemba/internal/middleware"
	"github.com/likelemba/likelemba/internal/notification"
	"github.com/likelemba/likelemba/internal/user"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though config also checks.
	if !d.Cfg.Dev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories fall back to in-memory implementations in dev when no
	// database is configured.
	var userRepo user.Repository
	if d.DB != nil {
		userRepo = user.NewPostgresRepository(d.DB)
	} else {
		userRepo = user.NewMemoryRepository()
	}
	userSvc := user.NewService(userRepo)

	var circleStore circle.Store
	if d.DB != nil {
		circleStore = circle.NewPostgresStore(d.DB)
	} else {
		circleStore = circle.NewMemoryStore()
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	circleSvc := circle.NewService(circleStore, userSvc, notifier)
	circleHandler := circle.NewHandler(circleSvc)

	authSvc := auth.NewService(d.Cfg, userRepo)
	authHandler := auth.NewHandler(userSvc, authSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	jwtmw := middleware.JWTAuth(d.Cfg, userRepo)
	RegisterCircleRoutes(api, circleHandler, jwtmw)

	// Protected routes
	protected := api.Group("", jwtmw)
	RegisterUserRoutes(protected, userSvc, authHandler)

	return nil
}

