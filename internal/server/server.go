// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"fetchfolio/internal/cache"
	"fetchfolio/internal/config"
	"fetchfolio/internal/database"
	"fetchfolio/internal/middleware"
	"fetchfolio/internal/models"
	"fetchfolio/internal/repository"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	dogRepo        repository.DogRepository
	commandRepo    repository.CommandRepository
	eventRepo      repository.EventRepository
	referenceRepo  repository.ReferenceRepository
	resolver       *repository.OwnershipResolver
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	dogRepo := repository.NewDogRepository(db)
	commandRepo := repository.NewCommandRepository(db)
	eventRepo := repository.NewEventRepository(db)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("fetchfolio-api"),
		userRepo:       repository.NewUserRepository(db),
		dogRepo:        dogRepo,
		commandRepo:    commandRepo,
		eventRepo:      eventRepo,
		referenceRepo:  repository.NewReferenceRepository(db),
		resolver:       repository.NewOwnershipResolver(dogRepo, commandRepo, eventRepo),
	}

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and username
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Tracing spans per request when the exporter is configured
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
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

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	// Identity resolution: resolves the bearer token into a user or leaves
	// the request anonymous. Authorization happens per handler via the policy.
	app.Use(middleware.ResolveIdentity(s.config.JWTSecret, s.userRepo))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)

	// User routes ("current" addresses the authenticated user)
	users := api.Group("/users")
	users.Get("/current", s.GetCurrentUser)
	users.Patch("/current", s.UpdateCurrentUser)
	users.Put("/current/password", s.UpdatePassword)
	users.Delete("/current", s.DeleteCurrentUser)

	// Dog routes. Specific /current routes before the generic /:dogId route.
	dogs := api.Group("/dogs")
	dogs.Get("/current", s.ListMyDogs)
	dogs.Post("/current", s.CreateDog)
	dogs.Patch("/current/:dogId", s.UpdateDog)
	dogs.Delete("/current/:dogId", s.DeleteDog)
	dogs.Get("/", s.ListPublicDogs)

	// Command routes, nested under the owning dog
	commands := dogs.Group("/current/:dogId/commands")
	commands.Get("/", s.ListCommands)
	commands.Post("/", s.CreateCommand)
	commands.Get("/:commandId", s.GetCommand)
	commands.Patch("/:commandId", s.UpdateCommand)
	commands.Delete("/:commandId", s.DeleteCommand)

	// Command note routes, nested under the owning command
	notes := commands.Group("/:commandId/notes")
	notes.Get("/", s.ListCommandNotes)
	notes.Post("/", s.CreateCommandNote)
	notes.Patch("/:noteId", s.UpdateCommandNote)
	notes.Delete("/:noteId", s.DeleteCommandNote)

	// Event routes, nested under the owning dog
	events := dogs.Group("/current/:dogId/events")
	events.Get("/", s.ListEvents)
	events.Post("/", s.CreateEvent)
	events.Get("/:eventId", s.GetEvent)
	events.Patch("/:eventId", s.UpdateEvent)
	events.Delete("/:eventId", s.DeleteEvent)

	// Generic dog detail route must come after the nested groups
	dogs.Get("/:dogId", s.GetDog)

	// Reference data (read-only, seeded at bootstrap)
	reference := api.Group("/reference")
	reference.Get("/command-types", s.GetCommandTypes)
	reference.Get("/event-types", s.GetEventTypes)
	reference.Get("/command-templates", s.GetCommandTemplates)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional: the app degrades to uncached, unthrottled operation.
	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "FetchFolio API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
