// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"skillswap/cache"
	"skillswap/config"
	"skillswap/meeting"
	"skillswap/middleware"
	"skillswap/models"
	"skillswap/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config       *config.Config
	db           *gorm.DB
	redis        *redis.Client
	userRepo     repository.UserRepository
	skillRepo    repository.SkillRepository
	ledgerRepo   repository.LedgerRepository
	swapRepo     repository.SwapRequestRepository
	sessionRepo  repository.SessionRepository
	progressRepo repository.ProgressRepository
	meetings     meeting.Generator
}

// New creates a server instance over an already-connected database. Redis
// may be nil; caching and rate limiting then fail open.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	return &Server{
		config:       cfg,
		db:           db,
		redis:        redisClient,
		userRepo:     repository.NewUserRepository(db),
		skillRepo:    repository.NewSkillRepository(db),
		ledgerRepo:   repository.NewLedgerRepository(db),
		swapRepo:     repository.NewSwapRequestRepository(db),
		sessionRepo:  repository.NewSessionRepository(db),
		progressRepo: repository.NewProgressRepository(db),
		meetings:     meeting.NewJitsiGenerator(),
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Request ID for tracing
	app.Use(requestid.New())

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware
	app.Use(middleware.StructuredLogger())

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health check
	api.Get("/", s.HealthCheck)

	// Metrics endpoint
	api.Get("/metrics", monitor.New(monitor.Config{
		Title: "SkillSwap Backend Metrics",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	// Ledger routes before generic /:id
	users.Post("/me/skills/teach", s.AddTeachSkill)
	users.Get("/me/skills/teach", s.GetTeachSkills)
	users.Delete("/me/skills/teach/:skillId", s.RemoveTeachSkill)
	users.Post("/me/skills/learn", s.AddLearnSkill)
	users.Get("/me/skills/learn", s.GetLearnSkills)
	users.Delete("/me/skills/learn/:skillId", s.RemoveLearnSkill)
	users.Get("/:id", s.GetUserProfile)

	// Skill catalog routes
	skills := protected.Group("/skills")
	skills.Get("/", s.GetSkills)
	skills.Get("/search", middleware.RateLimit(s.redis, 10, time.Minute, "skill_search"), s.SearchSkills)
	skills.Get("/category/:category", s.GetSkillsByCategory)

	// Matching routes
	matches := protected.Group("/matches")
	matches.Get("/", s.GetMatches)
	matches.Get("/categorized", s.GetCategorizedMatches)
	matches.Get("/skill/:skillId", s.GetUsersForSkill)

	// Swap request routes
	swaps := protected.Group("/swap-requests")
	swaps.Post("/", middleware.RateLimit(s.redis, 5, 5*time.Minute, "swap_request"), s.CreateSwapRequest)
	swaps.Get("/sent", s.GetSentRequests)
	swaps.Get("/received", s.GetReceivedRequests)
	swaps.Post("/:requestId/accept", s.AcceptSwapRequest)
	swaps.Post("/:requestId/reject", s.RejectSwapRequest)
	swaps.Post("/:requestId/cancel", s.CancelSwapRequest)
	swaps.Get("/:requestId", s.GetSwapRequest)

	// Session routes
	sessions := protected.Group("/sessions")
	sessions.Get("/", s.GetSessions)
	sessions.Get("/categorized", s.GetCategorizedSessions)
	sessions.Put("/:sessionId/schedule", s.ScheduleSession)
	sessions.Put("/:sessionId/start", s.StartSession)
	sessions.Put("/:sessionId/meeting-url", s.AddMeetingURL)
	sessions.Put("/:sessionId/notes", s.UpdateSessionNotes)
	sessions.Put("/:sessionId/resources", s.AddSharedResources)
	sessions.Put("/:sessionId/feedback", s.SubmitFeedback)
	sessions.Put("/:sessionId/complete", s.CompleteSession)
	sessions.Put("/:sessionId/mark-completed", s.MarkSessionCompleted)
	sessions.Get("/:sessionId/meeting", s.GetMeetingDetails)
	sessions.Get("/:sessionId", s.GetSession)
}

// HealthCheck handles health check requests
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "SkillSwap",
		"version": "1.0.0",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "skillswap-api" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "skillswap-client" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}

		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		c.Locals("userID", uint(userID))

		return c.Next()
	}
}

// invalidateMatchCache drops a user's cached match results after a ledger write.
func (s *Server) invalidateMatchCache(ctx context.Context, userID uint) {
	cache.Delete(ctx, cache.MatchKey(userID))
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	_ = ctx

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
