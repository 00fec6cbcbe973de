package router

import (
	"context"
	"log"

	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/handlers"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/middleware"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/repositories"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/services"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/session"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/pkg/config"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/pkg/firebase"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/pkg/ors"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(ctx context.Context, e *echo.Echo, db *config.DB, fbApp *firebase.App, cfg *config.Config) error {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	database := db.Mongo.Database("cosmic")

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(database)
	eventRepo := repositories.NewMongoEventRepository(database)
	friendRepo, err := repositories.NewMongoFriendRepository(ctx, database)
	if err != nil {
		return err
	}
	log.Println("Repositories initialized.")

	// --- Session bootstrap plumbing ---
	identity := firebase.NewIdentityClient(cfg.FirebaseWebAPIKey)
	credentialStore := session.NewRedisCredentialStore(db.Redis)
	bootstrapper := session.NewBootstrapper(identity, credentialStore)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, fbApp.AuthClient, identity, bootstrapper)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterUserRoutes(api.Group("/users"))
	log.Println("User profile routes configured.")

	// Event routes
	eventHandler := handlers.NewEventHandler(eventRepo)
	eventHandler.RegisterEventRoutes(api.Group("/events"))
	log.Println("Event routes configured.")

	// Live routes accept a provider ID token directly, so a client can open
	// the event stream before exchanging it for a local JWT.
	live := e.Group("/api/v1/live")
	live.Use(middleware.FirebaseAuthMiddleware(fbApp.AuthClient))
	live.GET("/events", eventHandler.CalendarStream)
	log.Println("Live event stream routes configured.")

	// Friendship routes
	friendService := services.NewFriendService(friendRepo, userRepo)
	friendshipHandler := handlers.NewFriendshipHandler(friendService)
	friendshipHandler.RegisterFriendshipRoutes(api.Group("/friends"))
	log.Println("Friendship routes configured.")

	// Feed routes
	feedService := services.NewFeedService(eventRepo, friendRepo, userRepo)
	feedHandler := handlers.NewFeedHandler(feedService)
	feedHandler.RegisterFeedRoutes(api.Group("/feed"))
	log.Println("Feed routes configured.")

	// Routing workflow routes
	orsClient := ors.NewClient(cfg.ORSAPIKey, cfg.ORSBaseURL)
	routeHandler := handlers.NewRouteHandler(orsClient, eventRepo)
	routeHandler.RegisterRouteRoutes(api.Group("/route"))
	log.Println("Routing workflow routes configured.")

	log.Println("All routes configured.")
	return nil
}
