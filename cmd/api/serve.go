package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/foodlink/foodlink-api/internal/auth"
	"github.com/foodlink/foodlink-api/internal/bus"
	"github.com/foodlink/foodlink-api/internal/config"
	"github.com/foodlink/foodlink-api/internal/geocode"
	"github.com/foodlink/foodlink-api/internal/handler"
	"github.com/foodlink/foodlink-api/internal/repository"
	"github.com/foodlink/foodlink-api/internal/service"
	"github.com/foodlink/foodlink-api/internal/storage"
	appvalidator "github.com/foodlink/foodlink-api/internal/validator"
	"github.com/foodlink/foodlink-api/pkg/database"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

// handlers groups the route handlers registered by registerRoutes.
type handlers struct {
	health   *handler.HealthHandler
	donation *handler.DonationHandler
	claim    *handler.ClaimHandler
	user     *handler.UserHandler
	location *handler.LocationHandler
	message  *handler.MessageHandler
}

func serve(cCtx *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cCtx.Context

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), cfg.DB.ConnectRetries)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
	}

	events, err := newBus(cfg.Bus)
	if err != nil {
		return err
	}
	defer func() {
		if err := events.Close(); err != nil {
			log.Error().Err(err).Msg("error closing message bus")
		}
	}()

	unsubscribe, err := events.Subscribe(bus.TopicMessageCreated, auditMessage)
	if err != nil {
		return fmt.Errorf("subscribe message audit: %w", err)
	}
	defer unsubscribe()

	// Optional collaborators stay nil interfaces when unconfigured; the services degrade per feature.
	var (
		geocoder    service.Geocoder
		reverse     service.ReverseGeocoder
		images      service.ImageStore
		googleLogin service.IdentityVerifier
	)

	if cfg.Geocoder.APIKey != "" {
		g, err := geocode.NewGoogleGeocoder(cfg.Geocoder.APIKey, cfg.Geocoder.BaseURL, cfg.Geocoder.Timeout)
		if err != nil {
			return fmt.Errorf("create geocoder: %w", err)
		}
		geocoder, reverse = g, g
	} else {
		log.Warn().Msg("GOOGLE_GEO_LOCATION not set, geocoding disabled")
	}

	store, err := storage.NewS3ImageStore(ctx, cfg.Storage.Bucket, cfg.Storage.Region, cfg.Storage.KeyPrefix, cfg.Storage.PublicURL())
	if err != nil {
		log.Warn().Err(err).Msg("image storage disabled")
	} else {
		images = store
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	if cfg.Auth.GoogleClientID != "" {
		v, err := auth.NewGoogleVerifier(ctx, cfg.Auth.GoogleClientID)
		if err != nil {
			return fmt.Errorf("create google verifier: %w", err)
		}
		googleLogin = v
	}

	validate := appvalidator.New()

	// Layered wiring: repository -> service -> handler
	donationRepo := repository.NewDonationRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	locationRepo := repository.NewLocationRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)

	donationService := service.NewDonationService(pool, donationRepo, userRepo, images, reverse)
	userService := service.NewUserService(userRepo, auth.NewPasswordHasher(bcrypt.DefaultCost), tokens, googleLogin, images)
	locationService := service.NewLocationService(locationRepo, geocoder)
	messageService := service.NewMessageService(messageRepo, events)

	h := handlers{
		health: handler.NewHealthHandler(map[string]handler.Pinger{
			"database": pool,
			"bus":      events,
		}),
		donation: handler.NewDonationHandler(donationService, validate),
		claim:    handler.NewClaimHandler(donationService, validate),
		user:     handler.NewUserHandler(userService, validate),
		location: handler.NewLocationHandler(locationService, validate),
		message:  handler.NewMessageHandler(messageService, validate),
	}

	app := newApp(cfg.Server)
	registerRoutes(app, h, tokens)

	// Start server with graceful shutdown
	listenErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		listenErr <- app.Listen(":" + cfg.Server.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-listenErr:
		return fmt.Errorf("start server: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	}

	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Deferred closes run after in-flight requests finish: subscription, bus, then pool.
	log.Info().Msg("server stopped")
	return nil
}

func newApp(cfg config.ServerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "FoodLink API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    cfg.BodyLimitMB << 20,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return xid.New().String() },
	}))
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))
	return app
}

func registerRoutes(app *fiber.App, h handlers, tokens *auth.TokenService) {
	app.Get("/health", h.health.Check)

	// Donations
	app.Get("/food-donations", h.donation.SearchDonations)
	app.Get("/food-donations/:id", h.donation.GetDonation)
	app.Post("/food-donation", h.donation.CreateDonation)
	app.Post("/api/claim-donation/:id", h.claim.ClaimDonation)

	// Accounts
	app.Post("/users", h.user.Signup)
	app.Get("/users/:id", h.user.GetUser)
	app.Put("/users/:id", auth.RequireToken(tokens, "id"), h.user.UpdateUser)
	app.Post("/login", h.user.Login)
	app.Post("/login/google", h.user.GoogleLogin)
	app.Post("/upload-profile-image", auth.RequireToken(tokens, ""), h.user.UploadProfileImage)

	// Locations
	app.Post("/api/geolocation", h.location.Geocode)
	app.Post("/user-location", h.location.SaveUserLocation)
	app.Get("/user-location/:userId", h.location.GetUserLocation)

	// Chat
	app.Post("/messages", h.message.SendMessage)
	app.Get("/messages/:donationId", h.message.GetConversation)
	app.Get("/user-chats/:userId", h.message.GetChats)
}

func newBus(cfg config.BusConfig) (bus.Bus, error) {
	switch cfg.Driver {
	case "kafka":
		brokers := cfg.BrokerList()
		if len(brokers) == 0 {
			return nil, errors.New("BUS_KAFKA_BROKERS is empty")
		}
		log.Info().Strs("brokers", brokers).Str("group", cfg.ConsumerGroup).Msg("using kafka message bus")
		return bus.NewKafkaBus(brokers, cfg.ConsumerGroup), nil
	default:
		return bus.NewMemoryBus(), nil
	}
}

// auditMessage logs every stored chat message.
func auditMessage(_ context.Context, e bus.Event) error {
	log.Info().
		Str("topic", e.Topic).
		Str("donation_id", e.Key).
		Int("payload_bytes", len(e.Payload)).
		Time("published_at", e.Time).
		Msg("chat message stored")
	return nil
}
