package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	goredis "github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"
	"gorm.io/gorm"

	"grocerytracker/internal/config"
	"grocerytracker/internal/database"
	"grocerytracker/internal/handlers"
	"grocerytracker/internal/middleware"
	"grocerytracker/internal/repositories"
	"grocerytracker/internal/services"
	"grocerytracker/internal/throttle"
	"grocerytracker/pkg/rabbitmq"
)

// appServices are the dependencies the HTTP layer is built from.
type appServices struct {
	auth           *services.AuthService
	groceries      *services.GroceryService
	weather        *services.WeatherService
	authRateLimit  int
	limiterStorage fiber.Storage
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Initialize Repositories ---
	userRepo, groceryRepo, db, err := openRepositories(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// --- Initialize RabbitMQ Client (optional) ---
	var (
		mqClient *rabbitmq.Client
		events   services.EventPublisher
	)
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, events will not be published: %v", err)
		} else {
			events = mqClient
		}
	}

	// --- Initialize Redis (optional) ---
	var (
		redisClient    *goredis.Client
		throttleStore  throttle.Store = throttle.NewMemoryStore()
		limiterStorage fiber.Storage
	)
	if cfg.RedisAddr != "" {
		redisClient = goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Printf("Warning: Redis unavailable at %s, using in-process stores: %v", cfg.RedisAddr, err)
			redisClient.Close()
			redisClient = nil
		} else {
			throttleStore = throttle.NewRedisStore(redisClient, "grocery:weather:")
			limiterStorage = middleware.NewRedisStorage(cfg.RedisAddr)
			log.Printf("Connected to Redis at %s", cfg.RedisAddr)
		}
	}

	// --- Initialize Services ---
	tokens := services.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	authService := services.NewAuthService(userRepo, services.NewPasswordHasher(0), tokens, events, cfg.StoreTimeout)
	groceryService := services.NewGroceryService(groceryRepo, events, cfg.StoreTimeout)
	gate := throttle.NewGate(throttleStore, throttle.Config{
		Every: cfg.WeatherRefreshEvery,
		TTL:   cfg.WeatherCacheTTL,
	})
	fetcher := services.NewOpenWeatherFetcher(cfg.WeatherAPIURL, cfg.WeatherAPIKey, cfg.StoreTimeout)
	weatherService := services.NewWeatherService(fetcher, gate)

	// --- Start RabbitMQ Consumer (opt-in cascade) ---
	if cfg.CascadeUserDelete {
		if mqClient == nil {
			log.Println("Warning: CASCADE_USER_DELETE is set but RabbitMQ is not available. Entries of deleted users are kept.")
		} else {
			handler := func(msg amqp.Delivery) error {
				ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
				defer cancel()
				return groceryService.HandleUserDeleted(ctx, msg.Body)
			}
			if err := mqClient.Consume("grocery_user_deleted", services.EventUserDeleted, handler); err != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", err)
			}
		}
	}

	// --- Initialize Fiber App ---
	app := newApp(appServices{
		auth:           authService,
		groceries:      groceryService,
		weather:        weatherService,
		authRateLimit:  cfg.AuthRateLimit,
		limiterStorage: limiterStorage,
	})

	// --- Start HTTP Server ---
	go func() {
		log.Printf("Starting server on port %s", cfg.AppPort)
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// --- Graceful shutdown ---
	operations := map[string]gfshutdown.Operation{
		"fiber": func(ctx context.Context) error {
			log.Println("Shutting down server...")
			return app.ShutdownWithContext(ctx)
		},
	}
	if db != nil {
		operations["database"] = func(context.Context) error {
			return database.Close(db)
		}
	}
	if mqClient != nil {
		operations["rabbitmq"] = func(context.Context) error {
			return mqClient.Close()
		}
	}
	if redisClient != nil {
		operations["redis"] = func(context.Context) error {
			if err := limiterStorage.Close(); err != nil {
				log.Printf("Error closing limiter storage: %v", err)
			}
			return redisClient.Close()
		}
	}

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.ShutdownTimeout, operations)
	exitCode := <-wait
	log.Printf("Server exited with code: %d", exitCode)
	os.Exit(exitCode)
}

// openRepositories returns in-memory repositories for the memory driver and
// GORM repositories otherwise. db is nil for the memory driver.
func openRepositories(cfg *config.Config) (repositories.UserRepository, repositories.GroceryRepository, *gorm.DB, error) {
	if cfg.DatabaseDriver == database.DriverMemory {
		log.Println("Using in-memory repositories. Data is lost on restart.")
		return repositories.NewMockUserRepository(), repositories.NewMockGroceryRepository(), nil, nil
	}

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	return repositories.NewGORMUserRepository(db), repositories.NewGORMGroceryRepository(db), db, nil
}

// newApp builds the Fiber app with middleware and every route registered.
func newApp(svc appServices) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "grocery-tracker",
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New()) // Request logger
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.TokenHeader,
	}))

	// --- API Routes ---
	api := app.Group("/api/v1/groceries")
	authRequired := middleware.AuthRequired(svc.auth)
	rateLimit := middleware.RateLimit(svc.authRateLimit, time.Minute, svc.limiterStorage)

	handlers.NewAuthHandler(svc.auth).RegisterRoutes(api, rateLimit, authRequired)
	handlers.NewGroceryHandler(svc.groceries).RegisterRoutes(api, authRequired)
	handlers.NewWeatherHandler(svc.weather).RegisterRoutes(api, authRequired)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app
}
