package router

import (
	"time"

	"log/slog"

	"launcher-hub/internal/adapters/database"
	"launcher-hub/internal/adapters/kafka"
	"launcher-hub/internal/api/middleware"
	"launcher-hub/internal/auth"
	"launcher-hub/internal/config"
	"launcher-hub/internal/handler"
	"launcher-hub/internal/hub"
	"launcher-hub/internal/repository"

	"github.com/gin-gonic/gin"
)

// App wires the hub with its collaborators and the HTTP surface.
type App struct {
	Router *gin.Engine
	Hub    *hub.Hub

	closers []func() error
}

func NewApp(cfg *config.Config) (*App, error) {
	app := &App{}

	db, err := database.NewMySQLDB(
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
	)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	redisClient, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, redisClient.Close)

	// Repositories
	storeRepo := repository.NewStoreRepository(db)
	presenceRepo := repository.NewPresenceRepository(redisClient)

	// Kafka is optional: no brokers configured means no event publishing.
	var events hub.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewSyncProducer(cfg.Kafka.Brokers)
		if err != nil {
			slog.Error("Kafka unavailable, continuing without event publishing", "error", err)
		} else {
			publisher := kafka.NewEventPublisher(producer, cfg.Kafka.Topic)
			app.closers = append(app.closers, publisher.Close)
			events = publisher
		}
	}

	verifier := auth.NewJWTVerifier(cfg.JWT.Secret)

	app.Hub = hub.NewHub(verifier, storeRepo, presenceRepo, events)
	app.Hub.SetPingInterval(cfg.Hub.PingInterval)

	rateLimit := middleware.NewRateLimitMiddleware(presenceRepo)
	wsHandler := handler.NewWSHandler(app.Hub)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.LogAPI())

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "UP"})
		})

		wsGroup := api.Group("/ws")
		wsGroup.Use(rateLimit.WebSocketRateLimit(30, time.Minute))
		wsHandler.RegisterRoutes(wsGroup)
	}

	app.Router = router
	return app, nil
}

// Close releases the app's external connections.
func (a *App) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			slog.Error("Close failed", "error", err)
		}
	}
}
