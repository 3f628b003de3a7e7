package bootstrap

import (
	"context"
	"fmt"
	"log"

	"econote-be/internal/config"
	"econote-be/internal/controller"
	"econote-be/internal/handler"
	"econote-be/internal/pkg/logger"
	"econote-be/internal/repository/cache"
	"econote-be/internal/repository/contract"
	"econote-be/internal/repository/gateway"
	"econote-be/internal/repository/memory"
	"econote-be/internal/repository/sqlite"
	"econote-be/internal/repository/unitofwork"
	"econote-be/internal/service"
	"econote-be/internal/session"
	"econote-be/internal/websocket"
	"econote-be/pkg/calibration"
	"econote-be/pkg/database"
	"econote-be/pkg/events"
	"econote-be/pkg/ocr"

	pktNats "econote-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
	DriverMemory   = "memory"
)

type Container struct {
	// Controllers
	NotebookController    controller.INotebookController
	PageController        controller.IPageController
	SessionController     controller.ISessionController
	CalibrationController controller.ICalibrationController

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService service.INotificationService

	// WebSockets
	PenHandler          *handler.PenHandler
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	SessionManager *session.Manager
	StorageDriver  string
	Logger         logger.ILogger

	closers []func()
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c := &Container{StorageDriver: cfg.Database.Driver, Logger: sysLogger}

	// 2. Infrastructure
	rdb := connectRedis(cfg.App.RedisURL)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	store, err := c.openGateway(cfg, rdb, sysLogger)
	if err != nil {
		return nil, err
	}

	var eventPublisher events.Publisher = events.NopPublisher{}
	var natsSub *pktNats.Subscriber
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
		natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
			natsSub = nil
		} else {
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	// Job queue
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var engine ocr.Engine = ocr.DisabledEngine{}
	if cfg.Ocr.BaseURL != "" {
		engine = ocr.NewHTTPEngine(cfg.Ocr.BaseURL)
		log.Printf("[INFO] Using OCR engine at %s", cfg.Ocr.BaseURL)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)

	// 3. Services
	notifService := service.NewNotificationService(natsSub, c.WebSocketHub, wsLogger)
	holder := calibration.NewHolder()
	c.SessionManager = session.NewManager(cfg.Session.TTL, cfg.Session.CleanupInterval, sysLogger)

	publisherService := service.NewPublisherService(cfg.Ocr.Topic, pubSub)
	notebookService := service.NewNotebookService(store, eventPublisher, notifService, sysLogger, cfg.Canvas.Width)
	pageService := service.NewPageService(store, eventPublisher, publisherService, notifService, sysLogger, service.PageServiceOptions{
		CanvasWidth:     cfg.Canvas.Width,
		CanvasHeight:    cfg.Canvas.Height,
		GridSpacing:     cfg.Canvas.GridSpacing,
		DefaultLanguage: cfg.Ocr.DefaultLanguage,
	})

	penLogger := logger.NewIsolatedLogger(cfg.App.PenLogFilePath)
	sessionService := service.NewSessionService(c.SessionManager, store, holder, eventPublisher, notifService, penLogger, session.Options{
		Width:             cfg.Canvas.Width,
		Height:            cfg.Canvas.Height,
		GridSpacing:       cfg.Canvas.GridSpacing,
		FlushInterval:     cfg.Pen.FlushInterval,
		MaxBufferedPoints: cfg.Pen.MaxBufferedPoints,
	})
	calibrationService := service.NewCalibrationService(holder, notifService, sysLogger)

	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Ocr.Topic, store, engine, eventPublisher, notifService, sysLogger, service.ConsumerOptions{
		CanvasWidth:  cfg.Canvas.Width,
		CanvasHeight: cfg.Canvas.Height,
		GridSpacing:  cfg.Canvas.GridSpacing,
	})
	c.NotificationService = notifService

	// 4. Controllers & Handlers
	secret := cfg.App.JwtSecret
	c.NotebookController = controller.NewNotebookController(notebookService, secret)
	c.PageController = controller.NewPageController(pageService, secret)
	c.SessionController = controller.NewSessionController(sessionService, secret)
	c.CalibrationController = controller.NewCalibrationController(calibrationService, secret)
	c.PenHandler = handler.NewPenHandler(sessionService, secret, penLogger)
	c.NotificationHandler = handler.NewNotificationHandler(c.WebSocketHub, secret, wsLogger)

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func (c *Container) openGateway(cfg *config.Config, rdb *redis.Client, log logger.ILogger) (contract.PersistenceGateway, error) {
	var store contract.PersistenceGateway

	switch cfg.Database.Driver {
	case DriverPostgres:
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to postgres: %w", err)
		}
		store = gateway.NewRepositoryGateway(unitofwork.NewRepositoryFactory(db))
		c.closers = append(c.closers, func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
	case DriverSqlite:
		gw, err := sqlite.Open(cfg.Database.SqlitePath)
		if err != nil {
			return nil, fmt.Errorf("unable to open sqlite store: %w", err)
		}
		store = gw
		c.closers = append(c.closers, func() { _ = gw.Close() })
	case DriverMemory:
		store = memory.NewGateway()
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Database.Driver)
	}

	log.Info("Bootstrap", "Persistence gateway ready", map[string]interface{}{"driver": cfg.Database.Driver})

	if rdb != nil && cfg.Cache.PageTTL > 0 {
		log.Info("Bootstrap", "Page cache enabled", map[string]interface{}{"ttl": cfg.Cache.PageTTL.String()})
		return cache.NewRedisGateway(store, rdb, cfg.Cache.PageTTL, log), nil
	}
	return store, nil
}

// connectRedis returns nil when no URL is configured or the server does not answer.
func connectRedis(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}
