package server

import (
	"context"
	"log"

	"backend-mapty/internal/auth"
	"backend-mapty/internal/config"
	"backend-mapty/internal/db"
	"backend-mapty/internal/form"
	"backend-mapty/internal/shared/geo"
	"backend-mapty/internal/storage"
	"backend-mapty/internal/stream"
	"backend-mapty/internal/view"
	"backend-mapty/internal/workout"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const loadFailedNotice = "Saved workouts could not be loaded. New workouts will not be saved"

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub

	Slot  storage.Slot
	Store *workout.Store
	View  *view.Service
	Form  *form.Controller
	Auth  *auth.Service
}

func NewServer(cfg config.Config, pg *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     pg,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
		Auth:   auth.NewService(cfg.JWTSecret, cfg.OwnerPasswordHash),
	}

	s.Slot = openSlot(cfg, pg, redisClient)
	s.Store = workout.NewStore(s.Slot)
	loadErr := s.Store.LoadAll(context.Background())
	if loadErr != nil {
		log.Printf("load workouts: %v", loadErr)
	}

	topic := streamTopic(cfg)
	s.View = view.NewService(s.Stream, topic, cfg.MapZoom, cfg.AlertTimeout, s.Store.All)
	if loadErr != nil {
		s.View.Alerts.Notice(loadFailedNotice)
	}
	s.Form = form.NewController(s.Store, s.View.Sync, s.View.Alerts)
	s.View.Canvas.OnClick(s.Form.MapClicked)

	formFrames := view.NewEmitter(s.Stream, topic)
	s.Form.OnChange(func(snap form.Snapshot) {
		formFrames.Emit(view.Frame{Type: "form", Data: snap})
	})

	registerRoutes(s)
	return s
}

// Start renders the loaded workouts and locates the user in the background.
func (s *Server) Start(ctx context.Context) <-chan error {
	return s.View.Start(ctx, locatorFor(s.Cfg))
}

func (s *Server) Close() {
	s.Stream.Close()
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "workouts": s.Store.Len()})
	})
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	jwtMiddleware := auth.JWTMiddleware(s.Auth)
	reload := func(ctx context.Context) error {
		if err := s.Store.LoadAll(ctx); err != nil {
			return err
		}
		s.View.Resync()
		return nil
	}

	auth.RegisterRoutes(s.App.Group("/auth"), s.Auth)
	form.RegisterRoutes(s.App, s.Form, s.Store, jwtMiddleware)
	view.RegisterRoutes(s.App, s.View, jwtMiddleware)
	storage.RegisterRoutes(s.App.Group("/storage"), s.Slot, reload, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, s.View.SnapshotFrame)
}

// openSlot falls back to an in-memory slot when the configured backend
// cannot be used, so the app keeps working without persistence.
func openSlot(cfg config.Config, pg *pgxpool.Pool, rdb *redis.Client) storage.Slot {
	var querier db.Querier
	if pg != nil {
		querier = pg
	}
	key := cfg.StorageKey
	if key == "" {
		key = "workouts"
	}

	slot, err := storage.Open(cfg.StorageBackend, key, querier, rdb)
	if err != nil {
		log.Printf("storage: %v, falling back to memory", err)
		return storage.NewMemorySlot()
	}
	if ps, ok := slot.(*storage.PostgresSlot); ok {
		if err := ps.EnsureSchema(context.Background()); err != nil {
			log.Printf("storage schema: %v", err)
		}
	}
	return slot
}

func locatorFor(cfg config.Config) geo.Locator {
	if cfg.GeolocateURL != "" {
		return geo.NewHTTPLocator(cfg.GeolocateURL)
	}
	return geo.StaticLocator{Home: geo.Coords{cfg.HomeLat, cfg.HomeLng}, Set: cfg.HomeSet}
}

func streamTopic(cfg config.Config) string {
	if cfg.StreamTopic == "" {
		return "workouts"
	}
	return cfg.StreamTopic
}
