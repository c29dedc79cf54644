package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/wedding-seating/internal/config"
	"github.com/iliyamo/wedding-seating/internal/database"
	"github.com/iliyamo/wedding-seating/internal/handler"
	"github.com/iliyamo/wedding-seating/internal/middleware"
	"github.com/iliyamo/wedding-seating/internal/queue"
	"github.com/iliyamo/wedding-seating/internal/reconcile"
	"github.com/iliyamo/wedding-seating/internal/repository"
	"github.com/iliyamo/wedding-seating/internal/router"
	publisher "github.com/iliyamo/wedding-seating/internal/service"
	"github.com/iliyamo/wedding-seating/internal/sheets"
)

const coordsKey = "mesas:coords"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}
	cfg := config.Load()
	sc := cfg.Sheets

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Sheet access: gviz for full reads, Composio for writes when a key is set.
	reader := sheets.NewGvizReader(sc.GvizBaseURL, sc.SpreadsheetID, sc.SheetName, sc.FetchTimeout)
	opts := []reconcile.Option{
		reconcile.WithCacheTTL(sc.CacheTTL),
		reconcile.WithPendingTTL(sc.PendingTTL),
		reconcile.WithVerify(sc.VerifyAttempts, sc.VerifyDelay),
		reconcile.WithQueueDepth(sc.QueueDepth),
	}
	if sc.Writable() {
		opts = append(opts, reconcile.WithWriter(sheets.NewComposioClient(
			sc.ComposioBaseURL, sc.ComposioAPIKey, sc.ComposioEntityID,
			sc.SpreadsheetID, sc.SheetName, sc.FetchTimeout)))
	} else {
		log.Printf("sheets: COMPOSIO_API_KEY not set; running read-only")
	}
	if cfg.AMQPURL != "" {
		opts = append(opts, reconcile.WithNotifier(publisher.NewPublisher(cfg.AMQPURL)))
	}
	svc := reconcile.NewService(reader, opts...)
	defer svc.Close()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	}

	var db *sql.DB
	if cfg.HistoryEnabled() {
		var err error
		db, err = database.Open(database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
		if err != nil {
			log.Printf("mysql: %v; move history disabled", err)
			db = nil
		} else if err := database.EnsureSchema(ctx, db); err != nil {
			log.Printf("mysql: schema: %v; move history disabled", err)
			_ = db.Close()
			db = nil
		} else {
			defer db.Close()
		}
	}
	history := repository.NewMoveHistoryRepo(db)
	cc := config.LoadCacheConfig()

	if cfg.AMQPURL != "" {
		var sink queue.MoveSink
		if history.Available() {
			sink = history
		}
		consumer := queue.NewMoveConsumer(cfg.AMQPURL, sink, os.Getenv("MOVE_LOG_DIR"))
		// New history rows make cached /api/moves pages stale.
		consumer.OnStored = func(ctx context.Context) {
			if err := middleware.PurgeRedisCache(ctx, cc, rdb); err != nil {
				log.Printf("move-consumer: %v", err)
			}
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("move-consumer: stopped: %v", err)
			}
		}()
	}

	// Warm the cache so /readyz flips as soon as the sheet answers.
	go func() {
		if _, err := svc.View(ctx, false); err != nil {
			log.Printf("reconcile: WARN initial load failed: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Logger())

	rl := config.LoadRateLimitConfig()
	router.RegisterRoutes(e, handler.NewHealthHandler(svc))
	router.RegisterSeating(e, handler.NewSeatingHandler(svc), cfg.JWTSecret, rl, rdb)
	router.RegisterCoords(e, handler.NewCoordsHandler(repository.NewCoordsRepo(rdb, coordsKey)), cfg.JWTSecret, rl, rdb)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg), rl, rdb)
	router.RegisterMoves(e, handler.NewMovesHandler(history), cfg.JWTSecret, cc, rdb)

	if !cfg.AuthEnabled() {
		log.Printf("auth: JWT_SECRET not set; write routes are open")
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, writable=%t)", addr, cfg.Env, svc.Writable())

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
