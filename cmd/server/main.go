package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/arabian-horse-auction/internal/auction"
	"github.com/iliyamo/arabian-horse-auction/internal/config"
	"github.com/iliyamo/arabian-horse-auction/internal/database"
	"github.com/iliyamo/arabian-horse-auction/internal/handler"
	"github.com/iliyamo/arabian-horse-auction/internal/logger"
	"github.com/iliyamo/arabian-horse-auction/internal/middleware"
	"github.com/iliyamo/arabian-horse-auction/internal/queue"
	"github.com/iliyamo/arabian-horse-auction/internal/repository"
	"github.com/iliyamo/arabian-horse-auction/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	// Redis is optional: without it the bid rate limiter is a no-op.
	rdb := config.NewRedisClient()

	auctionRepo := repository.NewAuctionRepo(db)
	horseRepo := repository.NewHorseRepo(db)
	ownerRepo := repository.NewOwnerRepo(db)
	userRepo := repository.NewUserRepo(db)
	messageRepo := repository.NewMessageRepo(db)
	newsRepo := repository.NewNewsRepo(db)
	joinRepo := repository.NewJoinRepo(db)

	events := queue.NewPublisher(log)
	engine := auction.NewEngine(auctionRepo, horseRepo, ownerRepo, userRepo, events, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background status sweep keeps auctions moving even when nobody is
	// browsing the list.
	sweeper := auction.NewSweeper(engine, cfg.SweepInterval)
	go sweeper.Run(ctx)

	// Audit trail of bid and completion events, fed from RabbitMQ.
	go queue.StartAuditConsumer(log)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	bidLimit := middleware.NewBidRateLimiter(config.LoadRateLimitConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(userRepo, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost), cfg.JWTSecret)
	router.RegisterAuctions(e, handler.NewAuctionHandler(engine), cfg.JWTSecret, bidLimit)
	router.RegisterHorses(e, handler.NewHorseHandler(horseRepo, ownerRepo), cfg.JWTSecret)
	router.RegisterMessages(e, handler.NewMessageHandler(messageRepo, horseRepo), cfg.JWTSecret)
	router.RegisterNews(e, handler.NewNewsHandler(newsRepo), cfg.JWTSecret)
	router.RegisterJoinRequests(e, handler.NewJoinHandler(joinRepo, userRepo), cfg.JWTSecret)
	router.RegisterAI(e, handler.NewAIHandler(cfg.PredictScript, log), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.WithField("addr", addr).WithField("env", cfg.Env).Info("listening")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
