package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/config"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/db"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/handlers"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/logging"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/services"
	_ "github.com/joho/godotenv/autoload"
	_ "modernc.org/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml")
	flag.Parse()

	cfg, resolvedPath, exists, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		logging.String("path", resolvedPath),
		logging.Bool("file_found", exists),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("startup failed", logging.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	if err := app.server.Start(ctx); err != nil {
		logger.Error("startup failed", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("progressd started",
		logging.String("db", cfg.Server.DBPath),
		logging.Int("passing_score", cfg.Server.PassingScore),
	)

	<-ctx.Done()
	logger.Info("progressd stopping")
}

type app struct {
	sqlDB  *sql.DB
	queue  *db.DBQueue
	server *handlers.Server
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	sqlDB, err := db.Open(cfg.Server.DBPath)
	if err != nil {
		return nil, err
	}
	queue := db.NewDBQueue(sqlDB)

	progressRepo := db.NewProgressRepository(queue)
	quizRepo := db.NewQuizRepository(queue)
	roadmapRepo := db.NewRoadmapRepository(queue)

	stateResolver := services.NewStateResolver(progressRepo, quizRepo, cfg.Server.PassingScore)
	statsService := services.NewStatisticsService(progressRepo, quizRepo, cfg.Server.PassingScore)
	handler := handlers.NewProgressHandler(stateResolver, roadmapRepo, statsService, logger)

	return &app{
		sqlDB:  sqlDB,
		queue:  queue,
		server: handlers.NewServer(cfg.Server.Bind, handler.Routes(), logger),
	}, nil
}

func (a *app) Close() {
	a.server.Stop()
	a.queue.Close()
	_ = a.sqlDB.Close()
}
