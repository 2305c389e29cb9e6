package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/config"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/db"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/logging"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
	_ "github.com/joho/godotenv/autoload"
	_ "modernc.org/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml")
	catalogPath := flag.String("file", "roadmaps.yaml", "roadmap catalog to load")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	count, err := seed(cfg.Server.DBPath, *catalogPath, logger)
	if err != nil {
		logger.Error("seeding roadmaps failed", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("roadmaps seeded",
		logging.Int("count", count),
		logging.String("db", cfg.Server.DBPath),
	)
}

func seed(dbPath, catalogPath string, logger *slog.Logger) (int, error) {
	catalog, err := models.LoadCatalogFile(catalogPath)
	if err != nil {
		return 0, err
	}

	sqlDB, err := db.Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer sqlDB.Close()
	queue := db.NewDBQueue(sqlDB)
	defer queue.Close()

	repo := db.NewRoadmapRepository(queue)
	for _, def := range catalog.Roadmaps {
		if err := repo.Upsert(def); err != nil {
			return 0, fmt.Errorf("upsert roadmap %s: %w", def.RoadmapID, err)
		}
		logger.Info("roadmap stored",
			logging.String(logging.FieldRoadmapID, def.RoadmapID),
			logging.Int("courses", len(def.Courses)),
			logging.Int("skills", len(def.Skills)),
		)
	}
	return len(catalog.Roadmaps), nil
}
