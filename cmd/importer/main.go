// Command importer copies the legacy MongoDB collections into the SQL database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/stylescanner/server/internal/config"
	"github.com/stylescanner/server/internal/database"
	"github.com/stylescanner/server/internal/modules/storage/legacyimport"
	"github.com/stylescanner/server/internal/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to YAML config file")
	mongoURI := flag.String("mongo-uri", "", "MongoDB connection string (overrides mongo.uri)")
	mongoDB := flag.String("mongo-db", "", "MongoDB database name (overrides mongo.database)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *mongoURI != "" {
		cfg.Mongo.URI = *mongoURI
	}
	if *mongoDB != "" {
		cfg.Mongo.Database = *mongoDB
	}

	zl, err := logger.New(cfg.IsDev(), "")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	if cfg.Mongo.URI == "" {
		zl.Fatal("mongo uri is required (--mongo-uri or mongo.uri)")
	}
	loc, err := cfg.Location()
	if err != nil {
		zl.Fatal("timezone", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg, true)
	if err != nil {
		zl.Fatal("database", zap.Error(err))
	}

	src, err := legacyimport.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		zl.Fatal("mongo", zap.Error(err))
	}
	defer src.Close(context.Background())

	report, err := legacyimport.New(db, src, loc, zl.Named("import")).Run(ctx)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
	if err != nil {
		zl.Fatal("import failed", zap.Error(err))
	}
	zl.Info("import finished")
}
