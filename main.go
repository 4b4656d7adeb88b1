package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/strmed/docfinder-backend/config"
	"github.com/strmed/docfinder-backend/internal/availability/services"
	"github.com/strmed/docfinder-backend/internal/routes"
	"github.com/strmed/docfinder-backend/pkg/docstore"
	"github.com/strmed/docfinder-backend/pkg/queue"
	"github.com/strmed/docfinder-backend/pkg/storage/mariadb"
)

func main() {
	cfg := config.LoadConfig()
	db := mariadb.Connect()

	logger := logrus.New()

	store, err := docstore.NewDiskStore(cfg.DocStorePath)
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}

	broker := cfg.KafkaBroker
	if broker == "" {
		broker = "localhost:9092"
	}
	producer := queue.NewKafkaProducer(broker)
	defer producer.Close()

	e := echo.New()
	e.Use(echomiddleware.Recover())

	availabilityService := routes.Init(e, db, store, producer, logger)

	// Take doctors offline once their available-until passes.
	sweeper := services.StartExpirySweeper(availabilityService)
	defer sweeper.Stop()

	logger.Infof("Server listening on port %s", cfg.Port)
	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Fatal(err)
	}
}
