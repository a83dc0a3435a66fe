package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tnqbao/gau-filestore-service/config"
	"github.com/tnqbao/gau-filestore-service/consumer/worker"
	infraPkg "github.com/tnqbao/gau-filestore-service/infra"
)

func main() {
	err := godotenv.Load("../staging.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	if !cfg.EnvConfig.RabbitMQ.Enabled {
		log.Fatal("RABBITMQ_ENABLED must be true to run the audit consumer")
	}
	infra := infraPkg.InitInfra(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auditConsumer := worker.NewAuditConsumer(infra.RabbitMQ.Channel, infra.Logger)
	if err := auditConsumer.Start(ctx); err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to start Audit consumer: %v", err)
		log.Fatalf("Failed to start Audit consumer: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	infra.Logger.InfoWithContextf(ctx, "Shutting down consumer...")
	cancel()

	if err := infra.Close(context.Background()); err != nil {
		log.Printf("Failed to close infra: %v", err)
	}
	infra.Logger.InfoWithContextf(ctx, "Consumer exited properly")
}
