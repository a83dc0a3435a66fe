package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tnqbao/gau-filestore-service/config"
	"github.com/tnqbao/gau-filestore-service/http/controller"
	routes "github.com/tnqbao/gau-filestore-service/http/route"
	infraPkg "github.com/tnqbao/gau-filestore-service/infra"
	"github.com/tnqbao/gau-filestore-service/repository"
	"github.com/tnqbao/gau-filestore-service/service"
)

func main() {
	err := godotenv.Load("staging.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra.Database.DB)

	ctrl := controller.NewController(cfg, infra, repo)

	router := routes.SetupRouter(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var scheduler *service.ReconcileScheduler
	if cfg.EnvConfig.Reconcile.Enabled {
		scheduler = &service.ReconcileScheduler{
			Storage:       ctrl.Storage,
			Logger:        infra.Logger,
			Cron:          cfg.EnvConfig.Reconcile.Cron,
			RemoveOrphans: cfg.EnvConfig.Reconcile.RemoveOrphans,
		}
		if err := scheduler.Start(ctx); err != nil {
			log.Fatalf("Failed to start reconcile scheduler: %v", err)
		}
	}

	server := &http.Server{
		Addr:    cfg.EnvConfig.HTTP.Addr,
		Handler: router,
	}

	go func() {
		log.Println("HTTP Server started on", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	infra.Logger.InfoWithContextf(ctx, "Shutting down server...")
	cancel()
	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if err := infra.Close(shutdownCtx); err != nil {
		log.Printf("Failed to close infra: %v", err)
	}

	log.Println("Server exited properly")
}
