package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tnqbao/gau-filestore-service/config"
	infraPkg "github.com/tnqbao/gau-filestore-service/infra"
	"github.com/tnqbao/gau-filestore-service/repository"
	"github.com/tnqbao/gau-filestore-service/service"
)

var (
	envFile       string
	removeOrphans bool
)

var rootCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare stored blobs with file records and report drift",
	Long: `Lists every blob and every file record, reports records whose blob is missing and
blobs without a record. With --remove-orphans, blobs without a record are deleted.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", "staging.env", "dotenv file to load before reading the environment")
	rootCmd.Flags().BoolVar(&removeOrphans, "remove-orphans", false, "delete blobs that have no file record")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(envFile); err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	defer func() {
		if err := infra.Close(cmd.Context()); err != nil {
			log.Printf("Failed to close infra: %v", err)
		}
	}()

	repo := repository.InitRepository(infra.Database.DB)

	storage := service.NewStorageService(service.Options{
		Blobs:   infra.Blobs,
		Records: repo.FileRecordRepo,
		Locker:  infra.Locker,
		Logger:  infra.Logger,
	})

	report, err := storage.Reconcile(cmd.Context(), removeOrphans)
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if !report.Consistent() {
		return fmt.Errorf("stores are inconsistent: %d missing blobs, %d orphan blobs left",
			len(report.MissingBlobs), len(report.OrphanBlobs)-len(report.RemovedOrphans))
	}
	return nil
}
