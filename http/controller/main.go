package controller

import (
	"github.com/tnqbao/gau-filestore-service/config"
	"github.com/tnqbao/gau-filestore-service/infra"
	"github.com/tnqbao/gau-filestore-service/repository"
	"github.com/tnqbao/gau-filestore-service/service"
)

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
	Storage    *service.StorageService
}

func NewController(cfg *config.Config, infra *infra.Infra, repo *repository.Repository) *Controller {
	storage := service.NewStorageService(service.Options{
		Blobs:        infra.Blobs,
		Records:      repo.FileRecordRepo,
		Locker:       infra.Locker,
		Events:       infra.Events,
		Logger:       infra.Logger,
		BaseURL:      cfg.EnvConfig.HTTP.BaseURL,
		NameAttempts: cfg.EnvConfig.Storage.NameAttempts,
	})

	return &Controller{
		Config:     cfg,
		Infra:      infra,
		Repository: repo,
		Storage:    storage,
	}
}
