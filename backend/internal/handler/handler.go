package handler

import (
	"github.com/itchan-dev/filesmanager/backend/internal/service"
	"github.com/itchan-dev/filesmanager/shared/config"
)

type Handler struct {
	auth service.AuthService
	file service.FileService
	app  service.AppService
	cfg  *config.Config
}

func New(auth service.AuthService, file service.FileService, app service.AppService, cfg *config.Config) *Handler {
	return &Handler{
		auth: auth,
		file: file,
		app:  app,
		cfg:  cfg,
	}
}
