package controller

import (
	"time"

	"github.com/tnqbao/gau-form-service/config"
	"github.com/tnqbao/gau-form-service/infra"
	"github.com/tnqbao/gau-form-service/repository"
	"github.com/tnqbao/gau-form-service/service"
)

type Controller struct {
	Config      *config.Config
	Infra       *infra.Infra
	Repository  *repository.Repository
	Attachments *service.AttachmentStore
	Otp         *service.OtpManager
}

func NewController(config *config.Config, infra *infra.Infra, repo *repository.Repository) *Controller {
	if repo == nil {
		panic("Failed to initialize Repository")
	}

	attachments := service.NewAttachmentStore(
		repo.SubmissionRepo,
		repo.AttachmentRepo,
		infra.Minio,
		config.EnvConfig.Attachment.MaxSize,
	)
	otp := service.NewOtpManager(
		infra.Redis,
		infra.Produce.NotificationService,
		time.Duration(config.EnvConfig.OTP.ExpireSeconds)*time.Second,
	)

	return &Controller{
		Config:      config,
		Infra:       infra,
		Repository:  repo,
		Attachments: attachments,
		Otp:         otp,
	}
}
