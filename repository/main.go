package repository

import (
	"github.com/tnqbao/gau-form-service/infra"
)

type Repository struct {
	SubmissionRepo *SubmissionRepository
	AttachmentRepo *AttachmentRepository
}

var repository *Repository

func InitRepository(infra *infra.Infra) *Repository {
	repository = &Repository{
		SubmissionRepo: NewSubmissionRepository(infra.Postgres.DB),
		AttachmentRepo: NewAttachmentRepository(infra.Postgres.DB),
	}
	return repository
}

func GetRepository() *Repository {
	if repository == nil {
		panic("repository not initialized")
	}
	return repository
}
