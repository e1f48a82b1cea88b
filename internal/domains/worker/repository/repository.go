package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"homecare/infras/otel"
	"homecare/infras/postgres"
	"homecare/internal/domains/worker/model"
	gDto "homecare/shared/dto"
	gRepo "homecare/shared/repository"
)

type Worker interface {
	Insert(ctx context.Context, model model.Worker) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Worker, error)
	GetForUpdate(ctx context.Context, filter gDto.FilterGroup) (model.Worker, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Worker, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Worker]
}

func New(db *postgres.Connection, otel otel.Otel) Worker {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Worker](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
