package repository_test

import (
	"context"
	"testing"

	"homecare/infras/otel/mocks"
	"homecare/infras/postgres"
	"homecare/shared"
	"homecare/shared/dto"
	"homecare/shared/model"
	"homecare/shared/repository"

	"github.com/stretchr/testify/assert"
)

type widget struct {
	ID       string  `db:"id"`
	Name     string  `db:"name"`
	Computed string  `db:"-"`
	Label    *string `db:"label"  column:"display_label"`
	model.Metadata
}

func newRepo() repository.Repository[widget] {
	return repository.NewRepository[widget]("widget", "widgets", "id", &postgres.Connection{}, mocks.NewOtel())
}

func TestNewRepository_Columns(t *testing.T) {
	repo := newRepo()

	assert.Equal(t, []string{"id", "name", "label", "created_at", "modified_at", "created_by", "modified_by"}, repo.InsertColumns)
	assert.Equal(t, []string{
		"widgets.id", "widgets.name", "widgets.display_label",
		"widgets.created_at", "widgets.modified_at", "widgets.created_by", "widgets.modified_by",
	}, repo.SelectColumns())
}

func TestBuildWhereClause(t *testing.T) {
	repo := newRepo()

	where, args := repo.BuildWhereClause(shared.FilterByID("w-1", "id", "widgets"))
	assert.Equal(t, " WHERE (widgets.id = :id) ", where)
	assert.Equal(t, "w-1", args["id"])

	where, args = repo.BuildWhereClause(dto.FilterGroup{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestGetForUpdate_RequiresTransaction(t *testing.T) {
	repo := newRepo()

	_, err := repo.GetForUpdate(context.Background(), shared.FilterByID("w-1", "id", "widgets"))

	assert.Error(t, err)
}

func TestUpdate_RequiresFilter(t *testing.T) {
	repo := newRepo()

	err := repo.Update(context.Background(), map[string]any{"name": "x"}, dto.FilterGroup{})

	assert.Error(t, err)
}
