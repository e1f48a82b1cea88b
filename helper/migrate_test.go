package helper

import (
	"testing"

	"homecare/config"

	"github.com/stretchr/testify/assert"
)

func TestMigrationURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.DB.Postgres.Prefix = "dev_"
	cfg.DB.Postgres.Write = config.DBEndpoint{
		Host: "db", Port: "5432", Username: "app", Password: "secret", Name: "homecare", SSLMode: "disable",
	}

	assert.Equal(t, "postgres://app:secret@db:5432/dev_homecare?sslmode=disable", migrationURL(cfg))

	cfg.DB.Postgres.MigrationTable = "schema_migrations"
	assert.Equal(t, "postgres://app:secret@db:5432/dev_homecare?sslmode=disable&x-migrations-table=schema_migrations", migrationURL(cfg))
}

func TestRunner_UnknownAction(t *testing.T) {
	err := Runner(&config.Config{}, "sideways")

	assert.ErrorContains(t, err, "unknown migration action")
}
