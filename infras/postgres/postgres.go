package postgres

//nolint:revive
import (
	"fmt"
	"net"
	"time"

	"homecare/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	postgresMaxIdleConnection = 10
	postgresMaxOpenConnection = 20
	postgresConnMaxLifetime   = 30 * time.Minute
)

// Connection splits traffic between a read replica and the primary.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(cfg *config.Config) *Connection {
	return &Connection{
		Read:  createConnection("read", cfg.DB.Postgres.Read, *cfg),
		Write: createConnection("write", cfg.DB.Postgres.Write, *cfg),
	}
}

// Close releases both pools.
func (c *Connection) Close() {
	for name, db := range map[string]*sqlx.DB{"read": c.Read, "write": c.Write} {
		if db == nil {
			continue
		}

		if err := db.Close(); err != nil {
			log.Error().Err(err).Str("name", name).Msg("Failed to close database connection")
		}
	}
}

func dbName(cfg config.Config, baseName string) string {
	if cfg.DB.Postgres.Prefix != "" {
		return cfg.DB.Postgres.Prefix + baseName
	}

	return baseName
}

// DSN renders the libpq connection URL for an endpoint.
func DSN(cfg config.Config, ep config.DBEndpoint) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		ep.Username,
		ep.Password,
		net.JoinHostPort(ep.Host, ep.Port),
		dbName(cfg, ep.Name),
		ep.SSLMode,
	)
}

func createConnection(name string, ep config.DBEndpoint, cfg config.Config) *sqlx.DB {
	descriptor := DSN(cfg, ep)
	attempts := max(cfg.DB.Postgres.MaxRetry, 1)

	for retry := range attempts {
		sqlDB, err := sqlx.Connect("postgres", descriptor)
		if err == nil {
			log.
				Info().
				Str("name", name).
				Str("host", ep.Host).
				Str("port", ep.Port).
				Str("dbName", dbName(cfg, ep.Name)).
				Msg("Connected to database")

			sqlDB.SetMaxIdleConns(postgresMaxIdleConnection)
			sqlDB.SetMaxOpenConns(postgresMaxOpenConnection)
			sqlDB.SetConnMaxLifetime(postgresConnMaxLifetime)

			return sqlDB
		}

		log.
			Error().
			Err(err).
			Str("name", name).
			Str("host", ep.Host).
			Int("attempt", retry+1).
			Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(cfg.DB.Postgres.RetryWaitTime) * time.Second)
	}

	log.Fatal().Str("name", name).Msg("Could not connect to database")

	return nil
}
