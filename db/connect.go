package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v4/stdlib"

	"github.com/benchwise/gridvault/db/params"
)

const (
	DefaultMaxOpenConnections    = 25
	DefaultMaxIdleConnections    = 25
	DefaultConnectionMaxLifetime = 0
)

func ConnectDB(p params.Database) (Database, error) {
	conn, err := sqlx.Connect(p.Driver, p.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	maxOpen := p.MaxOpenConnections
	if maxOpen == 0 {
		maxOpen = DefaultMaxOpenConnections
	}
	maxIdle := p.MaxIdleConnections
	if maxIdle == 0 {
		maxIdle = DefaultMaxIdleConnections
	}
	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(maxIdle)
	conn.SetConnMaxLifetime(p.ConnectionMaxLifetime)
	return NewDatabase(conn), nil
}
