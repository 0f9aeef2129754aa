package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/kvit-dev/caleoban/config"
	"github.com/kvit-dev/caleoban/utilities"
)

func ConnectPostgres(cfg config.DBConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	utilities.LogInfo("Connected to PostgreSQL at %s:%s", cfg.Host, cfg.Port)
	return db, nil
}
