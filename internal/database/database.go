package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"moviedb/internal/config"
)

// Open connects to the configured store and creates any missing tables.
func Open(cfg config.DBConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return NewSQLite(cfg.DSN())
	default:
		return NewPostgres(cfg)
	}
}

// NewPostgres creates a new PostgreSQL connection and creates the schema.
func NewPostgres(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open(config.DriverPostgres, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	slog.Info("connected to PostgreSQL", "db", cfg.DBName)

	if err := CreateSchema(db, config.DriverPostgres); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// NewSQLite opens a SQLite database. The dsn should enable foreign keys
// (config.DBConfig.DSN does).
func NewSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open(config.DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes writers and keeps :memory: databases
	// from splitting per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("opened SQLite database", "dsn", dsn)

	if err := CreateSchema(db, config.DriverSQLite); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// CreateSchema creates the director, genre and movie tables if they do not
// exist.
func CreateSchema(db *sql.DB, driver string) error {
	stmts := postgresSchema
	if driver == config.DriverSQLite {
		stmts = sqliteSchema
	}

	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("create schema: %w\nSQL: %s", err, s)
		}
	}

	slog.Debug("database schema ready", "driver", driver)
	return nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS director (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS genre (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS movie (
		id SERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		trailer VARCHAR(255) NOT NULL DEFAULT '',
		year INTEGER NOT NULL DEFAULT 0,
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		genre_id INTEGER REFERENCES genre(id) ON DELETE RESTRICT,
		director_id INTEGER REFERENCES director(id) ON DELETE RESTRICT
	)`,
	// Indexes for the list filters
	`CREATE INDEX IF NOT EXISTS idx_movie_director_id ON movie(director_id)`,
	`CREATE INDEX IF NOT EXISTS idx_movie_genre_id ON movie(genre_id)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS director (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS genre (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS movie (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		trailer TEXT NOT NULL DEFAULT '',
		year INTEGER NOT NULL DEFAULT 0,
		rating REAL NOT NULL DEFAULT 0,
		genre_id INTEGER REFERENCES genre(id) ON DELETE RESTRICT,
		director_id INTEGER REFERENCES director(id) ON DELETE RESTRICT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_movie_director_id ON movie(director_id)`,
	`CREATE INDEX IF NOT EXISTS idx_movie_genre_id ON movie(genre_id)`,
}
