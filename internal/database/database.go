package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	driverSQLite   = "sqlite3"
	driverPostgres = "postgres"
)

type Client struct {
	db     *sql.DB
	driver string
}

// NewClient opens the catalogue database. postgres:// and postgresql:// DSNs
// go through lib/pq; anything else is treated as a sqlite file path.
func NewClient(dsn string) (Client, error) {
	driver := driverSQLite
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = driverPostgres
	} else if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return Client{}, err
	}
	if driver == driverSQLite {
		// sqlite serialises writers; a single connection avoids "database is locked".
		db.SetMaxOpenConns(1)
	}
	c := Client{db: db, driver: driver}
	if err := c.autoMigrate(); err != nil {
		db.Close()
		return Client{}, fmt.Errorf("migrate: %w", err)
	}
	return c, nil
}

func (c Client) Close() error {
	return c.db.Close()
}

func (c Client) autoMigrate() error {
	userTable := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL
	);
	`
	videoTable := `
	CREATE TABLE IF NOT EXISTS videos (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		video_url TEXT,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		aspect_primary DOUBLE PRECISION NOT NULL DEFAULT 0,
		aspect_secondary DOUBLE PRECISION NOT NULL DEFAULT 0,
		aspect_primary_raw DOUBLE PRECISION NOT NULL DEFAULT 0,
		aspect_secondary_raw DOUBLE PRECISION NOT NULL DEFAULT 0,
		aspect_samples INTEGER NOT NULL DEFAULT 0,
		aspect_histogram TEXT
	);
	`
	libraryTable := `
	CREATE TABLE IF NOT EXISTS library_files (
		path TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		size BIGINT NOT NULL,
		aspect_primary DOUBLE PRECISION NOT NULL DEFAULT 0,
		aspect_secondary DOUBLE PRECISION NOT NULL DEFAULT 0,
		aspect_primary_raw DOUBLE PRECISION NOT NULL DEFAULT 0,
		aspect_secondary_raw DOUBLE PRECISION NOT NULL DEFAULT 0,
		aspect_samples INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		analyzed_at TIMESTAMP NOT NULL
	);
	`
	for _, stmt := range []string{userTable, videoTable, libraryTable} {
		if _, err := c.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Reset deletes every row. Only used by the dev reset endpoint and tests.
func (c Client) Reset() error {
	for _, table := range []string{"library_files", "videos", "users"} {
		if _, err := c.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to reset table %s: %w", table, err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $1, $2, ... for postgres.
func (c Client) rebind(query string) string {
	if c.driver != driverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
