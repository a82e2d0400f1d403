package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"propmap/internal/model"
)

// PostgresRepository supplies the listing/POI snapshots and records chat
// transcripts. The core never writes listings or POIs; they are loaded once
// at startup into an immutable in-memory dataset.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement
	// does not exist" errors behind poolers
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// LoadDataset reads the full listing and POI collections into a snapshot
func (r *PostgresRepository) LoadDataset(ctx context.Context) (*model.Dataset, error) {
	listings, err := r.ListListings(ctx)
	if err != nil {
		return nil, err
	}
	pois, err := r.ListPOIs(ctx)
	if err != nil {
		return nil, err
	}
	return model.NewDataset(listings, pois), nil
}

// ListListings retrieves every listing, in insertion order
func (r *PostgresRepository) ListListings(ctx context.Context) ([]model.Listing, error) {
	query := `
		SELECT
			id, name, address, latitude, longitude, price, size_sqft,
			year_built, type, features, description, image_url
		FROM listings
		ORDER BY created_at ASC
	`
	var listings []model.Listing
	if err := r.db.SelectContext(ctx, &listings, query); err != nil {
		return nil, fmt.Errorf("failed to fetch listings: %w", err)
	}
	return listings, nil
}

// ListPOIs retrieves every point of interest, in insertion order
func (r *PostgresRepository) ListPOIs(ctx context.Context) ([]model.POI, error) {
	query := `
		SELECT id, name, type, latitude, longitude, description
		FROM pois
		ORDER BY created_at ASC
	`
	var pois []model.POI
	if err := r.db.SelectContext(ctx, &pois, query); err != nil {
		return nil, fmt.Errorf("failed to fetch pois: %w", err)
	}
	return pois, nil
}

// LogChat appends one chat turn to the transcript log
func (r *PostgresRepository) LogChat(ctx context.Context, sessionID, role, text string) error {
	query := `
		INSERT INTO chat_logs (session_id, role, text)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, sessionID, role, text); err != nil {
		return fmt.Errorf("failed to log chat turn: %w", err)
	}
	return nil
}
