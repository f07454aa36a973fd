// Package repository persists created cards to SQLite. This is the exit of
// the review pipeline: once a card lands here it is no longer part of any
// review session.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cardbinder/cardbinder/internal/models"
)

// CardRepository stores created cards in a SQLite database.
type CardRepository struct {
	db *sql.DB
}

// New opens (creating if needed) the card database at path.
func New(path string) (*CardRepository, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		slog.Debug("Failed to set sqlite busy_timeout", "error", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		slog.Debug("Failed to set sqlite journal_mode=WAL", "error", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		slog.Debug("Failed to set sqlite synchronous=NORMAL", "error", err)
	}

	repo := &CardRepository{db: db}
	if err := repo.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *CardRepository) initialize() error {
	schema := `
CREATE TABLE IF NOT EXISTS cards (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	image_path TEXT NOT NULL,
	rarity TEXT NOT NULL DEFAULT 'common',
	tags TEXT NOT NULL DEFAULT '[]',
	player TEXT,
	team TEXT,
	series TEXT,
	year TEXT,
	confidence REAL NOT NULL DEFAULT 0,
	visibility TEXT NOT NULL DEFAULT 'private',
	for_sale INTEGER NOT NULL DEFAULT 0,
	price REAL NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cards_created_at ON cards(created_at);
CREATE INDEX IF NOT EXISTS idx_cards_rarity ON cards(rarity);
`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (r *CardRepository) Close() error {
	return r.db.Close()
}

// Create persists one card, assigning a uuid and timestamp when absent.
// A nil result with no error never occurs; callers treat any error as a
// failed creation.
func (r *CardRepository) Create(ctx context.Context, card models.CreatedCard) (*models.CreatedCard, error) {
	if card.Title == "" {
		return nil, fmt.Errorf("card title is required")
	}
	if card.ImagePath == "" {
		return nil, fmt.Errorf("card image is required")
	}
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	if card.Rarity == "" {
		card.Rarity = "common"
	}
	if card.Visibility == "" {
		card.Visibility = models.VisibilityPrivate
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now()
	}

	tags, err := json.Marshal(card.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO cards (id, title, image_path, rarity, tags, player, team, series, year, confidence, visibility, for_sale, price, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.ID, card.Title, card.ImagePath, card.Rarity, string(tags),
		card.Player, card.Team, card.Series, card.Year,
		card.Confidence, string(card.Visibility), card.ForSale, card.Price, card.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert card: %w", err)
	}

	return &card, nil
}

// CreateBatch persists cards one by one, tolerating per-item failures, and
// returns how many were created.
func (r *CardRepository) CreateBatch(ctx context.Context, cards []models.CreatedCard) (int, error) {
	created := 0
	for _, card := range cards {
		if _, err := r.Create(ctx, card); err != nil {
			slog.Error("Failed to create card", "title", card.Title, "error", err)
			continue
		}
		created++
	}
	if created == 0 && len(cards) > 0 {
		return 0, fmt.Errorf("failed to create any of %d cards", len(cards))
	}
	return created, nil
}

// Get returns the card with the given id.
func (r *CardRepository) Get(ctx context.Context, id string) (*models.CreatedCard, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, image_path, rarity, tags, player, team, series, year, confidence, visibility, for_sale, price, created_at
FROM cards WHERE id = ?`, id)
	card, err := scanCard(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("card not found: %s", id)
	}
	return card, err
}

// List returns all cards, newest first.
func (r *CardRepository) List(ctx context.Context) ([]models.CreatedCard, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, image_path, rarity, tags, player, team, series, year, confidence, visibility, for_sale, price, created_at
FROM cards ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []models.CreatedCard
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *card)
	}
	return cards, rows.Err()
}

// Delete removes the card with the given id.
func (r *CardRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cards WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("card not found: %s", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(row scanner) (*models.CreatedCard, error) {
	var card models.CreatedCard
	var tags, visibility string
	var player, team, series, year sql.NullString
	err := row.Scan(&card.ID, &card.Title, &card.ImagePath, &card.Rarity, &tags,
		&player, &team, &series, &year,
		&card.Confidence, &visibility, &card.ForSale, &card.Price, &card.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &card.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	card.Player = player.String
	card.Team = team.String
	card.Series = series.String
	card.Year = year.String
	card.Visibility = models.CardVisibility(visibility)
	return &card, nil
}
