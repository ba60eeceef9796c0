package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/arenhart/tradepost/internal/roster"
	"github.com/arenhart/tradepost/internal/store"
)

// SnapshotRepository persists whole roster snapshots. Each save replaces
// the previous roster; the snapshot is the unit of persistence.
type SnapshotRepository struct {
	db *store.Database
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *store.Database) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save replaces the stored roster with the given snapshot and records
// the run in scrape_runs.
func (r *SnapshotRepository) Save(ctx context.Context, snap roster.Snapshot) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning snapshot save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM trade_players"); err != nil {
		return fmt.Errorf("clearing previous roster: %w", err)
	}

	totalCards := 0
	failures := 0

	for pos, player := range snap.Players {
		var playerID int
		err := tx.QueryRowContext(ctx, `
			INSERT INTO trade_players (name, name_key, contact, fetch_errors, position, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING player_id
		`, player.Name, player.Key(), player.Contact, pq.Array(player.FetchErrors), pos, snap.ScrapedAt).Scan(&playerID)
		if err != nil {
			return fmt.Errorf("inserting player %s: %w", player.Name, err)
		}

		if err := insertCards(ctx, tx, playerID, "have", player.Have); err != nil {
			return err
		}
		if err := insertCards(ctx, tx, playerID, "want", player.Want); err != nil {
			return err
		}

		totalCards += len(player.Have) + len(player.Want)
		failures += len(player.FetchErrors)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scrape_runs (started_at, players, cards, failures)
		VALUES ($1, $2, $3, $4)
	`, snap.ScrapedAt, len(snap.Players), totalCards, failures)
	if err != nil {
		return fmt.Errorf("recording scrape run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}

	return nil
}

func insertCards(ctx context.Context, tx *sql.Tx, playerID int, listType string, cards []roster.CardRecord) error {
	for pos, card := range cards {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO trade_cards (player_id, list_type, name, quality, variant, language, quantity, price, detail_url, image_url, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, playerID, listType, card.Name, card.Quality, card.Variant, card.Language,
			card.Quantity, card.Price, card.DetailURL, card.ImageURL, pos)
		if err != nil {
			return fmt.Errorf("inserting %s card %s: %w", listType, card.Name, err)
		}
	}
	return nil
}

// Load reads the stored roster back in its original order. An empty
// database yields an empty snapshot, not an error.
func (r *SnapshotRepository) Load(ctx context.Context) (roster.Snapshot, error) {
	snap := roster.Snapshot{}

	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT player_id, name, contact, fetch_errors, updated_at
		FROM trade_players
		ORDER BY position
	`)
	if err != nil {
		return snap, fmt.Errorf("querying players: %w", err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		var player roster.PlayerRoster
		var fetchErrors pq.StringArray
		var updatedAt time.Time
		if err := rows.Scan(&id, &player.Name, &player.Contact, &fetchErrors, &updatedAt); err != nil {
			return snap, fmt.Errorf("scanning player: %w", err)
		}
		player.FetchErrors = []string(fetchErrors)
		if len(player.FetchErrors) == 0 {
			player.FetchErrors = nil
		}
		if updatedAt.After(snap.ScrapedAt) {
			snap.ScrapedAt = updatedAt
		}
		snap.Players = append(snap.Players, player)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterating players: %w", err)
	}

	for i, id := range ids {
		have, want, err := r.loadCards(ctx, id)
		if err != nil {
			return snap, err
		}
		snap.Players[i].Have = have
		snap.Players[i].Want = want
	}

	return snap, nil
}

func (r *SnapshotRepository) loadCards(ctx context.Context, playerID int) (have, want []roster.CardRecord, err error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT list_type, name, quality, variant, language, quantity, price, detail_url, image_url
		FROM trade_cards
		WHERE player_id = $1
		ORDER BY list_type, position
	`, playerID)
	if err != nil {
		return nil, nil, fmt.Errorf("querying cards: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var listType string
		var card roster.CardRecord
		err := rows.Scan(&listType, &card.Name, &card.Quality, &card.Variant, &card.Language,
			&card.Quantity, &card.Price, &card.DetailURL, &card.ImageURL)
		if err != nil {
			return nil, nil, fmt.Errorf("scanning card: %w", err)
		}
		if listType == "have" {
			have = append(have, card)
		} else {
			want = append(want, card)
		}
	}

	return have, want, rows.Err()
}
