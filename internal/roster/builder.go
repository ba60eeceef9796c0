package roster

import (
	"context"
	"fmt"
	"log"
	"time"
)

// ListFetcher retrieves one card list from a marketplace listing URL.
// An empty URL yields no records and no error; a nil error with zero
// records therefore means "no list configured" or "list is empty",
// while a non-nil error means the whole fetch failed.
type ListFetcher interface {
	FetchList(ctx context.Context, listURL string) ([]CardRecord, error)
}

// Builder assembles a Snapshot from the configured player entries.
type Builder struct {
	fetcher ListFetcher
}

// NewBuilder creates a roster builder on top of a list fetcher.
func NewBuilder(fetcher ListFetcher) *Builder {
	return &Builder{fetcher: fetcher}
}

// Build fetches the have and want lists of every configured player.
// A failed list is recorded on that player's entry and never blocks the
// other list or the remaining players. Duplicate player names (by
// normalized key) keep the first entry and drop the rest.
func (b *Builder) Build(ctx context.Context, entries []ConfigEntry) (Snapshot, error) {
	snap := Snapshot{ScrapedAt: time.Now()}
	seen := make(map[string]bool)

	for _, entry := range entries {
		key := NormalizeName(entry.Name)
		if key == "" {
			continue
		}
		if seen[key] {
			log.Printf("⚠️  Duplicate player %q in configuration, keeping first entry", entry.Name)
			continue
		}
		seen[key] = true

		player := PlayerRoster{
			Name:    entry.Name,
			Contact: entry.Contact,
		}

		player.Have = b.fetchList(ctx, entry.HaveURL, "have", &player)
		player.Want = b.fetchList(ctx, entry.WantURL, "want", &player)

		log.Printf("✓ %s: %d have, %d want", player.Name, len(player.Have), len(player.Want))
		snap.Players = append(snap.Players, player)

		if err := ctx.Err(); err != nil {
			return snap, fmt.Errorf("roster build cancelled: %w", err)
		}
	}

	return snap, nil
}

func (b *Builder) fetchList(ctx context.Context, listURL, listType string, player *PlayerRoster) []CardRecord {
	records, err := b.fetcher.FetchList(ctx, listURL)
	if err != nil {
		log.Printf("⚠️  %s list for %s failed: %v", listType, player.Name, err)
		player.FetchErrors = append(player.FetchErrors, fmt.Sprintf("%s: %v", listType, err))
		return nil
	}
	return records
}
