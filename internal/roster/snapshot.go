package roster

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

// DefaultSnapshotPath is where scraping runs drop their output.
const DefaultSnapshotPath = "cartas.json"

// SaveFile writes the snapshot to disk in the cartas.json format: a bare
// ordered array of player entries.
func SaveFile(path string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap.Players, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	return nil
}

// LoadFile reads a snapshot from disk. A missing or corrupt file is not an
// error: the matcher treats that as an empty roster and reports zero
// opportunities instead of crashing.
func LoadFile(path string) Snapshot {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️  Snapshot %s unreadable: %v (treating as empty)", path, err)
		}
		return Snapshot{}
	}

	var players []PlayerRoster
	if err := json.Unmarshal(data, &players); err != nil {
		log.Printf("⚠️  Snapshot %s corrupt: %v (treating as empty)", path, err)
		return Snapshot{}
	}

	scrapedAt := time.Now()
	if info, err := os.Stat(path); err == nil {
		scrapedAt = info.ModTime()
	}

	return Snapshot{Players: players, ScrapedAt: scrapedAt}
}
