// Package sheets loads the roster configuration table: one row per
// player with name, optional contact and the have/want listing URLs.
// The table lives in a Google Sheet published as CSV; a local CSV file
// works the same way for offline runs.
package sheets

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/arenhart/tradepost/internal/roster"
)

// Column headers as they appear in the configuration sheet.
const (
	ColPlayer  = "Jogador"
	ColContact = "Whatsapp (opcional)"
	ColHave    = "Link do Have"
	ColWant    = "Link do Want"
)

// Client fetches roster configuration over HTTP.
type Client struct {
	httpClient *http.Client
	csvURL     string
}

// NewClient creates a roster configuration client for a published CSV URL.
func NewClient(csvURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		csvURL:     csvURL,
	}
}

// FetchEntries downloads and parses the configuration table.
func (c *Client) FetchEntries() ([]roster.ConfigEntry, error) {
	resp, err := c.httpClient.Get(c.csvURL)
	if err != nil {
		return nil, fmt.Errorf("fetching roster configuration: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("roster configuration returned status %d", resp.StatusCode)
	}

	return parseEntries(resp.Body)
}

// LoadFile reads the configuration table from a local CSV file.
func LoadFile(path string) ([]roster.ConfigEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster configuration: %w", err)
	}
	defer f.Close()

	return parseEntries(f)
}

// parseEntries reads the CSV header and maps each row to a ConfigEntry.
// Rows without a player name are dropped.
func parseEntries(r io.Reader) ([]roster.ConfigEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading configuration header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	if _, ok := columns[ColPlayer]; !ok {
		return nil, fmt.Errorf("configuration is missing the %q column", ColPlayer)
	}

	var entries []roster.ConfigEntry
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading configuration row: %w", err)
		}

		entry := roster.ConfigEntry{
			Name:    field(row, columns, ColPlayer),
			Contact: field(row, columns, ColContact),
			HaveURL: field(row, columns, ColHave),
			WantURL: field(row, columns, ColWant),
		}
		if entry.Name == "" {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func field(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
