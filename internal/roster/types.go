package roster

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// CardRecord is one stock entry scraped from a marketplace listing.
// JSON field names match the cartas.json snapshot format produced by
// earlier scraping runs, so old snapshots keep loading.
type CardRecord struct {
	Name      string `json:"Nome"`
	Quality   string `json:"Qualidade"`
	Variant   string `json:"Extra"`
	Language  string `json:"Idioma"`
	Quantity  int    `json:"Quantidade"`
	Price     string `json:"Preço Venda (R$)"`
	DetailURL string `json:"Imagem"`
	ImageURL  string `json:"ImagemURL,omitempty"`
}

// SalePrice parses the display price ("12,50", "1.234,00") into a float.
// Returns false when the text does not parse; the raw string stays the
// source of truth either way.
func (c CardRecord) SalePrice() (float64, bool) {
	text := strings.TrimSpace(c.Price)
	if text == "" {
		return 0, false
	}
	text = strings.ReplaceAll(text, ".", "")
	text = strings.ReplaceAll(text, ",", ".")
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// UnmarshalJSON accepts Quantidade as either a number or the free-text
// string older snapshots carry ("4", "2 unid.").
func (c *CardRecord) UnmarshalJSON(data []byte) error {
	type plain CardRecord
	aux := struct {
		Quantity json.RawMessage `json:"Quantidade"`
		*plain
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Quantity = decodeQuantity(aux.Quantity)
	return nil
}

// decodeQuantity reads a quantity that may be a JSON number or a string
// with a leading integer. Anything else counts as zero.
func decodeQuantity(raw json.RawMessage) int {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0
	}
	text = strings.TrimSpace(text)
	end := 0
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	qty, err := strconv.Atoi(text[:end])
	if err != nil || qty < 0 {
		return 0
	}
	return qty
}

// PlayerRoster is one participant with their have and want lists.
type PlayerRoster struct {
	Name        string       `json:"nome"`
	Contact     string       `json:"whatsapp"`
	Have        []CardRecord `json:"have"`
	Want        []CardRecord `json:"want"`
	FetchErrors []string     `json:"fetch_errors,omitempty"`
}

// Key returns the normalized identity key for this player.
func (p PlayerRoster) Key() string {
	return NormalizeName(p.Name)
}

// NormalizeName produces the canonical comparison key for player names
// and card names: trimmed and lowercased. All roster lookups go through
// this, never raw string comparison.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Snapshot is the full roster of one scraping run. It is immutable once
// built; the matcher only ever reads it.
type Snapshot struct {
	Players   []PlayerRoster
	ScrapedAt time.Time
}

// FindPlayer looks up a roster entry by normalized name key.
func (s Snapshot) FindPlayer(name string) (PlayerRoster, bool) {
	key := NormalizeName(name)
	for _, p := range s.Players {
		if p.Key() == key {
			return p, true
		}
	}
	return PlayerRoster{}, false
}

// ConfigEntry is one row of the external roster configuration table.
type ConfigEntry struct {
	Name    string
	Contact string
	HaveURL string
	WantURL string
}
