package ligamagic

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/arenhart/tradepost/internal/roster"
)

func listingPage(rows ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><table id="listacolecao">`)
	b.WriteString(`<tr><th>Qtd</th><th></th><th></th><th>Carta</th><th>Extra</th><th>Idioma</th><th>Qualidade</th><th></th><th></th><th>Preço</th><th></th></tr>`)
	for _, row := range rows {
		b.WriteString(row)
	}
	b.WriteString(`</table></body></html>`)
	return b.String()
}

func bilingualRow(qty, href, local, foreign, variant, language, quality, price string) string {
	return `<tr><td>` + qty + `</td><td></td><td></td>` +
		`<td><div data-tooltip="card"><a href="` + href + `">` + local + `</a><a href="` + href + `">` + foreign + `</a></div></td>` +
		`<td>` + variant + `</td><td>` + language + `</td><td>` + quality + `</td>` +
		`<td></td><td></td><td>` + price + `</td><td></td></tr>`
}

func firstRow(t *testing.T, page string) *goquery.Selection {
	t.Helper()
	doc, err := ParseHTML(page)
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	rows, ok := CollectionRows(doc)
	if !ok || len(rows) == 0 {
		t.Fatalf("expected at least one data row")
	}
	return rows[0]
}

func TestParseCardRowBilingualName(t *testing.T) {
	page := listingPage(bilingualRow("4", "./card?id=1", "Raio", "Lightning Bolt", "Foil", "Português", "NM", "R$ 12,50"))
	record := ParseCardRow(firstRow(t, page))
	if record == nil {
		t.Fatalf("expected a record, got nil")
	}

	if record.Name != "Raio / Lightning Bolt" {
		t.Errorf("Name = %q, want %q", record.Name, "Raio / Lightning Bolt")
	}
	if record.Quantity != 4 {
		t.Errorf("Quantity = %d, want 4", record.Quantity)
	}
	if record.Variant != "Foil" {
		t.Errorf("Variant = %q, want Foil", record.Variant)
	}
	if record.Language != "Português" {
		t.Errorf("Language = %q, want Português", record.Language)
	}
	if record.Quality != "NM" {
		t.Errorf("Quality = %q, want NM", record.Quality)
	}
	if record.Price != "12,50" {
		t.Errorf("Price = %q, want 12,50 (currency marker stripped)", record.Price)
	}
	if record.DetailURL != Origin+"/card?id=1" {
		t.Errorf("DetailURL = %q, want %q", record.DetailURL, Origin+"/card?id=1")
	}
}

func TestParseCardRowSingleName(t *testing.T) {
	row := `<tr><td>1</td><td></td><td></td>` +
		`<td><div data-tooltip="card"><a href="/card?id=2">Shock</a></div></td>` +
		`<td></td><td>Inglês</td><td>SP</td><td></td><td></td><td>R$ 0,50</td><td></td></tr>`
	record := ParseCardRow(firstRow(t, listingPage(row)))
	if record == nil {
		t.Fatalf("expected a record, got nil")
	}

	if record.Name != "Shock" {
		t.Errorf("Name = %q, want Shock", record.Name)
	}
	if record.DetailURL != Origin+"/card?id=2" {
		t.Errorf("DetailURL = %q, want origin-prefixed path", record.DetailURL)
	}
}

func TestParseCardRowRejected(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{
			"too few cells",
			`<tr><td>1</td><td>Raio</td></tr>`,
		},
		{
			"no card name",
			`<tr><td>1</td><td></td><td></td><td><div data-tooltip="card"></div></td>` +
				`<td></td><td></td><td></td><td></td><td></td><td>R$ 1,00</td><td></td></tr>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if record := ParseCardRow(firstRow(t, listingPage(tt.row))); record != nil {
				t.Errorf("expected row to be skipped, got %+v", record)
			}
		})
	}
}

func TestResolveCardURL(t *testing.T) {
	// Expected URLs are spelled out so a changed origin host fails here:
	// stored snapshots carry this exact host in their card links.
	tests := []struct {
		href string
		want string
	}{
		{"https://example.com/card/1", "https://example.com/card/1"},
		{"/card?id=5", "https://ligamagic.com.br/card?id=5"},
		{"./card?id=5", "https://ligamagic.com.br/card?id=5"},
		{"card?id=5", "https://ligamagic.com.br/card?id=5"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := resolveCardURL(tt.href); got != tt.want {
			t.Errorf("resolveCardURL(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"4", 4},
		{" 12 ", 12},
		{"2 unid.", 2},
		{"", 0},
		{"muitas", 0},
	}

	for _, tt := range tests {
		if got := parseQuantity(tt.text); got != tt.want {
			t.Errorf("parseQuantity(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestSalePriceParsing(t *testing.T) {
	tests := []struct {
		price  string
		want   float64
		parsed bool
	}{
		{"12,50", 12.50, true},
		{"1.234,00", 1234.00, true},
		{"consulte", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		card := roster.CardRecord{Price: tt.price}
		got, ok := card.SalePrice()
		if ok != tt.parsed {
			t.Errorf("SalePrice(%q) parsed = %v, want %v", tt.price, ok, tt.parsed)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("SalePrice(%q) = %v, want %v", tt.price, got, tt.want)
		}
	}
}

func TestCollectionRowsMissingTable(t *testing.T) {
	doc, err := ParseHTML(`<html><body><p>nada aqui</p></body></html>`)
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}

	rows, ok := CollectionRows(doc)
	if ok {
		t.Errorf("expected no table, got one with %d rows", len(rows))
	}
}

func TestCollectionRowsHeaderOnly(t *testing.T) {
	doc, err := ParseHTML(listingPage())
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}

	rows, ok := CollectionRows(doc)
	if !ok {
		t.Fatalf("expected the table to be found")
	}
	if len(rows) != 0 {
		t.Errorf("expected zero data rows, got %d", len(rows))
	}
}
