package roster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cartas.json")

	snap := Snapshot{Players: []PlayerRoster{
		{
			Name:    "Ana",
			Contact: "+55 11 90000-0000",
			Have: []CardRecord{{
				Name:      "Raio / Lightning Bolt",
				Quality:   "NM",
				Variant:   "Foil",
				Language:  "Português",
				Quantity:  4,
				Price:     "12,50",
				DetailURL: "https://ligamagic.com.br/card?id=1",
			}},
			Want: []CardRecord{{Name: "Shock"}},
		},
		{Name: "Bo", FetchErrors: []string{"have: render timeout"}},
	}}

	if err := SaveFile(path, snap); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	loaded := LoadFile(path)
	if len(loaded.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(loaded.Players))
	}

	ana := loaded.Players[0]
	if ana.Name != "Ana" || ana.Contact != "+55 11 90000-0000" {
		t.Errorf("player fields lost: %+v", ana)
	}
	if len(ana.Have) != 1 || ana.Have[0].Name != "Raio / Lightning Bolt" || ana.Have[0].Quantity != 4 {
		t.Errorf("have list lost: %+v", ana.Have)
	}
	if loaded.Players[1].FetchErrors[0] != "have: render timeout" {
		t.Errorf("fetch errors lost: %+v", loaded.Players[1])
	}
}

func TestSnapshotLegacyFieldNames(t *testing.T) {
	// The file format must stay readable by (and written for) the
	// pre-existing cartas.json consumers: exact field names matter.
	path := filepath.Join(t.TempDir(), "cartas.json")

	snap := Snapshot{Players: []PlayerRoster{{
		Name: "Ana",
		Have: []CardRecord{{Name: "Raio", Price: "12,50", Quality: "NM"}},
	}}}

	if err := SaveFile(path, snap); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}

	for _, field := range []string{`"nome"`, `"whatsapp"`, `"have"`, `"want"`, `"Nome"`, `"Qualidade"`, `"Extra"`, `"Idioma"`, `"Quantidade"`, `"Preço Venda (R$)"`, `"Imagem"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("snapshot file is missing legacy field %s", field)
		}
	}
}

func TestLoadFileLegacyStringQuantities(t *testing.T) {
	// Earlier scraping runs stored Quantidade as the raw cell text, so a
	// snapshot on disk may carry "4" or "2 unid." where new runs write 4.
	legacy := `[
  {
    "nome": "Ana",
    "whatsapp": "+55 11 90000-0000",
    "have": [
      {"Nome": "Raio", "Qualidade": "NM", "Extra": "", "Idioma": "Português", "Quantidade": "4", "Preço Venda (R$)": "12,50", "Imagem": "https://ligamagic.com.br/card?id=1"}
    ],
    "want": [
      {"Nome": "Choque", "Quantidade": "2 unid."},
      {"Nome": "Contramágica", "Quantidade": 3}
    ]
  }
]`
	path := filepath.Join(t.TempDir(), "cartas.json")
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatalf("writing legacy snapshot: %v", err)
	}

	snap := LoadFile(path)
	if len(snap.Players) != 1 {
		t.Fatalf("legacy snapshot must load, got %d players", len(snap.Players))
	}

	ana := snap.Players[0]
	if len(ana.Have) != 1 || ana.Have[0].Quantity != 4 {
		t.Errorf("string quantity lost: %+v", ana.Have)
	}
	if len(ana.Want) != 2 || ana.Want[0].Quantity != 2 || ana.Want[1].Quantity != 3 {
		t.Errorf("mixed quantity forms lost: %+v", ana.Want)
	}
	if ana.Have[0].Name != "Raio" || ana.Have[0].Price != "12,50" {
		t.Errorf("card fields lost alongside quantity decode: %+v", ana.Have[0])
	}
}

func TestLoadFileMissing(t *testing.T) {
	snap := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if len(snap.Players) != 0 {
		t.Errorf("missing file must load as empty snapshot, got %d players", len(snap.Players))
	}
}

func TestLoadFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cartas.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	snap := LoadFile(path)
	if len(snap.Players) != 0 {
		t.Errorf("corrupt file must load as empty snapshot, got %d players", len(snap.Players))
	}
}
