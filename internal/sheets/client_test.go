package sheets

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleCSV = `Jogador,Whatsapp (opcional),Link do Have,Link do Want
Ana,+55 11 90000-0000,https://example.com/have?id=1,https://example.com/want?id=1
Bo,,https://example.com/have?id=2,
,,https://example.com/have?id=9,
Caio,+55 21 98888-0000,,https://example.com/want?id=3
`

func TestFetchEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(sampleCSV))
	}))
	defer server.Close()

	entries, err := NewClient(server.URL).FetchEntries()
	if err != nil {
		t.Fatalf("FetchEntries failed: %v", err)
	}

	// The nameless row is dropped.
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	ana := entries[0]
	if ana.Name != "Ana" || ana.Contact != "+55 11 90000-0000" {
		t.Errorf("entry fields wrong: %+v", ana)
	}
	if ana.HaveURL != "https://example.com/have?id=1" || ana.WantURL != "https://example.com/want?id=1" {
		t.Errorf("entry URLs wrong: %+v", ana)
	}

	// Optional columns may be empty without error.
	if entries[1].Contact != "" || entries[1].WantURL != "" {
		t.Errorf("optional fields should be empty: %+v", entries[1])
	}
	if entries[2].HaveURL != "" {
		t.Errorf("missing have URL should be empty: %+v", entries[2])
	}
}

func TestFetchEntriesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	if _, err := NewClient(server.URL).FetchEntries(); err == nil {
		t.Fatalf("expected an error for non-200 response")
	}
}

func TestParseEntriesMissingPlayerColumn(t *testing.T) {
	_, err := parseEntries(strings.NewReader("Nome,Link\nAna,x\n"))
	if err == nil {
		t.Fatalf("expected an error for configuration without the player column")
	}
	if !strings.Contains(err.Error(), ColPlayer) {
		t.Errorf("error should name the missing column, got: %v", err)
	}
}

func TestParseEntriesRaggedRows(t *testing.T) {
	// Published sheets often drop trailing empty cells; short rows must
	// parse with the missing fields empty.
	csv := "Jogador,Whatsapp (opcional),Link do Have,Link do Want\nAna\n"
	entries, err := parseEntries(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parseEntries failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Ana" || entries[0].HaveURL != "" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}
