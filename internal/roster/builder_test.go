package roster

import (
	"context"
	"errors"
	"testing"
)

// fakeFetcher serves canned lists per URL.
type fakeFetcher struct {
	lists map[string][]CardRecord
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) FetchList(ctx context.Context, listURL string) ([]CardRecord, error) {
	f.calls = append(f.calls, listURL)
	if err, ok := f.errs[listURL]; ok {
		return nil, err
	}
	return f.lists[listURL], nil
}

func TestBuildAssemblesBothLists(t *testing.T) {
	fetcher := &fakeFetcher{lists: map[string][]CardRecord{
		"have-url": {{Name: "Bolt", Quantity: 2}},
		"want-url": {{Name: "Shock"}},
	}}
	builder := NewBuilder(fetcher)

	snap, err := builder.Build(context.Background(), []ConfigEntry{
		{Name: "Ana", Contact: "+55 11 90000-0000", HaveURL: "have-url", WantURL: "want-url"},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(snap.Players) != 1 {
		t.Fatalf("expected 1 player, got %d", len(snap.Players))
	}
	player := snap.Players[0]
	if player.Name != "Ana" || player.Contact != "+55 11 90000-0000" {
		t.Errorf("player identity lost: %+v", player)
	}
	if len(player.Have) != 1 || player.Have[0].Name != "Bolt" {
		t.Errorf("have list wrong: %v", player.Have)
	}
	if len(player.Want) != 1 || player.Want[0].Name != "Shock" {
		t.Errorf("want list wrong: %v", player.Want)
	}
	if len(player.FetchErrors) != 0 {
		t.Errorf("unexpected fetch errors: %v", player.FetchErrors)
	}
}

func TestBuildIsolatesListFailures(t *testing.T) {
	fetcher := &fakeFetcher{
		lists: map[string][]CardRecord{
			"ana-want": {{Name: "Shock"}},
			"bo-have":  {{Name: "Path"}},
			"bo-want":  {{Name: "Opt"}},
		},
		errs: map[string]error{
			"ana-have": errors.New("render timeout"),
		},
	}
	builder := NewBuilder(fetcher)

	snap, err := builder.Build(context.Background(), []ConfigEntry{
		{Name: "Ana", HaveURL: "ana-have", WantURL: "ana-want"},
		{Name: "Bo", HaveURL: "bo-have", WantURL: "bo-want"},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	ana := snap.Players[0]
	if len(ana.Have) != 0 {
		t.Errorf("failed have list should be empty, got %v", ana.Have)
	}
	if len(ana.Want) != 1 {
		t.Errorf("want list must survive the have failure, got %v", ana.Want)
	}
	if len(ana.FetchErrors) != 1 {
		t.Errorf("expected one recorded fetch error, got %v", ana.FetchErrors)
	}

	// The other player is untouched by Ana's failure.
	bo := snap.Players[1]
	if len(bo.Have) != 1 || len(bo.Want) != 1 || len(bo.FetchErrors) != 0 {
		t.Errorf("unrelated player affected by failure: %+v", bo)
	}
}

func TestBuildEmptyListURLs(t *testing.T) {
	fetcher := &fakeFetcher{}
	builder := NewBuilder(fetcher)

	snap, err := builder.Build(context.Background(), []ConfigEntry{
		{Name: "Ana"},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	player := snap.Players[0]
	if len(player.Have) != 0 || len(player.Want) != 0 || len(player.FetchErrors) != 0 {
		t.Errorf("player with no list URLs should be empty and error-free: %+v", player)
	}
}

func TestBuildSkipsDuplicateAndBlankNames(t *testing.T) {
	fetcher := &fakeFetcher{lists: map[string][]CardRecord{
		"first": {{Name: "Bolt"}},
	}}
	builder := NewBuilder(fetcher)

	snap, err := builder.Build(context.Background(), []ConfigEntry{
		{Name: "Ana", HaveURL: "first"},
		{Name: "  ANA  ", HaveURL: "second"},
		{Name: "   "},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(snap.Players) != 1 {
		t.Fatalf("expected 1 player after dedup, got %d", len(snap.Players))
	}
	if snap.Players[0].Have[0].Name != "Bolt" {
		t.Errorf("kept the wrong entry: %+v", snap.Players[0])
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ana", "ana"},
		{"  Ana Clara  ", "ana clara"},
		{"ANA", "ana"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFindPlayer(t *testing.T) {
	snap := Snapshot{Players: []PlayerRoster{
		{Name: "Ana Clara"},
		{Name: "Bo"},
	}}

	if _, ok := snap.FindPlayer("  ana clara "); !ok {
		t.Errorf("case/whitespace-insensitive lookup failed")
	}
	if _, ok := snap.FindPlayer("caio"); ok {
		t.Errorf("found a player that does not exist")
	}
}
