package store

import (
	"os"
	"path/filepath"
	"testing"
)

const catalogJSON = `{
	"teams": [{"id": "team-h", "name": "Home", "abbreviation": "HOM"}],
	"promotions": [
		{"id": "p1", "teamId": "team-h", "title": "Free tacos", "triggerCondition": "team_win", "active": true}
	],
	"games": [{"gameId": "g1", "teamId": "team-h"}]
}`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}
	return path
}

func TestLoadCatalogSeedsStore(t *testing.T) {
	s := NewMemory()

	catalog, err := s.LoadCatalog(writeCatalog(t, catalogJSON))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(catalog.Games) != 1 || catalog.Games[0].GameID != "g1" {
		t.Fatalf("unexpected games %+v", catalog.Games)
	}

	if _, ok := s.GetTeam("team-h"); !ok {
		t.Fatal("expected team seeded")
	}
	promos := s.PromotionsForTeam("team-h")
	if len(promos) != 1 || promos[0].TriggerCondition != "team_win" {
		t.Fatalf("unexpected promotions %+v", promos)
	}
	if teamID, ok := s.TeamForGame("g1"); !ok || teamID != "team-h" {
		t.Fatalf("expected game link seeded, got %q", teamID)
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	s := NewMemory()
	if _, err := s.LoadCatalog(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing catalog")
	}
}

func TestLoadCatalogMalformed(t *testing.T) {
	s := NewMemory()
	if _, err := s.LoadCatalog(writeCatalog(t, "{broken")); err == nil {
		t.Fatal("expected decode error")
	}
}
