package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cardbinder/cardbinder/internal/models"
)

func sampleCards() []models.CreatedCard {
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	return []models.CreatedCard{
		{
			ID:         "card-1",
			Title:      "1989 Griffey Rookie",
			ImagePath:  "/uploads/abc.jpg",
			Rarity:     "rare",
			Tags:       []string{"rookie", "mariners"},
			Player:     "Griffey",
			Team:       "Mariners",
			Series:     "Upper Deck",
			Year:       "1989",
			Confidence: 0.92,
			Visibility: models.VisibilityPublic,
			ForSale:    true,
			Price:      150,
			CreatedAt:  base,
		},
		{
			ID:         "card-2",
			Title:      "Common Filler",
			ImagePath:  "/uploads/def.jpg",
			Rarity:     "common",
			Confidence: 0.4,
			Visibility: models.VisibilityPrivate,
			CreatedAt:  base.Add(time.Hour),
		},
		{
			ID:         "card-3",
			Title:      "Another Rare",
			ImagePath:  "/uploads/ghi.jpg",
			Rarity:     "rare",
			Series:     "Upper Deck",
			Confidence: 0.8,
			Visibility: models.VisibilityPublic,
			CreatedAt:  base.Add(2 * time.Hour),
		},
	}
}

func TestParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.parquet")
	cards := sampleCards()

	if err := WriteParquet(path, cards); err != nil {
		t.Fatalf("WriteParquet: %v", err)
	}

	got, err := ReadParquet(path)
	if err != nil {
		t.Fatalf("ReadParquet: %v", err)
	}
	if len(got) != len(cards) {
		t.Fatalf("read %d cards, want %d", len(got), len(cards))
	}

	first := got[0]
	want := cards[0]
	if first.ID != want.ID || first.Title != want.Title || first.Rarity != want.Rarity {
		t.Errorf("first card = %+v", first)
	}
	if len(first.Tags) != 2 || first.Tags[0] != "rookie" || first.Tags[1] != "mariners" {
		t.Errorf("tags = %v", first.Tags)
	}
	if first.Confidence != want.Confidence || first.Price != want.Price || !first.ForSale {
		t.Errorf("numeric fields = %+v", first)
	}
	if first.Visibility != models.VisibilityPublic {
		t.Errorf("visibility = %q", first.Visibility)
	}
	// Timestamps survive at one-second resolution.
	if !first.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("created at = %v, want %v", first.CreatedAt, want.CreatedAt)
	}

	// Card without tags round-trips to none, not [""].
	if len(got[1].Tags) != 0 {
		t.Errorf("empty tags = %v", got[1].Tags)
	}
}

func TestParquetEmptyCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	if err := WriteParquet(path, nil); err != nil {
		t.Fatalf("WriteParquet: %v", err)
	}
	got, err := ReadParquet(path)
	if err != nil {
		t.Fatalf("ReadParquet: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("empty catalog read back %d cards", len(got))
	}
}

func TestBuildReport(t *testing.T) {
	report := BuildReport(sampleCards())

	if report.TotalCards != 3 {
		t.Errorf("total = %d, want 3", report.TotalCards)
	}
	if report.ForSale != 1 {
		t.Errorf("for sale = %d, want 1", report.ForSale)
	}
	if report.Public != 2 {
		t.Errorf("public = %d, want 2", report.Public)
	}
	if report.ByRarity["rare"] != 2 || report.ByRarity["common"] != 1 {
		t.Errorf("by rarity = %v", report.ByRarity)
	}
	if report.BySeries["Upper Deck"] != 2 {
		t.Errorf("by series = %v", report.BySeries)
	}
	if len(report.Rarities) != 2 || report.Rarities[0] != "common" || report.Rarities[1] != "rare" {
		t.Errorf("rarities = %v, want sorted [common rare]", report.Rarities)
	}
	if report.GeneratedAt == "" {
		t.Error("generated at not set")
	}
}

func TestBuildReportEmpty(t *testing.T) {
	report := BuildReport(nil)
	if report.TotalCards != 0 || report.ForSale != 0 || report.Public != 0 {
		t.Errorf("empty report = %+v", report)
	}
	if len(report.Rarities) != 0 {
		t.Errorf("rarities = %v", report.Rarities)
	}
}

func TestSaveReportYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	if err := SaveReportYAML(path, sampleCards()); err != nil {
		t.Fatalf("SaveReportYAML: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if report.TotalCards != 3 {
		t.Errorf("total = %d, want 3", report.TotalCards)
	}
	if report.ByRarity["rare"] != 2 {
		t.Errorf("by rarity = %v", report.ByRarity)
	}
}
