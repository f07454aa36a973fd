package export

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cardbinder/cardbinder/internal/models"
)

// Report summarizes the persisted catalog.
type Report struct {
	GeneratedAt string         `yaml:"generatedat"`
	TotalCards  int            `yaml:"totalcards"`
	ForSale     int            `yaml:"forsale"`
	Public      int            `yaml:"public"`
	ByRarity    map[string]int `yaml:"byrarity"`
	BySeries    map[string]int `yaml:"byseries,omitempty"`
	Rarities    []string       `yaml:"rarities"` // sorted, for stable output
}

// BuildReport computes catalog summary counts.
func BuildReport(cards []models.CreatedCard) Report {
	report := Report{
		GeneratedAt: time.Now().Format(time.RFC3339),
		TotalCards:  len(cards),
		ByRarity:    make(map[string]int),
		BySeries:    make(map[string]int),
	}
	for _, card := range cards {
		report.ByRarity[card.Rarity]++
		if card.Series != "" {
			report.BySeries[card.Series]++
		}
		if card.ForSale {
			report.ForSale++
		}
		if card.Visibility == models.VisibilityPublic {
			report.Public++
		}
	}
	for rarity := range report.ByRarity {
		report.Rarities = append(report.Rarities, rarity)
	}
	sort.Strings(report.Rarities)
	return report
}

// SaveReportYAML writes the catalog summary to a YAML file.
func SaveReportYAML(path string, cards []models.CreatedCard) error {
	report := BuildReport(cards)

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
