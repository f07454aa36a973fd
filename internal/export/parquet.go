// Package export writes the persisted card catalog out as Parquet datasets
// and YAML summary reports.
package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/cardbinder/cardbinder/internal/models"
)

// CardRecord is the flat Parquet row shape for a created card.
type CardRecord struct {
	ID         string  `json:"id" parquet:"id"`
	Title      string  `json:"title" parquet:"title"`
	ImagePath  string  `json:"image_path" parquet:"image_path"`
	Rarity     string  `json:"rarity" parquet:"rarity"`
	Tags       string  `json:"tags" parquet:"tags"` // comma-joined
	Player     string  `json:"player" parquet:"player"`
	Team       string  `json:"team" parquet:"team"`
	Series     string  `json:"series" parquet:"series"`
	Year       string  `json:"year" parquet:"year"`
	Confidence float64 `json:"confidence" parquet:"confidence"`
	Visibility string  `json:"visibility" parquet:"visibility"`
	ForSale    bool    `json:"for_sale" parquet:"for_sale"`
	Price      float64 `json:"price" parquet:"price"`
	CreatedAt  int64   `json:"created_at" parquet:"created_at"` // unix seconds
}

func toRecord(card models.CreatedCard) CardRecord {
	return CardRecord{
		ID:         card.ID,
		Title:      card.Title,
		ImagePath:  card.ImagePath,
		Rarity:     card.Rarity,
		Tags:       strings.Join(card.Tags, ","),
		Player:     card.Player,
		Team:       card.Team,
		Series:     card.Series,
		Year:       card.Year,
		Confidence: card.Confidence,
		Visibility: string(card.Visibility),
		ForSale:    card.ForSale,
		Price:      card.Price,
		CreatedAt:  card.CreatedAt.Unix(),
	}
}

// FromRecord converts a Parquet row back into a catalog card.
func FromRecord(rec CardRecord) models.CreatedCard {
	var tags []string
	if rec.Tags != "" {
		tags = strings.Split(rec.Tags, ",")
	}
	return models.CreatedCard{
		ID:         rec.ID,
		Title:      rec.Title,
		ImagePath:  rec.ImagePath,
		Rarity:     rec.Rarity,
		Tags:       tags,
		Player:     rec.Player,
		Team:       rec.Team,
		Series:     rec.Series,
		Year:       rec.Year,
		Confidence: rec.Confidence,
		Visibility: models.CardVisibility(rec.Visibility),
		ForSale:    rec.ForSale,
		Price:      rec.Price,
		CreatedAt:  time.Unix(rec.CreatedAt, 0),
	}
}

// WriteParquet writes the catalog to a Parquet file at path.
func WriteParquet(path string, cards []models.CreatedCard) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[CardRecord](file)
	records := make([]CardRecord, len(cards))
	for i, card := range cards {
		records[i] = toRecord(card)
	}
	if len(records) > 0 {
		if _, err := writer.Write(records); err != nil {
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ReadParquet loads a catalog previously written with WriteParquet.
func ReadParquet(path string) ([]models.CreatedCard, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[CardRecord](pf)
	defer reader.Close()

	var cards []models.CreatedCard
	buf := make([]CardRecord, 64)
	for {
		n, err := reader.Read(buf)
		for i := 0; i < n; i++ {
			cards = append(cards, FromRecord(buf[i]))
		}
		if err != nil {
			break
		}
	}
	return cards, nil
}
