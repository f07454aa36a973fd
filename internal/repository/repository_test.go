package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cardbinder/cardbinder/internal/models"
)

func testRepo(t *testing.T) *CardRepository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "cards.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCreateAndGet(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.CreatedCard{
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
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Error("Create did not assign an id")
	}
	if created.CreatedAt.IsZero() {
		t.Error("Create did not assign a timestamp")
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "1989 Griffey Rookie" {
		t.Errorf("title = %q", got.Title)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "rookie" || got.Tags[1] != "mariners" {
		t.Errorf("tags = %v", got.Tags)
	}
	if got.Player != "Griffey" || got.Team != "Mariners" || got.Series != "Upper Deck" || got.Year != "1989" {
		t.Errorf("metadata = %q %q %q %q", got.Player, got.Team, got.Series, got.Year)
	}
	if got.Confidence != 0.92 {
		t.Errorf("confidence = %v", got.Confidence)
	}
	if got.Visibility != models.VisibilityPublic {
		t.Errorf("visibility = %q", got.Visibility)
	}
	if !got.ForSale || got.Price != 150 {
		t.Errorf("for_sale = %v, price = %v", got.ForSale, got.Price)
	}
}

func TestCreateDefaults(t *testing.T) {
	repo := testRepo(t)

	created, err := repo.Create(context.Background(), models.CreatedCard{
		Title:     "Plain Card",
		ImagePath: "/uploads/x.jpg",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Rarity != "common" {
		t.Errorf("rarity = %q, want common", created.Rarity)
	}
	if created.Visibility != models.VisibilityPrivate {
		t.Errorf("visibility = %q, want private", created.Visibility)
	}

	got, err := repo.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Tags) != 0 {
		t.Errorf("tags = %v, want none", got.Tags)
	}
}

func TestCreateValidation(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	tests := []struct {
		name string
		card models.CreatedCard
	}{
		{"missing title", models.CreatedCard{ImagePath: "/uploads/x.jpg"}},
		{"missing image", models.CreatedCard{Title: "No Image"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := repo.Create(ctx, tt.card); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetMissing(t *testing.T) {
	repo := testRepo(t)
	if _, err := repo.Get(context.Background(), "no-such-id"); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestListNewestFirst(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"oldest", "middle", "newest"} {
		_, err := repo.Create(ctx, models.CreatedCard{
			Title:     title,
			ImagePath: "/uploads/x.jpg",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
	}

	cards, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("List = %d cards, want 3", len(cards))
	}
	want := []string{"newest", "middle", "oldest"}
	for i, card := range cards {
		if card.Title != want[i] {
			t.Errorf("cards[%d] = %q, want %q", i, card.Title, want[i])
		}
	}
}

func TestDelete(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.CreatedCard{Title: "Gone", ImagePath: "/uploads/x.jpg"})
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, created.ID); err == nil {
		t.Error("card survived Delete")
	}
	if err := repo.Delete(ctx, created.ID); err == nil {
		t.Error("expected error deleting an already-deleted card")
	}
}

func TestCreateBatchToleratesPartialFailure(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	cards := []models.CreatedCard{
		{Title: "Good One", ImagePath: "/uploads/a.jpg"},
		{Title: "", ImagePath: "/uploads/b.jpg"}, // fails validation
		{Title: "Good Two", ImagePath: "/uploads/c.jpg"},
	}

	created, err := repo.CreateBatch(ctx, cards)
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}

	stored, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Errorf("stored %d cards, want 2", len(stored))
	}
}

func TestCreateBatchAllFail(t *testing.T) {
	repo := testRepo(t)

	cards := []models.CreatedCard{
		{ImagePath: "/uploads/a.jpg"},
		{ImagePath: "/uploads/b.jpg"},
	}
	if _, err := repo.CreateBatch(context.Background(), cards); err == nil {
		t.Error("expected error when every card fails")
	}
}

func TestCreateBatchEmpty(t *testing.T) {
	repo := testRepo(t)
	created, err := repo.CreateBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("CreateBatch(nil): %v", err)
	}
	if created != 0 {
		t.Errorf("created = %d, want 0", created)
	}
}
