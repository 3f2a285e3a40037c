package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/khanakhazana/foodlog/internal/domain"
)

func TestLogRepositoryAppendAndQuery(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "foodlog_test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	repo := NewLogRepository(db)

	first, err := repo.Append(ctx, domain.LogEntry{
		Date:       "2025-03-10",
		DishName:   "Dal Makhani",
		Amount:     1.5,
		AmountUnit: "Servings",
		Nutrition:  domain.NutrientVector{Calories: 427.5, Protein: 11.1},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if first.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	second, err := repo.Append(ctx, domain.LogEntry{
		Date:       "2025-03-10",
		DishName:   "Creatine",
		Amount:     5,
		AmountUnit: domain.CreatineUnit,
		Nutrition:  domain.NutrientVector{Creatine: 5},
	})
	if err != nil {
		t.Fatalf("append second: %v", err)
	}

	entries, err := repo.QueryByDate(ctx, "2025-03-10")
	if err != nil {
		t.Fatalf("query by date: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != first.ID || entries[1].ID != second.ID {
		t.Fatalf("expected insertion order, got %d then %d", entries[0].ID, entries[1].ID)
	}
	if entries[0].Nutrition.Calories != 427.5 {
		t.Fatalf("calories round trip: got %v", entries[0].Nutrition.Calories)
	}
	if entries[1].Nutrition.Creatine != 5 {
		t.Fatalf("creatine round trip: got %v", entries[1].Nutrition.Creatine)
	}

	empty, err := repo.QueryByDate(ctx, "2025-03-11")
	if err != nil {
		t.Fatalf("query empty date: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no entries, got %d", len(empty))
	}
}

func TestLogRepositoryQueryByDatesAndRange(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "foodlog_test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	repo := NewLogRepository(db)

	for _, e := range []domain.LogEntry{
		{Date: "2025-03-08", DishName: "Idli", Amount: 2, AmountUnit: "Servings", Nutrition: domain.NutrientVector{Calories: 116}},
		{Date: "2025-03-09", DishName: "Dosa", Amount: 1, AmountUnit: "Servings", Nutrition: domain.NutrientVector{Calories: 168}},
		{Date: "2025-03-10", DishName: "Upma", Amount: 1, AmountUnit: "Servings", Nutrition: domain.NutrientVector{Calories: 192}},
	} {
		if _, err := repo.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byDates, err := repo.QueryByDates(ctx, []string{"2025-03-10", "2025-03-08"})
	if err != nil {
		t.Fatalf("query by dates: %v", err)
	}
	if len(byDates) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(byDates))
	}
	if byDates[0].Date != "2025-03-10" || byDates[1].Date != "2025-03-08" {
		t.Fatalf("expected newest date first, got %s then %s", byDates[0].Date, byDates[1].Date)
	}

	none, err := repo.QueryByDates(ctx, nil)
	if err != nil {
		t.Fatalf("query by empty dates: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no entries for empty date list")
	}

	inRange, err := repo.QueryByDateRange(ctx, "2025-03-08", "2025-03-09")
	if err != nil {
		t.Fatalf("query by range: %v", err)
	}
	if len(inRange) != 2 {
		t.Fatalf("expected 2 entries in range, got %d", len(inRange))
	}
}

func TestLogRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "foodlog_test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	repo := NewLogRepository(db)

	kept, _ := repo.Append(ctx, domain.LogEntry{Date: "2025-03-09", DishName: "Poha", Amount: 1, AmountUnit: "Servings"})
	doomed, _ := repo.Append(ctx, domain.LogEntry{Date: "2025-03-10", DishName: "Jalebi", Amount: 1, AmountUnit: "Servings"})
	_, _ = repo.Append(ctx, domain.LogEntry{Date: "2025-03-10", DishName: "Samosa", Amount: 2, AmountUnit: "Servings"})

	if err := repo.DeleteByID(ctx, doomed.ID); err != nil {
		t.Fatalf("delete by id: %v", err)
	}
	if err := repo.DeleteByID(ctx, 99999); err != nil {
		t.Fatalf("delete missing id should be a no-op: %v", err)
	}

	remaining, err := repo.QueryByDate(ctx, "2025-03-10")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(remaining) != 1 || remaining[0].DishName != "Samosa" {
		t.Fatalf("unexpected remaining entries: %+v", remaining)
	}

	if err := repo.DeleteByDate(ctx, "2025-03-10"); err != nil {
		t.Fatalf("delete by date: %v", err)
	}
	cleared, _ := repo.QueryByDate(ctx, "2025-03-10")
	if len(cleared) != 0 {
		t.Fatalf("expected day cleared, got %d entries", len(cleared))
	}
	other, _ := repo.QueryByDate(ctx, "2025-03-09")
	if len(other) != 1 || other[0].ID != kept.ID {
		t.Fatalf("other day should be untouched: %+v", other)
	}
}

func TestLogRepositoryCoercesContaminatedValues(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "foodlog_test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	repo := NewLogRepository(db)

	// A row written by an older client with text in numeric columns.
	err = db.Exec(`INSERT INTO food_log (date, dish_name, amount, amount_unit, calories, protein, sodium)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"2025-03-10", "Kheer", 1.0, "Servings", "not-a-number", "7.4", nil).Error
	if err != nil {
		t.Fatalf("insert raw row: %v", err)
	}

	entries, err := repo.QueryByDate(ctx, "2025-03-10")
	if err != nil {
		t.Fatalf("query contaminated row: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0].Nutrition
	if got.Calories != 0 {
		t.Fatalf("contaminated calories should coerce to 0, got %v", got.Calories)
	}
	if got.Protein != 7.4 {
		t.Fatalf("numeric text should parse, got %v", got.Protein)
	}
	if got.Sodium != 0 {
		t.Fatalf("NULL sodium should read as 0, got %v", got.Sodium)
	}
}

func TestOverrideRepositorySaveAndGet(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "foodlog_test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	repo := NewOverrideRepository(db)

	_, found, err := repo.Get(ctx, "Paneer Tikka")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if found {
		t.Fatalf("expected no override before save")
	}

	calories := 310.0
	protein := 18.0
	saved, err := repo.Save(ctx, domain.Override{
		DishName: "Paneer Tikka",
		Values:   domain.OverrideVector{Calories: &calories, Protein: &protein},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Values.Calories == nil || *saved.Values.Calories != 310 {
		t.Fatalf("saved calories: %+v", saved.Values.Calories)
	}

	// A second save replaces the whole row: protein goes back to NULL.
	fats := 22.0
	if _, err := repo.Save(ctx, domain.Override{
		DishName: "Paneer Tikka",
		Values:   domain.OverrideVector{Calories: &calories, Fats: &fats},
	}); err != nil {
		t.Fatalf("resave: %v", err)
	}

	got, found, err := repo.Get(ctx, "Paneer Tikka")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found {
		t.Fatalf("expected override after save")
	}
	if got.Values.Protein != nil {
		t.Fatalf("protein should be NULL after full-row replace, got %v", *got.Values.Protein)
	}
	if got.Values.Fats == nil || *got.Values.Fats != 22 {
		t.Fatalf("fats should be 22, got %+v", got.Values.Fats)
	}
}

func TestSessionRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "foodlog_test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	repo := NewSessionRepository(db)

	created, err := repo.Create(ctx, domain.Session{TokenHash: "abc123", ExpiresAt: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	got, err := repo.GetByTokenHash(ctx, "abc123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("id mismatch: %d vs %d", got.ID, created.ID)
	}

	if err := repo.DeleteByTokenHash(ctx, "abc123"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByTokenHash(ctx, "abc123"); err == nil {
		t.Fatalf("expected error after delete")
	}
}
