package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/khanakhazana/foodlog/internal/domain"
)

const servingsCSV = `Dish Name,Calories (kcal),Carbohydrates (g),Protein (g),Fats (g),Free Sugar (g),Fibre (g),Sodium (mg),Calcium (mg),Iron (mg),Vitamin C (mg),Folate (µg)
Dal Makhani,285,16.5,7.4,18.2,1.1,4.3,510,84,2.1,3.5,45
Masala Dosa,387,54.2,7.9,14.8,2.4,3.1,620,61,1.8,4.2,38
Plain Dosa,168,28.1,3.9,3.7,0.4,1.5,242,18,0.9,0,12
`

const gramsCSV = `Dish Name,Calories (kcal),Carbohydrates (g),Protein (g),Fats (g),Free Sugar (g),Fibre (g),Sodium (mg),Calcium (mg),Iron (mg),Vitamin C (mg),Folate (µg)
Dal Makhani,142,8.2,3.7,9.1,0.6,2.2,255,42,1.05,1.75,22.5
`

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestLoadAndLookup(t *testing.T) {
	snap, err := Load(writeCSV(t, "servings.csv", servingsCSV), writeCSV(t, "grams.csv", gramsCSV))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	entry, ok := snap.Lookup("Dal Makhani", domain.BasisServings)
	if !ok {
		t.Fatalf("expected Dal Makhani in servings catalog")
	}
	if entry.PerUnit.Calories != 285 || entry.PerUnit.Sodium != 510 {
		t.Fatalf("unexpected servings values: %+v", entry.PerUnit)
	}

	entry, ok = snap.Lookup("  dal makhani  ", domain.BasisGrams)
	if !ok {
		t.Fatalf("lookup should be case and whitespace insensitive")
	}
	if entry.PerUnit.Calories != 142 {
		t.Fatalf("unexpected grams calories: %v", entry.PerUnit.Calories)
	}

	if _, ok := snap.Lookup("Masala Dosa", domain.BasisGrams); ok {
		t.Fatalf("dish only in servings file should not appear under grams")
	}
}

func TestSearch(t *testing.T) {
	snap, err := Load(writeCSV(t, "servings.csv", servingsCSV), "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	hits := snap.Search("dosa", domain.BasisServings)
	if len(hits) != 2 {
		t.Fatalf("expected 2 dosa hits, got %d", len(hits))
	}
	if hits[0].Name != "Masala Dosa" || hits[1].Name != "Plain Dosa" {
		t.Fatalf("expected file order, got %q then %q", hits[0].Name, hits[1].Name)
	}

	if hits := snap.Search("biryani", domain.BasisServings); len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}

	all := snap.Search("", domain.BasisServings)
	if len(all) != 3 {
		t.Fatalf("empty query should return everything, got %d", len(all))
	}
}

func TestAllAndEmptyBasis(t *testing.T) {
	snap, err := Load(writeCSV(t, "servings.csv", servingsCSV), "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := len(snap.All(domain.BasisServings)); got != 3 {
		t.Fatalf("expected 3 servings entries, got %d", got)
	}
	if got := len(snap.All(domain.BasisGrams)); got != 0 {
		t.Fatalf("grams catalog should be empty without a file, got %d", got)
	}
}

func TestLoadTolerantParsing(t *testing.T) {
	contaminated := `Dish Name,Calories (kcal),Protein (g)
Kheer,abc,6.5
,100,1
Halwa,320,
`
	snap, err := Load(writeCSV(t, "servings.csv", contaminated), "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	entry, ok := snap.Lookup("Kheer", domain.BasisServings)
	if !ok {
		t.Fatalf("expected Kheer")
	}
	if entry.PerUnit.Calories != 0 || entry.PerUnit.Protein != 6.5 {
		t.Fatalf("unexpected coercion: %+v", entry.PerUnit)
	}

	// A blank dish name row is skipped entirely.
	if got := len(snap.All(domain.BasisServings)); got != 2 {
		t.Fatalf("expected 2 entries, got %d", got)
	}

	entry, _ = snap.Lookup("Halwa", domain.BasisServings)
	if entry.PerUnit.Protein != 0 {
		t.Fatalf("empty cell should read 0, got %v", entry.PerUnit.Protein)
	}
}

func TestLoadMissingDishColumn(t *testing.T) {
	path := writeCSV(t, "bad.csv", "Name,Calories (kcal)\nKheer,100\n")
	if _, err := Load(path, ""); err == nil {
		t.Fatalf("expected error for missing dish name column")
	}
}
