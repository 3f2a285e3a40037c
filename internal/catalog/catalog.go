package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/khanakhazana/foodlog/internal/domain"
)

// Column headers as they appear in the nutrition CSV files.
const (
	colDishName      = "Dish Name"
	colCalories      = "Calories (kcal)"
	colCarbohydrates = "Carbohydrates (g)"
	colProtein       = "Protein (g)"
	colFats          = "Fats (g)"
	colFreeSugar     = "Free Sugar (g)"
	colFibre         = "Fibre (g)"
	colSodium        = "Sodium (mg)"
	colCalcium       = "Calcium (mg)"
	colIron          = "Iron (mg)"
	colVitaminC      = "Vitamin C (mg)"
	colFolate        = "Folate (µg)"
)

var nutrientColumns = []string{
	colCalories, colCarbohydrates, colProtein, colFats, colFreeSugar,
	colFibre, colSodium, colCalcium, colIron, colVitaminC, colFolate,
}

// Snapshot is the immutable in-memory catalog. It is built once at startup
// and shared by reference; invalidation is process restart.
type Snapshot struct {
	byBasis map[domain.Basis]*table
}

type table struct {
	entries map[string]domain.CatalogEntry
	order   []string
}

// Load reads the per-serving and per-100g CSV files. An empty path leaves
// that basis empty rather than failing, so a single-file deployment still
// starts.
func Load(servingsPath, gramsPath string) (*Snapshot, error) {
	s := &Snapshot{byBasis: map[domain.Basis]*table{
		domain.BasisServings: {entries: map[string]domain.CatalogEntry{}},
		domain.BasisGrams:    {entries: map[string]domain.CatalogEntry{}},
	}}
	if servingsPath != "" {
		if err := s.loadFile(servingsPath, domain.BasisServings); err != nil {
			return nil, err
		}
	}
	if gramsPath != "" {
		if err := s.loadFile(gramsPath, domain.BasisGrams); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Snapshot) loadFile(path string, basis domain.Basis) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("read catalog %s: %w", path, err)
	}
	if len(records) == 0 {
		return fmt.Errorf("catalog %s: no header row", path)
	}

	idx := make(map[string]int, len(records[0]))
	for i, header := range records[0] {
		idx[strings.TrimSpace(header)] = i
	}
	nameIdx, ok := idx[colDishName]
	if !ok {
		return fmt.Errorf("catalog %s: missing %q column", path, colDishName)
	}

	t := s.byBasis[basis]
	for _, row := range records[1:] {
		if nameIdx >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[nameIdx])
		if name == "" {
			continue
		}
		field := func(col string) float64 {
			i, ok := idx[col]
			if !ok || i >= len(row) {
				return 0
			}
			return parseOrZero(row[i])
		}
		entry := domain.CatalogEntry{
			Name:  name,
			Basis: basis,
			PerUnit: domain.NutrientVector{
				Calories:      field(colCalories),
				Carbohydrates: field(colCarbohydrates),
				Protein:       field(colProtein),
				Fats:          field(colFats),
				FreeSugar:     field(colFreeSugar),
				Fibre:         field(colFibre),
				Sodium:        field(colSodium),
				Calcium:       field(colCalcium),
				Iron:          field(colIron),
				VitaminC:      field(colVitaminC),
				Folate:        field(colFolate),
			},
		}
		key := strings.ToLower(name)
		if _, seen := t.entries[key]; !seen {
			t.order = append(t.order, key)
		}
		t.entries[key] = entry
	}
	return nil
}

// parseOrZero is the tolerant numeric coercion the whole system relies on:
// unparseable cells count as zero rather than failing the load.
func parseOrZero(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}

func (s *Snapshot) Lookup(name string, basis domain.Basis) (domain.CatalogEntry, bool) {
	t, ok := s.byBasis[basis]
	if !ok {
		return domain.CatalogEntry{}, false
	}
	entry, ok := t.entries[strings.ToLower(strings.TrimSpace(name))]
	return entry, ok
}

func (s *Snapshot) Search(query string, basis domain.Basis) []domain.CatalogEntry {
	t, ok := s.byBasis[basis]
	if !ok {
		return nil
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	result := make([]domain.CatalogEntry, 0)
	for _, key := range t.order {
		if needle == "" || strings.Contains(key, needle) {
			result = append(result, t.entries[key])
		}
	}
	return result
}

func (s *Snapshot) All(basis domain.Basis) []domain.CatalogEntry {
	t, ok := s.byBasis[basis]
	if !ok {
		return nil
	}
	result := make([]domain.CatalogEntry, 0, len(t.order))
	for _, key := range t.order {
		result = append(result, t.entries[key])
	}
	return result
}
