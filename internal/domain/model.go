package domain

import (
	"errors"
	"math"
	"time"
)

// DateLayout is the ISO calendar-date form every store row and API payload uses.
const DateLayout = "2006-01-02"

var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrDishNotFound    = errors.New("dish not found in catalog")
)

type Basis string

const (
	BasisServings Basis = "Servings"
	BasisGrams    Basis = "Grams"
)

// CreatineUnit labels direct quantity entries that bypass the catalog.
const CreatineUnit = "Creatine (g)"

// NutrientVector is a fixed-shape bag of the tracked nutrients. A missing
// nutrient is represented as 0, never as an absent key.
type NutrientVector struct {
	Calories      float64
	Carbohydrates float64
	Protein       float64
	Fats          float64
	FreeSugar     float64
	Fibre         float64
	Sodium        float64
	Calcium       float64
	Iron          float64
	VitaminC      float64
	Folate        float64
	Creatine      float64
}

func (v NutrientVector) Add(o NutrientVector) NutrientVector {
	return NutrientVector{
		Calories:      v.Calories + o.Calories,
		Carbohydrates: v.Carbohydrates + o.Carbohydrates,
		Protein:       v.Protein + o.Protein,
		Fats:          v.Fats + o.Fats,
		FreeSugar:     v.FreeSugar + o.FreeSugar,
		Fibre:         v.Fibre + o.Fibre,
		Sodium:        v.Sodium + o.Sodium,
		Calcium:       v.Calcium + o.Calcium,
		Iron:          v.Iron + o.Iron,
		VitaminC:      v.VitaminC + o.VitaminC,
		Folate:        v.Folate + o.Folate,
		Creatine:      v.Creatine + o.Creatine,
	}
}

func (v NutrientVector) Scale(factor float64) NutrientVector {
	return NutrientVector{
		Calories:      v.Calories * factor,
		Carbohydrates: v.Carbohydrates * factor,
		Protein:       v.Protein * factor,
		Fats:          v.Fats * factor,
		FreeSugar:     v.FreeSugar * factor,
		Fibre:         v.Fibre * factor,
		Sodium:        v.Sodium * factor,
		Calcium:       v.Calcium * factor,
		Iron:          v.Iron * factor,
		VitaminC:      v.VitaminC * factor,
		Folate:        v.Folate * factor,
		Creatine:      v.Creatine * factor,
	}
}

// Rounded returns the vector rounded to two decimals. Rounding is a display
// concern only; stored vectors stay unrounded.
func (v NutrientVector) Rounded() NutrientVector {
	return NutrientVector{
		Calories:      round2(v.Calories),
		Carbohydrates: round2(v.Carbohydrates),
		Protein:       round2(v.Protein),
		Fats:          round2(v.Fats),
		FreeSugar:     round2(v.FreeSugar),
		Fibre:         round2(v.Fibre),
		Sodium:        round2(v.Sodium),
		Calcium:       round2(v.Calcium),
		Iron:          round2(v.Iron),
		VitaminC:      round2(v.VitaminC),
		Folate:        round2(v.Folate),
		Creatine:      round2(v.Creatine),
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// CatalogEntry is one dish row from a nutrition table. PerUnit is the
// reference vector for the basis: one serving, or 100 grams.
type CatalogEntry struct {
	Name    string
	Basis   Basis
	PerUnit NutrientVector
}

// OverrideVector holds per-100g corrections. A nil field means "not
// overridden": the catalog default applies for that nutrient.
type OverrideVector struct {
	Calories      *float64
	Carbohydrates *float64
	Protein       *float64
	Fats          *float64
	FreeSugar     *float64
	Fibre         *float64
	Sodium        *float64
	Calcium       *float64
	Iron          *float64
	VitaminC      *float64
	Folate        *float64
}

// Merge resolves the override against a catalog per-100g reference,
// field by field.
func (o OverrideVector) Merge(ref NutrientVector) NutrientVector {
	pick := func(override *float64, fallback float64) float64 {
		if override != nil {
			return *override
		}
		return fallback
	}
	return NutrientVector{
		Calories:      pick(o.Calories, ref.Calories),
		Carbohydrates: pick(o.Carbohydrates, ref.Carbohydrates),
		Protein:       pick(o.Protein, ref.Protein),
		Fats:          pick(o.Fats, ref.Fats),
		FreeSugar:     pick(o.FreeSugar, ref.FreeSugar),
		Fibre:         pick(o.Fibre, ref.Fibre),
		Sodium:        pick(o.Sodium, ref.Sodium),
		Calcium:       pick(o.Calcium, ref.Calcium),
		Iron:          pick(o.Iron, ref.Iron),
		VitaminC:      pick(o.VitaminC, ref.VitaminC),
		Folate:        pick(o.Folate, ref.Folate),
	}
}

type Override struct {
	DishName  string
	Values    OverrideVector
	UpdatedAt time.Time
}

// LogEntry is one committed consumption event. Nutrition is fully
// materialized at commit time; the log never re-derives from the catalog.
type LogEntry struct {
	ID         uint
	Date       string
	DishName   string
	Amount     float64
	AmountUnit string
	Nutrition  NutrientVector
}

type DayTotals struct {
	Date   string
	Totals NutrientVector
}

// CalendarCell is one slot of a Monday-first month grid. Cells outside the
// target month are filler: InMonth and HasData are both false and Totals is
// zero.
type CalendarCell struct {
	Date    string
	InMonth bool
	HasData bool
	Totals  NutrientVector
}

type Session struct {
	ID        uint
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func Today() string {
	return time.Now().Format(DateLayout)
}

// LastNDates returns {today, today-1, ..., today-(n-1)} in ISO form.
func LastNDates(n int) []string {
	now := time.Now()
	dates := make([]string, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, now.AddDate(0, 0, -i).Format(DateLayout))
	}
	return dates
}
