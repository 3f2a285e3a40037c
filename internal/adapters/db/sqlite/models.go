package sqlite

import (
	"database/sql/driver"
	"strconv"
	"strings"
	"time"
)

// LooseReal is a float64 that survives contaminated rows. Early revisions of
// the log wrote nutrient values as text, so a REAL column can hold anything;
// scanning coerces unparseable values to 0 instead of failing the read.
type LooseReal float64

func (l *LooseReal) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*l = 0
	case float64:
		*l = LooseReal(v)
	case int64:
		*l = LooseReal(v)
	case []byte:
		*l = LooseReal(parseOrZero(string(v)))
	case string:
		*l = LooseReal(parseOrZero(v))
	default:
		*l = 0
	}
	return nil
}

func (l LooseReal) Value() (driver.Value, error) {
	return float64(l), nil
}

func parseOrZero(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}

type FoodLogModel struct {
	ID            uint   `gorm:"primaryKey"`
	Date          string `gorm:"not null;index"`
	DishName      string `gorm:"not null"`
	Amount        float64
	AmountUnit    string
	Calories      LooseReal
	Carbohydrates LooseReal
	Protein       LooseReal
	Fats          LooseReal
	FreeSugar     LooseReal
	Fibre         LooseReal
	Sodium        LooseReal
	Calcium       LooseReal
	Iron          LooseReal
	VitaminC      LooseReal
	Folate        LooseReal
	Creatine      LooseReal
}

func (FoodLogModel) TableName() string { return "food_log" }

// GramsOverrideModel keeps NULL for fields the user never touched, so a
// later catalog change shows through instead of being masked by a copy.
type GramsOverrideModel struct {
	DishName      string `gorm:"primaryKey"`
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
	UpdatedAt     time.Time
}

func (GramsOverrideModel) TableName() string { return "custom_grams_nutrition" }

type SessionModel struct {
	ID        uint   `gorm:"primaryKey"`
	TokenHash string `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (SessionModel) TableName() string { return "sessions" }
