package sqlite

import (
	"context"
	"errors"

	"github.com/khanakhazana/foodlog/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	_ "modernc.org/sqlite"
)

func Open(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{})
}

type LogRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) *LogRepository {
	return &LogRepository{db: db}
}

func (r *LogRepository) Append(ctx context.Context, entry domain.LogEntry) (domain.LogEntry, error) {
	m := fromLogEntry(entry)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&m).Error
	})
	if err != nil {
		return domain.LogEntry{}, err
	}
	return toLogEntry(m), nil
}

func (r *LogRepository) QueryByDate(ctx context.Context, date string) ([]domain.LogEntry, error) {
	rows := make([]FoodLogModel, 0)
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toLogEntries(rows), nil
}

func (r *LogRepository) QueryByDateRange(ctx context.Context, start, end string) ([]domain.LogEntry, error) {
	rows := make([]FoodLogModel, 0)
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", start, end).
		Order("date DESC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toLogEntries(rows), nil
}

func (r *LogRepository) QueryByDates(ctx context.Context, dates []string) ([]domain.LogEntry, error) {
	if len(dates) == 0 {
		return []domain.LogEntry{}, nil
	}
	rows := make([]FoodLogModel, 0)
	err := r.db.WithContext(ctx).
		Where("date IN ?", dates).
		Order("date DESC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toLogEntries(rows), nil
}

func (r *LogRepository) DeleteByDate(ctx context.Context, date string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("date = ?", date).Delete(&FoodLogModel{}).Error
	})
}

// DeleteByID removes exactly one entry. A missing id is a no-op, not an
// error.
func (r *LogRepository) DeleteByID(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).Delete(&FoodLogModel{}).Error
	})
}

func fromLogEntry(e domain.LogEntry) FoodLogModel {
	return FoodLogModel{
		ID:            e.ID,
		Date:          e.Date,
		DishName:      e.DishName,
		Amount:        e.Amount,
		AmountUnit:    e.AmountUnit,
		Calories:      LooseReal(e.Nutrition.Calories),
		Carbohydrates: LooseReal(e.Nutrition.Carbohydrates),
		Protein:       LooseReal(e.Nutrition.Protein),
		Fats:          LooseReal(e.Nutrition.Fats),
		FreeSugar:     LooseReal(e.Nutrition.FreeSugar),
		Fibre:         LooseReal(e.Nutrition.Fibre),
		Sodium:        LooseReal(e.Nutrition.Sodium),
		Calcium:       LooseReal(e.Nutrition.Calcium),
		Iron:          LooseReal(e.Nutrition.Iron),
		VitaminC:      LooseReal(e.Nutrition.VitaminC),
		Folate:        LooseReal(e.Nutrition.Folate),
		Creatine:      LooseReal(e.Nutrition.Creatine),
	}
}

func toLogEntry(m FoodLogModel) domain.LogEntry {
	return domain.LogEntry{
		ID:         m.ID,
		Date:       m.Date,
		DishName:   m.DishName,
		Amount:     m.Amount,
		AmountUnit: m.AmountUnit,
		Nutrition: domain.NutrientVector{
			Calories:      float64(m.Calories),
			Carbohydrates: float64(m.Carbohydrates),
			Protein:       float64(m.Protein),
			Fats:          float64(m.Fats),
			FreeSugar:     float64(m.FreeSugar),
			Fibre:         float64(m.Fibre),
			Sodium:        float64(m.Sodium),
			Calcium:       float64(m.Calcium),
			Iron:          float64(m.Iron),
			VitaminC:      float64(m.VitaminC),
			Folate:        float64(m.Folate),
			Creatine:      float64(m.Creatine),
		},
	}
}

func toLogEntries(rows []FoodLogModel) []domain.LogEntry {
	result := make([]domain.LogEntry, 0, len(rows))
	for _, m := range rows {
		result = append(result, toLogEntry(m))
	}
	return result
}

type OverrideRepository struct {
	db *gorm.DB
}

func NewOverrideRepository(db *gorm.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

// Save replaces the whole row for the dish. Fields the caller left nil are
// written as NULL, not carried over from a previous override.
func (r *OverrideRepository) Save(ctx context.Context, value domain.Override) (domain.Override, error) {
	m := fromOverride(value)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dish_name"}},
			UpdateAll: true,
		}).Create(&m).Error
	})
	if err != nil {
		return domain.Override{}, err
	}
	return toOverride(m), nil
}

func (r *OverrideRepository) Get(ctx context.Context, dishName string) (domain.Override, bool, error) {
	var m GramsOverrideModel
	err := r.db.WithContext(ctx).Where("dish_name = ?", dishName).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Override{}, false, nil
	}
	if err != nil {
		return domain.Override{}, false, err
	}
	return toOverride(m), true, nil
}

func fromOverride(o domain.Override) GramsOverrideModel {
	return GramsOverrideModel{
		DishName:      o.DishName,
		Calories:      o.Values.Calories,
		Carbohydrates: o.Values.Carbohydrates,
		Protein:       o.Values.Protein,
		Fats:          o.Values.Fats,
		FreeSugar:     o.Values.FreeSugar,
		Fibre:         o.Values.Fibre,
		Sodium:        o.Values.Sodium,
		Calcium:       o.Values.Calcium,
		Iron:          o.Values.Iron,
		VitaminC:      o.Values.VitaminC,
		Folate:        o.Values.Folate,
	}
}

func toOverride(m GramsOverrideModel) domain.Override {
	return domain.Override{
		DishName: m.DishName,
		Values: domain.OverrideVector{
			Calories:      m.Calories,
			Carbohydrates: m.Carbohydrates,
			Protein:       m.Protein,
			Fats:          m.Fats,
			FreeSugar:     m.FreeSugar,
			Fibre:         m.Fibre,
			Sodium:        m.Sodium,
			Calcium:       m.Calcium,
			Iron:          m.Iron,
			VitaminC:      m.VitaminC,
			Folate:        m.Folate,
		},
		UpdatedAt: m.UpdatedAt,
	}
}

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, value domain.Session) (domain.Session, error) {
	m := SessionModel{TokenHash: value.TokenHash, ExpiresAt: value.ExpiresAt}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&m).Error
	})
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{ID: m.ID, TokenHash: m.TokenHash, ExpiresAt: m.ExpiresAt, CreatedAt: m.CreatedAt}, nil
}

func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error) {
	var m SessionModel
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&m).Error; err != nil {
		return domain.Session{}, err
	}
	return domain.Session{ID: m.ID, TokenHash: m.TokenHash, ExpiresAt: m.ExpiresAt, CreatedAt: m.CreatedAt}, nil
}

func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("token_hash = ?", tokenHash).Delete(&SessionModel{}).Error
	})
}
