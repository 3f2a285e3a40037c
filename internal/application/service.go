package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/khanakhazana/foodlog/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// FoodLogService ties the catalog snapshot, the persistent stores and the
// access gate together. It is the only thing adapters talk to.
type FoodLogService struct {
	catalog    domain.Catalog
	logs       domain.LogRepository
	overrides  domain.OverrideRepository
	sessions   domain.SessionRepository
	secretHash []byte
}

func NewFoodLogService(
	catalog domain.Catalog,
	logs domain.LogRepository,
	overrides domain.OverrideRepository,
	sessions domain.SessionRepository,
	accessSecret string,
) (*FoodLogService, error) {
	if strings.TrimSpace(accessSecret) == "" {
		return nil, errors.New("access secret is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(accessSecret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &FoodLogService{
		catalog:    catalog,
		logs:       logs,
		overrides:  overrides,
		sessions:   sessions,
		secretHash: hash,
	}, nil
}

// ParseBasis normalizes a basis label from user input.
func ParseBasis(raw string) (domain.Basis, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "servings", "serving":
		return domain.BasisServings, nil
	case "grams", "gram", "g":
		return domain.BasisGrams, nil
	default:
		return "", fmt.Errorf("unknown basis %q", raw)
	}
}

func (s *FoodLogService) SearchFoods(query string, basis domain.Basis) []domain.CatalogEntry {
	return s.catalog.Search(query, basis)
}

func (s *FoodLogService) ListFoods(basis domain.Basis) []domain.CatalogEntry {
	return s.catalog.All(basis)
}

// Scale computes the nutrient vector for quantity of dish on the given
// basis. For the grams basis a stored per-100g override supersedes the
// catalog field by field.
func (s *FoodLogService) Scale(ctx context.Context, dish string, basis domain.Basis, quantity float64) (domain.NutrientVector, error) {
	if quantity <= 0 {
		return domain.NutrientVector{}, domain.ErrInvalidQuantity
	}
	entry, ok := s.catalog.Lookup(dish, basis)
	if !ok {
		return domain.NutrientVector{}, domain.ErrDishNotFound
	}

	ref := entry.PerUnit
	factor := quantity
	if basis == domain.BasisGrams {
		override, found, err := s.overrides.Get(ctx, entry.Name)
		if err != nil {
			return domain.NutrientVector{}, err
		}
		if found {
			ref = override.Values.Merge(ref)
		}
		factor = quantity / 100
	}
	return ref.Scale(factor), nil
}

// Commit scales and persists in one action. An empty date means today.
func (s *FoodLogService) Commit(ctx context.Context, date, dish string, basis domain.Basis, quantity float64) (domain.LogEntry, error) {
	date, err := resolveDate(date)
	if err != nil {
		return domain.LogEntry{}, err
	}
	vector, err := s.Scale(ctx, dish, basis, quantity)
	if err != nil {
		return domain.LogEntry{}, err
	}
	entry, _ := s.catalog.Lookup(dish, basis)
	return s.logs.Append(ctx, domain.LogEntry{
		Date:       date,
		DishName:   entry.Name,
		Amount:     quantity,
		AmountUnit: string(basis),
		Nutrition:  vector,
	})
}

// CommitCreatine logs a direct quantity with no catalog lookup: the vector
// is zero except for the creatine pass-through.
func (s *FoodLogService) CommitCreatine(ctx context.Context, date string, grams float64) (domain.LogEntry, error) {
	if grams <= 0 {
		return domain.LogEntry{}, domain.ErrInvalidQuantity
	}
	date, err := resolveDate(date)
	if err != nil {
		return domain.LogEntry{}, err
	}
	return s.logs.Append(ctx, domain.LogEntry{
		Date:       date,
		DishName:   "Creatine",
		Amount:     grams,
		AmountUnit: domain.CreatineUnit,
		Nutrition:  domain.NutrientVector{Creatine: grams},
	})
}

func (s *FoodLogService) TodayLog(ctx context.Context) ([]domain.LogEntry, domain.NutrientVector, error) {
	entries, err := s.logs.QueryByDate(ctx, domain.Today())
	if err != nil {
		return nil, domain.NutrientVector{}, err
	}
	return entries, Totals(entries), nil
}

// LastDaysLog returns entries for the trailing n calendar days (today
// included) together with per-day totals, newest day first.
func (s *FoodLogService) LastDaysLog(ctx context.Context, n int) ([]domain.LogEntry, []domain.DayTotals, error) {
	if n <= 0 {
		n = 3
	}
	if n > 90 {
		n = 90
	}
	entries, err := s.logs.QueryByDates(ctx, domain.LastNDates(n))
	if err != nil {
		return nil, nil, err
	}
	return entries, DailyTotals(entries), nil
}

func (s *FoodLogService) MonthReport(ctx context.Context, year int, month time.Month) ([]domain.CalendarCell, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	entries, err := s.logs.QueryByDateRange(ctx, first.Format(domain.DateLayout), last.Format(domain.DateLayout))
	if err != nil {
		return nil, err
	}
	return MonthGrid(year, month, TotalsByDate(entries)), nil
}

func (s *FoodLogService) ClearDay(ctx context.Context, date string) error {
	date, err := resolveDate(date)
	if err != nil {
		return err
	}
	return s.logs.DeleteByDate(ctx, date)
}

func (s *FoodLogService) DeleteEntry(ctx context.Context, id uint) error {
	if id == 0 {
		return errors.New("entry id is required")
	}
	return s.logs.DeleteByID(ctx, id)
}

func (s *FoodLogService) SaveOverride(ctx context.Context, dish string, values domain.OverrideVector) (domain.Override, error) {
	dish = strings.TrimSpace(dish)
	if dish == "" {
		return domain.Override{}, errors.New("dish name is required")
	}
	return s.overrides.Save(ctx, domain.Override{DishName: dish, Values: values})
}

func (s *FoodLogService) GetOverride(ctx context.Context, dish string) (domain.Override, bool, error) {
	return s.overrides.Get(ctx, strings.TrimSpace(dish))
}

// Unlock checks the shared secret and issues a session token.
func (s *FoodLogService) Unlock(ctx context.Context, secret string, ttl time.Duration) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.secretHash, []byte(secret)); err != nil {
		return "", errors.New("invalid secret")
	}
	plain, hash, err := newTokenPair()
	if err != nil {
		return "", err
	}
	_, err = s.sessions.Create(ctx, domain.Session{
		TokenHash: hash,
		ExpiresAt: time.Now().UTC().Add(ttl),
	})
	if err != nil {
		return "", err
	}
	return plain, nil
}

func (s *FoodLogService) Authenticate(ctx context.Context, token string) error {
	hash := hashToken(token)
	session, err := s.sessions.GetByTokenHash(ctx, hash)
	if err != nil {
		return errors.New("unauthorized")
	}
	if session.ExpiresAt.Before(time.Now().UTC()) {
		_ = s.sessions.DeleteByTokenHash(ctx, hash)
		return errors.New("session expired")
	}
	return nil
}

func (s *FoodLogService) Lock(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.sessions.DeleteByTokenHash(ctx, hashToken(token))
}

func resolveDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Today(), nil
	}
	if _, err := time.Parse(domain.DateLayout, raw); err != nil {
		return "", fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
	}
	return raw, nil
}

func newTokenPair() (string, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	plain := base64.RawURLEncoding.EncodeToString(raw)
	return plain, hashToken(plain), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", sum[:])
}
