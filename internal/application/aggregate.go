package application

import (
	"sort"
	"time"

	"github.com/khanakhazana/foodlog/internal/domain"
)

// Totals sums the nutrient vectors of the given entries. An empty input
// yields the zero vector; order does not matter.
func Totals(entries []domain.LogEntry) domain.NutrientVector {
	var sum domain.NutrientVector
	for _, e := range entries {
		sum = sum.Add(e.Nutrition)
	}
	return sum
}

// TotalsByDate groups entries by calendar date and sums each group.
func TotalsByDate(entries []domain.LogEntry) map[string]domain.NutrientVector {
	byDate := make(map[string]domain.NutrientVector)
	for _, e := range entries {
		byDate[e.Date] = byDate[e.Date].Add(e.Nutrition)
	}
	return byDate
}

// DailyTotals returns per-day sums, newest date first.
func DailyTotals(entries []domain.LogEntry) []domain.DayTotals {
	byDate := TotalsByDate(entries)
	result := make([]domain.DayTotals, 0, len(byDate))
	for date, totals := range byDate {
		result = append(result, domain.DayTotals{Date: date, Totals: totals})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date > result[j].Date })
	return result
}

// MonthGrid lays the month out as a Monday-first calendar. The cell count
// is always a multiple of seven; cells belonging to adjacent months are
// blank fillers, in-month cells without entries carry the no-data marker
// (HasData false).
func MonthGrid(year int, month time.Month, byDate map[string]domain.NutrientVector) []domain.CalendarCell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	// time.Weekday counts from Sunday; shift so Monday is column zero.
	lead := (int(first.Weekday()) + 6) % 7
	cellCount := ((lead + daysInMonth + 6) / 7) * 7

	cells := make([]domain.CalendarCell, 0, cellCount)
	for i := 0; i < cellCount; i++ {
		day := i - lead + 1
		if day < 1 || day > daysInMonth {
			cells = append(cells, domain.CalendarCell{})
			continue
		}
		date := first.AddDate(0, 0, day-1).Format(domain.DateLayout)
		totals, has := byDate[date]
		cells = append(cells, domain.CalendarCell{
			Date:    date,
			InMonth: true,
			HasData: has,
			Totals:  totals,
		})
	}
	return cells
}
