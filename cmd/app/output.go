package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/khanakhazana/foodlog/internal/domain"
)

func printJSON(v any) error {
	b, err := jsonMarshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printKV(rows [][2]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}
	_ = w.Flush()
}

func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println("no results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func printCatalogEntries(items []domain.CatalogEntry) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.Name,
			string(item.Basis),
			formatFloat(item.PerUnit.Calories),
			formatFloat(item.PerUnit.Carbohydrates),
			formatFloat(item.PerUnit.Protein),
			formatFloat(item.PerUnit.Fats),
		})
	}
	printTable([]string{"DISH", "BASIS", "CALORIES", "CARBS", "PROTEIN", "FATS"}, rows)
}

func printLogEntries(items []domain.LogEntry) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(item.ID), 10),
			item.Date,
			item.DishName,
			formatFloat(item.Amount),
			item.AmountUnit,
			formatFloat(item.Nutrition.Calories),
			formatFloat(item.Nutrition.Protein),
		})
	}
	printTable([]string{"ID", "DATE", "DISH", "AMOUNT", "UNIT", "CALORIES", "PROTEIN"}, rows)
}

func printNutrients(v domain.NutrientVector) {
	printKV([][2]string{
		{"calories_kcal", formatFloat(v.Calories)},
		{"carbohydrates_g", formatFloat(v.Carbohydrates)},
		{"protein_g", formatFloat(v.Protein)},
		{"fats_g", formatFloat(v.Fats)},
		{"free_sugar_g", formatFloat(v.FreeSugar)},
		{"fibre_g", formatFloat(v.Fibre)},
		{"sodium_mg", formatFloat(v.Sodium)},
		{"calcium_mg", formatFloat(v.Calcium)},
		{"iron_mg", formatFloat(v.Iron)},
		{"vitamin_c_mg", formatFloat(v.VitaminC)},
		{"folate_ug", formatFloat(v.Folate)},
		{"creatine_g", formatFloat(v.Creatine)},
	})
}

func printDayTotals(items []domain.DayTotals) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.Date,
			formatFloat(item.Totals.Calories),
			formatFloat(item.Totals.Carbohydrates),
			formatFloat(item.Totals.Protein),
			formatFloat(item.Totals.Fats),
			formatFloat(item.Totals.Creatine),
		})
	}
	printTable([]string{"DATE", "CALORIES", "CARBS", "PROTEIN", "FATS", "CREATINE"}, rows)
}

func printOverride(item domain.Override) {
	rows := [][2]string{{"dish", item.DishName}}
	appendMaybe := func(label string, v *float64) {
		if v == nil {
			rows = append(rows, [2]string{label, "-"})
			return
		}
		rows = append(rows, [2]string{label, formatFloat(*v)})
	}
	appendMaybe("calories_kcal", item.Values.Calories)
	appendMaybe("carbohydrates_g", item.Values.Carbohydrates)
	appendMaybe("protein_g", item.Values.Protein)
	appendMaybe("fats_g", item.Values.Fats)
	appendMaybe("free_sugar_g", item.Values.FreeSugar)
	appendMaybe("fibre_g", item.Values.Fibre)
	appendMaybe("sodium_mg", item.Values.Sodium)
	appendMaybe("calcium_mg", item.Values.Calcium)
	appendMaybe("iron_mg", item.Values.Iron)
	appendMaybe("vitamin_c_mg", item.Values.VitaminC)
	appendMaybe("folate_ug", item.Values.Folate)
	if !item.UpdatedAt.IsZero() {
		rows = append(rows, [2]string{"updated_at", item.UpdatedAt.Format("2006-01-02 15:04:05")})
	}
	printKV(rows)
}

// printCalendar renders the month grid in weeks of seven, Monday first.
func printCalendar(year, month int, cells []domain.CalendarCell) {
	fmt.Printf("%s %d\n", time.Month(month).String(), year)
	headers := []string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}
	rows := make([][]string, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		row := make([]string, 0, 7)
		for _, cell := range cells[i : i+7] {
			row = append(row, formatCalendarCell(cell))
		}
		rows = append(rows, row)
	}
	printTable(headers, rows)
}

func formatCalendarCell(cell domain.CalendarCell) string {
	if !cell.InMonth {
		return ""
	}
	day := strings.TrimPrefix(cell.Date[8:], "0")
	if !cell.HasData {
		return day
	}
	return fmt.Sprintf("%s (%.0f kcal)", day, cell.Totals.Calories)
}
