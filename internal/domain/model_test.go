package domain

import (
	"testing"
	"time"
)

func TestNutrientVectorAddScale(t *testing.T) {
	a := NutrientVector{Calories: 100, Protein: 5, Creatine: 2}
	b := NutrientVector{Calories: 50, Fats: 3}

	sum := a.Add(b)
	if sum.Calories != 150 || sum.Protein != 5 || sum.Fats != 3 || sum.Creatine != 2 {
		t.Fatalf("unexpected sum: %+v", sum)
	}
	// Add does not mutate its operands.
	if a.Calories != 100 || b.Calories != 50 {
		t.Fatalf("operands mutated: %+v %+v", a, b)
	}

	scaled := a.Scale(2.5)
	if scaled.Calories != 250 || scaled.Protein != 12.5 || scaled.Creatine != 5 {
		t.Fatalf("unexpected scaled: %+v", scaled)
	}
	if zero := a.Scale(0); zero != (NutrientVector{}) {
		t.Fatalf("scale by 0 should zero everything: %+v", zero)
	}
}

func TestNutrientVectorRounded(t *testing.T) {
	v := NutrientVector{Calories: 427.4999, Protein: 11.105, Sodium: 765.004}
	got := v.Rounded()
	if got.Calories != 427.5 {
		t.Fatalf("calories: %v", got.Calories)
	}
	if got.Protein != 11.11 {
		t.Fatalf("protein: %v", got.Protein)
	}
	if got.Sodium != 765 {
		t.Fatalf("sodium: %v", got.Sodium)
	}
	// Rounding is presentation only: the receiver stays exact.
	if v.Calories != 427.4999 {
		t.Fatalf("receiver mutated: %v", v.Calories)
	}
}

func TestOverrideVectorMerge(t *testing.T) {
	ref := NutrientVector{Calories: 142, Protein: 3.7, Fats: 9.1, Folate: 22.5}

	calories := 100.0
	zero := 0.0
	o := OverrideVector{Calories: &calories, Fats: &zero}

	merged := o.Merge(ref)
	if merged.Calories != 100 {
		t.Fatalf("overridden calories: %v", merged.Calories)
	}
	if merged.Fats != 0 {
		t.Fatalf("explicit zero override must win: %v", merged.Fats)
	}
	if merged.Protein != 3.7 || merged.Folate != 22.5 {
		t.Fatalf("nil fields must fall back: %+v", merged)
	}
	if merged.Creatine != 0 {
		t.Fatalf("creatine has no override channel: %v", merged.Creatine)
	}

	if got := (OverrideVector{}).Merge(ref); got != ref {
		t.Fatalf("empty override should return the reference: %+v", got)
	}
}

func TestLastNDates(t *testing.T) {
	dates := LastNDates(3)
	if len(dates) != 3 {
		t.Fatalf("expected 3 dates, got %d", len(dates))
	}
	if dates[0] != Today() {
		t.Fatalf("first date should be today, got %s", dates[0])
	}
	for i, raw := range dates {
		parsed, err := time.Parse(DateLayout, raw)
		if err != nil {
			t.Fatalf("date %d not parseable: %v", i, err)
		}
		if i > 0 {
			prev, _ := time.Parse(DateLayout, dates[i-1])
			if !parsed.Add(24 * time.Hour).Equal(prev) {
				t.Fatalf("dates not consecutive: %s then %s", dates[i-1], raw)
			}
		}
	}

	if got := LastNDates(0); len(got) != 0 {
		t.Fatalf("expected empty slice for n=0, got %v", got)
	}
}
