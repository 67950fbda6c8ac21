package utils

import (
	"fmt"
	"math"
	"strings"
)

// Severity of a dietary note.
type Severity string

const (
	Info    Severity = "info"
	Caution Severity = "caution"
	High    Severity = "high"
)

// Note is one observation about a recognized food.
type Note struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Value    float64  `json:"value,omitempty"`
}

// ReferenceDailyKcal is the day the per-serving shares are measured against.
const ReferenceDailyKcal = 2000

// AssessServing screens one serving's macros against the Dietary Guidelines
// for Americans 2020-2025 AMDR ranges and a 2000 kcal day. Missing inputs
// produce no notes.
func AssessServing(foodName string, kcal, proteinG, carbsG, fatG float64) []Note {
	notes := []Note{}

	if kcal <= 0 {
		kcal = 4*carbsG + 4*proteinG + 9*fatG
	}

	if kcal > 0 {
		share := kcal / ReferenceDailyKcal
		switch {
		case share >= 0.40:
			notes = append(notes, Note{
				Code:     "energy_very_high_daily_share",
				Severity: High,
				Message:  fmt.Sprintf("This serving provides ~%.0f%% of a 2000 kcal day.", share*100),
				Value:    round2(share * 100),
			})
		case share >= 0.25:
			notes = append(notes, Note{
				Code:     "energy_high_daily_share",
				Severity: Caution,
				Message:  fmt.Sprintf("Large share of daily energy from one serving (~%.0f%%).", share*100),
				Value:    round2(share * 100),
			})
		}
	}

	if total := 4*carbsG + 4*proteinG + 9*fatG; total > 0 {
		cPct := 4 * carbsG / total
		pPct := 4 * proteinG / total
		fPct := 9 * fatG / total

		if cPct < 0.45 || cPct > 0.65 {
			notes = append(notes, Note{
				Code:     "amdr_carbs_out_of_range",
				Severity: Info,
				Message:  fmt.Sprintf("Carbohydrates ~%.0f%% of macro calories (AMDR 45-65%%).", cPct*100),
				Value:    round2(cPct * 100),
			})
		}
		if pPct < 0.10 || pPct > 0.35 {
			notes = append(notes, Note{
				Code:     "amdr_protein_out_of_range",
				Severity: Info,
				Message:  fmt.Sprintf("Protein ~%.0f%% of macro calories (AMDR 10-35%%).", pPct*100),
				Value:    round2(pPct * 100),
			})
		}
		if fPct < 0.20 || fPct > 0.35 {
			notes = append(notes, Note{
				Code:     "amdr_fat_out_of_range",
				Severity: Info,
				Message:  fmt.Sprintf("Fat ~%.0f%% of macro calories (AMDR 20-35%%).", fPct*100),
				Value:    round2(fPct * 100),
			})
		}
	}

	lower := strings.ToLower(foodName)
	switch {
	case isLikelyWholeGrain(lower):
		notes = append(notes, Note{
			Code:     "whole_grain_positive",
			Severity: Info,
			Message:  "Whole-grain choice supports fiber and nutrient density.",
		})
	case isLikelyRefinedGrain(lower):
		notes = append(notes, Note{
			Code:     "refined_grain_nudge",
			Severity: Info,
			Message:  "Refined-grain item; at least half of grains should be whole.",
		})
	}
	if looksHighSatSource(lower) {
		notes = append(notes, Note{
			Code:     "satfat_source_heuristic",
			Severity: Info,
			Message:  "Likely high in saturated fat; leaner cuts or plant oils are an alternative.",
		})
	}

	return notes
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func isLikelyWholeGrain(name string) bool {
	return containsAny(name, "whole wheat", "whole-grain", "whole grain", "brown rice", "oatmeal", "oats", "quinoa", "bulgur", "rye", "wholemeal")
}

func isLikelyRefinedGrain(name string) bool {
	return containsAny(name, "white bread", "white rice", "fried rice", "cake", "pastry", "cracker", "biscuit", "waffle", "pancake", "donut", "croissant")
}

func looksHighSatSource(name string) bool {
	return containsAny(name,
		"butter", "ghee", "cream", "cheese", "bacon", "sausage", "pork belly",
		"lard", "ribs", "steak", "poutine", "foie gras")
}
