package main

import (
	"math"
	"strings"
)

/* ─── Unit conversion ────────────────────────────────────────────────── */

// toKg converts a weight to kilograms. Unknown units are treated as kg.
func toKg(weight float64, unit string) float64 {
	if unit == "lb" {
		return weight * 0.453592
	}
	return weight
}

// toLb converts kilograms to pounds.
func toLb(weightKg float64) float64 {
	return weightKg * 2.20462
}

/* ─── Factor tables ──────────────────────────────────────────────────── */

// healthConditionDeltas maps normalized (lowercase) condition names to their
// percent adjustment and display label. This is the single source of truth
// for condition matching — also used to build healthConditionOptions and to
// validate profile updates. Deltas are additive; the combined factor is
// floored at 0.3 in getHealthFactor.
var healthConditionDeltas = map[string]struct {
	Label string
	Delta int // percent
}{
	"kidney stones":   {"Kidney Stones", 30},
	"diabetes type 1": {"Diabetes", 15},
	"diabetes type 2": {"Diabetes", 15},
	"fever":           {"Fever", 20},
	"heart failure":   {"Heart Failure", -30},
	"kidney failure":  {"Kidney Failure", -40},
	"uti":             {"UTI", 20},
	"pregnancy":       {"Pregnancy", 15},
	"breastfeeding":   {"Breastfeeding", 25},
	"hyperthyroidism": {"Hyperthyroidism", 10},
	"asthma":          {"Asthma", 5},
	"liver cirrhosis": {"Liver Cirrhosis", -15},
}

// fluidRestrictedConditions cap the daily target at 2000 ml regardless of
// body weight (see calculateHydration).
var fluidRestrictedConditions = map[string]bool{
	"heart failure":  true,
	"kidney failure": true,
}

// selectOption is one entry in the static choice lists served to clients.
type selectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// genderOptions is the ordered gender choice list. The values are the wire/DB
// enum and the dispatch keys of getGenderFactor.
var genderOptions = []selectOption{
	{"male", "Male"},
	{"female", "Female"},
	{"trans-male-transitioned", "Trans-male (transitioned)"},
	{"trans-female-transitioned", "Trans-female (transitioned)"},
	{"intersex-male", "Intersex (identify as male)"},
	{"intersex-female", "Intersex (identify as female)"},
	{"non-binary", "Non-binary"},
	{"trans-male-transition", "Trans-male (mid-transition)"},
	{"trans-female-transition", "Trans-female (mid-transition)"},
	{"other", "Other"},
}

// ageRangeOptions is the ordered age-bracket choice list.
var ageRangeOptions = []selectOption{
	{"5-13", "5-13 years old"},
	{"14-24", "14-24 years old"},
	{"25-35", "25-35 years old"},
	{"36-50", "36-50 years old"},
	{"51-65", "51-65 years old"},
	{"65+", "65+ years old"},
}

// healthConditionOptions is the ordered condition choice list. Values are the
// normalized keys of healthConditionDeltas.
var healthConditionOptions = []selectOption{
	{"asthma", "Asthma"},
	{"diabetes type 1", "Diabetes Type 1"},
	{"diabetes type 2", "Diabetes Type 2"},
	{"heart failure", "Heart Failure"},
	{"kidney stones", "Kidney Stones"},
	{"kidney failure", "Kidney Failure"},
	{"liver cirrhosis", "Liver Cirrhosis"},
	{"uti", "UTI"},
	{"hyperthyroidism", "Hyperthyroidism"},
	{"pregnancy", "Pregnancy"},
	{"breastfeeding", "Breastfeeding"},
	{"fever", "Fever"},
}

/* ─── Factor resolvers ───────────────────────────────────────────────── */

// getWeightBaseline returns the per-kg ml multiplier for a body weight.
// Lighter bodies need proportionally more water per kg. 50 and 100 belong to
// the middle tier.
func getWeightBaseline(weightKg float64) float64 {
	switch {
	case weightKg < 50:
		return 33
	case weightKg <= 100:
		return 30.5
	default:
		return 28
	}
}

// getAgeFactor returns the multiplier for an age bracket. Brackets not listed
// (25-35, 36-50, 51-65) are neutral.
func getAgeFactor(ageRange string) float64 {
	switch ageRange {
	case "5-13":
		return 1.20
	case "14-24":
		return 1.10
	case "65+":
		return 0.95
	default:
		return 1.0
	}
}

// getGenderFactor returns the multiplier for a gender tag. For the two
// mid-transition tags the factor interpolates linearly between the female
// (0.90) and male (1.00) endpoints over 24 months of HRT; with hrtMonths nil
// or past 24 the midpoint 0.95 is used. Unrecognized tags are neutral.
//
// hrtMonths is expected to already be within [0,24] — the profile layer clamps
// it on write, and this function does not re-validate.
func getGenderFactor(gender string, hrtMonths *int) float64 {
	const (
		maleFactor   = 1.0
		femaleFactor = 0.9
	)

	switch gender {
	case "male", "trans-male-transitioned", "intersex-male":
		return maleFactor
	case "female", "trans-female-transitioned", "intersex-female":
		return femaleFactor
	case "trans-male-transition":
		if hrtMonths != nil && *hrtMonths <= 24 {
			return femaleFactor + (maleFactor-femaleFactor)*(float64(*hrtMonths)/24)
		}
		return 0.95
	case "trans-female-transition":
		if hrtMonths != nil && *hrtMonths <= 24 {
			return maleFactor - (maleFactor-femaleFactor)*(float64(*hrtMonths)/24)
		}
		return 0.95
	case "non-binary", "other":
		return 0.95
	default:
		return 1.0
	}
}

// factorAdjustment is one labeled contribution recorded by the health and
// environment resolvers. Value is a signed percent of the base amount.
type factorAdjustment struct {
	Label string
	Value int
}

// getHealthFactor sums the percent deltas of all recognized conditions and
// returns the combined factor floored at 0.3, plus the per-condition records
// (unfloored) for the breakdown. Matching is case-insensitive and ignores
// surrounding whitespace; unrecognized labels contribute nothing.
func getHealthFactor(conditions []string) (float64, []factorAdjustment) {
	factor := 1.0
	var adjustments []factorAdjustment

	for _, condition := range conditions {
		entry, ok := healthConditionDeltas[strings.ToLower(strings.TrimSpace(condition))]
		if !ok {
			continue
		}
		factor += float64(entry.Delta) / 100
		adjustments = append(adjustments, factorAdjustment{Label: entry.Label, Value: entry.Delta})
	}

	return math.Max(factor, 0.3), adjustments
}

// getEnvironmentFactor derives the environmental multiplier from a weather
// snapshot. A nil snapshot means no adjustment. Each applied rule is recorded
// with its percent value rounded to the nearest integer.
func getEnvironmentFactor(weather *weatherData) (float64, []factorAdjustment) {
	if weather == nil {
		return 1.0, nil
	}

	factor := 1.0
	var adjustments []factorAdjustment

	// +3% per degree above 25°C, capped at +50%
	if weather.Temperature > 25 {
		tempAdjust := math.Min((weather.Temperature-25)*0.03, 0.50)
		factor += tempAdjust
		adjustments = append(adjustments, factorAdjustment{
			Label: "Temperature", Value: int(math.Round(tempAdjust * 100)),
		})
	}

	if weather.Humidity > 70 {
		factor += 0.10
		adjustments = append(adjustments, factorAdjustment{Label: "High Humidity", Value: 10})
	}

	if weather.Altitude > 1500 {
		factor += 0.15
		adjustments = append(adjustments, factorAdjustment{Label: "High Altitude", Value: 15})
	}

	if weather.UVIndex > 6 {
		factor += 0.08
		adjustments = append(adjustments, factorAdjustment{Label: "High UV", Value: 8})
	}

	return factor, adjustments
}

/* ─── Target calculation ─────────────────────────────────────────────── */

// calculateHydration computes the daily fluid target, the next suggested
// drink, and an explainable breakdown from a profile, an optional weather
// snapshot, and the amount already consumed today (ml). Pure: no I/O, no
// state, identical inputs give identical outputs.
//
// Factors compose multiplicatively even though each is displayed as an
// additive delta from the base amount. The target is clamped to
// [1500, min(weightKg*100, 24000)], hard-capped at 2000 when the profile has
// a fluid-restricted condition (heart or kidney failure).
func calculateHydration(profile *hydrationProfile, weather *weatherData, consumed int) hydrationResult {
	// Missing weight falls back to 70 kg rather than erroring.
	weightKg := 70.0
	if profile.Weight != nil {
		weightKg = toKg(*profile.Weight, profile.WeightUnit)
	}

	baseAmount := weightKg * getWeightBaseline(weightKg)

	ageFactor := getAgeFactor(profile.AgeRange)
	ageAdjustment := baseAmount * (ageFactor - 1)

	genderFactor := getGenderFactor(profile.Gender, profile.HRTMonths)
	genderAdjustment := baseAmount * (genderFactor - 1)

	healthFactor, healthAdjustments := getHealthFactor(profile.HealthConditions)
	healthAdjustment := baseAmount * (healthFactor - 1)

	envFactor, envAdjustments := getEnvironmentFactor(weather)
	environmentAdjustment := baseAmount * (envFactor - 1)

	dailyTarget := baseAmount * ageFactor * genderFactor * healthFactor * envFactor

	// Safety clamps
	minLimit := 1500.0
	maxLimit := math.Min(weightKg*100, 24000)
	for _, c := range profile.HealthConditions {
		if fluidRestrictedConditions[strings.ToLower(strings.TrimSpace(c))] {
			maxLimit = 2000
			break
		}
	}
	dailyTarget = math.Max(minLimit, math.Min(dailyTarget, maxLimit))

	// Next drink: 30% of the remaining deficit, kept within [200, 500].
	// The 200 ml floor applies even once the target is met — the engine always
	// suggests something (deliberate pacing policy).
	deficit := dailyTarget - float64(consumed)
	nextDrinkAmount := math.Min(math.Max(200, deficit*0.3), 500)

	breakdown := []breakdownEntry{
		{Label: "Base (weight)", Value: int(math.Round(baseAmount)), IsAddition: true},
	}
	if ageAdjustment != 0 {
		breakdown = append(breakdown, breakdownEntry{
			Label:      "Age (" + profile.AgeRange + ")",
			Value:      int(math.Abs(math.Round(ageAdjustment))),
			IsAddition: ageAdjustment > 0,
		})
	}
	if genderAdjustment != 0 {
		breakdown = append(breakdown, breakdownEntry{
			Label:      "Gender adjustment",
			Value:      int(math.Abs(math.Round(genderAdjustment))),
			IsAddition: genderAdjustment > 0,
		})
	}
	for _, adj := range append(healthAdjustments, envAdjustments...) {
		breakdown = append(breakdown, breakdownEntry{
			Label:      adj.Label,
			Value:      int(math.Abs(math.Round(baseAmount * float64(adj.Value) / 100))),
			IsAddition: adj.Value > 0,
		})
	}

	return hydrationResult{
		DailyTarget:           int(math.Round(dailyTarget)),
		BaseAmount:            int(math.Round(baseAmount)),
		AgeAdjustment:         int(math.Round(ageAdjustment)),
		GenderAdjustment:      int(math.Round(genderAdjustment)),
		HealthAdjustment:      int(math.Round(healthAdjustment)),
		EnvironmentAdjustment: int(math.Round(environmentAdjustment)),
		NextDrinkAmount:       int(math.Round(nextDrinkAmount)),
		Breakdown:             breakdown,
	}
}

/* ─── Over-consumption warnings ──────────────────────────────────────── */

// checkWaterWarnings previews the warning state for a candidate intake:
// hourly fires past 1 liter within the trailing hour, daily past 150% of the
// daily target. Both checks are independent. Callers must serialize this
// check with the subsequent log append (see createWaterLogItem).
func checkWaterWarnings(lastHourIntake, totalConsumed, amount, dailyTarget int) waterWarnings {
	return waterWarnings{
		Hourly: lastHourIntake+amount > 1000,
		Daily:  float64(totalConsumed+amount) > float64(dailyTarget)*1.5,
	}
}
