package main

import (
	"math"
	"reflect"
	"testing"
)

// makeProfile constructs a hydrationProfile for engine tests. Weight is in kg;
// individual tests override fields to exercise specific branches.
func makeProfile(gender, ageRange string, weightKg float64, conditions []string) *hydrationProfile {
	w := weightKg
	return &hydrationProfile{
		Gender:           gender,
		AgeRange:         ageRange,
		Weight:           &w,
		WeightUnit:       "kg",
		HealthConditions: conditions,
	}
}

func intPtr(v int) *int { return &v }

/* ─── Unit conversion tests ──────────────────────────────────────────── */

// TestToKg_Pounds verifies the lb→kg factor and that kg input is identity.
func TestToKg_Pounds(t *testing.T) {
	if got := toKg(100, "lb"); math.Abs(got-45.3592) > 1e-9 {
		t.Errorf("toKg(100, lb) = %f, want 45.3592", got)
	}
	if got := toKg(70, "kg"); got != 70 {
		t.Errorf("toKg(70, kg) = %f, want 70", got)
	}
}

// TestToLb_RoundTrip verifies toLb(toKg(x, lb)) returns x within floating
// point tolerance. No exact invariant holds — the two factors are independent
// published constants, not inverses to full precision.
func TestToLb_RoundTrip(t *testing.T) {
	for _, x := range []float64{1, 50, 154.32, 400} {
		got := toLb(toKg(x, "lb"))
		if math.Abs(got-x) > 0.01 {
			t.Errorf("round trip of %f lb = %f, want within 0.01", x, got)
		}
	}
}

/* ─── Weight baseline tests ──────────────────────────────────────────── */

// TestGetWeightBaseline_Tiers checks all three tiers and that 50 and 100
// belong to the middle tier.
func TestGetWeightBaseline_Tiers(t *testing.T) {
	cases := []struct {
		weightKg float64
		want     float64
	}{
		{40, 33},
		{49.9, 33},
		{50, 30.5},
		{70, 30.5},
		{100, 30.5},
		{100.1, 28},
		{150, 28},
	}
	for _, tc := range cases {
		if got := getWeightBaseline(tc.weightKg); got != tc.want {
			t.Errorf("getWeightBaseline(%v) = %v, want %v", tc.weightKg, got, tc.want)
		}
	}
}

/* ─── Age factor tests ───────────────────────────────────────────────── */

func TestGetAgeFactor(t *testing.T) {
	cases := []struct {
		ageRange string
		want     float64
	}{
		{"5-13", 1.20},
		{"14-24", 1.10},
		{"25-35", 1.0},
		{"36-50", 1.0},
		{"51-65", 1.0},
		{"65+", 0.95},
		{"nonsense", 1.0},
	}
	for _, tc := range cases {
		if got := getAgeFactor(tc.ageRange); got != tc.want {
			t.Errorf("getAgeFactor(%q) = %v, want %v", tc.ageRange, got, tc.want)
		}
	}
}

/* ─── Gender factor tests ────────────────────────────────────────────── */

// TestGetGenderFactor_FixedTags covers every non-transition tag plus the
// unrecognized-tag fallback.
func TestGetGenderFactor_FixedTags(t *testing.T) {
	cases := []struct {
		gender string
		want   float64
	}{
		{"male", 1.0},
		{"trans-male-transitioned", 1.0},
		{"intersex-male", 1.0},
		{"female", 0.9},
		{"trans-female-transitioned", 0.9},
		{"intersex-female", 0.9},
		{"non-binary", 0.95},
		{"other", 0.95},
		{"unknown-tag", 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.gender, func(t *testing.T) {
			if got := getGenderFactor(tc.gender, nil); got != tc.want {
				t.Errorf("getGenderFactor(%q, nil) = %v, want %v", tc.gender, got, tc.want)
			}
		})
	}
}

// TestGetGenderFactor_Interpolation pins the interpolation endpoints, the
// month-12 midpoint, and the nil-months fallback for both transition
// directions.
func TestGetGenderFactor_Interpolation(t *testing.T) {
	cases := []struct {
		name   string
		gender string
		months *int
		want   float64
	}{
		{"FTM month 0", "trans-male-transition", intPtr(0), 0.90},
		{"FTM month 12", "trans-male-transition", intPtr(12), 0.95},
		{"FTM month 24", "trans-male-transition", intPtr(24), 1.00},
		{"MTF month 0", "trans-female-transition", intPtr(0), 1.00},
		{"MTF month 12", "trans-female-transition", intPtr(12), 0.95},
		{"MTF month 24", "trans-female-transition", intPtr(24), 0.90},
		{"FTM nil months", "trans-male-transition", nil, 0.95},
		{"MTF nil months", "trans-female-transition", nil, 0.95},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := getGenderFactor(tc.gender, tc.months)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

// TestGetGenderFactor_Monotonic verifies the interpolation is non-decreasing
// in months for trans-male-transition and non-increasing for
// trans-female-transition over the full [0,24] range.
func TestGetGenderFactor_Monotonic(t *testing.T) {
	prevFTM := getGenderFactor("trans-male-transition", intPtr(0))
	prevMTF := getGenderFactor("trans-female-transition", intPtr(0))
	for m := 1; m <= 24; m++ {
		ftm := getGenderFactor("trans-male-transition", intPtr(m))
		if ftm < prevFTM {
			t.Fatalf("FTM factor decreased at month %d: %v < %v", m, ftm, prevFTM)
		}
		mtf := getGenderFactor("trans-female-transition", intPtr(m))
		if mtf > prevMTF {
			t.Fatalf("MTF factor increased at month %d: %v > %v", m, mtf, prevMTF)
		}
		prevFTM, prevMTF = ftm, mtf
	}
}

/* ─── Health factor tests ────────────────────────────────────────────── */

// TestGetHealthFactor_SingleConditions checks a few representative deltas and
// that matching ignores case and surrounding whitespace.
func TestGetHealthFactor_SingleConditions(t *testing.T) {
	cases := []struct {
		condition string
		want      float64
	}{
		{"kidney stones", 1.30},
		{"Heart Failure", 0.70},
		{"  fever  ", 1.20},
		{"DIABETES TYPE 2", 1.15},
		{"unknown condition", 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.condition, func(t *testing.T) {
			factor, _ := getHealthFactor([]string{tc.condition})
			if math.Abs(factor-tc.want) > 1e-9 {
				t.Errorf("factor = %v, want %v", factor, tc.want)
			}
		})
	}
}

// TestGetHealthFactor_Additive verifies deltas stack across conditions and
// that each matched condition produces one labeled record.
func TestGetHealthFactor_Additive(t *testing.T) {
	factor, adjustments := getHealthFactor([]string{"pregnancy", "fever", "asthma"})
	// 1.0 + 0.15 + 0.20 + 0.05
	if math.Abs(factor-1.40) > 1e-9 {
		t.Errorf("factor = %v, want 1.40", factor)
	}
	if len(adjustments) != 3 {
		t.Fatalf("expected 3 adjustment records, got %d", len(adjustments))
	}
	wantLabels := []string{"Pregnancy", "Fever", "Asthma"}
	for i, adj := range adjustments {
		if adj.Label != wantLabels[i] {
			t.Errorf("adjustment %d label = %q, want %q", i, adj.Label, wantLabels[i])
		}
	}
}

// TestGetHealthFactor_Floor verifies the 0.3 floor holds no matter how many
// negative-delta conditions stack, while the per-condition records keep their
// unfloored deltas.
func TestGetHealthFactor_Floor(t *testing.T) {
	// 1.0 - 0.30 - 0.40 - 0.15 = 0.15, floored to 0.30
	factor, adjustments := getHealthFactor([]string{"heart failure", "kidney failure", "liver cirrhosis"})
	if factor != 0.3 {
		t.Errorf("factor = %v, want floor 0.3", factor)
	}
	if len(adjustments) != 3 {
		t.Fatalf("expected 3 adjustment records, got %d", len(adjustments))
	}
	wantDeltas := []int{-30, -40, -15}
	for i, adj := range adjustments {
		if adj.Value != wantDeltas[i] {
			t.Errorf("adjustment %d delta = %d, want %d", i, adj.Value, wantDeltas[i])
		}
	}
}

/* ─── Environment factor tests ───────────────────────────────────────── */

// TestGetEnvironmentFactor_NilWeather verifies a missing snapshot is neutral.
func TestGetEnvironmentFactor_NilWeather(t *testing.T) {
	factor, adjustments := getEnvironmentFactor(nil)
	if factor != 1.0 || adjustments != nil {
		t.Errorf("got factor=%v adjustments=%v, want 1.0 and none", factor, adjustments)
	}
}

// TestGetEnvironmentFactor_AllRules fires every rule at once:
// 35°C, 75% humidity, 2000 m, UV 8 → 1 + 0.30 + 0.10 + 0.15 + 0.08 = 1.63.
func TestGetEnvironmentFactor_AllRules(t *testing.T) {
	factor, adjustments := getEnvironmentFactor(&weatherData{
		Temperature: 35, Humidity: 75, Altitude: 2000, UVIndex: 8,
	})
	if math.Abs(factor-1.63) > 1e-9 {
		t.Errorf("factor = %v, want 1.63", factor)
	}
	want := []factorAdjustment{
		{"Temperature", 30},
		{"High Humidity", 10},
		{"High Altitude", 15},
		{"High UV", 8},
	}
	if !reflect.DeepEqual(adjustments, want) {
		t.Errorf("adjustments = %v, want %v", adjustments, want)
	}
}

// TestGetEnvironmentFactor_TempCap verifies the temperature rule saturates at
// +50% however hot it gets, and that the thresholds themselves don't fire.
func TestGetEnvironmentFactor_TempCap(t *testing.T) {
	factor, _ := getEnvironmentFactor(&weatherData{Temperature: 60})
	if math.Abs(factor-1.50) > 1e-9 {
		t.Errorf("factor at 60°C = %v, want 1.50", factor)
	}

	// Boundary values are exclusive: 25°C / 70% / 1500 m / UV 6 add nothing.
	factor, adjustments := getEnvironmentFactor(&weatherData{
		Temperature: 25, Humidity: 70, Altitude: 1500, UVIndex: 6,
	})
	if factor != 1.0 || len(adjustments) != 0 {
		t.Errorf("boundary snapshot: factor=%v adjustments=%v, want neutral", factor, adjustments)
	}
}

/* ─── calculateHydration scenario tests ──────────────────────────────── */

// TestCalculateHydration_Baseline: 70 kg male, 25-35, no conditions, no
// weather → base 70*30.5 = 2135, all factors neutral, next drink capped at 500.
func TestCalculateHydration_Baseline(t *testing.T) {
	result := calculateHydration(makeProfile("male", "25-35", 70, nil), nil, 0)

	if result.BaseAmount != 2135 {
		t.Errorf("base = %d, want 2135", result.BaseAmount)
	}
	if result.DailyTarget != 2135 {
		t.Errorf("target = %d, want 2135", result.DailyTarget)
	}
	if result.NextDrinkAmount != 500 {
		t.Errorf("next drink = %d, want 500 (30%% of 2135 capped)", result.NextDrinkAmount)
	}
	if result.AgeAdjustment != 0 || result.GenderAdjustment != 0 ||
		result.HealthAdjustment != 0 || result.EnvironmentAdjustment != 0 {
		t.Errorf("expected all adjustments zero, got %+v", result)
	}
	if len(result.Breakdown) != 1 || result.Breakdown[0].Label != "Base (weight)" {
		t.Errorf("breakdown = %+v, want single base entry", result.Breakdown)
	}
}

// TestCalculateHydration_MinClamp: 40 kg → baseline tier 33 → 1320, clamped
// up to the 1500 ml floor.
func TestCalculateHydration_MinClamp(t *testing.T) {
	result := calculateHydration(makeProfile("male", "25-35", 40, nil), nil, 0)
	if result.BaseAmount != 1320 {
		t.Errorf("base = %d, want 1320", result.BaseAmount)
	}
	if result.DailyTarget != 1500 {
		t.Errorf("target = %d, want clamped 1500", result.DailyTarget)
	}
}

// TestCalculateHydration_FluidRestriction: heart failure at 100 kg caps the
// target at 2000 ml even though weightKg*100 would allow 10000.
func TestCalculateHydration_FluidRestriction(t *testing.T) {
	result := calculateHydration(makeProfile("male", "25-35", 100, []string{"Heart Failure"}), nil, 0)
	if result.DailyTarget > 2000 {
		t.Errorf("target = %d, want <= 2000 under fluid restriction", result.DailyTarget)
	}
	// 100*30.5 * 0.70 = 2135 pre-clamp, so the cap is what binds
	if result.DailyTarget != 2000 {
		t.Errorf("target = %d, want exactly 2000", result.DailyTarget)
	}
}

// TestCalculateHydration_MissingWeight verifies the 70 kg default applies when
// weight is unknown.
func TestCalculateHydration_MissingWeight(t *testing.T) {
	p := makeProfile("male", "25-35", 0, nil)
	p.Weight = nil
	result := calculateHydration(p, nil, 0)
	if result.BaseAmount != 2135 {
		t.Errorf("base = %d, want 2135 from the 70 kg default", result.BaseAmount)
	}
}

// TestCalculateHydration_PoundsProfile verifies the unit conversion feeds the
// baseline tiers: 110 lb ≈ 49.9 kg lands in the <50 tier.
func TestCalculateHydration_PoundsProfile(t *testing.T) {
	p := makeProfile("female", "25-35", 110, nil)
	p.WeightUnit = "lb"
	result := calculateHydration(p, nil, 0)
	// 110 * 0.453592 = 49.895 kg → tier 33 → base 1646.5... → 1647
	if result.BaseAmount != 1647 {
		t.Errorf("base = %d, want 1647", result.BaseAmount)
	}
}

// TestCalculateHydration_NextDrinkBounds verifies the [200, 500] clamp at both
// ends, including the deliberate 200 ml floor once the target is exceeded.
func TestCalculateHydration_NextDrinkBounds(t *testing.T) {
	p := makeProfile("male", "25-35", 70, nil)

	// Target met and exceeded: deficit negative, floor still 200.
	result := calculateHydration(p, nil, 5000)
	if result.NextDrinkAmount != 200 {
		t.Errorf("next drink after goal = %d, want floor 200", result.NextDrinkAmount)
	}

	// Small remaining deficit: 30% of it, inside the band.
	result = calculateHydration(p, nil, 1135) // deficit 1000 → 300
	if result.NextDrinkAmount != 300 {
		t.Errorf("next drink = %d, want 300", result.NextDrinkAmount)
	}

	// Empty day: 30% of 2135 > 500, capped.
	result = calculateHydration(p, nil, 0)
	if result.NextDrinkAmount != 500 {
		t.Errorf("next drink = %d, want cap 500", result.NextDrinkAmount)
	}
}

// TestCalculateHydration_Deterministic: identical inputs give deeply equal
// outputs — the calculation is pure.
func TestCalculateHydration_Deterministic(t *testing.T) {
	p := makeProfile("trans-male-transition", "14-24", 82, []string{"uti", "asthma"})
	p.HRTMonths = intPtr(7)
	w := &weatherData{Temperature: 31, Humidity: 80, Altitude: 1700, UVIndex: 7}

	first := calculateHydration(p, w, 650)
	second := calculateHydration(p, w, 650)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
}

/* ─── Breakdown tests ────────────────────────────────────────────────── */

// TestCalculateHydration_BreakdownOrder verifies the base entry comes first,
// zero-effect factors are omitted, and the per-factor labels survive.
func TestCalculateHydration_BreakdownOrder(t *testing.T) {
	p := makeProfile("female", "65+", 70, []string{"kidney stones"})
	w := &weatherData{Temperature: 30}
	result := calculateHydration(p, w, 0)

	labels := make([]string, len(result.Breakdown))
	for i, e := range result.Breakdown {
		labels[i] = e.Label
	}
	want := []string{"Base (weight)", "Age (65+)", "Gender adjustment", "Kidney Stones", "Temperature"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("breakdown labels = %v, want %v", labels, want)
	}

	for _, e := range result.Breakdown {
		if e.Value == 0 {
			t.Errorf("breakdown contains zero-magnitude entry %+v", e)
		}
	}

	// Signs: age (0.95) and gender (0.9) subtract, the rest add.
	wantAdd := []bool{true, false, false, true, true}
	for i, e := range result.Breakdown {
		if e.IsAddition != wantAdd[i] {
			t.Errorf("entry %q is_addition = %v, want %v", e.Label, e.IsAddition, wantAdd[i])
		}
	}
}

// TestCalculateHydration_BreakdownSumsToTarget: with a single non-neutral
// factor and no clamping, base plus the signed breakdown entries equals the
// daily target exactly (modulo integer rounding).
func TestCalculateHydration_BreakdownSumsToTarget(t *testing.T) {
	result := calculateHydration(makeProfile("male", "14-24", 70, nil), nil, 0)

	sum := 0
	for _, e := range result.Breakdown[1:] {
		if e.IsAddition {
			sum += e.Value
		} else {
			sum -= e.Value
		}
	}
	got := result.BaseAmount + sum
	if diff := got - result.DailyTarget; diff < -1 || diff > 1 {
		t.Errorf("base + breakdown = %d, target = %d", got, result.DailyTarget)
	}
}

// TestCalculateHydration_DiabetesLabelsShared: both diabetes types map to the
// shared "Diabetes" label and each contributes its own +15 record.
func TestCalculateHydration_DiabetesLabelsShared(t *testing.T) {
	p := makeProfile("male", "25-35", 70, []string{"diabetes type 1", "diabetes type 2"})
	result := calculateHydration(p, nil, 0)

	count := 0
	for _, e := range result.Breakdown {
		if e.Label == "Diabetes" {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected 2 Diabetes entries, got %d (breakdown %+v)", count, result.Breakdown)
	}
}

/* ─── Target range invariant ─────────────────────────────────────────── */

// TestCalculateHydration_TargetAlwaysInRange sweeps a grid of profiles and
// asserts the clamp invariant from the safety rules.
func TestCalculateHydration_TargetAlwaysInRange(t *testing.T) {
	weights := []float64{20, 45, 70, 100, 180, 300}
	conditionSets := [][]string{
		nil,
		{"fever", "pregnancy", "breastfeeding", "kidney stones"},
		{"heart failure"},
		{"kidney failure", "liver cirrhosis"},
	}
	weathers := []*weatherData{
		nil,
		{Temperature: 45, Humidity: 90, Altitude: 3000, UVIndex: 10},
	}

	for _, wkg := range weights {
		for _, conds := range conditionSets {
			for _, w := range weathers {
				result := calculateHydration(makeProfile("male", "5-13", wkg, conds), w, 0)

				upper := int(math.Round(math.Min(wkg*100, 24000)))
				restricted := false
				for _, c := range conds {
					if fluidRestrictedConditions[c] {
						restricted = true
					}
				}
				if restricted {
					upper = 2000
				}
				if upper < 1500 {
					// The floor wins over a tighter weight-derived ceiling.
					upper = 1500
				}

				if result.DailyTarget < 1500 || result.DailyTarget > upper {
					t.Errorf("weight=%v conds=%v weather=%v: target %d outside [1500,%d]",
						wkg, conds, w, result.DailyTarget, upper)
				}
			}
		}
	}
}

/* ─── Warning evaluator tests ────────────────────────────────────────── */

// TestCheckWaterWarnings covers the trip cases (900+200 trips hourly) and
// the threshold boundaries: both checks are strict inequalities.
func TestCheckWaterWarnings(t *testing.T) {
	cases := []struct {
		name                                         string
		lastHour, totalConsumed, amount, dailyTarget int
		wantHourly, wantDaily                        bool
	}{
		{"hourly trip", 900, 0, 200, 2000, true, false},
		{"exactly 1000 in hour", 800, 0, 200, 2000, false, false},
		{"daily trip", 0, 2900, 200, 2000, false, true},
		{"exactly 150 percent", 0, 2800, 200, 2000, false, false},
		{"both trip", 1000, 3000, 500, 2000, true, true},
		{"quiet", 100, 500, 250, 2000, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := checkWaterWarnings(tc.lastHour, tc.totalConsumed, tc.amount, tc.dailyTarget)
			if got.Hourly != tc.wantHourly || got.Daily != tc.wantDaily {
				t.Errorf("got %+v, want hourly=%v daily=%v", got, tc.wantHourly, tc.wantDaily)
			}
		})
	}
}

/* ─── Option table tests ─────────────────────────────────────────────── */

// TestHealthConditionOptions_MatchDeltaTable verifies every selectable
// condition resolves to a delta — the choice list and the factor table must
// not drift apart.
func TestHealthConditionOptions_MatchDeltaTable(t *testing.T) {
	for _, opt := range healthConditionOptions {
		if _, ok := healthConditionDeltas[opt.Value]; !ok {
			t.Errorf("option %q has no entry in healthConditionDeltas", opt.Value)
		}
	}
}

// TestGenderOptions_AllDispatchable verifies every selectable gender hits an
// explicit branch of getGenderFactor (i.e. none falls through to the
// unrecognized-tag default).
func TestGenderOptions_AllDispatchable(t *testing.T) {
	for _, opt := range genderOptions {
		factor := getGenderFactor(opt.Value, intPtr(0))
		if factor < 0.9 || factor > 1.0 {
			t.Errorf("gender %q produced out-of-band factor %v", opt.Value, factor)
		}
	}
	// Sanity: an actually unknown tag is neutral, distinct from "other" (0.95).
	if got := getGenderFactor("made-up", intPtr(0)); got != 1.0 {
		t.Errorf("unknown tag factor = %v, want 1.0", got)
	}
}
