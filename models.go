package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns into DateOnly. NULL values zero the time and return nil so that
// *DateOnly pointer fields can be set to nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// hydrationProfile maps to hydration_profiles. One row per user holding the
// inputs of the target calculation. Nullable fields use pointers so pgx can
// scan NULLs; a missing weight means "unknown" and the engine falls back to
// 70 kg. HRTMonths is only meaningful for the two mid-transition gender tags
// and is kept within [0,24] by the profile handlers.
type hydrationProfile struct {
	UserID           int      `json:"user_id" db:"user_id"`
	Gender           string   `json:"gender" db:"gender"`
	AgeRange         string   `json:"age_range" db:"age_range"`
	Weight           *float64 `json:"weight" db:"weight"`
	WeightUnit       string   `json:"weight_unit" db:"weight_unit"`
	HealthConditions []string `json:"health_conditions" db:"health_conditions"`
	Medications      *string  `json:"medications" db:"medications"`
	HRTMonths        *int     `json:"hrt_months" db:"hrt_months"`
	GPSEnabled       bool     `json:"gps_enabled" db:"gps_enabled"`
	OnboardingDone   bool     `json:"onboarding_done" db:"onboarding_done"`

	CreatedAt *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// waterLogItem maps to water_log_items. One intake event; amounts are
// positive integers in ml. The item's calendar day is derived from LoggedAt
// at query time — there is no separate date column to fall out of sync.
type waterLogItem struct {
	ID        int        `json:"id" db:"id"`
	UserID    int        `json:"user_id" db:"user_id"`
	Amount    int        `json:"amount" db:"amount"`
	LoggedAt  time.Time  `json:"logged_at" db:"logged_at"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// weatherData is a transient environmental snapshot handed to the engine.
// Never persisted; refreshed per request.
type weatherData struct {
	Temperature float64 `json:"temperature"` // Celsius
	Humidity    float64 `json:"humidity"`    // percent
	Altitude    float64 `json:"altitude"`    // meters
	UVIndex     float64 `json:"uv_index"`
	City        string  `json:"city"`
	Simulated   bool    `json:"simulated"` // true when served by the fallback generator
}

/* ─── Engine output ──────────────────────────────────────────────────── */

// breakdownEntry is one labeled contribution in the target breakdown.
// Value is the absolute rounded ml magnitude; IsAddition carries the sign.
type breakdownEntry struct {
	Label      string `json:"label"`
	Value      int    `json:"value"`
	IsAddition bool   `json:"is_addition"`
}

// hydrationResult is the output of one calculateHydration call. All amounts
// are integral ml, rounded at the point of return.
type hydrationResult struct {
	DailyTarget           int              `json:"daily_target"`
	BaseAmount            int              `json:"base_amount"`
	AgeAdjustment         int              `json:"age_adjustment"`
	GenderAdjustment      int              `json:"gender_adjustment"`
	HealthAdjustment      int              `json:"health_adjustment"`
	EnvironmentAdjustment int              `json:"environment_adjustment"`
	NextDrinkAmount       int              `json:"next_drink_amount"`
	Breakdown             []breakdownEntry `json:"breakdown"`
}

// waterWarnings is the result of a checkWaterWarnings preview. Either or
// both flags may be set.
type waterWarnings struct {
	Hourly bool `json:"hourly"`
	Daily  bool `json:"daily"`
}

/* ─── Response shapes ────────────────────────────────────────────────── */

// dailySummary is the response shape for GET /api/water-log/daily: the day's
// intake events plus the engine result computed for the request.
type dailySummary struct {
	Date           string          `json:"date"`
	TotalConsumed  int             `json:"total_consumed"`
	LastHourIntake int             `json:"last_hour_intake"`
	Remaining      int             `json:"remaining"`
	Items          []waterLogItem  `json:"items"`
	Weather        *weatherData    `json:"weather"`
	Hydration      hydrationResult `json:"hydration"`
}

// weekDayDBRow is the shape of each row returned by the week-summary GROUP BY
// query. Used only for scanning; the final response uses weekDaySummary.
type weekDayDBRow struct {
	Date   DateOnly `db:"date"`
	Amount int      `db:"amount"`
}

// weekDaySummary is one day's entry in the GET /api/water-log/week-summary
// response. Days with no intake events have HasData=false and Amount 0. The
// target is computed from the current profile without weather so the week
// view is stable across requests.
type weekDaySummary struct {
	Date    DateOnly `json:"date"`
	Amount  int      `json:"amount"`
	Target  int      `json:"target"`
	HasData bool     `json:"has_data"`
}

/* ─── Request shapes ─────────────────────────────────────────────────── */

// createWaterLogItemRequest is the request body for POST /api/water-log/items.
// Confirmed acknowledges a previously returned over-consumption warning.
type createWaterLogItemRequest struct {
	Amount    int  `json:"amount"`
	Confirmed bool `json:"confirmed"`
}

// patchProfileRequest is the request body for PATCH /api/profile. All fields
// are pointers — only non-nil fields get written to the database.
type patchProfileRequest struct {
	Gender           *string   `json:"gender"`
	AgeRange         *string   `json:"age_range"`
	Weight           *float64  `json:"weight"`
	WeightUnit       *string   `json:"weight_unit"`
	HealthConditions *[]string `json:"health_conditions"`
	Medications      *string   `json:"medications"`
	HRTMonths        *int      `json:"hrt_months"`
	GPSEnabled       *bool     `json:"gps_enabled"`
	OnboardingDone   *bool     `json:"onboarding_done"`
}
