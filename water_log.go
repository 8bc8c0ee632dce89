package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// maxSingleIntake is the largest single entry accepted, in ml. Anything above
// this is almost certainly a typo and would poison the warning aggregates.
const maxSingleIntake = 5000

/* ─── Per-user append serialization ──────────────────────────────────── */

// userLocker hands out one mutex per user id. The warning check previews a
// hypothetical post-append state, so evaluate-then-append must be serialized
// per user: two rapid submissions may otherwise both pass against stale
// totals and push the true total past the threshold undetected.
type userLocker struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

// lock returns the mutex for a user, creating it on first use.
func (ul *userLocker) lock(userID int) *sync.Mutex {
	ul.mu.Lock()
	defer ul.mu.Unlock()
	if ul.locks == nil {
		ul.locks = make(map[int]*sync.Mutex)
	}
	m, ok := ul.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		ul.locks[userID] = m
	}
	return m
}

/* ─── Aggregate helpers ──────────────────────────────────────────────── */

// intakeTotals is the scan target for the combined today/last-hour sum query.
type intakeTotals struct {
	TotalToday int `db:"total_today"`
	LastHour   int `db:"last_hour"`
}

// currentIntakeTotals returns today's consumed total and the trailing
// 60-minute sum for a user, both in ml.
func (h *Handler) currentIntakeTotals(c *gin.Context, userID int) (intakeTotals, error) {
	return queryOne[intakeTotals](h.db, c,
		`SELECT
			COALESCE(SUM(amount), 0)::int AS total_today,
			COALESCE(SUM(amount) FILTER (WHERE logged_at > now() - interval '1 hour'), 0)::int AS last_hour
		 FROM water_log_items
		 WHERE user_id = @userID AND logged_at::date = CURRENT_DATE`,
		pgx.NamedArgs{"userID": userID})
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getDailySummary returns intake events and the computed hydration result for
// a given date.
// GET /api/water-log/daily?date=YYYY-MM-DD&lat=..&lon=.. (date defaults to today).
// Weather feeds the calculation only for today's summary, and only when the
// profile has GPS enabled and coordinates were sent; historic days are
// weatherless by design (weather snapshots are transient, never persisted).
func (h *Handler) getDailySummary(c *gin.Context) {
	userID := c.GetInt("user_id")
	today := time.Now().Format("2006-01-02")
	date := c.DefaultQuery("date", today)

	// Validate date format before querying — an invalid value silently returns no rows.
	if _, err := time.Parse("2006-01-02", date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	items, err := queryMany[waterLogItem](h.db, c,
		`SELECT * FROM water_log_items
		 WHERE user_id = @userID AND logged_at::date = @date
		 ORDER BY logged_at`,
		pgx.NamedArgs{"userID": userID, "date": date})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch items")
		return
	}
	// Ensure items is an empty array (not null) in JSON
	if items == nil {
		items = []waterLogItem{}
	}

	profile, err := queryOne[hydrationProfile](h.db, c,
		"SELECT * FROM hydration_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	totalConsumed := 0
	lastHourIntake := 0
	cutoff := time.Now().Add(-time.Hour)
	for _, item := range items {
		totalConsumed += item.Amount
		if item.LoggedAt.After(cutoff) {
			lastHourIntake += item.Amount
		}
	}

	var weather *weatherData
	if date == today && profile.GPSEnabled {
		if lat, lon, ok := coordsFromQuery(c); ok {
			weather = h.fetchWeatherOrSimulated(c.Request.Context(), lat, lon)
		}
	}

	result := calculateHydration(&profile, weather, totalConsumed)

	remaining := result.DailyTarget - totalConsumed
	if remaining < 0 {
		remaining = 0
	}

	c.JSON(http.StatusOK, dailySummary{
		Date:           date,
		TotalConsumed:  totalConsumed,
		LastHourIntake: lastHourIntake,
		Remaining:      remaining,
		Items:          items,
		Weather:        weather,
		Hydration:      result,
	})
}

// createWaterLogItem records an intake event after an over-consumption check.
// POST /api/water-log/items. Body: { "amount": 250, "confirmed": false }.
//
// The warning check and the insert run under the user's append lock so the
// preview can't race a concurrent submission. When a warning fires and the
// client has not confirmed, nothing is written and 409 is returned with the
// flags; resubmitting with confirmed=true records the intake anyway (the
// "Add Anyway" path).
func (h *Handler) createWaterLogItem(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createWaterLogItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Amount <= 0 || body.Amount > maxSingleIntake {
		apiError(c, http.StatusBadRequest, "amount must be between 1 and 5000 ml")
		return
	}

	profile, err := queryOne[hydrationProfile](h.db, c,
		"SELECT * FROM hydration_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	mu := h.logLocks.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	totals, err := h.currentIntakeTotals(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch intake totals")
		return
	}

	// The warning threshold uses the weatherless target: the check must be
	// reproducible for the retry with confirmed=true, and a transient weather
	// reading shifting the target between the two requests would make the 409
	// flicker.
	target := calculateHydration(&profile, nil, totals.TotalToday).DailyTarget
	warnings := checkWaterWarnings(totals.LastHour, totals.TotalToday, body.Amount, target)

	if (warnings.Hourly || warnings.Daily) && !body.Confirmed {
		c.JSON(http.StatusConflict, gin.H{"warnings": warnings})
		return
	}

	item, err := queryOne[waterLogItem](h.db, c,
		`INSERT INTO water_log_items (user_id, amount, logged_at)
		 VALUES (@userID, @amount, now())
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "amount": body.Amount})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create item")
		return
	}

	newTotal := totals.TotalToday + body.Amount
	c.JSON(http.StatusCreated, gin.H{
		"item":           item,
		"total_consumed": newTotal,
		"warnings":       warnings,
		"hydration":      calculateHydration(&profile, nil, newTotal),
	})
}

// deleteWaterLogItem removes an intake event. Returns 204 on success.
// DELETE /api/water-log/items/:id. Ownership is enforced by requiring both
// id and user_id to match.
func (h *Handler) deleteWaterLogItem(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM water_log_items WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "item not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// getWeekSummary returns per-day intake totals for the Mon–Sun week containing
// week_start. Days with no intake events are included with has_data=false.
// GET /api/water-log/week-summary?week_start=YYYY-MM-DD (defaults to current week).
// The per-day target comes from the current profile without weather, so the
// week view does not shift as transient readings change.
func (h *Handler) getWeekSummary(c *gin.Context) {
	userID := c.GetInt("user_id")

	// Parse week_start; default to the current Monday.
	var weekStart time.Time
	if s := c.Query("week_start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid week_start, expected YYYY-MM-DD")
			return
		}
		weekStart = t
	} else {
		weekStart = currentMonday()
	}
	weekEnd := weekStart.AddDate(0, 0, 6)

	profile, err := queryOne[hydrationProfile](h.db, c,
		"SELECT * FROM hydration_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	target := calculateHydration(&profile, nil, 0).DailyTarget

	rows, err := queryMany[weekDayDBRow](h.db, c,
		`SELECT
			logged_at::date AS date,
			SUM(amount)::int AS amount
		 FROM water_log_items
		 WHERE user_id = @userID
		   AND logged_at::date >= @weekStart AND logged_at::date <= @weekEnd
		 GROUP BY logged_at::date`,
		pgx.NamedArgs{
			"userID":    userID,
			"weekStart": weekStart.Format("2006-01-02"),
			"weekEnd":   weekEnd.Format("2006-01-02"),
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch week data")
		return
	}

	// Index DB rows by date string for O(1) merge.
	rowByDate := make(map[string]weekDayDBRow, len(rows))
	for _, r := range rows {
		rowByDate[r.Date.Time.Format("2006-01-02")] = r
	}

	// Build a full 7-day response, filling zeros for days with no data.
	result := make([]weekDaySummary, 7)
	for i := 0; i < 7; i++ {
		d := weekStart.AddDate(0, 0, i)
		day := weekDaySummary{
			Date:   DateOnly{d},
			Target: target,
		}
		if row, ok := rowByDate[d.Format("2006-01-02")]; ok {
			day.HasData = true
			day.Amount = row.Amount
		}
		result[i] = day
	}

	c.JSON(http.StatusOK, result)
}

// currentMonday returns the Monday of the current week at midnight UTC.
// Uses AddDate to safely handle month/year boundaries — direct day subtraction
// can produce day=0 or negative, which time.Date normalizes but is confusing.
func currentMonday() time.Time {
	now := time.Now().UTC()
	weekday := int(now.Weekday()) // 0=Sun
	if weekday == 0 {
		weekday = 7 // treat Sunday as day 7 so Mon=1..Sun=7
	}
	daysBack := weekday - 1
	return now.AddDate(0, 0, -daysBack).Truncate(24 * time.Hour)
}
