package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// defaultWeatherBaseURL is the OpenWeather API root. Handler.weatherBaseURL
// overrides it in tests.
const defaultWeatherBaseURL = "https://api.openweathermap.org"

/* ─── OpenWeather HTTP client ────────────────────────────────────────── */

// fetchOpenWeather calls the OpenWeather current-weather endpoint and maps the
// response to a weatherData snapshot. Uses raw net/http to avoid pulling in a
// weather SDK. OpenWeather provides neither altitude nor UV index on this
// endpoint, so those use fixed placeholders (0 m / index 5 — neither crosses
// an environment-factor threshold).
func fetchOpenWeather(ctx context.Context, lat, lon float64, baseURL string) (*weatherData, error) {
	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY not set")
	}

	url := fmt.Sprintf("%s/data/2.5/weather?lat=%f&lon=%f&units=metric&appid=%s",
		baseURL, lat, lon, apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openweather returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var result struct {
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &weatherData{
		Temperature: math.Round(result.Main.Temp*10) / 10,
		Humidity:    result.Main.Humidity,
		Altitude:    0,
		UVIndex:     5,
		City:        result.Name,
	}, nil
}

/* ─── Simulated fallback ─────────────────────────────────────────────── */

// simulatedWeather produces a deterministic synthetic reading from clock time:
// a seasonal base temperature (Northern Hemisphere assumed) with a diurnal
// warm-up/cool-down curve, midday-gated UV, and fixed humidity and altitude.
// Used whenever no API key is configured or the live fetch fails, so weather
// degradation is never a user-visible error.
func simulatedWeather(now time.Time) *weatherData {
	hour := now.Hour()
	month := now.Month()

	isSummer := month >= time.May && month <= time.September
	baseTemp := 12.0
	if isSummer {
		baseTemp = 22.0
	}

	// Daily temperature cycle: morning warming, afternoon peak, evening
	// cooling, coldest overnight.
	var dailyVariation float64
	switch {
	case hour >= 6 && hour < 12:
		dailyVariation = float64(hour-6) / 6 * 8
	case hour >= 12 && hour < 18:
		dailyVariation = 8 - float64(hour-12)/6*4
	case hour >= 18 && hour < 22:
		dailyVariation = 4 - float64(hour-18)/4*4
	default:
		dailyVariation = -2
	}

	uvIndex := 1.5
	if hour >= 10 && hour <= 16 {
		uvIndex = 6.5
	}

	return &weatherData{
		Temperature: math.Round((baseTemp+dailyVariation)*10) / 10,
		Humidity:    60,
		Altitude:    100,
		UVIndex:     uvIndex,
		City:        "Your Location",
		Simulated:   true,
	}
}

// fetchWeatherOrSimulated returns a live reading when possible and the
// simulated fallback otherwise. Never returns nil.
func (h *Handler) fetchWeatherOrSimulated(ctx context.Context, lat, lon float64) *weatherData {
	baseURL := h.weatherBaseURL
	if baseURL == "" {
		baseURL = defaultWeatherBaseURL
	}

	weather, err := fetchOpenWeather(ctx, lat, lon, baseURL)
	if err != nil {
		log.Printf("[weather] falling back to simulated reading: %v", err)
		return simulatedWeather(time.Now())
	}
	return weather
}

// coordsFromQuery parses optional lat/lon query params. Both must be present
// and numeric for ok=true.
func coordsFromQuery(c *gin.Context) (lat, lon float64, ok bool) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// getWeather returns the current environmental snapshot for the user's
// coordinates. GET /api/weather?lat=..&lon=.. Requires the profile to have
// GPS enabled — weather is an opt-in input to the target calculation.
func (h *Handler) getWeather(c *gin.Context) {
	userID := c.GetInt("user_id")

	profile, err := queryOne[hydrationProfile](h.db, c,
		"SELECT * FROM hydration_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	if !profile.GPSEnabled {
		apiError(c, http.StatusForbidden, "gps is disabled on this profile")
		return
	}

	lat, lon, ok := coordsFromQuery(c)
	if !ok {
		apiError(c, http.StatusBadRequest, "lat and lon query params are required")
		return
	}

	c.JSON(http.StatusOK, h.fetchWeatherOrSimulated(c.Request.Context(), lat, lon))
}
