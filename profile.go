package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// optionValues collects the value column of an option list into a set for
// validation lookups.
func optionValues(options []selectOption) map[string]bool {
	set := make(map[string]bool, len(options))
	for _, o := range options {
		set[o.Value] = true
	}
	return set
}

// validGenders and validAgeRanges share their source of truth with the choice
// lists served by getHydrationOptions and with the engine's dispatch.
var (
	validGenders   = optionValues(genderOptions)
	validAgeRanges = optionValues(ageRangeOptions)
)

// getHydrationOptions serves the static reference tables UI collaborators use
// to populate choice lists: genders, age ranges, and health conditions.
// GET /api/hydration/options (public — needed during onboarding, before login).
func (h *Handler) getHydrationOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"genders":           genderOptions,
		"age_ranges":        ageRangeOptions,
		"health_conditions": healthConditionOptions,
	})
}

// getProfile returns the hydration profile for the authenticated user plus
// the target computed from it (no weather — the weatherless target is the
// profile's intrinsic number; the daily summary applies environment on top).
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := queryOne[hydrationProfile](h.db, c,
		"SELECT * FROM hydration_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":   p,
		"hydration": calculateHydration(&p, nil, 0),
	})
}

// patchProfile updates only the provided profile fields.
// PATCH /api/profile. Uses pointer fields in the request body to distinguish
// "not provided" from zero — only non-nil fields get updated.
//
// This layer owns hrt_months clamping: values outside [0,24] are pulled back
// into range before persisting, so the engine's interpolation never sees an
// out-of-range duration.
func (h *Handler) patchProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body patchProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	// Validate enum-like fields before saving — an unknown gender or age range
	// silently degrades every future target calculation to the neutral factor.
	if body.Gender != nil && !validGenders[*body.Gender] {
		apiError(c, http.StatusBadRequest, "gender is not a recognized option")
		return
	}
	if body.AgeRange != nil && !validAgeRanges[*body.AgeRange] {
		apiError(c, http.StatusBadRequest, "age_range is not a recognized option")
		return
	}
	if body.WeightUnit != nil && *body.WeightUnit != "kg" && *body.WeightUnit != "lb" {
		apiError(c, http.StatusBadRequest, "weight_unit must be kg or lb")
		return
	}
	if body.Weight != nil && (*body.Weight <= 0 || *body.Weight > 1100) {
		apiError(c, http.StatusBadRequest, "weight must be between 0 and 1100")
		return
	}
	if body.HRTMonths != nil {
		clamped := *body.HRTMonths
		if clamped < 0 {
			clamped = 0
		}
		if clamped > 24 {
			clamped = 24
		}
		body.HRTMonths = &clamped
	}
	// Condition labels are stored as sent and matched case-insensitively at
	// calculation time; unrecognized labels are kept but contribute no factor.
	if body.HealthConditions != nil {
		trimmed := make([]string, 0, len(*body.HealthConditions))
		for _, cond := range *body.HealthConditions {
			if s := strings.TrimSpace(cond); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		body.HealthConditions = &trimmed
	}

	// Build SET clause dynamically — only update fields the client actually sent
	setClauses := []string{}
	args := pgx.NamedArgs{"userID": userID}

	if body.Gender != nil {
		setClauses = append(setClauses, "gender = @gender")
		args["gender"] = *body.Gender
	}
	if body.AgeRange != nil {
		setClauses = append(setClauses, "age_range = @ageRange")
		args["ageRange"] = *body.AgeRange
	}
	if body.Weight != nil {
		setClauses = append(setClauses, "weight = @weight")
		args["weight"] = *body.Weight
	}
	if body.WeightUnit != nil {
		setClauses = append(setClauses, "weight_unit = @weightUnit")
		args["weightUnit"] = *body.WeightUnit
	}
	if body.HealthConditions != nil {
		setClauses = append(setClauses, "health_conditions = @healthConditions")
		args["healthConditions"] = *body.HealthConditions
	}
	if body.Medications != nil {
		setClauses = append(setClauses, "medications = @medications")
		args["medications"] = *body.Medications
	}
	if body.HRTMonths != nil {
		setClauses = append(setClauses, "hrt_months = @hrtMonths")
		args["hrtMonths"] = *body.HRTMonths
	}
	if body.GPSEnabled != nil {
		setClauses = append(setClauses, "gps_enabled = @gpsEnabled")
		args["gpsEnabled"] = *body.GPSEnabled
	}
	if body.OnboardingDone != nil {
		setClauses = append(setClauses, "onboarding_done = @onboardingDone")
		args["onboardingDone"] = *body.OnboardingDone
	}

	if len(setClauses) == 0 {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}
	setClauses = append(setClauses, "updated_at = now()")

	query := "UPDATE hydration_profiles SET " +
		strings.Join(setClauses, ", ") +
		" WHERE user_id = @userID RETURNING *"

	p, err := queryOne[hydrationProfile](h.db, c, query, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":   p,
		"hydration": calculateHydration(&p, nil, 0),
	})
}
