// Package scorer computes completeness scores for vendor proposals.
package scorer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/proposal-analyzer/internal/config"
)

// DefaultScoringConfig returns the standard rubric, the same values config.Load
// falls back to.
func DefaultScoringConfig() config.ScoringConfig {
	return config.DefaultScoring()
}

// MaxTechnical returns the technical points available.
func MaxTechnical(c config.ScoringConfig) float64 {
	return c.MethodologyFullPoints + c.DurationPoints + c.TeamPoints +
		c.EquipmentPoints + c.MaterialsPoints + c.SchedulePoints + c.ExperiencePoints
}

// MaxCommercial returns the commercial points available.
func MaxCommercial(c config.ScoringConfig) float64 {
	return c.PricePoints + c.BDIPoints + c.PaymentPoints + c.WarrantyPoints + c.CompositionPoints
}

// ValidateConfig checks that a ScoringConfig is internally consistent.
func ValidateConfig(c config.ScoringConfig) error {
	var errs []string

	points := map[string]float64{
		"methodology_full_points":    c.MethodologyFullPoints,
		"methodology_partial_points": c.MethodologyPartialPoints,
		"duration_points":            c.DurationPoints,
		"team_points":                c.TeamPoints,
		"equipment_points":           c.EquipmentPoints,
		"materials_points":           c.MaterialsPoints,
		"schedule_points":            c.SchedulePoints,
		"experience_points":          c.ExperiencePoints,
		"price_points":               c.PricePoints,
		"bdi_points":                 c.BDIPoints,
		"payment_points":             c.PaymentPoints,
		"warranty_points":            c.WarrantyPoints,
		"composition_points":         c.CompositionPoints,
	}
	for name, p := range points {
		if p < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	// Partial credit above full credit would break monotonicity.
	if c.MethodologyPartialPoints > c.MethodologyFullPoints {
		errs = append(errs, "methodology_partial_points must be <= methodology_full_points")
	}
	if MaxTechnical(c) <= 0 {
		errs = append(errs, "technical points must sum to > 0")
	}
	if MaxCommercial(c) <= 0 {
		errs = append(errs, "commercial points must sum to > 0")
	}

	if c.MinNarrativeChars < 0 {
		errs = append(errs, "min_narrative_chars must be >= 0")
	}
	if c.RecommendTechMinScore < 0 || c.RecommendTechMinScore > 100 {
		errs = append(errs, "recommend_tech_min_score must be between 0 and 100")
	}
	if c.GoodIndex > c.ExcellentIndex {
		errs = append(errs, "good_index must be <= excellent_index")
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
