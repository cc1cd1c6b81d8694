package scorer

import (
	"unicode/utf8"

	"github.com/sells-group/proposal-analyzer/internal/config"
	"github.com/sells-group/proposal-analyzer/internal/model"
)

// Check is one rubric predicate evaluated against a record.
type Check struct {
	Name   string  `json:"name"`
	Label  string  `json:"label"`
	Passed bool    `json:"passed"`
	Points float64 `json:"points"`
}

// Check names, shared with the report builder.
const (
	CheckMethodology = "methodology"
	CheckDuration    = "duration"
	CheckTeam        = "team"
	CheckEquipment   = "equipment"
	CheckMaterials   = "materials"
	CheckSchedule    = "schedule"
	CheckExperience  = "experience"

	CheckPrice       = "price"
	CheckBDI         = "bdi"
	CheckPayment     = "payment"
	CheckWarranty    = "warranty"
	CheckComposition = "composition"
)

// TechnicalChecks evaluates the technical rubric. Methodology earns full
// points above MinNarrativeChars characters and partial points otherwise.
func TechnicalChecks(rec model.TechnicalRecord, c config.ScoringConfig) []Check {
	methodology := Check{Name: CheckMethodology, Label: "Metodologia", Passed: rec.Methodology != ""}
	switch {
	case longer(rec.Methodology, c.MinNarrativeChars):
		methodology.Points = c.MethodologyFullPoints
	case methodology.Passed:
		methodology.Points = c.MethodologyPartialPoints
	}

	return []Check{
		methodology,
		check(CheckDuration, "Prazo", rec.DurationDays > 0, c.DurationPoints),
		check(CheckTeam, "Equipe", rec.TeamSize > 0, c.TeamPoints),
		check(CheckEquipment, "Equipamentos", len(rec.Equipment) > 0, c.EquipmentPoints),
		check(CheckMaterials, "Materiais", len(rec.Materials) > 0, c.MaterialsPoints),
		check(CheckSchedule, "Cronograma", longer(rec.Schedule, c.MinNarrativeChars), c.SchedulePoints),
		check(CheckExperience, "Experiência", longer(rec.Experience, c.MinNarrativeChars), c.ExperiencePoints),
	}
}

// CommercialChecks evaluates the commercial rubric.
func CommercialChecks(rec model.CommercialRecord, c config.ScoringConfig) []Check {
	return []Check{
		check(CheckPrice, "Preço", rec.TotalPrice > 0, c.PricePoints),
		check(CheckBDI, "BDI", rec.BDIPercent > 0, c.BDIPoints),
		check(CheckPayment, "Pagamento", rec.PaymentTerms != "", c.PaymentPoints),
		check(CheckWarranty, "Garantia", rec.WarrantyTerms != "", c.WarrantyPoints),
		check(CheckComposition, "Composição de custos", rec.CostComposition.Any(), c.CompositionPoints),
	}
}

// Technical returns the technical completeness score in [0, 100].
func Technical(rec model.TechnicalRecord, c config.ScoringConfig) float64 {
	return percent(TechnicalChecks(rec, c), MaxTechnical(c))
}

// Commercial returns the commercial completeness score in [0, 100].
func Commercial(rec model.CommercialRecord, c config.ScoringConfig) float64 {
	return percent(CommercialChecks(rec, c), MaxCommercial(c))
}

// Score computes both scores for a vendor.
func Score(v *model.VendorRecords, c config.ScoringConfig) model.ScorePair {
	return model.ScorePair{
		Technical:  Technical(v.Technical, c),
		Commercial: Commercial(v.Commercial, c),
	}
}

// ScoreAll fills Scores on every vendor in place.
func ScoreAll(vendors model.Vendors, c config.ScoringConfig) {
	for _, v := range vendors {
		v.Scores = Score(v, c)
	}
}

func check(name, label string, passed bool, points float64) Check {
	ch := Check{Name: name, Label: label, Passed: passed}
	if passed {
		ch.Points = points
	}
	return ch
}

func percent(checks []Check, total float64) float64 {
	if total <= 0 {
		return 0
	}
	earned := 0.0
	for _, ch := range checks {
		earned += ch.Points
	}
	return earned / total * 100
}

// longer reports whether s has more than n characters.
func longer(s string, n int) bool {
	return utf8.RuneCountInString(s) > n
}
