package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/proposal-analyzer/internal/model"
)

// Field names a TechnicalRecord field populated by mining rules.
type Field string

// Mined fields.
const (
	FieldMethodology  Field = "methodology"
	FieldDuration     Field = "duration_days"
	FieldTeamSize     Field = "team_size"
	FieldEquipment    Field = "equipment"
	FieldMaterials    Field = "materials"
	FieldSchedule     Field = "schedule"
	FieldExperience   Field = "experience"
	FieldObligations  Field = "obligations"
	FieldExclusions   Field = "exclusions"
	FieldSiteLogistic Field = "site_logistic"
)

// spanLimit bounds list and section captures, in characters.
const spanLimit = 500

// Rule is one heuristic. Apply receives the full text and the submatch
// index slice of Pattern, and reports whether it populated the field.
type Rule struct {
	Name    string
	Field   Field
	Pattern *regexp.Regexp
	Apply   func(rec *model.TechnicalRecord, text string, loc []int) bool
}

// Miner populates a TechnicalRecord from free text. Rules are evaluated in
// order; once a rule populates a field, later rules for that field are
// skipped.
type Miner struct {
	rules []Rule
}

// NewMiner creates a Miner with the default Portuguese rule set.
func NewMiner() *Miner {
	return &Miner{rules: DefaultRules()}
}

// NewMinerWithRules creates a Miner over a custom ordered rule list.
func NewMinerWithRules(rules []Rule) *Miner {
	return &Miner{rules: rules}
}

// Rules returns the miner's rule list.
func (m *Miner) Rules() []Rule {
	return m.rules
}

// Mine extracts a TechnicalRecord. It never fails: fields without a match
// keep zero values, and a panic in any rule resets the whole record.
func (m *Miner) Mine(text string) (rec model.TechnicalRecord) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("extract: technical mining panicked, using defaults",
				zap.Any("panic", r),
			)
			rec = model.TechnicalRecord{}
		}
	}()

	done := make(map[Field]bool)
	for _, rule := range m.rules {
		if done[rule.Field] {
			continue
		}
		loc := rule.Pattern.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		if rule.Apply(&rec, text, loc) {
			done[rule.Field] = true
			zap.L().Debug("extract: rule matched",
				zap.String("rule", rule.Name),
				zap.String("field", string(rule.Field)),
			)
		}
	}
	return rec
}

// DefaultRules returns the built-in rule list.
func DefaultRules() []Rule {
	return []Rule{
		{"metodologia", FieldMethodology, regexp.MustCompile(`(?i)metodologia:\s*([^.]+)`), applyMethodology},
		{"abordagem", FieldMethodology, regexp.MustCompile(`(?i)abordagem:\s*([^.]+)`), applyMethodology},
		{"metodo", FieldMethodology, regexp.MustCompile(`(?i)m[ée]todo:\s*([^.]+)`), applyMethodology},

		{"prazo_dias", FieldDuration, regexp.MustCompile(`(?i)prazo[^:\n]*:\s*(\d+)\s*dias`), applyDuration},
		{"dias", FieldDuration, regexp.MustCompile(`(?i)(\d+)\s*dias`), applyDuration},
		{"prazo_total", FieldDuration, regexp.MustCompile(`(?i)prazo\s+total:\s*(\d+)`), applyDuration},

		{"pessoas", FieldTeamSize, regexp.MustCompile(`(?i)(\d+)\s*pessoas`), applyTeamSize},
		{"profissionais", FieldTeamSize, regexp.MustCompile(`(?i)(\d+)\s*profissionais`), applyTeamSize},
		{"composicao", FieldTeamSize, regexp.MustCompile(`(?i)(\d+)\s*coordenador(?:es)?\D{0,60}?(\d+)\s*desenvolvedor(?:es)?`), applyTeamSize},
		{"equipe", FieldTeamSize, regexp.MustCompile(`(?i)equipe[^\d\n]*(\d+)`), applyTeamSize},

		{"equipamentos", FieldEquipment, regexp.MustCompile(`(?i)equipamentos?:`), bulletApply(func(r *model.TechnicalRecord) *[]string { return &r.Equipment })},
		{"materiais", FieldMaterials, regexp.MustCompile(`(?i)materia(?:l|is):`), bulletApply(func(r *model.TechnicalRecord) *[]string { return &r.Materials })},

		{"cronograma", FieldSchedule, regexp.MustCompile(`(?i)cronograma[^:\n]{0,40}:`), sectionApply(func(r *model.TechnicalRecord) *string { return &r.Schedule })},
		{"experiencia", FieldExperience, regexp.MustCompile(`(?i)experi[êe]ncia[^:\n]{0,40}:`), sectionApply(func(r *model.TechnicalRecord) *string { return &r.Experience })},
		{"atestados", FieldExperience, regexp.MustCompile(`(?i)atestados[^:\n]{0,40}:`), sectionApply(func(r *model.TechnicalRecord) *string { return &r.Experience })},
		{"obrigacoes", FieldObligations, regexp.MustCompile(`(?i)obriga[çc][õo]es[^:\n]{0,40}:`), sectionApply(func(r *model.TechnicalRecord) *string { return &r.Obligations })},
		{"exclusoes", FieldExclusions, regexp.MustCompile(`(?i)exclus[õo]es[^:\n]{0,40}:`), sectionApply(func(r *model.TechnicalRecord) *string { return &r.Exclusions })},
		{"logistica", FieldSiteLogistic, regexp.MustCompile(`(?i)log[íi]stica[^:\n]{0,40}:`), sectionApply(func(r *model.TechnicalRecord) *string { return &r.SiteLogistic })},
		{"canteiro", FieldSiteLogistic, regexp.MustCompile(`(?i)canteiro[^:\n]{0,40}:`), sectionApply(func(r *model.TechnicalRecord) *string { return &r.SiteLogistic })},
	}
}

func applyMethodology(rec *model.TechnicalRecord, text string, loc []int) bool {
	v := strings.TrimSpace(group(text, loc, 1))
	if v == "" {
		return false
	}
	rec.Methodology = v
	return true
}

func applyDuration(rec *model.TechnicalRecord, text string, loc []int) bool {
	n, err := strconv.Atoi(group(text, loc, 1))
	if err != nil {
		return false
	}
	rec.DurationDays = n
	return true
}

// applyTeamSize sums every captured digit group.
func applyTeamSize(rec *model.TechnicalRecord, text string, loc []int) bool {
	total := 0
	for i := 1; i < len(loc)/2; i++ {
		n, err := strconv.Atoi(group(text, loc, i))
		if err != nil {
			return false
		}
		total += n
	}
	rec.TeamSize = total
	return true
}

// bulletApply collects every "-" and "•" line in the span that starts at
// the label.
func bulletApply(field func(*model.TechnicalRecord) *[]string) func(*model.TechnicalRecord, string, []int) bool {
	return func(rec *model.TechnicalRecord, text string, loc []int) bool {
		span := truncateRunes(text[loc[1]:], spanLimit)
		var items []string
		for _, line := range strings.Split(span, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "-"):
				line = strings.TrimPrefix(line, "-")
			case strings.HasPrefix(line, "•"):
				line = strings.TrimPrefix(line, "•")
			default:
				continue
			}
			if item := strings.TrimSpace(line); item != "" {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			return false
		}
		*field(rec) = items
		return true
	}
}

// sectionApply captures the text following a label up to the next blank
// line.
func sectionApply(field func(*model.TechnicalRecord) *string) func(*model.TechnicalRecord, string, []int) bool {
	return func(rec *model.TechnicalRecord, text string, loc []int) bool {
		body := strings.ReplaceAll(text[loc[1]:], "\r\n", "\n")
		if i := blankLine.FindStringIndex(body); i != nil {
			body = body[:i[0]]
		}
		v := strings.TrimSpace(truncateRunes(body, spanLimit))
		if v == "" {
			return false
		}
		*field(rec) = v
		return true
	}
}

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

func group(text string, loc []int, i int) string {
	if 2*i+1 >= len(loc) || loc[2*i] < 0 {
		return ""
	}
	return text[loc[2*i]:loc[2*i+1]]
}

// truncateRunes cuts s to at most n characters.
func truncateRunes(s string, n int) string {
	for i := 0; i < len(s); n-- {
		if n == 0 {
			return s[:i]
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s
}
