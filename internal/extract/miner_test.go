package extract

import (
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/proposal-analyzer/internal/model"
)

const technicalProposal = `PROPOSTA TÉCNICA

Metodologia: execução em etapas com controle diário de qualidade. Demais detalhes no anexo.

Prazo de execução: 90 dias corridos.

Equipe: 1 coordenador e 4 desenvolvedores dedicados.

Equipamentos:
- Betoneira 400L
• Andaime tubular
- Compactador de solo

Materiais:
- Cimento CP-II
- Areia média

Cronograma: mobilização na semana 1, estrutura até a semana 8.

Experiência: 15 obras similares executadas nos últimos 5 anos.

Obrigações da contratada: fornecer EPIs e manter o canteiro limpo.

Exclusões: licenças ambientais.

Logística: canteiro com almoxarifado e refeitório.
`

func TestMiner_FullProposal(t *testing.T) {
	rec := NewMiner().Mine(technicalProposal)

	assert.Equal(t, "execução em etapas com controle diário de qualidade", rec.Methodology)
	assert.Equal(t, 90, rec.DurationDays)
	assert.Equal(t, 5, rec.TeamSize)
	// The equipment span runs past "Materiais:" and picks up its bullets too.
	assert.Equal(t, []string{
		"Betoneira 400L", "Andaime tubular", "Compactador de solo", "Cimento CP-II", "Areia média",
	}, rec.Equipment)
	assert.Equal(t, []string{"Cimento CP-II", "Areia média"}, rec.Materials)
	assert.Equal(t, "mobilização na semana 1, estrutura até a semana 8.", rec.Schedule)
	assert.Equal(t, "15 obras similares executadas nos últimos 5 anos.", rec.Experience)
	assert.Equal(t, "fornecer EPIs e manter o canteiro limpo.", rec.Obligations)
	assert.Equal(t, "licenças ambientais.", rec.Exclusions)
	assert.Equal(t, "canteiro com almoxarifado e refeitório.", rec.SiteLogistic)
}

func TestMiner_EmptyText(t *testing.T) {
	assert.Equal(t, model.TechnicalRecord{}, NewMiner().Mine(""))
}

func TestMiner_MethodologyOrder(t *testing.T) {
	text := "Abordagem: segunda opção. Metodologia: primeira opção."
	assert.Equal(t, "primeira opção", NewMiner().Mine(text).Methodology)

	text = "MÉTODO: construção modular."
	assert.Equal(t, "construção modular", NewMiner().Mine(text).Methodology)
}

func TestMiner_Duration(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"prazo label", "Prazo de entrega: 45 dias", 45},
		{"bare days", "Concluiremos em 60 dias úteis", 60},
		{"prazo total", "Prazo total: 30 semanas", 30},
		{"labelled wins over bare", "Mobilização em 5 dias. Prazo global: 120 dias", 120},
		{"none", "sem prazo definido", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewMiner().Mine(tt.text).DurationDays)
		})
	}
}

func TestMiner_TeamSize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"pessoas", "Equipe de 12 pessoas", 12},
		{"profissionais", "Contamos com 8 profissionais", 8},
		{"composition summed", "2 coordenadores e 6 desenvolvedores", 8},
		{"equipe fallback", "Equipe técnica: 7", 7},
		{"none", "sem informação", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewMiner().Mine(tt.text).TeamSize)
		})
	}
}

func TestMiner_BulletSpanLimited(t *testing.T) {
	text := "Equipamentos:\n" + strings.Repeat(" ", spanLimit) + "\n- Guindaste"
	assert.Empty(t, NewMiner().Mine(text).Equipment)
}

func TestMiner_BulletSpanCountsCharacters(t *testing.T) {
	// 27 lines of 18 characters: 486 characters but well over 500 bytes.
	line := "- manutenção ação\n"
	require.Equal(t, 18, utf8.RuneCountInString(line))
	text := "Equipamentos:\n" + strings.Repeat(line, 27)
	require.Greater(t, len(text), spanLimit)

	rec := NewMiner().Mine(text)
	assert.Len(t, rec.Equipment, 27)
	assert.Equal(t, "manutenção ação", rec.Equipment[26])
}

func TestMiner_BulletSpanIncludesLaterLabels(t *testing.T) {
	rec := NewMiner().Mine("Equipamentos:\n- Betoneira\n- Guindaste\nMateriais:\n- Cimento")
	assert.Equal(t, []string{"Betoneira", "Guindaste", "Cimento"}, rec.Equipment)
	assert.Equal(t, []string{"Cimento"}, rec.Materials)
}

func TestMiner_LabelWithoutBullets(t *testing.T) {
	rec := NewMiner().Mine("Materiais: conforme memorial descritivo.")
	assert.Nil(t, rec.Materials)
}

func TestMiner_SectionCapped(t *testing.T) {
	text := "Cronograma:" + strings.Repeat("á", 600)
	rec := NewMiner().Mine(text)
	assert.Equal(t, spanLimit, utf8.RuneCountInString(rec.Schedule))
	assert.True(t, utf8.ValidString(rec.Schedule))
}

func TestMiner_PanicResetsRecord(t *testing.T) {
	rules := append(DefaultRules(), Rule{
		Name:    "boom",
		Field:   "boom",
		Pattern: regexp.MustCompile(`.`),
		Apply: func(*model.TechnicalRecord, string, []int) bool {
			panic("boom")
		},
	})
	rec := NewMinerWithRules(rules).Mine(technicalProposal)
	assert.Equal(t, model.TechnicalRecord{}, rec)
}

func TestMiner_FirstApplyingRuleWins(t *testing.T) {
	var calls []string
	mk := func(name string, ok bool) Rule {
		return Rule{
			Name:    name,
			Field:   FieldMethodology,
			Pattern: regexp.MustCompile(`x`),
			Apply: func(rec *model.TechnicalRecord, _ string, _ []int) bool {
				calls = append(calls, name)
				if ok {
					rec.Methodology = name
				}
				return ok
			},
		}
	}
	m := NewMinerWithRules([]Rule{mk("skip", false), mk("first", true), mk("second", true)})

	rec := m.Mine("x")
	assert.Equal(t, "first", rec.Methodology)
	assert.Equal(t, []string{"skip", "first"}, calls)
}

func TestDefaultRules_Fields(t *testing.T) {
	seen := map[Field]bool{}
	for _, r := range NewMiner().Rules() {
		require.NotNil(t, r.Pattern, r.Name)
		require.NotNil(t, r.Apply, r.Name)
		seen[r.Field] = true
	}
	for _, f := range []Field{
		FieldMethodology, FieldDuration, FieldTeamSize, FieldEquipment, FieldMaterials,
		FieldSchedule, FieldExperience, FieldObligations, FieldExclusions, FieldSiteLogistic,
	} {
		assert.True(t, seen[f], "no rule for %s", f)
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 10))
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.Equal(t, "aé", truncateRunes("aéi", 2))
	assert.Equal(t, "", truncateRunes("aé", 0))
	assert.Equal(t, "", truncateRunes("", 3))
}
