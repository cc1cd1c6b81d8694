// Package report builds the comparative analysis text from per-vendor
// records.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/proposal-analyzer/internal/config"
	"github.com/sells-group/proposal-analyzer/internal/model"
	"github.com/sells-group/proposal-analyzer/internal/normalize"
	"github.com/sells-group/proposal-analyzer/internal/scorer"
)

// ErrNoVendors is returned when there is nothing to compare.
var ErrNoVendors = eris.New("report: no vendors to compare")

// Cost-benefit tiers.
const (
	TierExcellent = "Excelente"
	TierGood      = "Bom"
	TierRegular   = "Regular"
)

var medals = []string{"🥇", "🥈", "🥉"}

// Standing is a vendor's position in the comparison.
type Standing struct {
	Vendor         string          `json:"vendor"`
	Scores         model.ScorePair `json:"scores"`
	Price          float64         `json:"price"`
	Priced         bool            `json:"priced"`
	TechnicalRank  int             `json:"technical_rank"`
	CommercialRank int             `json:"commercial_rank"`
	Markup         float64         `json:"markup"`
	MarkupPercent  float64         `json:"markup_percent"`
	CostBenefit    float64         `json:"cost_benefit"`
	Tier           string          `json:"tier"`
	Weighted       float64         `json:"weighted"`
}

// Report is the finished comparison. Text is the single source both
// artifacts are rendered from.
type Report struct {
	Text         string      `json:"-"`
	Technical    []*Standing `json:"technical"`
	Commercial   []*Standing `json:"commercial"`
	TopTechnical string      `json:"top_technical"`
	Cheapest     string      `json:"cheapest,omitempty"`
	Recommended  string      `json:"recommended"`
}

// Build scores every vendor and writes the four-block comparison. The
// vendor records are only read; scores live on the returned standings.
func Build(vendors model.Vendors, ref Reference, cfg config.ScoringConfig) (*Report, error) {
	names := make([]string, 0, len(vendors))
	for name, v := range vendors {
		if v != nil {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, ErrNoVendors
	}
	sort.Strings(names)

	all := make([]*Standing, 0, len(names))
	for _, name := range names {
		v := vendors[name]
		all = append(all, &Standing{
			Vendor: name,
			Scores: scorer.Score(v, cfg),
			Price:  v.Commercial.TotalPrice,
			Priced: v.Commercial.TotalPrice > 0,
		})
	}

	rep := &Report{
		Technical:  rankTechnical(all),
		Commercial: rankCommercial(all),
	}
	rep.TopTechnical = rep.Technical[0].Vendor

	var cheapest *Standing
	if first := rep.Commercial[0]; first.Priced {
		cheapest = first
		rep.Cheapest = first.Vendor
	}

	for _, s := range all {
		if cheapest != nil && s.Priced {
			s.Markup = s.Price - cheapest.Price
			s.MarkupPercent = s.Markup / cheapest.Price * 100
		}
		s.CostBenefit = 10 - float64(s.TechnicalRank+s.CommercialRank)/2
		s.Tier = tier(s.CostBenefit, cfg)
		s.Weighted = s.Scores.Technical*ref.TechnicalWeight + s.Scores.Commercial*ref.CommercialWeight
	}

	top := rep.Technical[0]
	switch {
	case top.Scores.Technical > cfg.RecommendTechMinScore || cheapest == nil:
		rep.Recommended = top.Vendor
	default:
		rep.Recommended = cheapest.Vendor
	}

	w := &writer{ref: ref, cfg: cfg, vendors: vendors, rep: rep, top: top, cheapest: cheapest}
	rep.Text = w.write()
	return rep, nil
}

// rankTechnical orders by technical score descending, then name.
func rankTechnical(all []*Standing) []*Standing {
	out := append([]*Standing(nil), all...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Scores.Technical != out[j].Scores.Technical {
			return out[i].Scores.Technical > out[j].Scores.Technical
		}
		return out[i].Vendor < out[j].Vendor
	})
	for i, s := range out {
		s.TechnicalRank = i + 1
	}
	return out
}

// rankCommercial orders priced vendors by price ascending, then name.
// Unpriced vendors follow and share the last rank.
func rankCommercial(all []*Standing) []*Standing {
	out := append([]*Standing(nil), all...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priced != b.Priced {
			return a.Priced
		}
		if a.Priced && a.Price != b.Price {
			return a.Price < b.Price
		}
		return a.Vendor < b.Vendor
	})
	for i, s := range out {
		if s.Priced {
			s.CommercialRank = i + 1
		} else {
			s.CommercialRank = len(out)
		}
	}
	return out
}

func tier(index float64, cfg config.ScoringConfig) string {
	switch {
	case index >= cfg.ExcellentIndex:
		return TierExcellent
	case index >= cfg.GoodIndex:
		return TierGood
	default:
		return TierRegular
	}
}

type writer struct {
	b        strings.Builder
	ref      Reference
	cfg      config.ScoringConfig
	vendors  model.Vendors
	rep      *Report
	top      *Standing
	cheapest *Standing
}

func (w *writer) write() string {
	w.b.WriteString("# RELATÓRIO DE ANÁLISE COMPARATIVA DE PROPOSTAS\n\n")
	w.reference()
	w.technical()
	w.commercial()
	w.conclusion()
	return w.b.String()
}

func (w *writer) reference() {
	b := &w.b
	b.WriteString("## 1. Resumo do Termo de Referência\n\n")
	b.WriteString("**Objeto**\n\n")
	fmt.Fprintf(b, "%s\n\n", w.ref.Object)
	if len(w.ref.Requirements) > 0 {
		b.WriteString("**Requisitos principais**\n\n")
		for _, r := range w.ref.Requirements {
			fmt.Fprintf(b, "- %s\n", r)
		}
		b.WriteString("\n")
	}
	if w.ref.MaxDurationDays > 0 {
		fmt.Fprintf(b, "Prazo máximo de execução: %d dias\n", w.ref.MaxDurationDays)
	}
	fmt.Fprintf(b, "Critério de julgamento: técnica %.0f%% / preço %.0f%%\n",
		w.ref.TechnicalWeight*100, w.ref.CommercialWeight*100)

	names := make([]string, 0, len(w.rep.Technical))
	for _, s := range w.rep.Technical {
		names = append(names, s.Vendor)
	}
	sort.Strings(names)
	fmt.Fprintf(b, "Propostas analisadas: %d (%s)\n\n", len(names), strings.Join(names, ", "))
}

func (w *writer) technical() {
	b := &w.b
	b.WriteString("## 2. Equalização Técnica\n\n")
	b.WriteString("### 2.1 Quadro de Atendimento\n\n")

	labels := checkLabels(scorer.TechnicalChecks(model.TechnicalRecord{}, w.cfg))
	fmt.Fprintf(b, "| Empresa | %s | Nota Técnica |\n", strings.Join(labels, " | "))
	fmt.Fprintf(b, "|%s\n", strings.Repeat("---|", len(labels)+2))
	for _, s := range w.rep.Technical {
		checks := scorer.TechnicalChecks(w.vendors[s.Vendor].Technical, w.cfg)
		marks := make([]string, len(checks))
		for i, c := range checks {
			marks[i] = mark(c.Passed)
		}
		fmt.Fprintf(b, "| %s | %s | %.1f |\n", s.Vendor, strings.Join(marks, " | "), s.Scores.Technical)
	}
	b.WriteString("\n")

	b.WriteString("### 2.2 Ranking Técnico\n\n")
	for i, s := range w.rep.Technical {
		fmt.Fprintf(b, "%s %s - %.1f pontos\n", position(i), s.Vendor, s.Scores.Technical)
	}
	b.WriteString("\n")

	b.WriteString("### 2.3 Análise por Empresa\n\n")
	for _, s := range w.rep.Technical {
		rec := w.vendors[s.Vendor].Technical
		var strengths, gaps []string
		for _, c := range scorer.TechnicalChecks(rec, w.cfg) {
			switch {
			case !c.Passed:
				gaps = append(gaps, c.Label+" não informado(a)")
			case c.Name == scorer.CheckDuration && w.exceedsMaxDuration(rec.DurationDays):
				gaps = append(gaps, fmt.Sprintf("Prazo de %d dias excede o máximo de %d dias",
					rec.DurationDays, w.ref.MaxDurationDays))
			case c.Name == scorer.CheckMethodology && c.Points < w.cfg.MethodologyFullPoints:
				strengths = append(strengths, "Metodologia (pouco detalhada)")
			default:
				strengths = append(strengths, technicalDetail(c, rec))
			}
		}

		fmt.Fprintf(b, "#### %s\n\n", s.Vendor)
		fmt.Fprintf(b, "Pontos fortes: %s\n", listOrNone(strengths))
		fmt.Fprintf(b, "Lacunas: %s\n\n", listOrNone(gaps))
	}
}

func (w *writer) commercial() {
	b := &w.b
	b.WriteString("## 3. Equalização Comercial\n\n")
	b.WriteString("### 3.1 Quadro de Preços\n\n")
	b.WriteString("| Posição | Empresa | Preço Total | Diferença | Variação | BDI |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, s := range w.rep.Commercial {
		rec := w.vendors[s.Vendor].Commercial
		pos, price, diff, variation := "-", "Não informado", "-", "-"
		if s.Priced {
			pos = fmt.Sprintf("%dº", s.CommercialRank)
			price = normalize.Money(s.Price)
			if s == w.cheapest {
				variation = "Menor preço"
			} else {
				diff = "+" + normalize.Money(s.Markup)
				variation = fmt.Sprintf("%.0f%% mais caro", s.MarkupPercent)
			}
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s |\n", pos, s.Vendor, price, diff, variation, bdi(rec.BDIPercent))
	}
	b.WriteString("\n")

	b.WriteString("### 3.2 Análise Comercial por Empresa\n\n")
	for _, s := range w.rep.Commercial {
		rec := w.vendors[s.Vendor].Commercial
		fmt.Fprintf(b, "#### %s\n\n", s.Vendor)
		if rec.CompanyName != "" {
			fmt.Fprintf(b, "- Razão social: %s\n", rec.CompanyName)
		}
		if rec.TaxID != "" {
			fmt.Fprintf(b, "- CNPJ: %s\n", rec.TaxID)
		}
		fmt.Fprintf(b, "- Condições de pagamento: %s\n", orMissing(rec.PaymentTerms))
		fmt.Fprintf(b, "- Garantia: %s\n", orMissing(rec.WarrantyTerms))
		fmt.Fprintf(b, "- Treinamento: %s\n", orMissing(rec.TrainingTerms))
		fmt.Fprintf(b, "- Seguros: %s\n", orMissing(rec.InsuranceTerms))
		if cc := rec.CostComposition; cc.Any() {
			fmt.Fprintf(b, "- Composição de custos: mão de obra %s, materiais %s, equipamentos %s\n",
				normalize.Money(cc.Labor), normalize.Money(cc.Materials), normalize.Money(cc.Equipment))
		} else {
			b.WriteString("- Composição de custos: Não informado\n")
		}
		if len(rec.Items) > 0 {
			fmt.Fprintf(b, "- Itens de serviço: %d (soma %s)\n", len(rec.Items), normalize.Money(rec.ItemsTotal()))
		}
		if rec.Notes != "" {
			fmt.Fprintf(b, "- Observações: %s\n", rec.Notes)
		}
		fmt.Fprintf(b, "- Nota comercial: %.1f/100\n\n", s.Scores.Commercial)
	}

	b.WriteString("### 3.3 Índice Custo-Benefício\n\n")
	b.WriteString("| Empresa | Ranking Técnico | Ranking Comercial | Índice | Classificação |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, s := range w.rep.Technical {
		fmt.Fprintf(b, "| %s | %dº | %dº | %.1f | %s |\n",
			s.Vendor, s.TechnicalRank, s.CommercialRank, s.CostBenefit, s.Tier)
	}
	b.WriteString("\n")
}

func (w *writer) conclusion() {
	b := &w.b
	b.WriteString("## 4. Conclusão e Recomendação\n\n")
	fmt.Fprintf(b, "**Melhor proposta técnica:** %s (%.1f pontos)\n", w.top.Vendor, w.top.Scores.Technical)
	if w.cheapest != nil {
		fmt.Fprintf(b, "**Menor preço:** %s (%s)\n", w.cheapest.Vendor, normalize.Money(w.cheapest.Price))
	} else {
		b.WriteString("**Menor preço:** nenhuma proposta com preço informado\n")
	}
	fmt.Fprintf(b, "**Recomendação:** %s\n\n", w.rep.Recommended)

	threshold := w.cfg.RecommendTechMinScore
	switch {
	case w.top.Scores.Technical > threshold:
		fmt.Fprintf(b, "%s apresenta a proposta tecnicamente mais completa, com nota %.1f (acima de %.0f).",
			w.top.Vendor, w.top.Scores.Technical, threshold)
		if w.cheapest == w.top {
			b.WriteString(" Também apresenta o menor preço.")
		}
		b.WriteString("\n\n")
	case w.cheapest == nil:
		fmt.Fprintf(b, "Nenhuma proposta informou preço. Recomenda-se %s, tecnicamente mais completa, mediante apresentação da proposta comercial.\n\n",
			w.top.Vendor)
	default:
		fmt.Fprintf(b, "Nenhuma proposta atingiu nota técnica acima de %.0f. Recomenda-se %s, de menor preço, condicionada a diligência técnica.\n\n",
			threshold, w.cheapest.Vendor)
	}

	weighted := append([]*Standing(nil), w.rep.Technical...)
	sort.SliceStable(weighted, func(i, j int) bool {
		if weighted[i].Weighted != weighted[j].Weighted {
			return weighted[i].Weighted > weighted[j].Weighted
		}
		return weighted[i].Vendor < weighted[j].Vendor
	})
	fmt.Fprintf(b, "### 4.1 Nota Ponderada (Técnica %.0f%% / Comercial %.0f%%)\n\n",
		w.ref.TechnicalWeight*100, w.ref.CommercialWeight*100)
	b.WriteString("| Empresa | Nota Técnica | Nota Comercial | Nota Final |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, s := range weighted {
		fmt.Fprintf(b, "| %s | %.1f | %.1f | %.1f |\n", s.Vendor, s.Scores.Technical, s.Scores.Commercial, s.Weighted)
	}
}

// exceedsMaxDuration reports whether days is over the reference limit. A
// zero limit means no limit.
func (w *writer) exceedsMaxDuration(days int) bool {
	return w.ref.MaxDurationDays > 0 && days > w.ref.MaxDurationDays
}

func technicalDetail(c scorer.Check, rec model.TechnicalRecord) string {
	switch c.Name {
	case scorer.CheckDuration:
		return fmt.Sprintf("%s (%d dias)", c.Label, rec.DurationDays)
	case scorer.CheckTeam:
		return fmt.Sprintf("%s (%d profissionais)", c.Label, rec.TeamSize)
	case scorer.CheckEquipment:
		return fmt.Sprintf("%s (%d itens)", c.Label, len(rec.Equipment))
	case scorer.CheckMaterials:
		return fmt.Sprintf("%s (%d itens)", c.Label, len(rec.Materials))
	default:
		return c.Label
	}
}

func checkLabels(checks []scorer.Check) []string {
	out := make([]string, len(checks))
	for i, c := range checks {
		out[i] = c.Label
	}
	return out
}

func position(i int) string {
	if i < len(medals) {
		return fmt.Sprintf("%s %dº", medals[i], i+1)
	}
	return fmt.Sprintf("%dº", i+1)
}

func mark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

func bdi(v float64) string {
	if v <= 0 {
		return "Não informado"
	}
	return fmt.Sprintf("%.2f%%", v)
}

func orMissing(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Não informado"
	}
	return s
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "nenhum(a)"
	}
	return strings.Join(items, "; ")
}
