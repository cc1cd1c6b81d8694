package model

// ServiceLineItem is one priced row of a vendor's service schedule. Total is
// stored as read from the source document; it is never recomputed from
// Quantity * UnitPrice because vendors embed pre-rounded totals.
type ServiceLineItem struct {
	Order       int     `json:"order"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// CostComposition breaks a proposal price into its three direct cost groups.
type CostComposition struct {
	Labor     float64 `json:"labor"`
	Materials float64 `json:"materials"`
	Equipment float64 `json:"equipment"`
}

// Any reports whether at least one component is nonzero.
func (c CostComposition) Any() bool {
	return c.Labor != 0 || c.Materials != 0 || c.Equipment != 0
}

// CommercialRecord is the canonical commercial data of one vendor, usually
// extracted from its pricing workbook. TotalPrice is never negative.
type CommercialRecord struct {
	CompanyName     string            `json:"company_name"`
	TaxID           string            `json:"tax_id"`
	TotalPrice      float64           `json:"total_price"`
	BDIPercent      float64           `json:"bdi_percent"`
	PaymentTerms    string            `json:"payment_terms"`
	WarrantyTerms   string            `json:"warranty_terms"`
	TrainingTerms   string            `json:"training_terms"`
	InsuranceTerms  string            `json:"insurance_terms"`
	Notes           string            `json:"notes"`
	Items           []ServiceLineItem `json:"items"`
	CostComposition CostComposition   `json:"cost_composition"`
}

// ItemsTotal sums the stored line totals.
func (c CommercialRecord) ItemsTotal() float64 {
	var sum float64
	for _, it := range c.Items {
		sum += it.Total
	}
	return sum
}

// Merge fills empty fields of c from other. Used when a vendor submits more
// than one workbook; the first non-empty value wins.
func (c *CommercialRecord) Merge(other CommercialRecord) {
	fillString(&c.CompanyName, other.CompanyName)
	fillString(&c.TaxID, other.TaxID)
	fillFloat(&c.TotalPrice, other.TotalPrice)
	fillFloat(&c.BDIPercent, other.BDIPercent)
	fillString(&c.PaymentTerms, other.PaymentTerms)
	fillString(&c.WarrantyTerms, other.WarrantyTerms)
	fillString(&c.TrainingTerms, other.TrainingTerms)
	fillString(&c.InsuranceTerms, other.InsuranceTerms)
	fillString(&c.Notes, other.Notes)
	if len(c.Items) == 0 {
		c.Items = other.Items
	}
	if !c.CostComposition.Any() {
		c.CostComposition = other.CostComposition
	}
}

// TechnicalRecord is the canonical technical data of one vendor, mined from
// its free-text proposal documents.
type TechnicalRecord struct {
	Methodology  string   `json:"methodology"`
	Schedule     string   `json:"schedule"`
	DurationDays int      `json:"duration_days"`
	TeamSize     int      `json:"team_size"`
	Equipment    []string `json:"equipment"`
	Materials    []string `json:"materials"`
	Obligations  string   `json:"obligations"`
	Exclusions   string   `json:"exclusions"`
	SiteLogistic string   `json:"site_logistics"`
	Experience   string   `json:"experience"`
}

// Merge fills empty fields of t from other; the first non-empty value wins.
func (t *TechnicalRecord) Merge(other TechnicalRecord) {
	fillString(&t.Methodology, other.Methodology)
	fillString(&t.Schedule, other.Schedule)
	if t.DurationDays == 0 {
		t.DurationDays = other.DurationDays
	}
	if t.TeamSize == 0 {
		t.TeamSize = other.TeamSize
	}
	if len(t.Equipment) == 0 {
		t.Equipment = other.Equipment
	}
	if len(t.Materials) == 0 {
		t.Materials = other.Materials
	}
	fillString(&t.Obligations, other.Obligations)
	fillString(&t.Exclusions, other.Exclusions)
	fillString(&t.SiteLogistic, other.SiteLogistic)
	fillString(&t.Experience, other.Experience)
}

// ScorePair holds the two completeness scores of a vendor, both 0-100.
type ScorePair struct {
	Technical  float64 `json:"technical"`
	Commercial float64 `json:"commercial"`
}

// VendorRecords groups everything one analysis run knows about a vendor.
type VendorRecords struct {
	Name       string           `json:"name"`
	Commercial CommercialRecord `json:"commercial"`
	Technical  TechnicalRecord  `json:"technical"`
	Scores     ScorePair        `json:"scores"`
	Sources    []string         `json:"sources,omitempty"`
}

// Vendors maps vendor name to its records for a single analysis run.
type Vendors map[string]*VendorRecords

// Get returns the records for name, creating them on first use.
func (v Vendors) Get(name string) *VendorRecords {
	rec, ok := v[name]
	if !ok {
		rec = &VendorRecords{Name: name}
		v[name] = rec
	}
	return rec
}

func fillString(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

func fillFloat(dst *float64, src float64) {
	if *dst == 0 {
		*dst = src
	}
}
