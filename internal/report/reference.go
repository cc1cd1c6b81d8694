package report

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/proposal-analyzer/internal/config"
)

// Reference describes the Terms of Reference every proposal answers.
type Reference struct {
	Object           string   `yaml:"object"`
	Requirements     []string `yaml:"requirements"`
	MaxDurationDays  int      `yaml:"max_duration_days"`
	TechnicalWeight  float64  `yaml:"technical_weight"`
	CommercialWeight float64  `yaml:"commercial_weight"`
}

// DefaultReference returns the standard reference terms: 120 days, 70%
// technical and 30% commercial.
func DefaultReference() Reference {
	return Reference{
		Object:           "Contratação de empresa especializada para execução dos serviços descritos no Termo de Referência",
		MaxDurationDays:  120,
		TechnicalWeight:  0.7,
		CommercialWeight: 0.3,
	}
}

// LoadReference reads reference terms from a YAML file. Keys missing from
// the file keep their DefaultReference values.
func LoadReference(path string) (Reference, error) {
	ref := DefaultReference()
	data, err := os.ReadFile(path)
	if err != nil {
		return Reference{}, eris.Wrapf(err, "report: read reference file %s", path)
	}
	if err := yaml.Unmarshal(data, &ref); err != nil {
		return Reference{}, eris.Wrapf(err, "report: parse reference file %s", path)
	}
	return ref, nil
}

// FromConfig builds the reference from configuration. When cfg.File is set
// the file takes precedence over the inline values.
func FromConfig(cfg config.ReferenceConfig) (Reference, error) {
	if cfg.File != "" {
		return LoadReference(cfg.File)
	}
	ref := DefaultReference()
	if cfg.Object != "" {
		ref.Object = cfg.Object
	}
	if len(cfg.Requirements) > 0 {
		ref.Requirements = cfg.Requirements
	}
	if cfg.MaxDurationDays > 0 {
		ref.MaxDurationDays = cfg.MaxDurationDays
	}
	if cfg.TechnicalWeight > 0 || cfg.CommercialWeight > 0 {
		ref.TechnicalWeight = cfg.TechnicalWeight
		ref.CommercialWeight = cfg.CommercialWeight
	}
	return ref, nil
}
