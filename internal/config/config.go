package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Analysis  AnalysisConfig  `yaml:"analysis" mapstructure:"analysis"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Reference ReferenceConfig `yaml:"reference" mapstructure:"reference"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the report index backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port             int      `yaml:"port" mapstructure:"port"`
	MaxUploadBytes   int64    `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
	AllowedOrigins   []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AnalysesPerMin   int      `yaml:"analyses_per_min" mapstructure:"analyses_per_min"`
	ReadTimeoutSecs  int      `yaml:"read_timeout_secs" mapstructure:"read_timeout_secs"`
	WriteTimeoutSecs int      `yaml:"write_timeout_secs" mapstructure:"write_timeout_secs"`
}

// AnalysisConfig configures where uploads and artifacts live and how
// uploads are grouped into vendors.
type AnalysisConfig struct {
	UploadDir    string   `yaml:"upload_dir" mapstructure:"upload_dir"`
	OutputDir    string   `yaml:"output_dir" mapstructure:"output_dir"`
	KnownVendors []string `yaml:"known_vendors" mapstructure:"known_vendors"`
}

// ExtractConfig configures document text extraction.
type ExtractConfig struct {
	PDFProvider   string `yaml:"pdf_provider" mapstructure:"pdf_provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ScoringConfig holds the completeness rubric and the report thresholds.
type ScoringConfig struct {
	// Technical rubric points.
	MethodologyFullPoints    float64 `yaml:"methodology_full_points" mapstructure:"methodology_full_points"`
	MethodologyPartialPoints float64 `yaml:"methodology_partial_points" mapstructure:"methodology_partial_points"`
	DurationPoints           float64 `yaml:"duration_points" mapstructure:"duration_points"`
	TeamPoints               float64 `yaml:"team_points" mapstructure:"team_points"`
	EquipmentPoints          float64 `yaml:"equipment_points" mapstructure:"equipment_points"`
	MaterialsPoints          float64 `yaml:"materials_points" mapstructure:"materials_points"`
	SchedulePoints           float64 `yaml:"schedule_points" mapstructure:"schedule_points"`
	ExperiencePoints         float64 `yaml:"experience_points" mapstructure:"experience_points"`

	// Commercial rubric points.
	PricePoints           float64 `yaml:"price_points" mapstructure:"price_points"`
	BDIPoints             float64 `yaml:"bdi_points" mapstructure:"bdi_points"`
	PaymentPoints         float64 `yaml:"payment_points" mapstructure:"payment_points"`
	WarrantyPoints        float64 `yaml:"warranty_points" mapstructure:"warranty_points"`
	CompositionPoints     float64 `yaml:"composition_points" mapstructure:"composition_points"`
	MinNarrativeChars     int     `yaml:"min_narrative_chars" mapstructure:"min_narrative_chars"`
	RecommendTechMinScore float64 `yaml:"recommend_tech_min_score" mapstructure:"recommend_tech_min_score"`

	// Cost-benefit tiers.
	ExcellentIndex float64 `yaml:"excellent_index" mapstructure:"excellent_index"`
	GoodIndex      float64 `yaml:"good_index" mapstructure:"good_index"`
}

// ReferenceConfig describes the Terms of Reference the proposals answer.
type ReferenceConfig struct {
	File             string   `yaml:"file" mapstructure:"file"`
	Object           string   `yaml:"object" mapstructure:"object"`
	Requirements     []string `yaml:"requirements" mapstructure:"requirements"`
	MaxDurationDays  int      `yaml:"max_duration_days" mapstructure:"max_duration_days"`
	TechnicalWeight  float64  `yaml:"technical_weight" mapstructure:"technical_weight"`
	CommercialWeight float64  `yaml:"commercial_weight" mapstructure:"commercial_weight"`
}

// DefaultScoring returns the standard rubric: 8 technical points and 6
// commercial points.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		// Technical (max 8).
		MethodologyFullPoints:    2,
		MethodologyPartialPoints: 1,
		DurationPoints:           1,
		TeamPoints:               1,
		EquipmentPoints:          1,
		MaterialsPoints:          1,
		SchedulePoints:           1,
		ExperiencePoints:         1,

		// Commercial (max 6).
		PricePoints:       2,
		BDIPoints:         1,
		PaymentPoints:     1,
		WarrantyPoints:    1,
		CompositionPoints: 1,

		MinNarrativeChars:     10,
		RecommendTechMinScore: 70,
		ExcellentIndex:        8,
		GoodIndex:             6,
	}
}

func setScoringDefaults(v *viper.Viper, s ScoringConfig) {
	v.SetDefault("scoring.methodology_full_points", s.MethodologyFullPoints)
	v.SetDefault("scoring.methodology_partial_points", s.MethodologyPartialPoints)
	v.SetDefault("scoring.duration_points", s.DurationPoints)
	v.SetDefault("scoring.team_points", s.TeamPoints)
	v.SetDefault("scoring.equipment_points", s.EquipmentPoints)
	v.SetDefault("scoring.materials_points", s.MaterialsPoints)
	v.SetDefault("scoring.schedule_points", s.SchedulePoints)
	v.SetDefault("scoring.experience_points", s.ExperiencePoints)
	v.SetDefault("scoring.price_points", s.PricePoints)
	v.SetDefault("scoring.bdi_points", s.BDIPoints)
	v.SetDefault("scoring.payment_points", s.PaymentPoints)
	v.SetDefault("scoring.warranty_points", s.WarrantyPoints)
	v.SetDefault("scoring.composition_points", s.CompositionPoints)
	v.SetDefault("scoring.min_narrative_chars", s.MinNarrativeChars)
	v.SetDefault("scoring.recommend_tech_min_score", s.RecommendTechMinScore)
	v.SetDefault("scoring.excellent_index", s.ExcellentIndex)
	v.SetDefault("scoring.good_index", s.GoodIndex)
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROPOSAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "proposals.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_bytes", 50<<20)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.analyses_per_min", 30)
	v.SetDefault("server.read_timeout_secs", 60)
	v.SetDefault("server.write_timeout_secs", 120)
	v.SetDefault("analysis.upload_dir", "uploads")
	v.SetDefault("analysis.output_dir", "reports")
	v.SetDefault("extract.pdf_provider", "native")
	v.SetDefault("extract.pdftotext_path", "pdftotext")
	v.SetDefault("extract.timeout_secs", 60)

	setScoringDefaults(v, DefaultScoring())

	v.SetDefault("reference.object", "Contratação de empresa especializada para execução dos serviços descritos no Termo de Referência")
	v.SetDefault("reference.max_duration_days", 120)
	v.SetDefault("reference.technical_weight", 0.7)
	v.SetDefault("reference.commercial_weight", 0.3)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Mode is one of
// "analysis" or "serve"; serve additionally checks the HTTP settings.
func (c *Config) Validate(mode string) error {
	var errs []string
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, "store.driver must be sqlite or postgres")
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required for postgres")
	}
	if c.Analysis.OutputDir == "" {
		errs = append(errs, "analysis.output_dir is required")
	}
	if mode == "serve" {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
		if c.Server.MaxUploadBytes <= 0 {
			errs = append(errs, "server.max_upload_bytes must be > 0")
		}
	}
	switch c.Extract.PDFProvider {
	case "native", "pdftotext", "":
	default:
		errs = append(errs, "extract.pdf_provider must be native or pdftotext")
	}
	if c.Reference.MaxDurationDays < 0 {
		errs = append(errs, "reference.max_duration_days must be >= 0")
	}
	if c.Reference.TechnicalWeight < 0 || c.Reference.CommercialWeight < 0 {
		errs = append(errs, "reference weights must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
