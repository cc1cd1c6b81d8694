// Package analysis runs one proposal comparison end to end: grouping
// uploads by vendor, extracting records, building the report and writing
// its artifacts.
package analysis

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/proposal-analyzer/internal/config"
	"github.com/sells-group/proposal-analyzer/internal/doctext"
	"github.com/sells-group/proposal-analyzer/internal/extract"
	"github.com/sells-group/proposal-analyzer/internal/model"
	"github.com/sells-group/proposal-analyzer/internal/report"
	"github.com/sells-group/proposal-analyzer/internal/scorer"
	"github.com/sells-group/proposal-analyzer/internal/store"
)

// ErrNoUsableFiles is returned when no upload could be routed to an
// extractor.
var ErrNoUsableFiles = eris.New("analysis: no usable files")

// Upload is one input file. Transient uploads are deleted once the run
// finishes, whatever the outcome.
type Upload struct {
	Filename  string
	Path      string
	Vendor    string
	Transient bool
}

// TextExtractor pulls raw text from a document.
type TextExtractor interface {
	Supports(path string) bool
	ExtractText(ctx context.Context, path string) (string, error)
}

// Pipeline runs analyses. It holds no per-run state, so one Pipeline can
// serve concurrent requests.
type Pipeline struct {
	analysis config.AnalysisConfig
	scoring  config.ScoringConfig
	timeout  time.Duration
	ref      report.Reference

	tabular *extract.TabularExtractor
	text    TextExtractor
	miner   *extract.Miner
	store   store.Store

	now   func() time.Time
	newID func(time.Time) string
}

// New creates a Pipeline from configuration. st may be nil, in which case
// reports are written but not indexed.
func New(cfg *config.Config, st store.Store) (*Pipeline, error) {
	if err := scorer.ValidateConfig(cfg.Scoring); err != nil {
		return nil, err
	}
	ref, err := report.FromConfig(cfg.Reference)
	if err != nil {
		return nil, err
	}
	text, err := doctext.NewExtractor(cfg.Extract)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.Extract.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Pipeline{
		analysis: cfg.Analysis,
		scoring:  cfg.Scoring,
		timeout:  timeout,
		ref:      ref,
		tabular:  extract.NewTabularExtractor(),
		text:     text,
		miner:    extract.NewMiner(),
		store:    st,
		now:      time.Now,
		newID:    NewReportID,
	}, nil
}

// Run analyzes uploads and writes the text and PDF artifacts. The caller
// gets either both artifacts (indexed when a store is configured) or an
// error and none.
func (p *Pipeline) Run(ctx context.Context, uploads []Upload) (*model.AnalysisResult, error) {
	defer cleanup(uploads)

	vendors, skipped := p.collect(ctx, uploads)
	if len(vendors) == 0 {
		return nil, eris.Wrapf(ErrNoUsableFiles, "analysis: %d uploads, none routable", len(uploads))
	}

	scorer.ScoreAll(vendors, p.scoring)
	rep, err := report.Build(vendors, p.ref, p.scoring)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: build report")
	}

	created := p.now().UTC()
	id := p.newID(created)
	textPath, pdfPath, err := writeArtifacts(p.analysis.OutputDir, id, rep.Text)
	if err != nil {
		return nil, err
	}

	names := vendorNames(vendors)
	meta := &model.ReportMeta{
		ID:          id,
		Vendors:     names,
		VendorCount: len(names),
		TextPath:    textPath,
		PDFPath:     pdfPath,
		CreatedAt:   created,
	}
	if p.store != nil {
		if err := p.store.SaveReport(ctx, meta); err != nil {
			removeArtifacts(textPath, pdfPath)
			return nil, eris.Wrap(err, "analysis: index report")
		}
	}

	zap.L().Info("analysis: report generated",
		zap.String("report_id", id),
		zap.Int("vendors", len(names)),
		zap.Int("skipped", len(skipped)),
		zap.String("recommended", rep.Recommended),
	)

	return &model.AnalysisResult{
		ReportID:    id,
		VendorCount: len(names),
		Vendors:     names,
		Records:     vendors,
		Meta:        meta,
		Skipped:     skipped,
	}, nil
}

// Inspect extracts and scores uploads without building a report.
func (p *Pipeline) Inspect(ctx context.Context, uploads []Upload) (model.Vendors, []model.SkippedInput, error) {
	defer cleanup(uploads)

	vendors, skipped := p.collect(ctx, uploads)
	if len(vendors) == 0 {
		return nil, skipped, ErrNoUsableFiles
	}
	scorer.ScoreAll(vendors, p.scoring)
	return vendors, skipped, nil
}

// collect routes each upload by extension and merges the records per
// vendor. Unroutable uploads are reported as skipped.
func (p *Pipeline) collect(ctx context.Context, uploads []Upload) (model.Vendors, []model.SkippedInput) {
	vendors := model.Vendors{}
	var skipped []model.SkippedInput

	for _, u := range uploads {
		name := u.Filename
		if name == "" {
			name = filepath.Base(u.Path)
		}
		ext := strings.ToLower(filepath.Ext(name))

		switch {
		case ext == ".xlsx":
			rec := p.tabular.Extract(u.Path)
			v := vendors.Get(VendorFor(u, p.analysis.KnownVendors))
			v.Commercial.Merge(rec)
			v.Sources = append(v.Sources, name)

		case p.text.Supports(name):
			rec := p.miner.Mine(p.extractText(ctx, u.Path))
			v := vendors.Get(VendorFor(u, p.analysis.KnownVendors))
			v.Technical.Merge(rec)
			v.Sources = append(v.Sources, name)

		default:
			zap.L().Warn("analysis: skipping unsupported upload", zap.String("filename", name))
			skipped = append(skipped, model.SkippedInput{Filename: name, Reason: "unsupported file type"})
		}
	}
	return vendors, skipped
}

// extractText returns the document text, or "" when it cannot be read.
func (p *Pipeline) extractText(ctx context.Context, path string) string {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	text, err := p.text.ExtractText(ctx, path)
	if err != nil {
		zap.L().Warn("analysis: unreadable document, using defaults",
			zap.String("path", path),
			zap.Error(err),
		)
		return ""
	}
	return text
}

func vendorNames(vendors model.Vendors) []string {
	names := make([]string, 0, len(vendors))
	for name := range vendors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func cleanup(uploads []Upload) {
	for _, u := range uploads {
		if !u.Transient || u.Path == "" {
			continue
		}
		if err := os.Remove(u.Path); err != nil && !os.IsNotExist(err) {
			zap.L().Warn("analysis: remove upload", zap.String("path", u.Path), zap.Error(err))
		}
	}
}
