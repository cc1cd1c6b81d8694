package model

import "time"

// ReportMeta indexes the two artifacts generated for one analysis run.
type ReportMeta struct {
	ID          string    `json:"id"`
	Vendors     []string  `json:"vendors"`
	VendorCount int       `json:"vendor_count"`
	TextPath    string    `json:"text_path"`
	PDFPath     string    `json:"pdf_path"`
	CreatedAt   time.Time `json:"created_at"`
}

// AnalysisResult is returned to the caller of a completed analysis.
type AnalysisResult struct {
	ReportID    string         `json:"report_id"`
	VendorCount int            `json:"vendor_count"`
	Vendors     []string       `json:"vendors"`
	Records     Vendors        `json:"records,omitempty"`
	Meta        *ReportMeta    `json:"-"`
	Skipped     []SkippedInput `json:"skipped,omitempty"`
}

// SkippedInput records an upload the pipeline could not route.
type SkippedInput struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}
