package interfaces

import "time"

// Kind identifies the marker type of a cross-reference. The scanner only emits
// the four known kinds; KindUnknown exists so callers constructing references
// by hand still get a deterministic validation verdict.
type Kind string

const (
	// KindResource covers `ash:` markers pointing at application resources.
	KindResource Kind = "ash"
	// KindModule covers `exdoc:` markers pointing at generated module docs.
	KindModule Kind = "exdoc"
	// KindDevDoc covers `dev:` markers pointing at developer documentation.
	KindDevDoc Kind = "dev"
	// KindUserDoc covers `user:` markers pointing at user documentation.
	KindUserDoc Kind = "user"
	// KindUnknown is the fallback for kinds outside the closed set.
	KindUnknown Kind = "unknown"
)

// Known reports whether the kind belongs to the closed marker set.
func (k Kind) Known() bool {
	switch k {
	case KindResource, KindModule, KindDevDoc, KindUserDoc:
		return true
	}
	return false
}

// Internal reports whether the kind links documentation maintained inside the
// platform itself, which callers typically style differently.
func (k Kind) Internal() bool {
	return k == KindDevDoc || k == KindUserDoc
}

// ParseKind maps a raw marker prefix onto the closed kind set.
func ParseKind(raw string) Kind {
	switch Kind(raw) {
	case KindResource:
		return KindResource
	case KindModule:
		return KindModule
	case KindDevDoc:
		return KindDevDoc
	case KindUserDoc:
		return KindUserDoc
	}
	return KindUnknown
}

// Kinds returns the closed marker set in stable order.
func Kinds() []Kind {
	return []Kind{KindResource, KindModule, KindDevDoc, KindUserDoc}
}

// Severity grades an invalid reference.
type Severity string

const (
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Reference is a single discovered cross-reference marker. Valid and Exists
// remain nil until the registry validator has run; URL remains empty until
// resolution has run.
type Reference struct {
	Kind        Kind           `json:"kind"`
	Target      string         `json:"target"`
	DisplayText string         `json:"display_text"`
	LineNumber  int            `json:"line_number"`
	URL         string         `json:"url,omitempty"`
	Valid       *bool          `json:"valid,omitempty"`
	Exists      *bool          `json:"exists,omitempty"`
	Error       string         `json:"error,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Severity    Severity       `json:"severity,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// IsValid reports the validation verdict, treating unvalidated references as
// valid so unscreened documents render without noise.
func (r Reference) IsValid() bool {
	return r.Valid == nil || *r.Valid
}

// Validated reports whether the registry validator has produced a verdict.
func (r Reference) Validated() bool {
	return r.Valid != nil
}

// ValidationReport aggregates verdicts for one document. A fresh report is
// built per validation run; reports are never mutated in place.
type ValidationReport struct {
	TotalCount   int         `json:"total_count"`
	ValidCount   int         `json:"valid_count"`
	InvalidCount int         `json:"invalid_count"`
	HasErrors    bool        `json:"has_errors"`
	Entries      []Reference `json:"entries"`
}

// BatchResult aggregates a concurrent (or sequential) validation run.
// Abandoned units are excluded from Results; TimedOut flags the under-count.
type BatchResult struct {
	Results        []Reference   `json:"results"`
	ProcessingTime time.Duration `json:"processing_time_ms"`
	Concurrent     bool          `json:"concurrent"`
	TimedOut       bool          `json:"timed_out"`
}

// ErrorReport groups invalid references for diagnostics tooling.
type ErrorReport struct {
	TotalErrors int          `json:"total_errors"`
	ByKind      map[Kind]int `json:"by_kind"`
	Entries     []Reference  `json:"entries"`
}

// Preview carries the source line excerpt surrounding a reference so review
// tools can show context without re-reading the document.
type Preview struct {
	LineNumber int    `json:"line_number"`
	Target     string `json:"target"`
	Excerpt    string `json:"excerpt"`
}

// ValidationSummary is the compact roll-up embedded in export records.
type ValidationSummary struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}

// ExportRecord is the machine-readable projection of a processed document.
type ExportRecord struct {
	Title      string            `json:"title"`
	References []Reference       `json:"references"`
	Kinds      []Kind            `json:"kinds"`
	Summary    ValidationSummary `json:"summary"`
}

// Result is the envelope returned by document processing. Error and
// BrokenLinks are only populated on failure envelopes; successful runs leave
// them empty.
type Result struct {
	Success          bool              `json:"success"`
	HTML             string            `json:"html,omitempty"`
	CrossRefs        []Reference       `json:"cross_refs"`
	ValidationReport *ValidationReport `json:"validation_report,omitempty"`
	ErrorReport      *ErrorReport      `json:"error_report,omitempty"`
	Previews         []Preview         `json:"previews,omitempty"`
	ExportData       *ExportRecord     `json:"export_data,omitempty"`
	CacheHit         bool              `json:"cache_hit"`
	Error            string            `json:"error,omitempty"`
	BrokenLinks      []Reference       `json:"broken_links,omitempty"`
}

// Document pairs a path with its markdown content for multi-document runs.
type Document struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// URLOverride reshapes resolution for a single kind. Path replaces the default
// route template (it must carry a `:target` parameter); BaseURL prefixes the
// built path, e.g. to point one kind at an external docs host.
type URLOverride struct {
	BaseURL string
	Path    string
}

// ProcessOptions gates the optional stages of document processing. The zero
// value scans and resolves only.
type ProcessOptions struct {
	DisabledKinds        []Kind
	URLOverrides         map[Kind]URLOverride
	ValidateCrossRefs    bool
	FailOnBrokenLinks    bool
	GeneratePreviews     bool
	GenerateErrorReports bool
	ExportData           bool
	Concurrent           bool
	MaxWorkers           int
	Timeout              time.Duration
	Cache                bool
	CacheKey             string
	Render               RenderOptions
}

// Disabled reports whether the kind was switched off for this run.
func (o ProcessOptions) Disabled(kind Kind) bool {
	for _, disabled := range o.DisabledKinds {
		if disabled == kind {
			return true
		}
	}
	return false
}
